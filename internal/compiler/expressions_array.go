package compiler

import (
	"encoding/binary"
	"math"

	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/types"
	"coral/internal/wasm"
)

// compileArrayLiteral lowers an array literal with a known element type
// coming from the contextual array class. When every element precomputes
// to a constant the whole array becomes a static segment; the mixed case
// is reserved and reported.
func (c *Compiler) compileArrayLiteral(e *ast.Expr, data ast.LiteralData, ctxType types.Type) *wasm.Expr {
	elemType, ok := c.arrayElementType(ctxType)
	if !ok {
		c.error(diag.LowerNotImplemented, e.Span, "array literals require a contextual array type")
		c.currentType = ctxType
		return c.module.CreateUnreachable()
	}

	values := make([]program.ConstVal, 0, len(data.Elements))
	allConstant := true
	for _, elemExpr := range data.Elements {
		expr := c.compileExpression(elemExpr, elemType, ConvImplicit, true)
		folded, isConst := c.precomputeExpression(expr, elemType)
		if !isConst {
			allConstant = false
			break
		}
		values = append(values, constValFromExpr(folded))
	}
	if !allConstant {
		c.warn(diag.LowerNotImplemented, e.Span, "array literals with non-constant elements are not implemented yet")
		c.currentType = ctxType
		return c.module.CreateUnreachable()
	}

	size := elemType.ByteSize(c.options.Target)
	buf := make([]byte, 0, uint32(len(values))*size)
	for _, v := range values {
		buf = appendConstBytes(buf, v, elemType, size)
	}
	offset := c.addMemorySegment(buf, size)
	c.currentType = ctxType
	return c.pointerConstant(offset)
}

// arrayElementType extracts the single type argument of a contextual
// array class instance.
func (c *Compiler) arrayElementType(ctxType types.Type) (types.Type, bool) {
	if !ctxType.Reference() {
		return types.Void, false
	}
	cls, ok := c.prg.ClassByID(ctxType.Class)
	if !ok || len(cls.TypeArgCtx) != 1 {
		return types.Void, false
	}
	for _, t := range cls.TypeArgCtx {
		return t, true
	}
	return types.Void, false
}

func constValFromExpr(e *wasm.Expr) program.ConstVal {
	switch e.Lit.Type {
	case wasm.TypeI64:
		return program.ConstVal{Kind: program.ConstInteger, I: e.ConstI64()}
	case wasm.TypeF32:
		return program.ConstVal{Kind: program.ConstFloat, F: float64(e.ConstF32())}
	case wasm.TypeF64:
		return program.ConstVal{Kind: program.ConstFloat, F: e.ConstF64()}
	default:
		return program.ConstVal{Kind: program.ConstInteger, I: int64(e.ConstI32())}
	}
}

func appendConstBytes(buf []byte, v program.ConstVal, t types.Type, size uint32) []byte {
	var bits uint64
	switch {
	case t.Kind == types.KindF32:
		bits = uint64(math.Float32bits(float32(v.F)))
	case t.Kind == types.KindF64:
		bits = math.Float64bits(v.F)
	default:
		bits = uint64(v.I)
	}
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], bits)
	return append(buf, scratch[:size]...)
}

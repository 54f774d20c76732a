package compiler

import (
	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/types"
	"coral/internal/wasm"
)

// ConversionKind controls what compileExpression does when the static type
// of the result differs from the contextual type.
type ConversionKind uint8

const (
	// ConvNone leaves the result in its own type.
	ConvNone ConversionKind = iota
	// ConvImplicit converts and reports when the source type is not
	// assignable to the target.
	ConvImplicit
	// ConvExplicit converts without an assignability check.
	ConvExplicit
)

// ensureSmallIntegerWrap normalizes the high bits of a small-typed value:
// shift pairs for signed sub-word types, masks for unsigned ones.
func (c *Compiler) ensureSmallIntegerWrap(expr *wasm.Expr, t types.Type) *wasm.Expr {
	m := c.module
	switch t.Kind {
	case types.KindI8:
		return m.CreateBinary(wasm.ShrSI32,
			m.CreateBinary(wasm.ShlI32, expr, m.CreateI32(24), wasm.TypeI32),
			m.CreateI32(24), wasm.TypeI32)
	case types.KindI16:
		return m.CreateBinary(wasm.ShrSI32,
			m.CreateBinary(wasm.ShlI32, expr, m.CreateI32(16), wasm.TypeI32),
			m.CreateI32(16), wasm.TypeI32)
	case types.KindU8:
		return m.CreateBinary(wasm.AndI32, expr, m.CreateI32(0xff), wasm.TypeI32)
	case types.KindU16:
		return m.CreateBinary(wasm.AndI32, expr, m.CreateI32(0xffff), wasm.TypeI32)
	case types.KindBool:
		return m.CreateBinary(wasm.AndI32, expr, m.CreateI32(0x1), wasm.TypeI32)
	default:
		return expr
	}
}

// makeIsTrueish turns a value of type t into an i32 condition.
func (c *Compiler) makeIsTrueish(expr *wasm.Expr, t types.Type) *wasm.Expr {
	m := c.module
	switch {
	case t.Kind == types.KindF32:
		return m.CreateBinary(wasm.NeF32, expr, m.CreateF32(0), wasm.TypeI32)
	case t.Kind == types.KindF64:
		return m.CreateBinary(wasm.NeF64, expr, m.CreateF64(0), wasm.TypeI32)
	case t.Long(c.options.Target):
		return m.CreateBinary(wasm.NeI64, expr, m.CreateI64(0), wasm.TypeI32)
	default:
		// Non-zero i32 is already true-ish.
		return expr
	}
}

// makeIsFalseish inverts makeIsTrueish: an eqz for integers, an equality
// with zero for floats.
func (c *Compiler) makeIsFalseish(expr *wasm.Expr, t types.Type) *wasm.Expr {
	m := c.module
	switch {
	case t.Kind == types.KindF32:
		return m.CreateBinary(wasm.EqF32, expr, m.CreateF32(0), wasm.TypeI32)
	case t.Kind == types.KindF64:
		return m.CreateBinary(wasm.EqF64, expr, m.CreateF64(0), wasm.TypeI32)
	case t.Long(c.options.Target):
		return m.CreateUnary(wasm.EqzI64, expr, wasm.TypeI32)
	default:
		return m.CreateUnary(wasm.EqzI32, expr, wasm.TypeI32)
	}
}

// convertExpression inserts the truncation, extension or promotion that
// takes a value from one type to another. Implicit conversions check
// assignability and report, but still emit so analysis can continue.
func (c *Compiler) convertExpression(expr *wasm.Expr, from, to types.Type, implicit bool, report *ast.Expr) *wasm.Expr {
	m := c.module
	tgt := c.options.Target
	if from == to {
		return expr
	}
	if from.Kind == types.KindVoid {
		c.error(diag.TypeVoidValue, report.Span, "a value of type void cannot be converted to %s", to)
		return m.CreateUnreachable()
	}
	if to.Kind == types.KindVoid {
		return m.CreateDrop(expr)
	}
	if implicit && !types.AssignableTo(c.prg.Types, from, to, tgt) {
		c.error(diag.TypeNotAssignable, report.Span, "type %s is not assignable to type %s", from, to)
	}

	switch {
	case from.Float() && to.Float():
		if from.Kind == types.KindF32 && to.Kind == types.KindF64 {
			return m.CreateUnary(wasm.PromoteF32, expr, wasm.TypeF64)
		}
		if from.Kind == types.KindF64 && to.Kind == types.KindF32 {
			return m.CreateUnary(wasm.DemoteF64, expr, wasm.TypeF32)
		}
		return expr

	case from.Float():
		// float -> int: trunc with signedness and width, then wrap.
		op := truncOp(from.Kind == types.KindF32, to.Signed(), to.Long(tgt))
		out := m.CreateUnary(op, expr, c.nativeType(to))
		if to.Small() {
			out = c.ensureSmallIntegerWrap(out, to)
		}
		return out

	case to.Float():
		op := convertOp(from.Signed(), from.Long(tgt), to.Kind == types.KindF32)
		return m.CreateUnary(op, expr, c.nativeType(to))

	default:
		// int -> int.
		fromLong, toLong := from.Long(tgt), to.Long(tgt)
		if fromLong && !toLong {
			out := m.CreateUnary(wasm.WrapI64, expr, wasm.TypeI32)
			if to.Small() {
				out = c.ensureSmallIntegerWrap(out, to)
			}
			return out
		}
		if !fromLong && toLong {
			if to.Signed() {
				return m.CreateUnary(wasm.ExtendSI32, expr, wasm.TypeI64)
			}
			return m.CreateUnary(wasm.ExtendUI32, expr, wasm.TypeI64)
		}
		if to.Small() {
			shrinks := from.Size(tgt) > to.Size(tgt)
			flips := from.Size(tgt) == to.Size(tgt) && from.Signed() != to.Signed()
			if shrinks || flips {
				return c.ensureSmallIntegerWrap(expr, to)
			}
		}
		return expr
	}
}

func truncOp(fromF32, signed, long bool) wasm.UnaryOp {
	switch {
	case fromF32 && !long && signed:
		return wasm.TruncSF32ToI32
	case fromF32 && !long:
		return wasm.TruncUF32ToI32
	case fromF32 && signed:
		return wasm.TruncSF32ToI64
	case fromF32:
		return wasm.TruncUF32ToI64
	case !long && signed:
		return wasm.TruncSF64ToI32
	case !long:
		return wasm.TruncUF64ToI32
	case signed:
		return wasm.TruncSF64ToI64
	default:
		return wasm.TruncUF64ToI64
	}
}

func convertOp(signed, long, toF32 bool) wasm.UnaryOp {
	switch {
	case toF32 && !long && signed:
		return wasm.ConvertSI32ToF32
	case toF32 && !long:
		return wasm.ConvertUI32ToF32
	case toF32 && signed:
		return wasm.ConvertSI64ToF32
	case toF32:
		return wasm.ConvertUI64ToF32
	case !long && signed:
		return wasm.ConvertSI32ToF64
	case !long:
		return wasm.ConvertUI32ToF64
	case signed:
		return wasm.ConvertSI64ToF64
	default:
		return wasm.ConvertUI64ToF64
	}
}

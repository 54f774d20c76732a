package compiler

import (
	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/types"
	"coral/internal/wasm"
)

// compileBinary lowers binary operators, assignments included.
func (c *Compiler) compileBinary(e *ast.Expr, ctxType types.Type, wrap bool) *wasm.Expr {
	data := e.Data.(ast.BinaryData)
	if data.Op.IsAssign() {
		return c.compileAssignment(e, data, ctxType)
	}
	switch data.Op {
	case ast.BinaryLogicalAnd, ast.BinaryLogicalOr:
		return c.compileLogical(e, data)
	default:
		return c.compileArithmetic(e, data, ctxType, wrap)
	}
}

// compileLogical lowers && and ||. The left operand is read twice: cloned
// when side-effect free, tee'd through a temp otherwise.
func (c *Compiler) compileLogical(e *ast.Expr, data ast.BinaryData) *wasm.Expr {
	m := c.module
	left := c.compileExpression(data.Left, types.Bool, ConvNone, true)
	leftType := c.currentType
	right := c.compileExpression(data.Right, leftType, ConvImplicit, true)

	var cond, leftAgain *wasm.Expr
	if wasm.SideEffectFree(left) {
		cond = c.makeIsTrueish(left, leftType)
		leftAgain = m.CloneExpr(left)
	} else {
		tmp := c.getAndFreeTempLocal(leftType)
		cond = c.makeIsTrueish(m.CreateTeeLocal(localIndex(tmp), left, c.nativeType(leftType)), leftType)
		leftAgain = m.CreateGetLocal(localIndex(tmp), c.nativeType(leftType))
	}

	c.currentType = leftType
	if data.Op == ast.BinaryLogicalAnd {
		return m.CreateIf(cond, right, leftAgain)
	}
	return m.CreateIf(cond, leftAgain, right)
}

// dirtiesHighBits lists the operators whose small-typed results are
// wrapped unconditionally unless the consumer wraps itself.
func dirtiesHighBits(op ast.BinaryOp) bool {
	switch op {
	case ast.BinaryAdd, ast.BinarySub, ast.BinaryMul, ast.BinaryShl,
		ast.BinaryAnd, ast.BinaryOr, ast.BinaryXor:
		return true
	default:
		return false
	}
}

func signednessMatters(op ast.BinaryOp) bool {
	switch op {
	case ast.BinaryDiv, ast.BinaryRem, ast.BinaryShr,
		ast.BinaryLt, ast.BinaryLe, ast.BinaryGt, ast.BinaryGe:
		return true
	default:
		return false
	}
}

// compileArithmetic lowers arithmetic, bitwise, shift and comparison
// operators: both sides retain their type, then unify over the
// common-compatible lattice.
func (c *Compiler) compileArithmetic(e *ast.Expr, data ast.BinaryData, ctxType types.Type, wrap bool) *wasm.Expr {
	m := c.module
	operandWrap := !dirtiesHighBits(data.Op)

	left := c.compileExpression(data.Left, ctxType, ConvNone, operandWrap)
	leftType := c.currentType
	right := c.compileExpression(data.Right, leftType, ConvNone, operandWrap)
	rightType := c.currentType

	var common types.Type
	shift := data.Op == ast.BinaryShl || data.Op == ast.BinaryShr || data.Op == ast.BinaryShrU
	if shift {
		// Shifts take the left operand's type.
		common = leftType
	} else {
		var ok bool
		common, ok = types.CommonCompatible(leftType, rightType, signednessMatters(data.Op), c.options.Target)
		if !ok {
			c.error(diag.TypeOperatorInvalid, e.Span, "operator %s cannot be applied to types %s and %s", data.Op, leftType, rightType)
			c.currentType = ctxType
			return m.CreateUnreachable()
		}
	}
	left = c.convertExpression(left, leftType, common, false, data.Left)
	right = c.convertExpression(right, rightType, common, false, data.Right)

	op, ok := binaryOpFor(data.Op, common, c.options.Target)
	if !ok {
		c.error(diag.TypeOperatorInvalid, e.Span, "operator %s cannot be applied to type %s", data.Op, common)
		c.currentType = ctxType
		return m.CreateUnreachable()
	}

	if comparison(data.Op) {
		c.currentType = types.Bool
		return m.CreateBinary(op, left, right, wasm.TypeI32)
	}
	out := m.CreateBinary(op, left, right, c.nativeType(common))
	if wrap && common.Small() && dirtiesHighBits(data.Op) {
		out = c.ensureSmallIntegerWrap(out, common)
	}
	c.currentType = common
	return out
}

func comparison(op ast.BinaryOp) bool {
	switch op {
	case ast.BinaryEq, ast.BinaryNe, ast.BinaryLt, ast.BinaryLe, ast.BinaryGt, ast.BinaryGe:
		return true
	default:
		return false
	}
}

// binaryOpFor selects the opcode family by the common type's kind, with
// the signed/unsigned split where the operation demands it.
func binaryOpFor(op ast.BinaryOp, t types.Type, tgt types.Target) (wasm.BinaryOp, bool) {
	switch t.Kind {
	case types.KindF32:
		switch op {
		case ast.BinaryAdd:
			return wasm.AddF32, true
		case ast.BinarySub:
			return wasm.SubF32, true
		case ast.BinaryMul:
			return wasm.MulF32, true
		case ast.BinaryDiv:
			return wasm.DivF32, true
		case ast.BinaryEq:
			return wasm.EqF32, true
		case ast.BinaryNe:
			return wasm.NeF32, true
		case ast.BinaryLt:
			return wasm.LtF32, true
		case ast.BinaryLe:
			return wasm.LeF32, true
		case ast.BinaryGt:
			return wasm.GtF32, true
		case ast.BinaryGe:
			return wasm.GeF32, true
		default:
			// Modulo and the bitwise family are refused on floats.
			return wasm.InvalidBinary, false
		}
	case types.KindF64:
		switch op {
		case ast.BinaryAdd:
			return wasm.AddF64, true
		case ast.BinarySub:
			return wasm.SubF64, true
		case ast.BinaryMul:
			return wasm.MulF64, true
		case ast.BinaryDiv:
			return wasm.DivF64, true
		case ast.BinaryEq:
			return wasm.EqF64, true
		case ast.BinaryNe:
			return wasm.NeF64, true
		case ast.BinaryLt:
			return wasm.LtF64, true
		case ast.BinaryLe:
			return wasm.LeF64, true
		case ast.BinaryGt:
			return wasm.GtF64, true
		case ast.BinaryGe:
			return wasm.GeF64, true
		default:
			return wasm.InvalidBinary, false
		}
	}

	signed := t.Signed()
	if t.Long(tgt) {
		switch op {
		case ast.BinaryAdd:
			return wasm.AddI64, true
		case ast.BinarySub:
			return wasm.SubI64, true
		case ast.BinaryMul:
			return wasm.MulI64, true
		case ast.BinaryDiv:
			return pick(signed, wasm.DivSI64, wasm.DivUI64), true
		case ast.BinaryRem:
			return pick(signed, wasm.RemSI64, wasm.RemUI64), true
		case ast.BinaryAnd:
			return wasm.AndI64, true
		case ast.BinaryOr:
			return wasm.OrI64, true
		case ast.BinaryXor:
			return wasm.XorI64, true
		case ast.BinaryShl:
			return wasm.ShlI64, true
		case ast.BinaryShr:
			return pick(signed, wasm.ShrSI64, wasm.ShrUI64), true
		case ast.BinaryShrU:
			return wasm.ShrUI64, true
		case ast.BinaryEq:
			return wasm.EqI64, true
		case ast.BinaryNe:
			return wasm.NeI64, true
		case ast.BinaryLt:
			return pick(signed, wasm.LtSI64, wasm.LtUI64), true
		case ast.BinaryLe:
			return pick(signed, wasm.LeSI64, wasm.LeUI64), true
		case ast.BinaryGt:
			return pick(signed, wasm.GtSI64, wasm.GtUI64), true
		case ast.BinaryGe:
			return pick(signed, wasm.GeSI64, wasm.GeUI64), true
		default:
			return wasm.InvalidBinary, false
		}
	}

	switch op {
	case ast.BinaryAdd:
		return wasm.AddI32, true
	case ast.BinarySub:
		return wasm.SubI32, true
	case ast.BinaryMul:
		return wasm.MulI32, true
	case ast.BinaryDiv:
		return pick(signed, wasm.DivSI32, wasm.DivUI32), true
	case ast.BinaryRem:
		return pick(signed, wasm.RemSI32, wasm.RemUI32), true
	case ast.BinaryAnd:
		return wasm.AndI32, true
	case ast.BinaryOr:
		return wasm.OrI32, true
	case ast.BinaryXor:
		return wasm.XorI32, true
	case ast.BinaryShl:
		return wasm.ShlI32, true
	case ast.BinaryShr:
		return pick(signed, wasm.ShrSI32, wasm.ShrUI32), true
	case ast.BinaryShrU:
		return wasm.ShrUI32, true
	case ast.BinaryEq:
		return wasm.EqI32, true
	case ast.BinaryNe:
		return wasm.NeI32, true
	case ast.BinaryLt:
		return pick(signed, wasm.LtSI32, wasm.LtUI32), true
	case ast.BinaryLe:
		return pick(signed, wasm.LeSI32, wasm.LeUI32), true
	case ast.BinaryGt:
		return pick(signed, wasm.GtSI32, wasm.GtUI32), true
	case ast.BinaryGe:
		return pick(signed, wasm.GeSI32, wasm.GeUI32), true
	default:
		return wasm.InvalidBinary, false
	}
}

func pick(signed bool, s, u wasm.BinaryOp) wasm.BinaryOp {
	if signed {
		return s
	}
	return u
}

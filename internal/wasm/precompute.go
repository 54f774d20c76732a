package wasm

import "math"

// precomputeFunction folds the body of fn down to a constant when the whole
// expression is side-effect free. Anything that touches locals, globals,
// memory, or control flow is left untouched.
func (m *Module) precomputeFunction(fn *Function) {
	if fn == nil || fn.Body == nil {
		return
	}
	if lit, ok := m.evaluate(fn.Body); ok {
		fn.Body = m.constFromLiteral(lit)
	}
}

func (m *Module) constFromLiteral(lit Literal) *Expr {
	switch lit.Type {
	case TypeI32:
		return m.CreateI32(lit.I32)
	case TypeI64:
		return m.CreateI64(lit.I64)
	case TypeF32:
		return m.CreateF32(lit.F32)
	case TypeF64:
		return m.CreateF64(lit.F64)
	default:
		return m.CreateNop()
	}
}

// evaluate interprets a side-effect-free expression tree. The second result
// is false when the tree cannot be folded.
func (m *Module) evaluate(e *Expr) (Literal, bool) {
	if e == nil {
		return Literal{}, false
	}
	switch e.ID {
	case ConstExpr:
		return e.Lit, true
	case BlockExpr:
		// Only a trivial block around a single foldable child; a branch
		// target inside would change semantics.
		if len(e.Children) == 1 && e.Name == "" {
			return m.evaluate(e.Children[0])
		}
		return Literal{}, false
	case IfExpr:
		cond, ok := m.evaluate(e.Cond)
		if !ok || e.IfFalse == nil {
			return Literal{}, false
		}
		if truthy(cond) {
			return m.evaluate(e.IfTrue)
		}
		return m.evaluate(e.IfFalse)
	case SelectExpr:
		cond, ok := m.evaluate(e.Cond)
		if !ok {
			return Literal{}, false
		}
		// Both arms must fold; select evaluates both operands.
		lt, okT := m.evaluate(e.IfTrue)
		lf, okF := m.evaluate(e.IfFalse)
		if !okT || !okF {
			return Literal{}, false
		}
		if truthy(cond) {
			return lt, true
		}
		return lf, true
	case UnaryExpr:
		v, ok := m.evaluate(e.Value)
		if !ok {
			return Literal{}, false
		}
		return evalUnary(e.UnOp, v)
	case BinaryExpr:
		l, ok := m.evaluate(e.Left)
		if !ok {
			return Literal{}, false
		}
		r, ok := m.evaluate(e.Right)
		if !ok {
			return Literal{}, false
		}
		return evalBinary(e.BinOp, l, r)
	default:
		return Literal{}, false
	}
}

func truthy(lit Literal) bool {
	switch lit.Type {
	case TypeI32:
		return lit.I32 != 0
	case TypeI64:
		return lit.I64 != 0
	case TypeF32:
		return lit.F32 != 0
	case TypeF64:
		return lit.F64 != 0
	default:
		return false
	}
}

func i32Lit(v int32) Literal   { return Literal{Type: TypeI32, I32: v} }
func i64Lit(v int64) Literal   { return Literal{Type: TypeI64, I64: v} }
func f32Lit(v float32) Literal { return Literal{Type: TypeF32, F32: v} }
func f64Lit(v float64) Literal { return Literal{Type: TypeF64, F64: v} }
func boolLit(v bool) Literal {
	if v {
		return i32Lit(1)
	}
	return i32Lit(0)
}

func evalUnary(op UnaryOp, v Literal) (Literal, bool) {
	switch op {
	case EqzI32:
		return boolLit(v.I32 == 0), true
	case EqzI64:
		return boolLit(v.I64 == 0), true
	case NegF32:
		return f32Lit(-v.F32), true
	case NegF64:
		return f64Lit(-v.F64), true
	case AbsF32:
		return f32Lit(float32(math.Abs(float64(v.F32)))), true
	case AbsF64:
		return f64Lit(math.Abs(v.F64)), true
	case WrapI64:
		return i32Lit(int32(uint32(uint64(v.I64)))), true
	case ExtendSI32:
		return i64Lit(int64(v.I32)), true
	case ExtendUI32:
		return i64Lit(int64(uint32(v.I32))), true
	case PromoteF32:
		return f64Lit(float64(v.F32)), true
	case DemoteF64:
		return f32Lit(float32(v.F64)), true
	case TruncSF32ToI32:
		return truncToI32(float64(v.F32))
	case TruncSF64ToI32:
		return truncToI32(v.F64)
	case TruncUF32ToI32:
		return truncToU32(float64(v.F32))
	case TruncUF64ToI32:
		return truncToU32(v.F64)
	case TruncSF32ToI64:
		return truncToI64(float64(v.F32))
	case TruncSF64ToI64:
		return truncToI64(v.F64)
	case TruncUF32ToI64:
		return truncToU64(float64(v.F32))
	case TruncUF64ToI64:
		return truncToU64(v.F64)
	case ConvertSI32ToF32:
		return f32Lit(float32(v.I32)), true
	case ConvertUI32ToF32:
		return f32Lit(float32(uint32(v.I32))), true
	case ConvertSI64ToF32:
		return f32Lit(float32(v.I64)), true
	case ConvertUI64ToF32:
		return f32Lit(float32(uint64(v.I64))), true
	case ConvertSI32ToF64:
		return f64Lit(float64(v.I32)), true
	case ConvertUI32ToF64:
		return f64Lit(float64(uint32(v.I32))), true
	case ConvertSI64ToF64:
		return f64Lit(float64(v.I64)), true
	case ConvertUI64ToF64:
		return f64Lit(float64(uint64(v.I64))), true
	case ReinterpretF32:
		return i32Lit(int32(math.Float32bits(v.F32))), true
	case ReinterpretF64:
		return i64Lit(int64(math.Float64bits(v.F64))), true
	case ReinterpretI32:
		return f32Lit(math.Float32frombits(uint32(v.I32))), true
	case ReinterpretI64:
		return f64Lit(math.Float64frombits(uint64(v.I64))), true
	default:
		return Literal{}, false
	}
}

// Trapping truncations are not folded when they would trap; the runtime
// keeps that behavior.
func truncToI32(f float64) (Literal, bool) {
	if math.IsNaN(f) || f >= 2147483648 || f < -2147483648 {
		return Literal{}, false
	}
	return i32Lit(int32(f)), true
}

func truncToU32(f float64) (Literal, bool) {
	if math.IsNaN(f) || f >= 4294967296 || f <= -1 {
		return Literal{}, false
	}
	return i32Lit(int32(uint32(f))), true
}

func truncToI64(f float64) (Literal, bool) {
	if math.IsNaN(f) || f >= 9223372036854775808 || f < -9223372036854775808 {
		return Literal{}, false
	}
	return i64Lit(int64(f)), true
}

func truncToU64(f float64) (Literal, bool) {
	if math.IsNaN(f) || f >= 18446744073709551616 || f <= -1 {
		return Literal{}, false
	}
	return i64Lit(int64(uint64(f))), true
}

func evalBinary(op BinaryOp, l, r Literal) (Literal, bool) {
	switch op {
	// i32
	case AddI32:
		return i32Lit(int32(uint32(l.I32) + uint32(r.I32))), true
	case SubI32:
		return i32Lit(int32(uint32(l.I32) - uint32(r.I32))), true
	case MulI32:
		return i32Lit(int32(uint32(l.I32) * uint32(r.I32))), true
	case DivSI32:
		if r.I32 == 0 || (l.I32 == math.MinInt32 && r.I32 == -1) {
			return Literal{}, false
		}
		return i32Lit(l.I32 / r.I32), true
	case DivUI32:
		if r.I32 == 0 {
			return Literal{}, false
		}
		return i32Lit(int32(uint32(l.I32) / uint32(r.I32))), true
	case RemSI32:
		if r.I32 == 0 {
			return Literal{}, false
		}
		return i32Lit(l.I32 % r.I32), true
	case RemUI32:
		if r.I32 == 0 {
			return Literal{}, false
		}
		return i32Lit(int32(uint32(l.I32) % uint32(r.I32))), true
	case AndI32:
		return i32Lit(l.I32 & r.I32), true
	case OrI32:
		return i32Lit(l.I32 | r.I32), true
	case XorI32:
		return i32Lit(l.I32 ^ r.I32), true
	case ShlI32:
		return i32Lit(int32(uint32(l.I32) << (uint32(r.I32) & 31))), true
	case ShrSI32:
		return i32Lit(l.I32 >> (uint32(r.I32) & 31)), true
	case ShrUI32:
		return i32Lit(int32(uint32(l.I32) >> (uint32(r.I32) & 31))), true
	case EqI32:
		return boolLit(l.I32 == r.I32), true
	case NeI32:
		return boolLit(l.I32 != r.I32), true
	case LtSI32:
		return boolLit(l.I32 < r.I32), true
	case LtUI32:
		return boolLit(uint32(l.I32) < uint32(r.I32)), true
	case LeSI32:
		return boolLit(l.I32 <= r.I32), true
	case LeUI32:
		return boolLit(uint32(l.I32) <= uint32(r.I32)), true
	case GtSI32:
		return boolLit(l.I32 > r.I32), true
	case GtUI32:
		return boolLit(uint32(l.I32) > uint32(r.I32)), true
	case GeSI32:
		return boolLit(l.I32 >= r.I32), true
	case GeUI32:
		return boolLit(uint32(l.I32) >= uint32(r.I32)), true

	// i64
	case AddI64:
		return i64Lit(int64(uint64(l.I64) + uint64(r.I64))), true
	case SubI64:
		return i64Lit(int64(uint64(l.I64) - uint64(r.I64))), true
	case MulI64:
		return i64Lit(int64(uint64(l.I64) * uint64(r.I64))), true
	case DivSI64:
		if r.I64 == 0 || (l.I64 == math.MinInt64 && r.I64 == -1) {
			return Literal{}, false
		}
		return i64Lit(l.I64 / r.I64), true
	case DivUI64:
		if r.I64 == 0 {
			return Literal{}, false
		}
		return i64Lit(int64(uint64(l.I64) / uint64(r.I64))), true
	case RemSI64:
		if r.I64 == 0 {
			return Literal{}, false
		}
		return i64Lit(l.I64 % r.I64), true
	case RemUI64:
		if r.I64 == 0 {
			return Literal{}, false
		}
		return i64Lit(int64(uint64(l.I64) % uint64(r.I64))), true
	case AndI64:
		return i64Lit(l.I64 & r.I64), true
	case OrI64:
		return i64Lit(l.I64 | r.I64), true
	case XorI64:
		return i64Lit(l.I64 ^ r.I64), true
	case ShlI64:
		return i64Lit(int64(uint64(l.I64) << (uint64(r.I64) & 63))), true
	case ShrSI64:
		return i64Lit(l.I64 >> (uint64(r.I64) & 63)), true
	case ShrUI64:
		return i64Lit(int64(uint64(l.I64) >> (uint64(r.I64) & 63))), true
	case EqI64:
		return boolLit(l.I64 == r.I64), true
	case NeI64:
		return boolLit(l.I64 != r.I64), true
	case LtSI64:
		return boolLit(l.I64 < r.I64), true
	case LtUI64:
		return boolLit(uint64(l.I64) < uint64(r.I64)), true
	case LeSI64:
		return boolLit(l.I64 <= r.I64), true
	case LeUI64:
		return boolLit(uint64(l.I64) <= uint64(r.I64)), true
	case GtSI64:
		return boolLit(l.I64 > r.I64), true
	case GtUI64:
		return boolLit(uint64(l.I64) > uint64(r.I64)), true
	case GeSI64:
		return boolLit(l.I64 >= r.I64), true
	case GeUI64:
		return boolLit(uint64(l.I64) >= uint64(r.I64)), true

	// f32
	case AddF32:
		return f32Lit(l.F32 + r.F32), true
	case SubF32:
		return f32Lit(l.F32 - r.F32), true
	case MulF32:
		return f32Lit(l.F32 * r.F32), true
	case DivF32:
		return f32Lit(l.F32 / r.F32), true
	case MinF32:
		return f32Lit(float32(math.Min(float64(l.F32), float64(r.F32)))), true
	case MaxF32:
		return f32Lit(float32(math.Max(float64(l.F32), float64(r.F32)))), true
	case EqF32:
		return boolLit(l.F32 == r.F32), true
	case NeF32:
		return boolLit(l.F32 != r.F32), true
	case LtF32:
		return boolLit(l.F32 < r.F32), true
	case LeF32:
		return boolLit(l.F32 <= r.F32), true
	case GtF32:
		return boolLit(l.F32 > r.F32), true
	case GeF32:
		return boolLit(l.F32 >= r.F32), true

	// f64
	case AddF64:
		return f64Lit(l.F64 + r.F64), true
	case SubF64:
		return f64Lit(l.F64 - r.F64), true
	case MulF64:
		return f64Lit(l.F64 * r.F64), true
	case DivF64:
		return f64Lit(l.F64 / r.F64), true
	case MinF64:
		return f64Lit(math.Min(l.F64, r.F64)), true
	case MaxF64:
		return f64Lit(math.Max(l.F64, r.F64)), true
	case EqF64:
		return boolLit(l.F64 == r.F64), true
	case NeF64:
		return boolLit(l.F64 != r.F64), true
	case LtF64:
		return boolLit(l.F64 < r.F64), true
	case LeF64:
		return boolLit(l.F64 <= r.F64), true
	case GtF64:
		return boolLit(l.F64 > r.F64), true
	case GeF64:
		return boolLit(l.F64 >= r.F64), true

	default:
		return Literal{}, false
	}
}

package wasm

// CloneExpr deep-copies an expression tree. Used by the compiler when a
// side-effect-free operand must be read twice.
func (m *Module) CloneExpr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	out := *e
	out.Children = cloneSlice(m, e.Children)
	out.Operands = cloneSlice(m, e.Operands)
	out.Cond = m.CloneExpr(e.Cond)
	out.IfTrue = m.CloneExpr(e.IfTrue)
	out.IfFalse = m.CloneExpr(e.IfFalse)
	out.Value = m.CloneExpr(e.Value)
	out.Ptr = m.CloneExpr(e.Ptr)
	out.Left = m.CloneExpr(e.Left)
	out.Right = m.CloneExpr(e.Right)
	if e.Names != nil {
		out.Names = append([]string(nil), e.Names...)
	}
	return &out
}

func cloneSlice(m *Module, in []*Expr) []*Expr {
	if in == nil {
		return nil
	}
	out := make([]*Expr, len(in))
	for i, e := range in {
		out[i] = m.CloneExpr(e)
	}
	return out
}

// SideEffectFree reports whether re-evaluating the expression is safe: no
// calls, no writes, no control transfers. Reads of locals and globals are
// safe because nothing in between can change them when the clone is
// evaluated adjacently.
func SideEffectFree(e *Expr) bool {
	if e == nil {
		return true
	}
	switch e.ID {
	case ConstExpr, GetLocalExpr, GetGlobalExpr, NopExpr:
		return true
	case LoadExpr:
		return SideEffectFree(e.Ptr)
	case UnaryExpr:
		return SideEffectFree(e.Value)
	case BinaryExpr:
		return SideEffectFree(e.Left) && SideEffectFree(e.Right)
	case SelectExpr:
		return SideEffectFree(e.Cond) && SideEffectFree(e.IfTrue) && SideEffectFree(e.IfFalse)
	default:
		return false
	}
}

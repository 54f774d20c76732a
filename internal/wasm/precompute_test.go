package wasm

import (
	"testing"
)

func TestPrecomputeFoldsArithmetic(t *testing.T) {
	m := NewModule()
	tests := []struct {
		name string
		expr *Expr
		want Literal
	}{
		{
			"i32 add wraps",
			m.CreateBinary(AddI32, m.CreateI32(2147483647), m.CreateI32(1), TypeI32),
			Literal{Type: TypeI32, I32: -2147483648},
		},
		{
			"i64 mul",
			m.CreateBinary(MulI64, m.CreateI64(1 << 40), m.CreateI64(4), TypeI64),
			Literal{Type: TypeI64, I64: 1 << 42},
		},
		{
			"f64 div",
			m.CreateBinary(DivF64, m.CreateF64(1), m.CreateF64(4), TypeF64),
			Literal{Type: TypeF64, F64: 0.25},
		},
		{
			"unsigned compare",
			m.CreateBinary(LtUI32, m.CreateI32(-1), m.CreateI32(1), TypeI32),
			Literal{Type: TypeI32, I32: 0},
		},
		{
			"shift masks count",
			m.CreateBinary(ShlI32, m.CreateI32(1), m.CreateI32(33), TypeI32),
			Literal{Type: TypeI32, I32: 2},
		},
		{
			"nested select",
			m.CreateSelect(m.CreateI32(0), m.CreateI32(10), m.CreateI32(20)),
			Literal{Type: TypeI32, I32: 20},
		},
		{
			"wrap then extend",
			m.CreateUnary(ExtendUI32, m.CreateUnary(WrapI64, m.CreateI64(-1), TypeI32), TypeI64),
			Literal{Type: TypeI64, I64: 0xffffffff},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ftype := m.AddFunctionType("t_"+tt.name, nil, tt.expr.Type)
			fn := m.AddFunction("tmp", ftype, nil, tt.expr)
			if err := m.RunPassesOnFunction(fn, []string{"precompute"}); err != nil {
				t.Fatal(err)
			}
			if fn.Body.ID != ConstExpr {
				t.Fatal("did not fold to a constant")
			}
			if fn.Body.Lit != tt.want {
				t.Fatalf("folded to %+v, want %+v", fn.Body.Lit, tt.want)
			}
			m.RemoveFunction("tmp")
		})
	}
}

func TestPrecomputeRefusesTraps(t *testing.T) {
	m := NewModule()
	tests := []*Expr{
		m.CreateBinary(DivSI32, m.CreateI32(1), m.CreateI32(0), TypeI32),
		m.CreateBinary(DivSI32, m.CreateI32(-2147483648), m.CreateI32(-1), TypeI32),
		m.CreateUnary(TruncSF64ToI32, m.CreateF64(1e30), TypeI32),
	}
	for i, expr := range tests {
		ftype := m.AddFunctionType("i_i", nil, TypeI32)
		fn := m.AddFunction("tmp", ftype, nil, expr)
		_ = m.RunPassesOnFunction(fn, []string{"precompute"})
		if fn.Body.ID == ConstExpr {
			t.Fatalf("case %d: trapping expression must not fold", i)
		}
		m.RemoveFunction("tmp")
	}
}

func TestPrecomputeSkipsSideEffects(t *testing.T) {
	m := NewModule()
	expr := m.CreateBinary(AddI32,
		m.CreateCall("f", nil, TypeI32),
		m.CreateI32(1), TypeI32)
	ftype := m.AddFunctionType("v_i", nil, TypeI32)
	fn := m.AddFunction("tmp", ftype, nil, expr)
	_ = m.RunPassesOnFunction(fn, []string{"precompute"})
	if fn.Body.ID == ConstExpr {
		t.Fatal("calls must not fold")
	}
}

func TestCloneExprIsDeep(t *testing.T) {
	m := NewModule()
	orig := m.CreateBinary(AddI32, m.CreateI32(1), m.CreateGetLocal(0, TypeI32), TypeI32)
	clone := m.CloneExpr(orig)
	if clone == orig || clone.Left == orig.Left || clone.Right == orig.Right {
		t.Fatal("clone must not alias the original nodes")
	}
	clone.Left.Lit.I32 = 99
	if orig.Left.Lit.I32 != 1 {
		t.Fatal("mutating the clone leaked into the original")
	}
}

func TestSideEffectFree(t *testing.T) {
	m := NewModule()
	if !SideEffectFree(m.CreateBinary(AddI32, m.CreateGetLocal(0, TypeI32), m.CreateI32(1), TypeI32)) {
		t.Fatal("local reads and constants are side-effect free")
	}
	if SideEffectFree(m.CreateCall("f", nil, TypeI32)) {
		t.Fatal("calls are not side-effect free")
	}
	if SideEffectFree(m.CreateSetLocal(0, m.CreateI32(1))) {
		t.Fatal("writes are not side-effect free")
	}
}

func TestRemoveFunction(t *testing.T) {
	m := NewModule()
	ftype := m.AddFunctionType("v_v", nil, TypeNone)
	m.AddFunction("a", ftype, nil, m.CreateNop())
	m.AddFunction("b", ftype, nil, m.CreateNop())
	m.RemoveFunction("a")
	if _, ok := m.GetFunction("a"); ok {
		t.Fatal("a still resolvable")
	}
	if _, ok := m.GetFunction("b"); !ok {
		t.Fatal("b lost")
	}
	if len(m.Functions) != 1 {
		t.Fatalf("function list has %d entries, want 1", len(m.Functions))
	}
}

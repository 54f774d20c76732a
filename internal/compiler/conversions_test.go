package compiler

import (
	"testing"

	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/types"
	"coral/internal/wasm"
)

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	prg := program.NewProgram(types.WASM32)
	return New(prg, Defaults(), diag.NewBag(16))
}

func TestEnsureSmallIntegerWrap(t *testing.T) {
	c := newTestCompiler(t)
	tests := []struct {
		name string
		typ  types.Type
		op   wasm.BinaryOp
	}{
		{"i8 shifts", types.I8, wasm.ShrSI32},
		{"i16 shifts", types.I16, wasm.ShrSI32},
		{"u8 masks", types.U8, wasm.AndI32},
		{"u16 masks", types.U16, wasm.AndI32},
		{"bool masks", types.Bool, wasm.AndI32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := c.ensureSmallIntegerWrap(c.module.CreateI32(0x1234), tt.typ)
			if wrapped.ID != wasm.BinaryExpr || wrapped.BinOp != tt.op {
				t.Fatalf("wrap of %s uses op %d, want %d", tt.typ, wrapped.BinOp, tt.op)
			}
		})
	}
	// i32 needs no wrap.
	plain := c.module.CreateI32(5)
	if got := c.ensureSmallIntegerWrap(plain, types.I32); got != plain {
		t.Fatal("i32 must pass through unwrapped")
	}
}

func TestConvertExpressionMatrix(t *testing.T) {
	c := newTestCompiler(t)
	m := c.module
	tests := []struct {
		name string
		from types.Type
		to   types.Type
		want wasm.UnaryOp
	}{
		{"f32 to f64 promotes", types.F32, types.F64, wasm.PromoteF32},
		{"f64 to f32 demotes", types.F64, types.F32, wasm.DemoteF64},
		{"i64 to i32 wraps", types.I64, types.I32, wasm.WrapI64},
		{"i32 to i64 sign-extends", types.I32, types.I64, wasm.ExtendSI32},
		{"i32 to u64 zero-extends", types.I32, types.U64, wasm.ExtendUI32},
		{"f64 to i32 truncates signed", types.F64, types.I32, wasm.TruncSF64ToI32},
		{"f32 to u64 truncates unsigned", types.F32, types.U64, wasm.TruncUF32ToI64},
		{"u32 to f64 converts unsigned", types.U32, types.F64, wasm.ConvertUI32ToF64},
		{"i64 to f32 converts signed", types.I64, types.F32, wasm.ConvertSI64ToF32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var src *wasm.Expr
			switch {
			case tt.from.Float() && tt.from.Kind == types.KindF32:
				src = m.CreateF32(1)
			case tt.from.Float():
				src = m.CreateF64(1)
			case tt.from.Long(types.WASM32):
				src = m.CreateI64(1)
			default:
				src = m.CreateI32(1)
			}
			out := c.convertExpression(src, tt.from, tt.to, false, testReportNode())
			if out.ID != wasm.UnaryExpr || out.UnOp != tt.want {
				t.Fatalf("conversion emitted op %d, want %d", out.UnOp, tt.want)
			}
		})
	}
}

func TestConvertToVoidDrops(t *testing.T) {
	c := newTestCompiler(t)
	out := c.convertExpression(c.module.CreateI32(1), types.I32, types.Void, true, testReportNode())
	if out.ID != wasm.DropExpr {
		t.Fatal("conversion to void must materialize as a drop")
	}
}

func TestConvertFromVoidReports(t *testing.T) {
	prg := program.NewProgram(types.WASM32)
	bag := diag.NewBag(16)
	c := New(prg, Defaults(), bag)
	out := c.convertExpression(c.module.CreateNop(), types.Void, types.I32, true, testReportNode())
	if out.ID != wasm.UnreachableExpr {
		t.Fatal("conversion from void must lower to unreachable")
	}
	if !bag.HasErrors() {
		t.Fatal("conversion from void must report")
	}
}

func TestImplicitNarrowingReportsButStillEmits(t *testing.T) {
	prg := program.NewProgram(types.WASM32)
	bag := diag.NewBag(16)
	c := New(prg, Defaults(), bag)
	out := c.convertExpression(c.module.CreateI32(300), types.I32, types.U8, true, testReportNode())
	if !bag.HasErrors() {
		t.Fatal("narrowing must report non-assignability")
	}
	if out.ID != wasm.BinaryExpr || out.BinOp != wasm.AndI32 {
		t.Fatal("narrowing must still emit the mask")
	}
}

func TestTempLocalPoolReuse(t *testing.T) {
	c := newTestCompiler(t)
	c.currentFunction = c.startFn
	c.freeTemps = make(map[wasm.Type][]*program.Local)

	first := c.getTempLocal(types.I32)
	c.freeTempLocal(first)
	second := c.getTempLocal(types.I32)
	if first != second {
		t.Fatal("freed temp must be reused for the same native type")
	}
	c.freeTempLocal(second)

	// getAndFreeTempLocal releases immediately.
	third := c.getAndFreeTempLocal(types.U32)
	fourth := c.getTempLocal(types.I32)
	if third != fourth {
		t.Fatal("immediately released temp must be reused by the next request")
	}

	// A different native type allocates a fresh slot.
	f := c.getTempLocal(types.F64)
	if f == fourth {
		t.Fatal("f64 temp must not alias an i32 slot")
	}
}

func TestPrecomputeRoundTrip(t *testing.T) {
	c := newTestCompiler(t)
	m := c.module
	sum := m.CreateBinary(wasm.AddI32, m.CreateI32(2), m.CreateI32(3), wasm.TypeI32)
	folded, isConst := c.precomputeExpression(sum, types.I32)
	if !isConst {
		t.Fatal("2+3 must fold")
	}
	if folded.ConstI32() != 5 {
		t.Fatalf("folded to %d, want 5", folded.ConstI32())
	}
	if _, ok := m.GetFunction(precomputeFunctionName); ok {
		t.Fatal("precompute scratch function must be removed")
	}

	// Precomputing a constant returns the same constant.
	again, isConst := c.precomputeExpression(folded, types.I32)
	if !isConst || again.ConstI32() != 5 {
		t.Fatal("precompute of a constant must be a no-op")
	}

	// Non-foldable expressions are retained as-is.
	get := m.CreateGetLocal(0, wasm.TypeI32)
	_, isConst = c.precomputeExpression(get, types.I32)
	if isConst {
		t.Fatal("local reads must not fold")
	}
}

func testReportNode() *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, Data: ast.LiteralData{Kind: ast.LiteralInt}}
}

package compiler_test

import (
	"testing"

	"coral/internal/ast"
	"coral/internal/compiler"
	"coral/internal/diag"
	"coral/internal/wasm"
)

func TestFunctionReferenceTakesTableIndex(t *testing.T) {
	g := fnDecl("g", 0, nil, tref("i32"), retStmt(intLit(7)))
	pick := fnDecl("pick", ast.DeclExport, nil, tref("i32"),
		&ast.Stmt{Kind: ast.StmtVariable, Data: ast.VariableData{
			Declarators: []*ast.VariableDeclarator{{Name: "f", Init: ident("g")}},
		}},
		retStmt(callExpr(ident("f"))),
	)
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {g, pick}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}

	if len(module.Table) != 1 || module.Table[0] != "g" {
		t.Fatalf("table = %v, want [g]", module.Table)
	}
	if _, ok := module.GetFunction("g"); !ok {
		t.Fatal("taking the address must compile the target")
	}

	body := functionBody(t, module, "pick")
	var ret *wasm.Expr
	for _, child := range body.Children {
		if c := unwrapSingle(child); c.ID == wasm.ReturnExpr {
			ret = c
		}
	}
	if ret == nil {
		t.Fatal("no return in pick")
	}
	call := ret.Value
	if call.ID != wasm.CallIndirectExpr {
		t.Fatal("calling through a local must lower to call_indirect")
	}
	if call.Value.ID != wasm.GetLocalExpr {
		t.Fatal("the table index must come from the local")
	}
}

func TestTakingAddressTwiceReusesIndex(t *testing.T) {
	g := fnDecl("g", 0, nil, tref("i32"), retStmt(intLit(7)))
	f := fnDecl("f", ast.DeclExport, nil, tref("i32"),
		&ast.Stmt{Kind: ast.StmtVariable, Data: ast.VariableData{
			Declarators: []*ast.VariableDeclarator{{Name: "a", Init: ident("g")}},
		}},
		&ast.Stmt{Kind: ast.StmtVariable, Data: ast.VariableData{
			Declarators: []*ast.VariableDeclarator{{Name: "b", Init: ident("g")}},
		}},
		retStmt(intLit(0)),
	)
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {g, f}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	if len(module.Table) != 1 {
		t.Fatalf("table has %d entries, want 1", len(module.Table))
	}
}

func TestTooManyArgumentsReports(t *testing.T) {
	g := fnDecl("g", 0, []*ast.Parameter{paramOf("a", "i32", nil)}, tref("i32"),
		retStmt(ident("a")))
	f := fnDecl("f", ast.DeclExport, nil, tref("i32"),
		retStmt(callExpr(ident("g"), intLit(1), intLit(2))),
	)
	_, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {g, f}})
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.LowerArityMismatch {
			found = true
		}
	}
	if !found {
		t.Fatal("surplus arguments must report an arity mismatch")
	}
}

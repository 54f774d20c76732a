package compiler_test

import (
	"testing"

	"coral/internal/ast"
	"coral/internal/compiler"
	"coral/internal/diag"
	"coral/internal/wasm"
)

func TestLogicalAndClonesPureLeft(t *testing.T) {
	f := fnDecl("f", ast.DeclExport,
		[]*ast.Parameter{paramOf("a", "i32", nil), paramOf("b", "i32", nil)},
		tref("i32"),
		retStmt(bin(ast.BinaryLogicalAnd, ident("a"), ident("b"))),
	)
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	ret := unwrapSingle(functionBody(t, module, "f"))
	cond := ret.Value
	if cond.ID != wasm.IfExpr {
		t.Fatal("&& must lower to an if")
	}
	if cond.Cond.ID != wasm.GetLocalExpr || cond.Cond.Index != 0 {
		t.Fatal("condition must be the left operand")
	}
	if cond.IfTrue.ID != wasm.GetLocalExpr || cond.IfTrue.Index != 1 {
		t.Fatal("then arm must be the right operand")
	}
	if cond.IfFalse.ID != wasm.GetLocalExpr || cond.IfFalse.Index != 0 {
		t.Fatal("else arm must re-read the left operand")
	}
}

func TestCompoundAssignmentLowersAsPlain(t *testing.T) {
	f := fnDecl("f", ast.DeclExport,
		[]*ast.Parameter{paramOf("x", "i32", nil)},
		tref("i32"),
		&ast.Stmt{Kind: ast.StmtExpression, Data: ast.ExpressionData{
			Expr: bin(ast.BinaryAddAssign, ident("x"), intLit(2)),
		}},
		retStmt(ident("x")),
	)
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	body := functionBody(t, module, "f")
	set := unwrapSingle(body.Children[0])
	if set.ID != wasm.SetLocalExpr || set.IsTee {
		t.Fatal("statement-position compound assignment must be a plain set")
	}
	sum := set.Value
	if sum.ID != wasm.BinaryExpr || sum.BinOp != wasm.AddI32 {
		t.Fatal("compound assignment must lower the arithmetic as if written plain")
	}
}

func TestPostfixIncrementYieldsOldValue(t *testing.T) {
	f := fnDecl("f", ast.DeclExport,
		[]*ast.Parameter{paramOf("x", "i32", nil)},
		tref("i32"),
		retStmt(&ast.Expr{Kind: ast.ExprUnary, Data: ast.UnaryData{Op: ast.UnaryPostInc, Operand: ident("x")}}),
	)
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	ret := unwrapSingle(functionBody(t, module, "f"))
	block := ret.Value
	if block.ID != wasm.BlockExpr || len(block.Children) != 2 {
		t.Fatal("postfix increment must stash the old value")
	}
	if block.Children[1].ID != wasm.GetLocalExpr {
		t.Fatal("the expression must yield the stashed value")
	}
}

func TestSwitchWithReturningDefaultProvesReturns(t *testing.T) {
	f := fnDecl("f", ast.DeclExport,
		[]*ast.Parameter{paramOf("x", "i32", nil)},
		tref("i32"),
		&ast.Stmt{Kind: ast.StmtSwitch, Data: ast.SwitchData{
			Cond: ident("x"),
			Cases: []ast.SwitchCase{
				{Label: intLit(0), Statements: []*ast.Stmt{retStmt(intLit(1))}},
				{Statements: []*ast.Stmt{retStmt(intLit(2))}},
			},
		}},
	)
	_, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	for _, d := range bag.Items() {
		if d.Code == diag.FlowNotAllPathsReturn {
			t.Fatalf("switch with a returning default must prove RETURNS: %+v", d)
		}
	}
}

func TestSwitchWithBreakDoesNotProveReturns(t *testing.T) {
	f := fnDecl("f", ast.DeclExport,
		[]*ast.Parameter{paramOf("x", "i32", nil)},
		tref("i32"),
		&ast.Stmt{Kind: ast.StmtSwitch, Data: ast.SwitchData{
			Cond: ident("x"),
			Cases: []ast.SwitchCase{
				{Label: intLit(0), Statements: []*ast.Stmt{
					{Kind: ast.StmtBreak, Data: ast.BreakData{}},
				}},
				{Statements: []*ast.Stmt{retStmt(intLit(2))}},
			},
		}},
	)
	_, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.FlowNotAllPathsReturn {
			found = true
		}
	}
	if !found {
		t.Fatal("a breaking case leaves paths that do not return")
	}
}

func TestDoBodyPropagatesReturns(t *testing.T) {
	f := fnDecl("f", ast.DeclExport, nil, tref("i32"),
		&ast.Stmt{Kind: ast.StmtDo, Data: ast.DoData{
			Body: blockStmt(retStmt(intLit(1))),
			Cond: intLit(0),
		}},
	)
	_, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	for _, d := range bag.Items() {
		if d.Code == diag.FlowNotAllPathsReturn {
			t.Fatalf("do executes at least once, RETURNS must propagate: %+v", d)
		}
	}
}

func TestBreakOutsideLoopReports(t *testing.T) {
	f := fnDecl("f", ast.DeclExport, nil, nil,
		&ast.Stmt{Kind: ast.StmtBreak, Data: ast.BreakData{}},
	)
	_, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.FlowBreakOutsideLoop {
			found = true
		}
	}
	if !found {
		t.Fatal("break outside a loop must report")
	}
}

func TestLabeledBreakIsRefused(t *testing.T) {
	f := fnDecl("f", ast.DeclExport, nil, nil,
		&ast.Stmt{Kind: ast.StmtWhile, Data: ast.WhileData{
			Cond: intLit(1),
			Body: blockStmt(&ast.Stmt{Kind: ast.StmtBreak, Data: ast.BreakData{Label: "outer"}}),
		}},
	)
	_, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.FlowLabeledUnsupported {
			found = true
		}
	}
	if !found {
		t.Fatal("labeled break must be refused")
	}
}

func TestConstLocalFoldsToVirtual(t *testing.T) {
	f := fnDecl("f", ast.DeclExport, nil, tref("i32"),
		&ast.Stmt{Kind: ast.StmtVariable, Data: ast.VariableData{
			Const: true,
			Declarators: []*ast.VariableDeclarator{{
				Name: "k", Type: tref("i32"),
				Init: bin(ast.BinaryMul, intLit(6), intLit(7)),
			}},
		}},
		retStmt(ident("k")),
	)
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	fn, _ := module.GetFunction("f")
	if len(fn.VarTypes) != 0 {
		t.Fatalf("virtual local must not take a slot, got %d locals", len(fn.VarTypes))
	}
	var ret *wasm.Expr
	for _, child := range fn.Body.Children {
		if c := unwrapSingle(child); c.ID == wasm.ReturnExpr {
			ret = c
		}
	}
	if ret == nil || ret.Value.ID != wasm.ConstExpr || ret.Value.ConstI32() != 42 {
		t.Fatal("reads of a folded const local must inline the literal")
	}
}

func TestAssignToConstLocalReports(t *testing.T) {
	f := fnDecl("f", ast.DeclExport, nil, nil,
		&ast.Stmt{Kind: ast.StmtVariable, Data: ast.VariableData{
			Const: true,
			Declarators: []*ast.VariableDeclarator{{
				Name: "k", Type: tref("i32"), Init: intLit(1),
			}},
		}},
		&ast.Stmt{Kind: ast.StmtExpression, Data: ast.ExpressionData{
			Expr: bin(ast.BinaryAssign, ident("k"), intLit(2)),
		}},
	)
	_, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.LowerAssignToConstant {
			found = true
		}
	}
	if !found {
		t.Fatal("assignment to a constant must report")
	}
}

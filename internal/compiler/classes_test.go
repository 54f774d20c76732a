package compiler_test

import (
	"testing"

	"coral/internal/ast"
	"coral/internal/compiler"
	"coral/internal/wasm"
)

func counterClass() *ast.Stmt {
	incBody := blockStmt(&ast.Stmt{Kind: ast.StmtExpression, Data: ast.ExpressionData{
		Expr: bin(ast.BinaryAssign,
			&ast.Expr{Kind: ast.ExprPropertyAccess, Data: ast.PropertyAccessData{
				Object:   ident("this"),
				Property: "value",
			}},
			bin(ast.BinaryAdd,
				&ast.Expr{Kind: ast.ExprPropertyAccess, Data: ast.PropertyAccessData{
					Object:   ident("this"),
					Property: "value",
				}},
				intLit(1)),
		),
	}})
	return &ast.Stmt{Kind: ast.StmtClassDecl, Data: ast.ClassDeclData{
		Name: "Counter",
		Fields: []*ast.FieldDecl{
			{Name: "value", Type: tref("i32"), Init: intLit(0)},
		},
		Methods: []*ast.Stmt{
			{Kind: ast.StmtFunctionDecl, Data: ast.FunctionDeclData{
				Name: "inc",
				Body: incBody,
			}},
		},
	}}
}

func TestNewAllocatesAndInitializesFields(t *testing.T) {
	make_ := fnDecl("make", ast.DeclExport, nil, tref("Counter"),
		retStmt(&ast.Expr{Kind: ast.ExprNew, Data: ast.NewData{Class: tref("Counter")}}),
	)
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {counterClass(), make_}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}

	imported := false
	for _, imp := range module.FunctionImports {
		if imp.Name == "allocate_memory" && imp.Module == "env" {
			imported = true
		}
	}
	if !imported {
		t.Fatal("new must materialize the allocator import")
	}

	ret := unwrapSingle(functionBody(t, module, "make"))
	seq := ret.Value
	if seq.ID != wasm.BlockExpr {
		t.Fatal("new must lower to an allocation sequence")
	}
	alloc := seq.Children[0]
	if alloc.ID != wasm.SetLocalExpr || alloc.Value.ID != wasm.CallExpr || alloc.Value.Target != "allocate_memory" {
		t.Fatal("the sequence must start by calling the allocator")
	}
	sawStore := false
	for _, child := range seq.Children {
		if child.ID == wasm.StoreExpr {
			sawStore = true
		}
	}
	if !sawStore {
		t.Fatal("field initializers must store at their offsets")
	}
	last := seq.Children[len(seq.Children)-1]
	if last.ID != wasm.GetLocalExpr {
		t.Fatal("the sequence must yield the instance pointer")
	}
}

func TestInstanceMethodAndFieldAccess(t *testing.T) {
	bump := fnDecl("bump", ast.DeclExport,
		[]*ast.Parameter{paramOf("c", "Counter", nil)}, nil,
		&ast.Stmt{Kind: ast.StmtExpression, Data: ast.ExpressionData{
			Expr: callExpr(&ast.Expr{Kind: ast.ExprPropertyAccess, Data: ast.PropertyAccessData{
				Object:   ident("c"),
				Property: "inc",
			}}),
		}},
	)
	read := fnDecl("read", ast.DeclExport,
		[]*ast.Parameter{paramOf("c", "Counter", nil)}, tref("i32"),
		retStmt(&ast.Expr{Kind: ast.ExprPropertyAccess, Data: ast.PropertyAccessData{
			Object:   ident("c"),
			Property: "value",
		}}),
	)
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {counterClass(), bump, read}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}

	method, ok := module.GetFunction("Counter#inc")
	if !ok {
		t.Fatal("instance method not compiled on demand")
	}
	if len(method.FType.Params) != 1 {
		t.Fatalf("inc must take only the receiver, got %d params", len(method.FType.Params))
	}

	call := unwrapSingle(functionBody(t, module, "bump"))
	if call.ID != wasm.CallExpr || call.Target != "Counter#inc" {
		t.Fatalf("bump must call Counter#inc, got %q", call.Target)
	}
	if len(call.Operands) != 1 || call.Operands[0].ID != wasm.GetLocalExpr {
		t.Fatal("the receiver must be passed as the first operand")
	}

	load := unwrapSingle(functionBody(t, module, "read")).Value
	if load.ID != wasm.LoadExpr || load.Offset != 0 || load.Bytes != 4 {
		t.Fatal("field reads must lower to a load at the field offset")
	}
}

package compiler_test

import (
	"testing"

	"coral/internal/ast"
	"coral/internal/compiler"
	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/wasm"
)

// Fixture helpers: build resolved AST by hand, the way the frontend would
// hand it over.

func tref(name string, args ...*ast.TypeRef) *ast.TypeRef {
	return &ast.TypeRef{Name: name, Args: args}
}

func ident(name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIdentifier, Data: ast.IdentifierData{Name: name}}
}

func intLit(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, Data: ast.LiteralData{Kind: ast.LiteralInt, IntValue: v}}
}

func strLit(s string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, Data: ast.LiteralData{Kind: ast.LiteralString, StringValue: s}}
}

func bin(op ast.BinaryOp, left, right *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprBinary, Data: ast.BinaryData{Op: op, Left: left, Right: right}}
}

func callExpr(callee *ast.Expr, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprCall, Data: ast.CallData{Callee: callee, Args: args}}
}

func retStmt(value *ast.Expr) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtReturn, Data: ast.ReturnData{Value: value}}
}

func blockStmt(stmts ...*ast.Stmt) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtBlock, Data: ast.BlockData{Statements: stmts}}
}

func letStmt(name, typ string, init *ast.Expr) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtVariable, Data: ast.VariableData{
		Declarators: []*ast.VariableDeclarator{{Name: name, Type: tref(typ), Init: init}},
	}}
}

func paramOf(name, typ string, init *ast.Expr) *ast.Parameter {
	return &ast.Parameter{Name: name, Type: tref(typ), Init: init}
}

func fnDecl(name string, flags ast.DeclFlags, params []*ast.Parameter, ret *ast.TypeRef, body ...*ast.Stmt) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtFunctionDecl, Data: ast.FunctionDeclData{
		Name:       name,
		Flags:      flags,
		Params:     params,
		ReturnType: ret,
		Body:       blockStmt(body...),
	}}
}

func topConst(name, typ string, init *ast.Expr) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtVariable, Data: ast.VariableData{
		Declarators: []*ast.VariableDeclarator{{Name: name, Type: tref(typ), Init: init}},
		Const:       true,
		TopLevel:    true,
	}}
}

func compileFixture(t *testing.T, opts compiler.Options, sources map[string][]*ast.Stmt, entries ...string) (*wasm.Module, *program.Program, *diag.Bag) {
	t.Helper()
	prg := program.NewProgram(opts.Target)
	entrySet := make(map[string]bool, len(entries))
	for _, e := range entries {
		entrySet[e] = true
	}
	for path, stmts := range sources {
		src := prg.AddSource(path, entrySet[path] || len(entries) == 0, stmts)
		prg.Bind(src)
	}
	bag := diag.NewBag(100)
	c := compiler.New(prg, opts, bag)
	module, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return module, prg, bag
}

func functionBody(t *testing.T, module *wasm.Module, name string) *wasm.Expr {
	t.Helper()
	fn, ok := module.GetFunction(name)
	if !ok {
		t.Fatalf("function %q not emitted", name)
	}
	return fn.Body
}

// unwrapSingle drills through single-statement wrapper blocks.
func unwrapSingle(e *wasm.Expr) *wasm.Expr {
	for e != nil && e.ID == wasm.BlockExpr && e.Name == "" && len(e.Children) == 1 {
		e = e.Children[0]
	}
	return e
}

func TestExportedAddFunction(t *testing.T) {
	add := fnDecl("add", ast.DeclExport,
		[]*ast.Parameter{paramOf("a", "i32", nil), paramOf("b", "i32", nil)},
		tref("i32"),
		retStmt(bin(ast.BinaryAdd, ident("a"), ident("b"))),
	)
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {add}})

	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	fn, ok := module.GetFunction("add")
	if !ok {
		t.Fatal("add not emitted")
	}
	if got := len(fn.FType.Params); got != 2 {
		t.Fatalf("param count = %d, want 2", got)
	}
	if fn.FType.Result != wasm.TypeI32 {
		t.Fatalf("result = %s, want i32", fn.FType.Result)
	}

	ret := unwrapSingle(fn.Body)
	if ret.ID != wasm.ReturnExpr {
		t.Fatalf("body is %d, want return", ret.ID)
	}
	sum := ret.Value
	if sum.ID != wasm.BinaryExpr || sum.BinOp != wasm.AddI32 {
		t.Fatalf("return value is not i32.add")
	}
	if sum.Left.ID != wasm.GetLocalExpr || sum.Left.Index != 0 {
		t.Fatal("left operand is not local.get 0")
	}
	if sum.Right.ID != wasm.GetLocalExpr || sum.Right.Index != 1 {
		t.Fatal("right operand is not local.get 1")
	}

	exported := false
	for _, ex := range module.FunctionExports {
		if ex.External == "add" && ex.Internal == "add" {
			exported = true
		}
	}
	if !exported {
		t.Fatal("add is not exported")
	}
}

func TestConstI8GlobalInlinesSignExtended(t *testing.T) {
	k := topConst("K", "i8", intLit(200))
	f := fnDecl("f", ast.DeclExport, nil, tref("i32"), retStmt(ident("K")))
	module, prg, _ := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {k, f}})

	g := prg.Elements["K"].(*program.Global)
	cv, inlined := g.Constant()
	if !inlined {
		t.Fatal("K is not inlined")
	}
	if cv.I != -56 {
		t.Fatalf("K = %d, want -56 (sign-extended i8 of 200)", cv.I)
	}

	ret := unwrapSingle(functionBody(t, module, "f"))
	if ret.ID != wasm.ReturnExpr || ret.Value.ID != wasm.ConstExpr {
		t.Fatal("reading K did not lower to a literal constant")
	}
	if got := ret.Value.ConstI32(); got != -56 {
		t.Fatalf("inlined value = %d, want -56", got)
	}
	if def, ok := module.GetGlobalDef("K"); !ok || def.Mutable {
		t.Fatal("K should remain as an immutable IR global for re-export")
	}
}

func TestSmallIntegerReturnIsWrapped(t *testing.T) {
	f := fnDecl("f", ast.DeclExport, nil, tref("u8"),
		letStmt("x", "u8", intLit(250)),
		retStmt(bin(ast.BinaryAdd, ident("x"), intLit(10))),
	)
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}

	fn, _ := module.GetFunction("f")
	if fn.FType.Result != wasm.TypeI32 {
		t.Fatalf("u8 must project to i32, got %s", fn.FType.Result)
	}

	body := fn.Body
	var ret *wasm.Expr
	for _, child := range body.Children {
		if c := unwrapSingle(child); c.ID == wasm.ReturnExpr {
			ret = c
		}
	}
	if ret == nil {
		t.Fatal("no return found")
	}
	mask := ret.Value
	if mask.ID != wasm.BinaryExpr || mask.BinOp != wasm.AndI32 {
		t.Fatal("return value is not masked")
	}
	if mask.Right.ID != wasm.ConstExpr || mask.Right.ConstI32() != 0xff {
		t.Fatalf("mask = %d, want 0xff", mask.Right.ConstI32())
	}
	if mask.Left.ID != wasm.BinaryExpr || mask.Left.BinOp != wasm.AddI32 {
		t.Fatal("masked value is not the addition")
	}
}

func TestTrampolineForOptionalArguments(t *testing.T) {
	g := fnDecl("g", 0,
		[]*ast.Parameter{paramOf("a", "i32", nil), paramOf("b", "i32", intLit(5))},
		tref("i32"),
		retStmt(bin(ast.BinaryAdd, ident("a"), ident("b"))),
	)
	h := fnDecl("h", ast.DeclExport, nil, tref("i32"),
		retStmt(callExpr(ident("g"), intLit(1))),
	)
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {g, h}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}

	tramp, ok := module.GetFunction("g|trampoline")
	if !ok {
		t.Fatal("trampoline not emitted")
	}
	if got := len(tramp.FType.Params); got != 3 {
		t.Fatalf("trampoline params = %d, want 3", got)
	}
	if tramp.FType.Params[2] != wasm.TypeI32 {
		t.Fatal("trailing trampoline parameter must be i32")
	}

	ret := unwrapSingle(functionBody(t, module, "h"))
	if ret.ID != wasm.ReturnExpr {
		t.Fatal("h body is not a return")
	}
	call := ret.Value
	if call.ID != wasm.CallExpr || call.Target != "g|trampoline" {
		t.Fatalf("call target = %q, want g|trampoline", call.Target)
	}
	want := []int32{1, 0, 0}
	if len(call.Operands) != len(want) {
		t.Fatalf("operand count = %d, want %d", len(call.Operands), len(want))
	}
	for i, op := range call.Operands {
		if op.ID != wasm.ConstExpr || op.ConstI32() != want[i] {
			t.Fatalf("operand %d = %v, want %d", i, op, want[i])
		}
	}
}

func TestStringLiteralsShareOneSegment(t *testing.T) {
	s1 := fnDecl("s1", ast.DeclExport, nil, tref("usize"), retStmt(strLit("hello")))
	s2 := fnDecl("s2", ast.DeclExport, nil, tref("usize"), retStmt(strLit("hello")))
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{
		"a": {s1},
		"b": {s2},
	})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}

	if got := len(module.Memory.Segments); got != 1 {
		t.Fatalf("segment count = %d, want 1", got)
	}
	seg := module.Memory.Segments[0]
	if got := len(seg.Data); got != 4+2*5 {
		t.Fatalf("segment length = %d, want 14", got)
	}
	if seg.Data[0] != 5 || seg.Data[1] != 0 {
		t.Fatal("length prefix must be little-endian 5")
	}
	if seg.Data[4] != 'h' || seg.Data[6] != 'e' {
		t.Fatal("payload must be UTF-16LE code units")
	}

	off1 := unwrapSingle(functionBody(t, module, "s1")).Value.ConstI32()
	off2 := unwrapSingle(functionBody(t, module, "s2")).Value.ConstI32()
	if off1 != off2 {
		t.Fatalf("offsets differ: %d vs %d", off1, off2)
	}
	if uint32(off1) != seg.Offset {
		t.Fatalf("expression offset %d != segment offset %d", off1, seg.Offset)
	}
}

func TestInfiniteForLoopProvesReturns(t *testing.T) {
	f := fnDecl("f", ast.DeclExport, nil, tref("i32"),
		&ast.Stmt{Kind: ast.StmtFor, Data: ast.ForData{
			Body: blockStmt(retStmt(intLit(1))),
		}},
	)
	_, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})
	for _, d := range bag.Items() {
		if d.Code == diag.FlowNotAllPathsReturn {
			t.Fatalf("spurious not-all-paths-return diagnostic: %+v", d)
		}
	}
}

func TestWhileNeverPropagatesReturns(t *testing.T) {
	f := fnDecl("f", ast.DeclExport, nil, tref("i32"),
		&ast.Stmt{Kind: ast.StmtWhile, Data: ast.WhileData{
			Cond: intLit(1),
			Body: blockStmt(retStmt(intLit(1))),
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
		t.Fatal("while must not prove RETURNS even for constant conditions")
	}
}

func TestIfRequiresBothArmsToReturn(t *testing.T) {
	partial := fnDecl("partial", ast.DeclExport,
		[]*ast.Parameter{paramOf("x", "i32", nil)}, tref("i32"),
		&ast.Stmt{Kind: ast.StmtIf, Data: ast.IfData{
			Cond: ident("x"),
			Then: blockStmt(retStmt(intLit(1))),
		}},
	)
	_, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {partial}})
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.FlowNotAllPathsReturn {
			found = true
		}
	}
	if !found {
		t.Fatal("missing not-all-paths-return diagnostic")
	}

	full := fnDecl("full", ast.DeclExport,
		[]*ast.Parameter{paramOf("x", "i32", nil)}, tref("i32"),
		&ast.Stmt{Kind: ast.StmtIf, Data: ast.IfData{
			Cond: ident("x"),
			Then: blockStmt(retStmt(intLit(1))),
			Else: blockStmt(retStmt(intLit(0))),
		}},
	)
	_, _, bag2 := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {full}})
	if bag2.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag2.Items())
	}
}

func TestCompilingTwiceIsIdempotent(t *testing.T) {
	g := fnDecl("g", 0, nil, tref("i32"), retStmt(intLit(7)))
	a := fnDecl("a", ast.DeclExport, nil, tref("i32"), retStmt(callExpr(ident("g"))))
	b := fnDecl("b", ast.DeclExport, nil, tref("i32"), retStmt(callExpr(ident("g"))))
	module, _, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {g, a, b}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	count := 0
	for _, fn := range module.Functions {
		if fn.Name == "g" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("g emitted %d times, want once", count)
	}
}

func TestEnumValuesAssignInOrder(t *testing.T) {
	enum := &ast.Stmt{Kind: ast.StmtEnumDecl, Data: ast.EnumDeclData{
		Name:  "E",
		Flags: ast.DeclExport,
		Values: []*ast.EnumValueDecl{
			{Name: "A"},
			{Name: "B"},
			{Name: "C", Value: intLit(5)},
			{Name: "D"},
		},
	}}
	_, prg, bag := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {enum}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	e := prg.Elements["E"].(*program.Enum)
	want := []int64{0, 1, 5, 6}
	for i, v := range e.Values {
		cv, ok := v.Constant()
		if !ok {
			t.Fatalf("value %d not inlined", i)
		}
		if cv.I != want[i] {
			t.Fatalf("value %d = %d, want %d", i, cv.I, want[i])
		}
	}
}

func TestStartFunctionCollectsTopLevelStatements(t *testing.T) {
	g := topVarMutable("counter", "i32", intLit(0))
	tick := &ast.Stmt{Kind: ast.StmtExpression, Data: ast.ExpressionData{
		Expr: bin(ast.BinaryAssign, ident("counter"), intLit(42)),
	}}
	module, _, bag := compileFixture(t, withNoTreeShaking(), map[string][]*ast.Stmt{"main": {g, tick}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	if module.Start != compiler.StartName {
		t.Fatalf("start = %q, want %q", module.Start, compiler.StartName)
	}
	if _, ok := module.GetFunction(compiler.StartName); !ok {
		t.Fatal("start function not emitted")
	}
}

func TestHeapBaseIsAlignedPastSegments(t *testing.T) {
	f := fnDecl("f", ast.DeclExport, nil, tref("usize"), retStmt(strLit("abc")))
	module, _, _ := compileFixture(t, compiler.Defaults(), map[string][]*ast.Stmt{"main": {f}})

	hb, ok := module.GetGlobalDef(compiler.HeapBaseName)
	if !ok {
		t.Fatal("HEAP_BASE not emitted")
	}
	if hb.Mutable {
		t.Fatal("HEAP_BASE must be immutable")
	}
	offset := uint32(hb.Init.ConstI32())
	if offset%4 != 0 {
		t.Fatalf("HEAP_BASE %d is not pointer-aligned", offset)
	}
	for _, seg := range module.Memory.Segments {
		if end := seg.Offset + uint32(len(seg.Data)); end > offset {
			t.Fatalf("segment ends at %d past HEAP_BASE %d", end, offset)
		}
		if seg.Offset < 4 {
			t.Fatal("segment overlaps the reserved null slot")
		}
	}
	if module.Memory.ExportName != "memory" {
		t.Fatal("memory must be exported by default")
	}
}

func topVarMutable(name, typ string, init *ast.Expr) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtVariable, Data: ast.VariableData{
		Declarators: []*ast.VariableDeclarator{{Name: name, Type: tref(typ), Init: init}},
		TopLevel:    true,
	}}
}

func withNoTreeShaking() compiler.Options {
	opts := compiler.Defaults()
	opts.NoTreeShaking = true
	return opts
}

package program_test

import (
	"testing"

	"coral/internal/ast"
	"coral/internal/program"
	"coral/internal/types"
)

func classDecl(name string, typeParams []string, fields ...*ast.FieldDecl) *ast.Stmt {
	return &ast.Stmt{Kind: ast.StmtClassDecl, Data: ast.ClassDeclData{
		Name:       name,
		TypeParams: typeParams,
		Fields:     fields,
	}}
}

func field(name, typ string) *ast.FieldDecl {
	return &ast.FieldDecl{Name: name, Type: &ast.TypeRef{Name: typ}}
}

func TestClassFieldLayout(t *testing.T) {
	prg := program.NewProgram(types.WASM32)
	src := prg.AddSource("main", true, []*ast.Stmt{
		classDecl("Vec", nil, field("x", "u8"), field("y", "i32"), field("z", "u16")),
	})
	prg.Bind(src)

	proto := prg.Elements["Vec"].(*program.ClassPrototype)
	cls, ok := proto.Resolve(prg, nil)
	if !ok {
		t.Fatal("Vec does not resolve")
	}

	wantOffsets := map[string]uint32{"x": 0, "y": 4, "z": 8}
	for name, want := range wantOffsets {
		member, ok := cls.Member(name)
		if !ok {
			t.Fatalf("member %q missing", name)
		}
		f := member.(*program.Field)
		if f.MemoryOffset != want {
			t.Errorf("offset of %q = %d, want %d", name, f.MemoryOffset, want)
		}
	}
	if cls.MemorySize != 10 {
		t.Errorf("memory size = %d, want 10", cls.MemorySize)
	}
}

func TestGenericClassInstancesAreCached(t *testing.T) {
	prg := program.NewProgram(types.WASM32)
	src := prg.AddSource("main", true, []*ast.Stmt{
		classDecl("Box", []string{"T"}, field("value", "T")),
	})
	prg.Bind(src)

	proto := prg.Elements["Box"].(*program.ClassPrototype)
	if _, ok := proto.Resolve(prg, nil); ok {
		t.Fatal("a generic class must not resolve without type arguments")
	}
	first, ok := proto.Resolve(prg, []types.Type{types.I64})
	if !ok {
		t.Fatal("Box<i64> does not resolve")
	}
	second, ok := proto.Resolve(prg, []types.Type{types.I64})
	if !ok || first != second {
		t.Fatal("identical type arguments must return the cached instance")
	}
	other, ok := proto.Resolve(prg, []types.Type{types.F32})
	if !ok || other == first {
		t.Fatal("different type arguments must produce a distinct instance")
	}
	v, _ := first.Member("value")
	if v.(*program.Field).Type != types.I64 {
		t.Fatal("type argument did not substitute into the field")
	}
	if first.MemorySize != 8 || other.MemorySize != 4 {
		t.Fatalf("layouts = %d/%d, want 8/4", first.MemorySize, other.MemorySize)
	}
}

func TestGenericFunctionResolve(t *testing.T) {
	prg := program.NewProgram(types.WASM32)
	decl := &ast.Stmt{Kind: ast.StmtFunctionDecl, Data: ast.FunctionDeclData{
		Name:       "id",
		TypeParams: []string{"T"},
		Params:     []*ast.Parameter{{Name: "v", Type: &ast.TypeRef{Name: "T"}}},
		ReturnType: &ast.TypeRef{Name: "T"},
	}}
	src := prg.AddSource("main", true, []*ast.Stmt{decl})
	prg.Bind(src)

	proto := prg.Elements["id"].(*program.FunctionPrototype)
	inst, ok := proto.Resolve(prg, []types.Type{types.F64})
	if !ok {
		t.Fatal("id<f64> does not resolve")
	}
	if inst.Signature.ParamTypes[0] != types.F64 || inst.Signature.ReturnType != types.F64 {
		t.Fatal("type argument did not substitute into the signature")
	}
	if inst.InternalName() != "id<f64>" {
		t.Fatalf("internal name = %q", inst.InternalName())
	}
	again, _ := proto.Resolve(prg, []types.Type{types.F64})
	if again != inst {
		t.Fatal("instances must be cached by type-argument key")
	}
}

func TestResolveIdentifierPrecedence(t *testing.T) {
	prg := program.NewProgram(types.WASM32)
	src := prg.AddSource("main", true, []*ast.Stmt{
		{Kind: ast.StmtVariable, Data: ast.VariableData{
			TopLevel:    true,
			Declarators: []*ast.VariableDeclarator{{Name: "x", Type: &ast.TypeRef{Name: "i32"}}},
		}},
		{Kind: ast.StmtFunctionDecl, Data: ast.FunctionDeclData{
			Name:       "f",
			Params:     []*ast.Parameter{{Name: "x", Type: &ast.TypeRef{Name: "f64"}}},
			ReturnType: &ast.TypeRef{Name: "f64"},
		}},
	})
	prg.Bind(src)

	proto := prg.Elements["f"].(*program.FunctionPrototype)
	fn, _ := proto.Resolve(prg, nil)

	ref := &ast.Expr{Kind: ast.ExprIdentifier, Data: ast.IdentifierData{Name: "x"}}
	elem, ok := prg.ResolveIdentifier(ref, fn, nil)
	if !ok {
		t.Fatal("x does not resolve")
	}
	if _, isLocal := elem.(*program.Local); !isLocal {
		t.Fatal("the parameter must shadow the global")
	}
	elem, ok = prg.ResolveIdentifier(ref, nil, nil)
	if !ok {
		t.Fatal("x does not resolve globally")
	}
	if _, isGlobal := elem.(*program.Global); !isGlobal {
		t.Fatal("without a function the global wins")
	}
}

func TestResolvePropertyAccessOnEnum(t *testing.T) {
	prg := program.NewProgram(types.WASM32)
	src := prg.AddSource("main", true, []*ast.Stmt{
		{Kind: ast.StmtEnumDecl, Data: ast.EnumDeclData{
			Name:   "Color",
			Values: []*ast.EnumValueDecl{{Name: "Red"}, {Name: "Green"}},
		}},
	})
	prg.Bind(src)

	access := &ast.Expr{Kind: ast.ExprPropertyAccess, Data: ast.PropertyAccessData{
		Object:   &ast.Expr{Kind: ast.ExprIdentifier, Data: ast.IdentifierData{Name: "Color"}},
		Property: "Green",
	}}
	res, ok := prg.ResolvePropertyAccess(access, nil, nil)
	if !ok {
		t.Fatal("Color.Green does not resolve")
	}
	v, isValue := res.Element.(*program.EnumValue)
	if !isValue || v.SimpleName() != "Green" || v.Index != 1 {
		t.Fatalf("resolved %v", res.Element)
	}
}

func TestFlagsMutateThroughSharedCell(t *testing.T) {
	g := &program.Global{}
	if g.HasFlag(program.FlagCompiled) {
		t.Fatal("fresh element must not be compiled")
	}
	g.SetFlag(program.FlagCompiled)
	if !g.HasFlag(program.FlagCompiled) {
		t.Fatal("flag did not stick")
	}
	var elem program.Element = g
	elem.SetFlag(program.FlagInlined)
	if !g.HasFlag(program.FlagInlined) {
		t.Fatal("flags must be shared through the interface")
	}
}

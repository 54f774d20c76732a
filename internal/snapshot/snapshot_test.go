package snapshot_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"coral/internal/ast"
	"coral/internal/compiler"
	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/snapshot"
	"coral/internal/types"
)

func fixtureProgram() *program.Program {
	prg := program.NewProgram(types.WASM32)
	add := &ast.Stmt{Kind: ast.StmtFunctionDecl, Data: ast.FunctionDeclData{
		Name:  "add",
		Flags: ast.DeclExport,
		Params: []*ast.Parameter{
			{Name: "a", Type: &ast.TypeRef{Name: "i32"}},
			{Name: "b", Type: &ast.TypeRef{Name: "i32"}, Init: &ast.Expr{
				Kind: ast.ExprLiteral,
				Data: ast.LiteralData{Kind: ast.LiteralInt, IntValue: 5},
			}},
		},
		ReturnType: &ast.TypeRef{Name: "i32"},
		Body: &ast.Stmt{Kind: ast.StmtBlock, Data: ast.BlockData{Statements: []*ast.Stmt{
			{Kind: ast.StmtReturn, Data: ast.ReturnData{Value: &ast.Expr{
				Kind: ast.ExprBinary,
				Data: ast.BinaryData{
					Op:    ast.BinaryAdd,
					Left:  &ast.Expr{Kind: ast.ExprIdentifier, Data: ast.IdentifierData{Name: "a"}},
					Right: &ast.Expr{Kind: ast.ExprIdentifier, Data: ast.IdentifierData{Name: "b"}},
				},
			}}},
		}}},
	}}
	src := prg.AddSource("main.cor", true, []*ast.Stmt{add})
	prg.Bind(src)
	return prg
}

func TestRoundTrip(t *testing.T) {
	prg := fixtureProgram()
	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, prg); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := snapshot.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(decoded.Sources) != 1 {
		t.Fatalf("source count = %d, want 1", len(decoded.Sources))
	}
	if diff := cmp.Diff(prg.Sources[0].Statements, decoded.Sources[0].Statements); diff != "" {
		t.Fatalf("statements differ (-want +got):\n%s", diff)
	}
	if _, ok := decoded.Elements["add"]; !ok {
		t.Fatal("decoded program did not rebind elements")
	}
}

func TestDecodedProgramCompiles(t *testing.T) {
	data, err := snapshot.EncodeToBytes(fixtureProgram())
	if err != nil {
		t.Fatalf("EncodeToBytes: %v", err)
	}
	decoded, err := snapshot.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	bag := diag.NewBag(16)
	module, err := compiler.New(decoded, compiler.Defaults(), bag).Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	if _, ok := module.GetFunction("add"); !ok {
		t.Fatal("decoded program did not compile to a module with add")
	}
}

func TestCorruptSnapshotIsRejected(t *testing.T) {
	data, err := snapshot.EncodeToBytes(fixtureProgram())
	if err != nil {
		t.Fatalf("EncodeToBytes: %v", err)
	}
	data[len(data)/2] ^= 0xff
	if _, err := snapshot.Decode(bytes.NewReader(data)); err == nil {
		t.Fatal("corrupt snapshot must not decode")
	}
}

package program

import (
	"coral/internal/ast"
	"coral/internal/types"
)

// Global is a module-level variable.
type Global struct {
	ElementBase
	Type  types.Type // Void until annotated or inferred
	Decl  *ast.VariableDeclarator
	Const ConstVal
}

func (g *Global) Kind() ElemKind { return ElemGlobal }

func (g *Global) ValueType() types.Type { return g.Type }

func (g *Global) Constant() (ConstVal, bool) {
	return g.Const, g.HasFlag(FlagInlined)
}

// SetConstant caches the literal value and marks the global inlined.
func (g *Global) SetConstant(v ConstVal) {
	g.Const = v
	g.SetFlag(FlagInlined)
}

// Local is a slot in a function. Index is >= 0 for real slots; virtual
// locals (const-folded, no slot) use -1 and carry their value in Const.
type Local struct {
	ElementBase
	Index int
	Type  types.Type
	Const ConstVal
}

func (l *Local) Kind() ElemKind { return ElemLocal }

func (l *Local) ValueType() types.Type { return l.Type }

func (l *Local) Constant() (ConstVal, bool) {
	return l.Const, l.Index < 0
}

// Virtual reports whether the local has no slot and inlines its value.
func (l *Local) Virtual() bool { return l.Index < 0 }

// Field is an instance field with a fixed byte offset inside the class
// layout.
type Field struct {
	ElementBase
	Type         types.Type
	MemoryOffset uint32
	Class        *Class
	Decl         *ast.FieldDecl
}

func (f *Field) Kind() ElemKind { return ElemField }

func (f *Field) ValueType() types.Type { return f.Type }

func (f *Field) Constant() (ConstVal, bool) { return ConstVal{}, false }

// Property is an accessor pair; either prototype may be nil.
type Property struct {
	ElementBase
	Getter *FunctionPrototype
	Setter *FunctionPrototype
	Class  *Class
}

func (p *Property) Kind() ElemKind { return ElemProperty }

// FunctionTarget wraps a first-class function value: an element whose type
// carries the signature of the function it indexes.
type FunctionTarget struct {
	ElementBase
	Type types.Type // function reference type
}

func (t *FunctionTarget) Kind() ElemKind { return ElemFunctionTarget }

func (t *FunctionTarget) ValueType() types.Type { return t.Type }

func (t *FunctionTarget) Constant() (ConstVal, bool) { return ConstVal{}, false }

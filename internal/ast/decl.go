package ast

import (
	"coral/internal/source"
)

// DeclFlags carries the syntactic modifiers of a declaration.
type DeclFlags uint16

const (
	DeclExport DeclFlags = 1 << iota
	DeclDeclare
	DeclConst
	DeclReadonly
	DeclStatic
	DeclBuiltin
	DeclGet
	DeclSet
)

func (f DeclFlags) Has(flag DeclFlags) bool { return f&flag != 0 }

// Parameter is one formal parameter of a function or constructor.
type Parameter struct {
	Name string
	Type *TypeRef
	Init *Expr // default value, marks the parameter optional
	Rest bool
	Span source.Span
}

// FunctionDeclData holds data for StmtFunctionDecl. Also used for methods.
type FunctionDeclData struct {
	Name         string
	InternalName string
	Flags        DeclFlags
	TypeParams   []string
	Params       []*Parameter
	ReturnType   *TypeRef
	Body         *Stmt // nil for declared (imported) functions
}

func (FunctionDeclData) stmtData() {}

// FieldDecl is an instance field of a class.
type FieldDecl struct {
	Name  string
	Flags DeclFlags
	Type  *TypeRef
	Init  *Expr
	Span  source.Span
}

// ClassDeclData holds data for StmtClassDecl.
type ClassDeclData struct {
	Name         string
	InternalName string
	Flags        DeclFlags
	TypeParams   []string
	Extends      *TypeRef
	Fields       []*FieldDecl
	Methods      []*Stmt // StmtFunctionDecl nodes
	Constructor  *Stmt   // StmtFunctionDecl node or nil
}

func (ClassDeclData) stmtData() {}

// EnumValueDecl is one member of an enum declaration.
type EnumValueDecl struct {
	Name         string
	InternalName string
	Value        *Expr // nil: previous + 1
	Span         source.Span
}

// EnumDeclData holds data for StmtEnumDecl.
type EnumDeclData struct {
	Name         string
	InternalName string
	Flags        DeclFlags
	Values       []*EnumValueDecl
}

func (EnumDeclData) stmtData() {}

// NamespaceDeclData holds data for StmtNamespaceDecl.
type NamespaceDeclData struct {
	Name         string
	InternalName string
	Flags        DeclFlags
	Members      []*Stmt
}

func (NamespaceDeclData) stmtData() {}

// ImportData holds data for StmtImport: compile the target source before
// continuing.
type ImportData struct {
	Path string // normalized path of the imported source
}

func (ImportData) stmtData() {}

// ExportMember selects one re-exported name.
type ExportMember struct {
	LocalName    string
	ExternalName string
	Span         source.Span
}

// ExportData holds data for StmtExport re-export statements; exported
// declarations carry DeclExport on their own payloads instead.
type ExportData struct {
	Members []ExportMember
	Path    string // "" when re-exporting from the same source
}

func (ExportData) stmtData() {}

// TryCatchData holds data for StmtTryCatch, which the core refuses.
type TryCatchData struct {
	Body *Stmt
}

func (TryCatchData) stmtData() {}

// InterfaceDeclData holds data for StmtInterfaceDecl, which the core
// refuses.
type InterfaceDeclData struct {
	Name string
}

func (InterfaceDeclData) stmtData() {}

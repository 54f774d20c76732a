package ast

import (
	"coral/internal/source"
)

// StmtKind enumerates statement kinds, declarations included: top-level
// statements of a source are the same node type as body statements.
type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtBlock
	StmtIf
	StmtWhile
	StmtDo
	StmtFor
	StmtSwitch
	StmtReturn
	StmtThrow
	StmtBreak
	StmtContinue
	StmtVariable
	StmtExpression
	StmtEmpty

	// Declarations.
	StmtFunctionDecl
	StmtClassDecl
	StmtEnumDecl
	StmtNamespaceDecl
	StmtImport
	StmtExport

	// Refused constructs, kept so the core can report them.
	StmtTryCatch
	StmtInterfaceDecl
)

func (k StmtKind) String() string {
	switch k {
	case StmtBlock:
		return "Block"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtDo:
		return "Do"
	case StmtFor:
		return "For"
	case StmtSwitch:
		return "Switch"
	case StmtReturn:
		return "Return"
	case StmtThrow:
		return "Throw"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	case StmtVariable:
		return "Variable"
	case StmtExpression:
		return "Expression"
	case StmtEmpty:
		return "Empty"
	case StmtFunctionDecl:
		return "FunctionDecl"
	case StmtClassDecl:
		return "ClassDecl"
	case StmtEnumDecl:
		return "EnumDecl"
	case StmtNamespaceDecl:
		return "NamespaceDecl"
	case StmtImport:
		return "Import"
	case StmtExport:
		return "Export"
	case StmtTryCatch:
		return "TryCatch"
	case StmtInterfaceDecl:
		return "InterfaceDecl"
	default:
		return "Unknown"
	}
}

// Stmt is a statement node.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the kind-specific payload.
type StmtData interface {
	stmtData()
}

// IsDeclaration reports whether the statement declares a module item; all
// other top-level statements feed the start function.
func (s *Stmt) IsDeclaration() bool {
	switch s.Kind {
	case StmtFunctionDecl, StmtClassDecl, StmtEnumDecl, StmtNamespaceDecl,
		StmtImport, StmtExport, StmtInterfaceDecl:
		return true
	case StmtVariable:
		return s.Data.(VariableData).TopLevel
	default:
		return false
	}
}

// BlockData holds data for StmtBlock.
type BlockData struct {
	Statements []*Stmt
}

func (BlockData) stmtData() {}

// IfData holds data for StmtIf.
type IfData struct {
	Cond *Expr
	Then *Stmt
	Else *Stmt // nil when absent
}

func (IfData) stmtData() {}

// WhileData holds data for StmtWhile.
type WhileData struct {
	Cond *Expr
	Body *Stmt
}

func (WhileData) stmtData() {}

// DoData holds data for StmtDo.
type DoData struct {
	Body *Stmt
	Cond *Expr
}

func (DoData) stmtData() {}

// ForData holds data for StmtFor. Init, Cond and Update may each be nil.
type ForData struct {
	Init   *Stmt
	Cond   *Expr
	Update *Expr
	Body   *Stmt
}

func (ForData) stmtData() {}

// SwitchCase is one arm of a switch; a nil Label marks the default case.
type SwitchCase struct {
	Label      *Expr
	Statements []*Stmt
	Span       source.Span
}

// SwitchData holds data for StmtSwitch.
type SwitchData struct {
	Cond  *Expr
	Cases []SwitchCase
}

func (SwitchData) stmtData() {}

// ReturnData holds data for StmtReturn.
type ReturnData struct {
	Value *Expr // nil for a bare return
}

func (ReturnData) stmtData() {}

// ThrowData holds data for StmtThrow.
type ThrowData struct {
	Value *Expr
}

func (ThrowData) stmtData() {}

// BreakData holds data for StmtBreak.
type BreakData struct {
	Label string // labeled break is refused with a diagnostic
}

func (BreakData) stmtData() {}

// ContinueData holds data for StmtContinue.
type ContinueData struct {
	Label string
}

func (ContinueData) stmtData() {}

// VariableDeclarator is one name within a variable statement.
type VariableDeclarator struct {
	Name         string
	InternalName string // set for top-level declarations
	Type         *TypeRef
	Init         *Expr
	Span         source.Span
}

// VariableData holds data for StmtVariable.
type VariableData struct {
	Declarators []*VariableDeclarator
	Const       bool
	TopLevel    bool
	Flags       DeclFlags
}

func (VariableData) stmtData() {}

// ExpressionData holds data for StmtExpression.
type ExpressionData struct {
	Expr *Expr
}

func (ExpressionData) stmtData() {}

// EmptyData holds data for StmtEmpty.
type EmptyData struct{}

func (EmptyData) stmtData() {}

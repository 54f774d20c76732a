package program

import (
	"coral/internal/types"
)

// ElemKind tags an element variant.
type ElemKind uint8

const (
	ElemInvalid ElemKind = iota
	ElemGlobal
	ElemLocal
	ElemField
	ElemProperty
	ElemEnum
	ElemEnumValue
	ElemFunctionPrototype
	ElemFunction
	ElemFunctionTarget
	ElemClassPrototype
	ElemClass
	ElemNamespace
)

func (k ElemKind) String() string {
	switch k {
	case ElemGlobal:
		return "Global"
	case ElemLocal:
		return "Local"
	case ElemField:
		return "Field"
	case ElemProperty:
		return "Property"
	case ElemEnum:
		return "Enum"
	case ElemEnumValue:
		return "EnumValue"
	case ElemFunctionPrototype:
		return "FunctionPrototype"
	case ElemFunction:
		return "Function"
	case ElemFunctionTarget:
		return "FunctionTarget"
	case ElemClassPrototype:
		return "ClassPrototype"
	case ElemClass:
		return "Class"
	case ElemNamespace:
		return "Namespace"
	default:
		return "Invalid"
	}
}

// Flags is the element state bitset. Compilation-state flags are the only
// ones the compiler mutates.
type Flags uint16

const (
	// FlagCompiled is set the first time an element enters compilation;
	// a second entry short-circuits.
	FlagCompiled Flags = 1 << iota
	// FlagInlined marks a variable-like whose reads lower to its cached
	// literal value.
	FlagInlined
	FlagConstant
	FlagExported
	FlagImported
	FlagDeclared
	FlagReadonly
	FlagBuiltin
	FlagStatic
	FlagInstance
	FlagGeneric
	FlagStart
)

// Element is the common surface of every variant; dispatch happens by
// matching Kind at use sites.
type Element interface {
	Kind() ElemKind
	SimpleName() string
	InternalName() string
	HasFlag(Flags) bool
	SetFlag(Flags)
}

// ElementBase carries the shared identity and the mutable flag cell.
type ElementBase struct {
	Name     string
	Internal string
	Flags    Flags
}

func (b *ElementBase) SimpleName() string   { return b.Name }
func (b *ElementBase) InternalName() string { return b.Internal }
func (b *ElementBase) HasFlag(f Flags) bool { return b.Flags&f != 0 }
func (b *ElementBase) SetFlag(f Flags)      { b.Flags |= f }

// ConstKind tags the cached literal value of an inlined variable-like.
type ConstKind uint8

const (
	ConstNone ConstKind = iota
	ConstInteger
	ConstFloat
)

// ConstVal is a cached literal value.
type ConstVal struct {
	Kind ConstKind
	I    int64
	F    float64
}

// VariableLike is the common projection of elements that carry a type and
// possibly a cached constant: Global, Local, Field, EnumValue.
type VariableLike interface {
	Element
	ValueType() types.Type
	Constant() (ConstVal, bool)
}

package program

import (
	"coral/internal/ast"
	"coral/internal/types"
)

// Enum is a declared enumeration; values are assigned in declaration order
// and later values may depend on earlier ones.
type Enum struct {
	ElementBase
	Decl   *ast.EnumDeclData
	Values []*EnumValue
}

func (e *Enum) Kind() ElemKind { return ElemEnum }

// ValueByName returns the member with the given simple name.
func (e *Enum) ValueByName(name string) (*EnumValue, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// EnumValue is one enum member, always typed i32. A constant value is
// cached on first compilation; members that do not fold become
// runtime-initialized globals.
type EnumValue struct {
	ElementBase
	Enum  *Enum
	Decl  *ast.EnumValueDecl
	Index int
	Const ConstVal
}

func (v *EnumValue) Kind() ElemKind { return ElemEnumValue }

func (v *EnumValue) ValueType() types.Type { return types.I32 }

func (v *EnumValue) Constant() (ConstVal, bool) {
	return v.Const, v.HasFlag(FlagInlined)
}

// SetConstant caches the member's folded value.
func (v *EnumValue) SetConstant(value int64) {
	v.Const = ConstVal{Kind: ConstInteger, I: value}
	v.SetFlag(FlagInlined)
}

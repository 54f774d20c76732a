package types

import "fmt"

// Kind enumerates the concrete value types of the source language.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindIsize
	KindU8
	KindU16
	KindU32
	KindU64
	KindUsize
	KindF32
	KindF64
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindIsize:
		return "isize"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindUsize:
		return "usize"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ClassID indexes a class inside the Registry arena. Signatures and types
// reference classes by ID only, never by owning handle.
type ClassID uint32

// NoClassID marks the absence of a class payload.
const NoClassID ClassID = 0

// SignatureID indexes a function signature inside the Registry arena.
type SignatureID uint32

// NoSignatureID marks the absence of a signature payload.
const NoSignatureID SignatureID = 0

// Type is a compact value descriptor. Reference types are pointer-width
// integers carrying a ClassID; function references carry a SignatureID.
type Type struct {
	Kind      Kind
	Class     ClassID
	Signature SignatureID
}

// Void is the unit of expression statements and function returns.
var Void = Type{Kind: KindVoid}

// Bool is a small integer projected to i32 with a 0x1 wrap mask.
var Bool = Type{Kind: KindBool}

var (
	I8    = Type{Kind: KindI8}
	I16   = Type{Kind: KindI16}
	I32   = Type{Kind: KindI32}
	I64   = Type{Kind: KindI64}
	Isize = Type{Kind: KindIsize}
	U8    = Type{Kind: KindU8}
	U16   = Type{Kind: KindU16}
	U32   = Type{Kind: KindU32}
	U64   = Type{Kind: KindU64}
	Usize = Type{Kind: KindUsize}
	F32   = Type{Kind: KindF32}
	F64   = Type{Kind: KindF64}
)

// MakeClass describes a reference to a class instance: pointer-width with a
// class payload.
func MakeClass(id ClassID) Type {
	return Type{Kind: KindUsize, Class: id}
}

// MakeFunction describes a first-class function reference: an i32 table
// index carrying the target signature.
func MakeFunction(id SignatureID) Type {
	return Type{Kind: KindI32, Signature: id}
}

// Size returns the width of the type in bits on the given target.
func (t Type) Size(target Target) uint32 {
	switch t.Kind {
	case KindVoid:
		return 0
	case KindBool:
		return 1
	case KindI8, KindU8:
		return 8
	case KindI16, KindU16:
		return 16
	case KindI32, KindU32, KindF32:
		return 32
	case KindI64, KindU64, KindF64:
		return 64
	case KindIsize, KindUsize:
		return target.PointerBits()
	default:
		return 0
	}
}

// ByteSize returns the width in bytes, used for loads and stores.
func (t Type) ByteSize(target Target) uint32 {
	if t.Kind == KindBool {
		return 1
	}
	return t.Size(target) / 8
}

// Signed reports whether the type is a signed integer.
func (t Type) Signed() bool {
	switch t.Kind {
	case KindI8, KindI16, KindI32, KindI64, KindIsize:
		return true
	default:
		return false
	}
}

// Float reports whether the type is f32 or f64.
func (t Type) Float() bool {
	return t.Kind == KindF32 || t.Kind == KindF64
}

// Integer reports whether the type is any integer, bool included.
func (t Type) Integer() bool {
	switch t.Kind {
	case KindBool, KindI8, KindI16, KindI32, KindI64, KindIsize,
		KindU8, KindU16, KindU32, KindU64, KindUsize:
		return true
	default:
		return false
	}
}

// Small reports whether the type is a sub-word integer that requires a wrap
// after dirtying arithmetic: i8, i16, u8, u16, bool.
func (t Type) Small() bool {
	switch t.Kind {
	case KindBool, KindI8, KindI16, KindU8, KindU16:
		return true
	default:
		return false
	}
}

// Long reports whether the type occupies 64 bits on the given target.
func (t Type) Long(target Target) bool {
	switch t.Kind {
	case KindI64, KindU64:
		return true
	case KindIsize, KindUsize:
		return target.Is64()
	default:
		return false
	}
}

// Reference reports whether the type is a class reference.
func (t Type) Reference() bool {
	return t.Class != NoClassID
}

// FunctionRef reports whether the type carries a function signature.
func (t Type) FunctionRef() bool {
	return t.Signature != NoSignatureID
}

func (t Type) String() string {
	if t.Class != NoClassID {
		return fmt.Sprintf("%s<class %d>", t.Kind, t.Class)
	}
	if t.Signature != NoSignatureID {
		return fmt.Sprintf("%s<fn %d>", t.Kind, t.Signature)
	}
	return t.Kind.String()
}

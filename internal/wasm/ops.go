package wasm

// Type is a wasm value type.
type Type uint8

const (
	TypeNone Type = iota
	TypeI32
	TypeI64
	TypeF32
	TypeF64
	TypeUnreachable
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeI32:
		return "i32"
	case TypeI64:
		return "i64"
	case TypeF32:
		return "f32"
	case TypeF64:
		return "f64"
	case TypeUnreachable:
		return "unreachable"
	default:
		return "?"
	}
}

// UnaryOp enumerates unary and conversion opcodes.
type UnaryOp uint8

const (
	InvalidUnary UnaryOp = iota

	EqzI32
	EqzI64
	ClzI32
	CtzI32
	PopcntI32
	ClzI64
	CtzI64
	PopcntI64

	NegF32
	AbsF32
	CeilF32
	FloorF32
	TruncF32
	NearestF32
	SqrtF32
	NegF64
	AbsF64
	CeilF64
	FloorF64
	TruncF64
	NearestF64
	SqrtF64

	WrapI64      // i64 -> i32
	ExtendSI32   // i32 -> i64 signed
	ExtendUI32   // i32 -> i64 unsigned
	TruncSF32ToI32
	TruncUF32ToI32
	TruncSF64ToI32
	TruncUF64ToI32
	TruncSF32ToI64
	TruncUF32ToI64
	TruncSF64ToI64
	TruncUF64ToI64
	ConvertSI32ToF32
	ConvertUI32ToF32
	ConvertSI64ToF32
	ConvertUI64ToF32
	ConvertSI32ToF64
	ConvertUI32ToF64
	ConvertSI64ToF64
	ConvertUI64ToF64
	PromoteF32 // f32 -> f64
	DemoteF64  // f64 -> f32
	ReinterpretF32
	ReinterpretF64
	ReinterpretI32
	ReinterpretI64
)

// BinaryOp enumerates binary opcodes per value-type family.
type BinaryOp uint8

const (
	InvalidBinary BinaryOp = iota

	AddI32
	SubI32
	MulI32
	DivSI32
	DivUI32
	RemSI32
	RemUI32
	AndI32
	OrI32
	XorI32
	ShlI32
	ShrSI32
	ShrUI32
	RotlI32
	RotrI32
	EqI32
	NeI32
	LtSI32
	LtUI32
	LeSI32
	LeUI32
	GtSI32
	GtUI32
	GeSI32
	GeUI32

	AddI64
	SubI64
	MulI64
	DivSI64
	DivUI64
	RemSI64
	RemUI64
	AndI64
	OrI64
	XorI64
	ShlI64
	ShrSI64
	ShrUI64
	RotlI64
	RotrI64
	EqI64
	NeI64
	LtSI64
	LtUI64
	LeSI64
	LeUI64
	GtSI64
	GtUI64
	GeSI64
	GeUI64

	AddF32
	SubF32
	MulF32
	DivF32
	MinF32
	MaxF32
	CopySignF32
	EqF32
	NeF32
	LtF32
	LeF32
	GtF32
	GeF32

	AddF64
	SubF64
	MulF64
	DivF64
	MinF64
	MaxF64
	CopySignF64
	EqF64
	NeF64
	LtF64
	LeF64
	GtF64
	GeF64
)

package wasm

var unaryNames = map[UnaryOp]string{
	EqzI32:           "i32.eqz",
	EqzI64:           "i64.eqz",
	ClzI32:           "i32.clz",
	CtzI32:           "i32.ctz",
	PopcntI32:        "i32.popcnt",
	ClzI64:           "i64.clz",
	CtzI64:           "i64.ctz",
	PopcntI64:        "i64.popcnt",
	NegF32:           "f32.neg",
	AbsF32:           "f32.abs",
	CeilF32:          "f32.ceil",
	FloorF32:         "f32.floor",
	TruncF32:         "f32.trunc",
	NearestF32:       "f32.nearest",
	SqrtF32:          "f32.sqrt",
	NegF64:           "f64.neg",
	AbsF64:           "f64.abs",
	CeilF64:          "f64.ceil",
	FloorF64:         "f64.floor",
	TruncF64:         "f64.trunc",
	NearestF64:       "f64.nearest",
	SqrtF64:          "f64.sqrt",
	WrapI64:          "i32.wrap_i64",
	ExtendSI32:       "i64.extend_i32_s",
	ExtendUI32:       "i64.extend_i32_u",
	TruncSF32ToI32:   "i32.trunc_f32_s",
	TruncUF32ToI32:   "i32.trunc_f32_u",
	TruncSF64ToI32:   "i32.trunc_f64_s",
	TruncUF64ToI32:   "i32.trunc_f64_u",
	TruncSF32ToI64:   "i64.trunc_f32_s",
	TruncUF32ToI64:   "i64.trunc_f32_u",
	TruncSF64ToI64:   "i64.trunc_f64_s",
	TruncUF64ToI64:   "i64.trunc_f64_u",
	ConvertSI32ToF32: "f32.convert_i32_s",
	ConvertUI32ToF32: "f32.convert_i32_u",
	ConvertSI64ToF32: "f32.convert_i64_s",
	ConvertUI64ToF32: "f32.convert_i64_u",
	ConvertSI32ToF64: "f64.convert_i32_s",
	ConvertUI32ToF64: "f64.convert_i32_u",
	ConvertSI64ToF64: "f64.convert_i64_s",
	ConvertUI64ToF64: "f64.convert_i64_u",
	PromoteF32:       "f64.promote_f32",
	DemoteF64:        "f32.demote_f64",
	ReinterpretF32:   "i32.reinterpret_f32",
	ReinterpretF64:   "i64.reinterpret_f64",
	ReinterpretI32:   "f32.reinterpret_i32",
	ReinterpretI64:   "f64.reinterpret_i64",
}

var binaryNames = map[BinaryOp]string{
	AddI32: "i32.add", SubI32: "i32.sub", MulI32: "i32.mul",
	DivSI32: "i32.div_s", DivUI32: "i32.div_u",
	RemSI32: "i32.rem_s", RemUI32: "i32.rem_u",
	AndI32: "i32.and", OrI32: "i32.or", XorI32: "i32.xor",
	ShlI32: "i32.shl", ShrSI32: "i32.shr_s", ShrUI32: "i32.shr_u",
	RotlI32: "i32.rotl", RotrI32: "i32.rotr",
	EqI32: "i32.eq", NeI32: "i32.ne",
	LtSI32: "i32.lt_s", LtUI32: "i32.lt_u", LeSI32: "i32.le_s", LeUI32: "i32.le_u",
	GtSI32: "i32.gt_s", GtUI32: "i32.gt_u", GeSI32: "i32.ge_s", GeUI32: "i32.ge_u",

	AddI64: "i64.add", SubI64: "i64.sub", MulI64: "i64.mul",
	DivSI64: "i64.div_s", DivUI64: "i64.div_u",
	RemSI64: "i64.rem_s", RemUI64: "i64.rem_u",
	AndI64: "i64.and", OrI64: "i64.or", XorI64: "i64.xor",
	ShlI64: "i64.shl", ShrSI64: "i64.shr_s", ShrUI64: "i64.shr_u",
	RotlI64: "i64.rotl", RotrI64: "i64.rotr",
	EqI64: "i64.eq", NeI64: "i64.ne",
	LtSI64: "i64.lt_s", LtUI64: "i64.lt_u", LeSI64: "i64.le_s", LeUI64: "i64.le_u",
	GtSI64: "i64.gt_s", GtUI64: "i64.gt_u", GeSI64: "i64.ge_s", GeUI64: "i64.ge_u",

	AddF32: "f32.add", SubF32: "f32.sub", MulF32: "f32.mul", DivF32: "f32.div",
	MinF32: "f32.min", MaxF32: "f32.max", CopySignF32: "f32.copysign",
	EqF32: "f32.eq", NeF32: "f32.ne",
	LtF32: "f32.lt", LeF32: "f32.le", GtF32: "f32.gt", GeF32: "f32.ge",

	AddF64: "f64.add", SubF64: "f64.sub", MulF64: "f64.mul", DivF64: "f64.div",
	MinF64: "f64.min", MaxF64: "f64.max", CopySignF64: "f64.copysign",
	EqF64: "f64.eq", NeF64: "f64.ne",
	LtF64: "f64.lt", LeF64: "f64.le", GtF64: "f64.gt", GeF64: "f64.ge",
}

func unaryName(op UnaryOp) string {
	if n, ok := unaryNames[op]; ok {
		return n
	}
	return "unary?"
}

func binaryName(op BinaryOp) string {
	if n, ok := binaryNames[op]; ok {
		return n
	}
	return "binary?"
}

package wasm

// Create* constructors live on Module to mirror the usual builder API; the
// module does not retain free-standing expressions, ownership stays with
// the caller until a function is added.

// CreateBlock builds a labeled block. Type is the type of the final child
// (or none).
func (m *Module) CreateBlock(label string, children []*Expr, ty Type) *Expr {
	return &Expr{ID: BlockExpr, Type: ty, Name: label, Children: children}
}

// CreateLoop builds a labeled loop around body.
func (m *Module) CreateLoop(label string, body *Expr) *Expr {
	return &Expr{ID: LoopExpr, Type: TypeNone, Name: label, Children: []*Expr{body}}
}

// CreateIf builds an if/else. The static type is the common type of the
// arms when both are present and agree, none otherwise.
func (m *Module) CreateIf(cond, ifTrue, ifFalse *Expr) *Expr {
	ty := TypeNone
	if ifFalse != nil && ifTrue != nil && ifTrue.Type == ifFalse.Type {
		ty = ifTrue.Type
	}
	return &Expr{ID: IfExpr, Type: ty, Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}
}

// CreateBreak builds a br / br_if to a label, optionally carrying a value.
func (m *Module) CreateBreak(label string, cond, value *Expr) *Expr {
	return &Expr{ID: BreakExpr, Type: TypeNone, Name: label, Cond: cond, Value: value}
}

// CreateSwitch builds a br_table over the case labels with a default.
func (m *Module) CreateSwitch(names []string, defaultName string, cond, value *Expr) *Expr {
	return &Expr{ID: SwitchExpr, Type: TypeNone, Names: names, Name: defaultName, Cond: cond, Value: value}
}

// CreateCall builds a direct call.
func (m *Module) CreateCall(target string, operands []*Expr, returnType Type) *Expr {
	return &Expr{ID: CallExpr, Type: returnType, Target: target, Operands: operands}
}

// CreateCallIndirect builds a call through the function table. index must
// yield i32; sigName names the registered function type.
func (m *Module) CreateCallIndirect(index *Expr, operands []*Expr, sigName string, returnType Type) *Expr {
	return &Expr{ID: CallIndirectExpr, Type: returnType, Value: index, Operands: operands, SigName: sigName}
}

// CreateGetLocal reads a local slot.
func (m *Module) CreateGetLocal(index uint32, ty Type) *Expr {
	return &Expr{ID: GetLocalExpr, Type: ty, Index: index}
}

// CreateSetLocal writes a local slot, yielding nothing.
func (m *Module) CreateSetLocal(index uint32, value *Expr) *Expr {
	return &Expr{ID: SetLocalExpr, Type: TypeNone, Index: index, Value: value}
}

// CreateTeeLocal writes a local slot and yields the stored value.
func (m *Module) CreateTeeLocal(index uint32, value *Expr, ty Type) *Expr {
	return &Expr{ID: SetLocalExpr, Type: ty, Index: index, Value: value, IsTee: true}
}

// CreateGetGlobal reads a module global.
func (m *Module) CreateGetGlobal(name string, ty Type) *Expr {
	return &Expr{ID: GetGlobalExpr, Type: ty, Global: name}
}

// CreateSetGlobal writes a module global.
func (m *Module) CreateSetGlobal(name string, value *Expr) *Expr {
	return &Expr{ID: SetGlobalExpr, Type: TypeNone, Global: name, Value: value}
}

// CreateLoad reads bytes from linear memory.
func (m *Module) CreateLoad(bytes uint32, signed bool, offset, align uint32, ty Type, ptr *Expr) *Expr {
	return &Expr{ID: LoadExpr, Type: ty, Bytes: bytes, Signed: signed, Offset: offset, Align: align, Ptr: ptr}
}

// CreateStore writes bytes to linear memory.
func (m *Module) CreateStore(bytes uint32, offset, align uint32, ptr, value *Expr, ty Type) *Expr {
	return &Expr{ID: StoreExpr, Type: TypeNone, Bytes: bytes, Offset: offset, Align: align, Ptr: ptr, Value: value}
}

// CreateUnary builds a unary or conversion operation.
func (m *Module) CreateUnary(op UnaryOp, value *Expr, ty Type) *Expr {
	return &Expr{ID: UnaryExpr, Type: ty, UnOp: op, Value: value}
}

// CreateBinary builds a binary operation.
func (m *Module) CreateBinary(op BinaryOp, left, right *Expr, ty Type) *Expr {
	return &Expr{ID: BinaryExpr, Type: ty, BinOp: op, Left: left, Right: right}
}

// CreateSelect picks between two values without branching.
func (m *Module) CreateSelect(cond, ifTrue, ifFalse *Expr) *Expr {
	return &Expr{ID: SelectExpr, Type: ifTrue.Type, Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}
}

// CreateDrop discards a value.
func (m *Module) CreateDrop(value *Expr) *Expr {
	return &Expr{ID: DropExpr, Type: TypeNone, Value: value}
}

// CreateReturn returns from the current function.
func (m *Module) CreateReturn(value *Expr) *Expr {
	return &Expr{ID: ReturnExpr, Type: TypeUnreachable, Value: value}
}

// CreateNop is a no-op.
func (m *Module) CreateNop() *Expr {
	return &Expr{ID: NopExpr, Type: TypeNone}
}

// CreateUnreachable traps.
func (m *Module) CreateUnreachable() *Expr {
	return &Expr{ID: UnreachableExpr, Type: TypeUnreachable}
}

// CreateI32 builds an i32 constant.
func (m *Module) CreateI32(v int32) *Expr {
	return &Expr{ID: ConstExpr, Type: TypeI32, Lit: Literal{Type: TypeI32, I32: v}}
}

// CreateI64 builds an i64 constant.
func (m *Module) CreateI64(v int64) *Expr {
	return &Expr{ID: ConstExpr, Type: TypeI64, Lit: Literal{Type: TypeI64, I64: v}}
}

// CreateF32 builds an f32 constant.
func (m *Module) CreateF32(v float32) *Expr {
	return &Expr{ID: ConstExpr, Type: TypeF32, Lit: Literal{Type: TypeF32, F32: v}}
}

// CreateF64 builds an f64 constant.
func (m *Module) CreateF64(v float64) *Expr {
	return &Expr{ID: ConstExpr, Type: TypeF64, Lit: Literal{Type: TypeF64, F64: v}}
}

package compiler

import (
	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/types"
	"coral/internal/wasm"
)

// compileExpression lowers an expression under a contextual type. The
// static type of the result is published through currentType; when conv is
// not ConvNone the result is converted to ctxType and currentType follows.
// wrap tells the expression to normalize small-integer results itself; a
// consumer that wraps anyway passes false to avoid double work.
func (c *Compiler) compileExpression(e *ast.Expr, ctxType types.Type, conv ConversionKind, wrap bool) *wasm.Expr {
	e = e.Unwrap()
	var expr *wasm.Expr
	switch e.Kind {
	case ast.ExprLiteral:
		expr = c.compileLiteral(e, ctxType)
	case ast.ExprIdentifier:
		expr = c.compileIdentifier(e, ctxType)
	case ast.ExprPropertyAccess:
		expr = c.compilePropertyAccess(e)
	case ast.ExprElementAccess:
		expr = c.compileElementAccess(e)
	case ast.ExprCall:
		expr = c.compileCall(e)
	case ast.ExprNew:
		expr = c.compileNew(e)
	case ast.ExprUnary:
		expr = c.compileUnary(e, ctxType, wrap)
	case ast.ExprBinary:
		expr = c.compileBinary(e, ctxType, wrap)
	case ast.ExprTernary:
		expr = c.compileTernary(e, ctxType, conv)
	default:
		c.error(diag.LowerNotImplemented, e.Span, "expression kind %s is not supported", e.Kind)
		c.currentType = ctxType
		expr = c.module.CreateUnreachable()
	}
	if conv != ConvNone && c.currentType != ctxType {
		expr = c.convertExpression(expr, c.currentType, ctxType, conv == ConvImplicit, e)
		c.currentType = ctxType
	}
	return c.track(expr, e.Span)
}

// compileLiteral lowers integer, float, string and array literals.
func (c *Compiler) compileLiteral(e *ast.Expr, ctxType types.Type) *wasm.Expr {
	data := e.Data.(ast.LiteralData)
	switch data.Kind {
	case ast.LiteralInt:
		return c.compileIntegerLiteral(data.IntValue, ctxType)
	case ast.LiteralFloat:
		if ctxType.Kind == types.KindF32 {
			c.currentType = types.F32
			return c.module.CreateF32(float32(data.FloatValue))
		}
		c.currentType = types.F64
		return c.module.CreateF64(data.FloatValue)
	case ast.LiteralString:
		offset, err := c.ensureStringSegment(data.StringValue)
		if err != nil {
			c.error(diag.LowerNotImplemented, e.Span, "%v", err)
			c.currentType = c.prg.Types.StringType()
			return c.module.CreateUnreachable()
		}
		c.currentType = c.prg.Types.StringType()
		return c.pointerConstant(offset)
	case ast.LiteralArray:
		return c.compileArrayLiteral(e, data, ctxType)
	default:
		c.error(diag.LowerNotImplemented, e.Span, "unsupported literal")
		c.currentType = ctxType
		return c.module.CreateUnreachable()
	}
}

// compileIntegerLiteral picks the narrowest type that holds the value:
// the contextual integer type when it fits, otherwise i32 then i64.
func (c *Compiler) compileIntegerLiteral(value int64, ctxType types.Type) *wasm.Expr {
	tgt := c.options.Target
	if ctxType.Integer() && !ctxType.Reference() && !ctxType.FunctionRef() && types.FitsIn(value, ctxType, tgt) {
		c.currentType = ctxType
		if ctxType.Long(tgt) {
			return c.module.CreateI64(value)
		}
		return c.module.CreateI32(int32(value))
	}
	if types.FitsIn(value, types.I32, tgt) {
		c.currentType = types.I32
		return c.module.CreateI32(int32(value))
	}
	c.currentType = types.I64
	return c.module.CreateI64(value)
}

// pointerConstant emits a constant of pointer width.
func (c *Compiler) pointerConstant(value uint32) *wasm.Expr {
	if c.options.Target.Is64() {
		return c.module.CreateI64(int64(value))
	}
	return c.module.CreateI32(int32(value))
}

// compileIdentifier handles keyword identifiers and element references.
func (c *Compiler) compileIdentifier(e *ast.Expr, ctxType types.Type) *wasm.Expr {
	data := e.Data.(ast.IdentifierData)
	switch data.Name {
	case "null":
		if ctxType.Reference() {
			c.currentType = ctxType
		} else {
			c.currentType = types.Usize
		}
		return c.pointerConstant(0)
	case "true":
		c.currentType = types.Bool
		return c.module.CreateI32(1)
	case "false":
		c.currentType = types.Bool
		return c.module.CreateI32(0)
	case "this":
		if c.currentFunction == nil || c.currentFunction.InstanceOf == nil {
			c.error(diag.LowerUnresolved, e.Span, "'this' is only valid inside instance methods")
			c.currentType = ctxType
			return c.module.CreateUnreachable()
		}
		c.currentType = c.currentFunction.InstanceOf.Type
		return c.module.CreateGetLocal(0, c.nativeType(c.currentType))
	case "super":
		if c.currentFunction == nil || c.currentFunction.InstanceOf == nil || c.currentFunction.InstanceOf.Base == nil {
			c.error(diag.LowerUnresolved, e.Span, "'super' is only valid inside methods of derived classes")
			c.currentType = ctxType
			return c.module.CreateUnreachable()
		}
		c.currentType = c.currentFunction.InstanceOf.Base.Type
		return c.module.CreateGetLocal(0, c.nativeType(c.currentType))
	}
	if c.flow != nil {
		if l, ok := c.flow.ScopedLocal(data.Name); ok {
			return c.compileElementRead(l, e)
		}
	}
	elem, ok := c.prg.ResolveIdentifier(e, c.currentFunction, c.currentEnum)
	if !ok {
		c.error(diag.LowerUnresolved, e.Span, "cannot find name %q", data.Name)
		c.currentType = ctxType
		return c.module.CreateUnreachable()
	}
	return c.compileElementRead(elem, e)
}

// compileElementRead lowers a read of a named element per its kind.
func (c *Compiler) compileElementRead(elem program.Element, e *ast.Expr) *wasm.Expr {
	switch v := elem.(type) {
	case *program.Local:
		c.currentType = v.Type
		if v.Virtual() {
			return c.constantExpr(v.Const, v.Type)
		}
		return c.module.CreateGetLocal(localIndex(v), c.nativeType(v.Type))

	case *program.Global:
		if err := c.compileGlobal(v); err != nil {
			c.error(diag.LowerUnresolved, e.Span, "%v", err)
		}
		c.currentType = v.Type
		if cv, ok := v.Constant(); ok {
			return c.constantExpr(cv, v.Type)
		}
		return c.module.CreateGetGlobal(v.InternalName(), c.nativeType(v.Type))

	case *program.EnumValue:
		if !v.HasFlag(program.FlagCompiled) {
			if c.currentEnum == v.Enum {
				c.error(diag.LowerForwardEnumReference, e.Span, "cannot reference enum member %q before it is initialized", v.SimpleName())
				c.currentType = types.I32
				return c.module.CreateUnreachable()
			}
			if err := c.compileEnum(v.Enum); err != nil {
				c.error(diag.LowerUnresolved, e.Span, "%v", err)
			}
		}
		c.currentType = types.I32
		if cv, ok := v.Constant(); ok {
			return c.module.CreateI32(int32(cv.I))
		}
		return c.module.CreateGetGlobal(v.InternalName(), wasm.TypeI32)

	case *program.Function:
		idx, err := c.ensureFunctionTableIndex(v)
		if err != nil {
			c.error(diag.LowerUnresolved, e.Span, "%v", err)
			idx = 0
		}
		c.currentType = types.MakeFunction(v.SignatureID)
		return c.module.CreateI32(idx)

	case *program.FunctionPrototype:
		inst, ok := v.Resolve(c.prg, nil)
		if !ok {
			c.error(diag.DeclGenericWithoutTypeArgs, e.Span, "generic function %q requires type arguments", v.SimpleName())
			c.currentType = types.Void
			return c.module.CreateUnreachable()
		}
		return c.compileElementRead(inst, e)

	case *program.FunctionTarget:
		c.currentType = v.Type
		return c.module.CreateUnreachable()

	default:
		c.error(diag.LowerUnresolved, e.Span, "%s %q cannot be used as a value", elem.Kind(), elem.SimpleName())
		c.currentType = types.Void
		return c.module.CreateUnreachable()
	}
}

// compilePropertyAccess lowers obj.prop reads: statics resolve to globals
// or enum values, instance fields load at their offset, getter properties
// call the accessor.
func (c *Compiler) compilePropertyAccess(e *ast.Expr) *wasm.Expr {
	res, ok := c.prg.ResolvePropertyAccess(e, c.currentFunction, c.currentEnum)
	if !ok {
		data := e.Data.(ast.PropertyAccessData)
		c.error(diag.LowerUnresolved, e.Span, "property %q does not resolve", data.Property)
		c.currentType = types.Void
		return c.module.CreateUnreachable()
	}
	switch member := res.Element.(type) {
	case *program.Field:
		this := c.compileExpression(res.TargetExpression, member.Class.Type, ConvImplicit, false)
		c.currentType = member.Type
		return c.module.CreateLoad(
			member.Type.ByteSize(c.options.Target),
			member.Type.Signed(),
			member.MemoryOffset,
			member.Type.ByteSize(c.options.Target),
			c.nativeType(member.Type),
			this,
		)
	case *program.Property:
		if member.Getter == nil {
			c.error(diag.LowerUnresolved, e.Span, "property %q has no getter", member.SimpleName())
			c.currentType = types.Void
			return c.module.CreateUnreachable()
		}
		getter, ok := member.Getter.Resolve(c.prg, nil)
		if !ok {
			c.currentType = types.Void
			return c.module.CreateUnreachable()
		}
		if err := c.compileFunction(getter); err != nil {
			c.error(diag.LowerUnresolved, e.Span, "%v", err)
		}
		var operands []*wasm.Expr
		if res.IsInstanceTarget {
			operands = append(operands, c.compileExpression(res.TargetExpression, getter.Signature.This, ConvImplicit, false))
		}
		c.currentType = getter.Signature.ReturnType
		return c.module.CreateCall(getter.InternalName(), operands, c.nativeType(getter.Signature.ReturnType))
	default:
		return c.compileElementRead(res.Element, e)
	}
}

// compileElementAccess lowers obj[i] reads through the class's "[]"
// operator.
func (c *Compiler) compileElementAccess(e *ast.Expr) *wasm.Expr {
	res, ok := c.prg.ResolveElementAccess(e, c.currentFunction, c.currentEnum, false)
	if !ok {
		c.error(diag.LowerOperatorMissing, e.Span, "the target does not define an %q operator", program.OperatorIndexedGet)
		c.currentType = types.Void
		return c.module.CreateUnreachable()
	}
	proto, ok := res.Element.(*program.FunctionPrototype)
	if !ok {
		c.currentType = types.Void
		return c.module.CreateUnreachable()
	}
	op, ok := proto.Resolve(c.prg, nil)
	if !ok {
		c.currentType = types.Void
		return c.module.CreateUnreachable()
	}
	if err := c.compileFunction(op); err != nil {
		c.error(diag.LowerUnresolved, e.Span, "%v", err)
	}
	data := e.Data.(ast.ElementAccessData)
	this := c.compileExpression(res.TargetExpression, op.Signature.This, ConvImplicit, false)
	index := c.compileExpression(data.Index, op.Signature.ParamTypes[0], ConvImplicit, false)
	c.currentType = op.Signature.ReturnType
	return c.module.CreateCall(op.InternalName(), []*wasm.Expr{this, index}, c.nativeType(op.Signature.ReturnType))
}

// compileTernary lowers cond ? a : b; the else arm converts to the then
// arm's type.
func (c *Compiler) compileTernary(e *ast.Expr, ctxType types.Type, conv ConversionKind) *wasm.Expr {
	data := e.Data.(ast.TernaryData)
	cond := c.compileExpression(data.Cond, types.Bool, ConvNone, false)
	cond = c.makeIsTrueish(cond, c.currentType)
	ifTrue := c.compileExpression(data.Then, ctxType, conv, true)
	armType := c.currentType
	ifFalse := c.compileExpression(data.Else, armType, ConvImplicit, true)
	c.currentType = armType
	return c.module.CreateIf(cond, ifTrue, ifFalse)
}

// compileUnary lowers prefix and postfix operators.
func (c *Compiler) compileUnary(e *ast.Expr, ctxType types.Type, wrap bool) *wasm.Expr {
	data := e.Data.(ast.UnaryData)
	m := c.module
	switch data.Op {
	case ast.UnaryPlus:
		return c.compileExpression(data.Operand, ctxType, ConvNone, wrap)

	case ast.UnaryMinus:
		// Negating a literal is handled at the operator so the minimum
		// signed value stays representable.
		operand := data.Operand.Unwrap()
		if operand.Kind == ast.ExprLiteral {
			if lit := operand.Data.(ast.LiteralData); lit.Kind == ast.LiteralInt {
				return c.compileIntegerLiteral(-lit.IntValue, ctxType)
			}
		}
		expr := c.compileExpression(data.Operand, ctxType, ConvNone, false)
		t := c.currentType
		switch {
		case t.Kind == types.KindF32:
			return m.CreateUnary(wasm.NegF32, expr, wasm.TypeF32)
		case t.Kind == types.KindF64:
			return m.CreateUnary(wasm.NegF64, expr, wasm.TypeF64)
		case t.Long(c.options.Target):
			return m.CreateBinary(wasm.SubI64, m.CreateI64(0), expr, wasm.TypeI64)
		default:
			out := m.CreateBinary(wasm.SubI32, m.CreateI32(0), expr, wasm.TypeI32)
			if wrap && t.Small() {
				out = c.ensureSmallIntegerWrap(out, t)
			}
			return out
		}

	case ast.UnaryNot:
		expr := c.compileExpression(data.Operand, types.Bool, ConvNone, false)
		out := c.makeIsFalseish(expr, c.currentType)
		c.currentType = types.Bool
		return out

	case ast.UnaryBitNot:
		expr := c.compileExpression(data.Operand, ctxType, ConvNone, false)
		t := c.currentType
		if t.Float() {
			c.error(diag.TypeOperatorInvalid, e.Span, "operator ~ cannot be applied to type %s", t)
			return m.CreateUnreachable()
		}
		var out *wasm.Expr
		if t.Long(c.options.Target) {
			out = m.CreateBinary(wasm.XorI64, expr, m.CreateI64(-1), wasm.TypeI64)
		} else {
			out = m.CreateBinary(wasm.XorI32, expr, m.CreateI32(-1), wasm.TypeI32)
		}
		if wrap && t.Small() {
			out = c.ensureSmallIntegerWrap(out, t)
		}
		return out

	case ast.UnaryPreInc, ast.UnaryPreDec, ast.UnaryPostInc, ast.UnaryPostDec:
		return c.compileIncDec(e, data, ctxType)

	default:
		c.error(diag.LowerNotImplemented, e.Span, "unary operator %s is not supported", data.Op)
		c.currentType = ctxType
		return m.CreateUnreachable()
	}
}

// compileIncDec lowers ++/-- as a read-modify-write. Postfix forms stash
// the original value in a temp so the expression yields it.
func (c *Compiler) compileIncDec(e *ast.Expr, data ast.UnaryData, ctxType types.Type) *wasm.Expr {
	m := c.module
	getExpr := c.compileExpression(data.Operand, ctxType, ConvNone, false)
	t := c.currentType
	if t.Kind == types.KindVoid || t.Reference() {
		c.error(diag.TypeOperatorInvalid, e.Span, "operator %s cannot be applied to type %s", data.Op, t)
		return m.CreateUnreachable()
	}
	dec := data.Op == ast.UnaryPreDec || data.Op == ast.UnaryPostDec
	post := data.Op == ast.UnaryPostInc || data.Op == ast.UnaryPostDec
	consumed := ctxType.Kind != types.KindVoid

	if post && consumed {
		// tmp = value; target = tmp +/- 1; tmp
		tmp := c.getTempLocal(t)
		stash := m.CreateTeeLocal(localIndex(tmp), getExpr, c.nativeType(t))
		next := c.makeStepped(stash, t, dec, true)
		assign := c.compileAssignmentTo(data.Operand, next, t, false, e)
		out := m.CreateBlock("", []*wasm.Expr{assign, m.CreateGetLocal(localIndex(tmp), c.nativeType(t))}, c.nativeType(t))
		c.freeTempLocal(tmp)
		c.currentType = t
		return out
	}
	next := c.makeStepped(getExpr, t, dec, true)
	out := c.compileAssignmentTo(data.Operand, next, t, consumed && !post, e)
	if consumed && !post {
		c.currentType = t
	} else {
		c.currentType = types.Void
	}
	return out
}

// makeStepped adds or subtracts one in the value's own type, wrapping
// small results.
func (c *Compiler) makeStepped(expr *wasm.Expr, t types.Type, dec, wrap bool) *wasm.Expr {
	m := c.module
	var out *wasm.Expr
	switch {
	case t.Kind == types.KindF32:
		op := wasm.AddF32
		if dec {
			op = wasm.SubF32
		}
		return m.CreateBinary(op, expr, m.CreateF32(1), wasm.TypeF32)
	case t.Kind == types.KindF64:
		op := wasm.AddF64
		if dec {
			op = wasm.SubF64
		}
		return m.CreateBinary(op, expr, m.CreateF64(1), wasm.TypeF64)
	case t.Long(c.options.Target):
		op := wasm.AddI64
		if dec {
			op = wasm.SubI64
		}
		return m.CreateBinary(op, expr, m.CreateI64(1), wasm.TypeI64)
	default:
		op := wasm.AddI32
		if dec {
			op = wasm.SubI32
		}
		out = m.CreateBinary(op, expr, m.CreateI32(1), wasm.TypeI32)
		if wrap && t.Small() {
			out = c.ensureSmallIntegerWrap(out, t)
		}
		return out
	}
}

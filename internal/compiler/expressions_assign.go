package compiler

import (
	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/types"
	"coral/internal/wasm"
)

// compileAssignment lowers = and the compound operators. Compound forms
// lower the arithmetic as if written plain, then feed the assignment
// machinery.
func (c *Compiler) compileAssignment(e *ast.Expr, data ast.BinaryData, ctxType types.Type) *wasm.Expr {
	tee := ctxType.Kind != types.KindVoid
	targetType, ok := c.assignmentTargetType(data.Left)
	if !ok {
		c.error(diag.LowerUnresolved, e.Span, "assignment target does not resolve")
		c.currentType = ctxType
		return c.module.CreateUnreachable()
	}

	valueExpr := data.Right
	if data.Op != ast.BinaryAssign {
		valueExpr = &ast.Expr{
			Kind: ast.ExprBinary,
			Span: e.Span,
			Data: ast.BinaryData{Op: data.Op.Operation(), Left: data.Left, Right: data.Right},
		}
	}
	value := c.compileExpression(valueExpr, targetType, ConvImplicit, true)
	out := c.compileAssignmentTo(data.Left, value, targetType, tee, e)
	if tee {
		c.currentType = targetType
	} else {
		c.currentType = types.Void
	}
	return out
}

// assignmentTargetType computes the declared type of an assignment target.
func (c *Compiler) assignmentTargetType(target *ast.Expr) (types.Type, bool) {
	target = target.Unwrap()
	if target.Kind == ast.ExprIdentifier {
		data := target.Data.(ast.IdentifierData)
		if c.flow != nil {
			if l, ok := c.flow.ScopedLocal(data.Name); ok {
				return l.Type, true
			}
		}
	}
	if target.Kind == ast.ExprElementAccess {
		// The value parameter of the "[]=" operator.
		res, ok := c.prg.ResolveElementAccess(target, c.currentFunction, c.currentEnum, true)
		if !ok {
			return types.Void, false
		}
		proto, ok := res.Element.(*program.FunctionPrototype)
		if !ok {
			return types.Void, false
		}
		inst, ok := proto.Resolve(c.prg, nil)
		if !ok || len(inst.Signature.ParamTypes) < 2 {
			return types.Void, false
		}
		return inst.Signature.ParamTypes[1], true
	}
	res, ok := c.prg.ResolveExpression(target, c.currentFunction, c.currentEnum)
	if !ok {
		return types.Void, false
	}
	if prop, ok := res.Element.(*program.Property); ok {
		if prop.Setter == nil {
			// Let compileAssignmentTo report it.
			if prop.Getter != nil {
				if g, ok := prop.Getter.Resolve(c.prg, nil); ok {
					return g.Signature.ReturnType, true
				}
			}
			return types.Void, false
		}
		if s, ok := prop.Setter.Resolve(c.prg, nil); ok && len(s.Signature.ParamTypes) > 0 {
			return s.Signature.ParamTypes[0], true
		}
		return types.Void, false
	}
	if vl, ok := res.Element.(program.VariableLike); ok {
		return vl.ValueType(), true
	}
	return types.Void, false
}

// compileAssignmentTo stores an already-compiled value into the target.
// With tee the emitted expression also yields the stored value.
func (c *Compiler) compileAssignmentTo(target *ast.Expr, value *wasm.Expr, valueType types.Type, tee bool, report *ast.Expr) *wasm.Expr {
	target = target.Unwrap()
	m := c.module

	if target.Kind == ast.ExprElementAccess {
		return c.compileIndexedAssignment(target, value, valueType, tee, report)
	}

	var res program.Resolved
	if target.Kind == ast.ExprIdentifier {
		data := target.Data.(ast.IdentifierData)
		if c.flow != nil {
			if l, ok := c.flow.ScopedLocal(data.Name); ok {
				res = program.Resolved{Element: l}
			}
		}
	}
	if res.Element == nil {
		var ok bool
		res, ok = c.prg.ResolveExpression(target, c.currentFunction, c.currentEnum)
		if !ok {
			c.error(diag.LowerUnresolved, report.Span, "assignment target does not resolve")
			return m.CreateUnreachable()
		}
	}

	switch elem := res.Element.(type) {
	case *program.Local:
		if elem.Virtual() || elem.HasFlag(program.FlagConstant) {
			c.error(diag.LowerAssignToConstant, report.Span, "cannot assign to constant %q", elem.SimpleName())
			return m.CreateUnreachable()
		}
		if tee {
			return m.CreateTeeLocal(localIndex(elem), value, c.nativeType(elem.Type))
		}
		return m.CreateSetLocal(localIndex(elem), value)

	case *program.Global:
		if err := c.compileGlobal(elem); err != nil {
			c.error(diag.LowerUnresolved, report.Span, "%v", err)
		}
		if elem.HasFlag(program.FlagConstant) || elem.HasFlag(program.FlagInlined) {
			c.error(diag.LowerAssignToConstant, report.Span, "cannot assign to constant %q", elem.SimpleName())
			return m.CreateUnreachable()
		}
		set := m.CreateSetGlobal(elem.InternalName(), value)
		if tee {
			get := m.CreateGetGlobal(elem.InternalName(), c.nativeType(elem.Type))
			return m.CreateBlock("", []*wasm.Expr{set, get}, c.nativeType(elem.Type))
		}
		return set

	case *program.EnumValue:
		c.error(diag.LowerAssignToConstant, report.Span, "cannot assign to enum member %q", elem.SimpleName())
		return m.CreateUnreachable()

	case *program.Field:
		return c.compileFieldAssignment(res, elem, value, tee, report)

	case *program.Property:
		return c.compilePropertyAssignment(res, elem, value, valueType, tee, report)

	default:
		c.error(diag.LowerUnresolved, report.Span, "%s %q is not an assignable target", res.Element.Kind(), res.Element.SimpleName())
		return m.CreateUnreachable()
	}
}

// compileFieldAssignment emits a store at the field's offset; the tee form
// routes the value through a temp so it can be re-read after the store.
func (c *Compiler) compileFieldAssignment(res program.Resolved, field *program.Field, value *wasm.Expr, tee bool, report *ast.Expr) *wasm.Expr {
	m := c.module
	if field.HasFlag(program.FlagReadonly) {
		c.error(diag.LowerAssignToReadonly, report.Span, "cannot assign to readonly field %q", field.SimpleName())
		return m.CreateUnreachable()
	}
	this := c.compileExpression(res.TargetExpression, field.Class.Type, ConvImplicit, false)
	bytes := field.Type.ByteSize(c.options.Target)
	if !tee {
		return m.CreateStore(bytes, field.MemoryOffset, bytes, this, value, c.nativeType(field.Type))
	}
	tmp := c.getTempLocal(field.Type)
	set := m.CreateSetLocal(localIndex(tmp), value)
	store := m.CreateStore(bytes, field.MemoryOffset, bytes, this,
		m.CreateGetLocal(localIndex(tmp), c.nativeType(field.Type)), c.nativeType(field.Type))
	get := m.CreateGetLocal(localIndex(tmp), c.nativeType(field.Type))
	c.freeTempLocal(tmp)
	return m.CreateBlock("", []*wasm.Expr{set, store, get}, c.nativeType(field.Type))
}

// compilePropertyAssignment calls the setter; the tee form follows with a
// getter call, sharing the receiver through a temp when it has side
// effects.
func (c *Compiler) compilePropertyAssignment(res program.Resolved, prop *program.Property, value *wasm.Expr, valueType types.Type, tee bool, report *ast.Expr) *wasm.Expr {
	m := c.module
	if prop.Setter == nil {
		c.error(diag.LowerSetterMissing, report.Span, "property %q has no setter", prop.SimpleName())
		return m.CreateUnreachable()
	}
	setter, ok := prop.Setter.Resolve(c.prg, nil)
	if !ok {
		return m.CreateUnreachable()
	}
	if err := c.compileFunction(setter); err != nil {
		c.error(diag.LowerUnresolved, report.Span, "%v", err)
	}

	if !res.IsInstanceTarget {
		call := m.CreateCall(setter.InternalName(), []*wasm.Expr{value}, wasm.TypeNone)
		if !tee {
			return call
		}
		getter, gok := c.resolvedGetter(prop, report)
		if !gok {
			return call
		}
		get := m.CreateCall(getter.InternalName(), nil, c.nativeType(getter.Signature.ReturnType))
		return m.CreateBlock("", []*wasm.Expr{call, get}, get.Type)
	}

	this := c.compileExpression(res.TargetExpression, setter.Signature.This, ConvImplicit, false)
	thisType := setter.Signature.This
	if !tee {
		return m.CreateCall(setter.InternalName(), []*wasm.Expr{this, value}, wasm.TypeNone)
	}
	getter, gok := c.resolvedGetter(prop, report)
	if !gok {
		return m.CreateCall(setter.InternalName(), []*wasm.Expr{this, value}, wasm.TypeNone)
	}
	thisAgain := this
	if wasm.SideEffectFree(this) {
		thisAgain = m.CloneExpr(this)
	} else {
		tmp := c.getAndFreeTempLocal(thisType)
		this = m.CreateTeeLocal(localIndex(tmp), this, c.nativeType(thisType))
		thisAgain = m.CreateGetLocal(localIndex(tmp), c.nativeType(thisType))
	}
	set := m.CreateCall(setter.InternalName(), []*wasm.Expr{this, value}, wasm.TypeNone)
	get := m.CreateCall(getter.InternalName(), []*wasm.Expr{thisAgain}, c.nativeType(getter.Signature.ReturnType))
	return m.CreateBlock("", []*wasm.Expr{set, get}, get.Type)
}

func (c *Compiler) resolvedGetter(prop *program.Property, report *ast.Expr) (*program.Function, bool) {
	if prop.Getter == nil {
		return nil, false
	}
	getter, ok := prop.Getter.Resolve(c.prg, nil)
	if !ok {
		return nil, false
	}
	if err := c.compileFunction(getter); err != nil {
		c.error(diag.LowerUnresolved, report.Span, "%v", err)
	}
	return getter, true
}

// compileIndexedAssignment lowers target[index] = value through the
// "[]=" operator; the tee form re-reads through "[]" with both the target
// and the index tee'd so the get sees identical operands.
func (c *Compiler) compileIndexedAssignment(target *ast.Expr, value *wasm.Expr, valueType types.Type, tee bool, report *ast.Expr) *wasm.Expr {
	m := c.module
	res, ok := c.prg.ResolveElementAccess(target, c.currentFunction, c.currentEnum, true)
	if !ok {
		c.error(diag.LowerIndexedSetMissing, report.Span, "the target does not define an %q operator", program.OperatorIndexedSet)
		return m.CreateUnreachable()
	}
	proto := res.Element.(*program.FunctionPrototype)
	setOp, ok := proto.Resolve(c.prg, nil)
	if !ok {
		return m.CreateUnreachable()
	}
	if err := c.compileFunction(setOp); err != nil {
		c.error(diag.LowerUnresolved, report.Span, "%v", err)
	}

	data := target.Data.(ast.ElementAccessData)
	this := c.compileExpression(res.TargetExpression, setOp.Signature.This, ConvImplicit, false)
	index := c.compileExpression(data.Index, setOp.Signature.ParamTypes[0], ConvImplicit, false)

	if !tee {
		return m.CreateCall(setOp.InternalName(), []*wasm.Expr{this, index, value}, wasm.TypeNone)
	}

	getRes, ok := c.prg.ResolveElementAccess(target, c.currentFunction, c.currentEnum, false)
	if !ok {
		c.error(diag.LowerOperatorMissing, report.Span, "the target does not define an %q operator", program.OperatorIndexedGet)
		return m.CreateCall(setOp.InternalName(), []*wasm.Expr{this, index, value}, wasm.TypeNone)
	}
	getOp, ok := getRes.Element.(*program.FunctionPrototype).Resolve(c.prg, nil)
	if !ok {
		return m.CreateCall(setOp.InternalName(), []*wasm.Expr{this, index, value}, wasm.TypeNone)
	}
	if err := c.compileFunction(getOp); err != nil {
		c.error(diag.LowerUnresolved, report.Span, "%v", err)
	}

	thisTmp := c.getTempLocal(setOp.Signature.This)
	indexTmp := c.getTempLocal(setOp.Signature.ParamTypes[0])
	thisTee := m.CreateTeeLocal(localIndex(thisTmp), this, c.nativeType(setOp.Signature.This))
	indexTee := m.CreateTeeLocal(localIndex(indexTmp), index, c.nativeType(setOp.Signature.ParamTypes[0]))
	set := m.CreateCall(setOp.InternalName(), []*wasm.Expr{thisTee, indexTee, value}, wasm.TypeNone)
	get := m.CreateCall(getOp.InternalName(), []*wasm.Expr{
		m.CreateGetLocal(localIndex(thisTmp), c.nativeType(setOp.Signature.This)),
		m.CreateGetLocal(localIndex(indexTmp), c.nativeType(setOp.Signature.ParamTypes[0])),
	}, c.nativeType(getOp.Signature.ReturnType))
	c.freeTempLocal(indexTmp)
	c.freeTempLocal(thisTmp)
	return m.CreateBlock("", []*wasm.Expr{set, get}, get.Type)
}

package compiler

import (
	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/types"
	"coral/internal/wasm"
)

// compileCall classifies the callee and lowers a direct call, an indirect
// call through the function table, or a builtin.
func (c *Compiler) compileCall(e *ast.Expr) *wasm.Expr {
	data := e.Data.(ast.CallData)
	m := c.module

	res, ok := c.prg.ResolveExpression(data.Callee, c.currentFunction, c.currentEnum)
	if !ok {
		// A local or scoped value holding a function reference is not an
		// element the program resolves; check the flow.
		if callee := data.Callee.Unwrap(); callee.Kind == ast.ExprIdentifier && c.flow != nil {
			if l, okL := c.flow.ScopedLocal(callee.Data.(ast.IdentifierData).Name); okL {
				res = program.Resolved{Element: l}
				ok = true
			}
		}
	}
	if !ok {
		c.error(diag.LowerUnresolved, e.Span, "call target does not resolve")
		c.currentType = types.Void
		return m.CreateUnreachable()
	}

	switch callee := res.Element.(type) {
	case *program.FunctionPrototype:
		if callee.HasFlag(program.FlagBuiltin) {
			return c.compileCallBuiltin(e, data, callee)
		}
		typeArgs := make([]types.Type, 0, len(data.TypeArgs))
		ctx := map[string]types.Type(nil)
		if c.currentFunction != nil {
			ctx = c.currentFunction.TypeArgCtx
		}
		for _, ta := range data.TypeArgs {
			t, okT := c.prg.ResolveType(ta, ctx)
			if !okT {
				c.error(diag.LowerUnresolved, e.Span, "type argument %s does not resolve", ta)
			}
			typeArgs = append(typeArgs, t)
		}
		inst, okI := callee.Resolve(c.prg, typeArgs)
		if !okI {
			c.error(diag.DeclGenericWithoutTypeArgs, e.Span, "cannot instantiate function %q with the supplied type arguments", callee.SimpleName())
			c.currentType = types.Void
			return m.CreateUnreachable()
		}
		var this *wasm.Expr
		if res.IsInstanceTarget {
			this = c.compileExpression(res.TargetExpression, inst.Signature.This, ConvImplicit, false)
		}
		return c.compileCallDirect(inst, data.Args, this, e)

	case *program.Function:
		var this *wasm.Expr
		if res.IsInstanceTarget {
			this = c.compileExpression(res.TargetExpression, callee.Signature.This, ConvImplicit, false)
		}
		return c.compileCallDirect(callee, data.Args, this, e)

	case *program.Local, *program.Global, *program.Field, *program.FunctionTarget:
		return c.compileCallIndirect(e, data, res)

	default:
		c.error(diag.TypeNotCallable, e.Span, "%s %q is not callable", res.Element.Kind(), res.Element.SimpleName())
		c.currentType = types.Void
		return m.CreateUnreachable()
	}
}

// checkCallSignature validates operand counts, receivers and rest
// parameters against the signature.
func (c *Compiler) checkCallSignature(sig *types.Signature, numArgs int, hasThis bool, report *ast.Expr) bool {
	if sig.HasThis != hasThis {
		c.error(diag.LowerThisMismatch, report.Span, "the call does not match the receiver requirements of the target")
		return false
	}
	if sig.HasRest {
		c.error(diag.LowerRestUnsupported, report.Span, "rest parameters are not supported")
		return false
	}
	if numArgs < sig.RequiredParameters {
		c.error(diag.LowerArityMismatch, report.Span, "expected at least %d arguments, got %d", sig.RequiredParameters, numArgs)
		return false
	}
	if numArgs > len(sig.ParamTypes) {
		c.error(diag.LowerArityMismatch, report.Span, "expected at most %d arguments, got %d", len(sig.ParamTypes), numArgs)
		return false
	}
	return true
}

// compileCallDirect lowers a direct call. When fewer arguments than
// parameters are supplied the call goes through the callee's trampoline
// with zero-filled slots and a trailing provided-count.
func (c *Compiler) compileCallDirect(fn *program.Function, args []*ast.Expr, this *wasm.Expr, report *ast.Expr) *wasm.Expr {
	m := c.module
	sig := fn.Signature
	if !c.checkCallSignature(sig, len(args), this != nil, report) {
		c.currentType = sig.ReturnType
		return m.CreateUnreachable()
	}
	if err := c.compileFunction(fn); err != nil {
		c.error(diag.LowerUnresolved, report.Span, "%v", err)
	}

	operands := make([]*wasm.Expr, 0, sig.ArgumentCount()+1)
	if this != nil {
		operands = append(operands, this)
	}
	for i, arg := range args {
		operands = append(operands, c.compileExpression(arg, sig.ParamTypes[i], ConvImplicit, true))
	}

	c.currentType = sig.ReturnType
	if len(args) == len(sig.ParamTypes) {
		return m.CreateCall(fn.InternalName(), operands, c.nativeType(sig.ReturnType))
	}

	// Fill the gap and dispatch through the trampoline.
	trampoline, err := c.ensureTrampoline(fn)
	if err != nil {
		c.error(diag.LowerUnresolved, report.Span, "%v", err)
		return m.CreateUnreachable()
	}
	for i := len(args); i < len(sig.ParamTypes); i++ {
		operands = append(operands, c.zeroConstant(sig.ParamTypes[i]))
	}
	provided := len(args) - sig.RequiredParameters
	if provided < 0 {
		provided = 0
	}
	operands = append(operands, m.CreateI32(int32(provided)))
	return m.CreateCall(trampoline.InternalName(), operands, c.nativeType(sig.ReturnType))
}

// compileCallIndirect lowers a call through the function table: the index
// operand is whatever reading the callee element produces.
func (c *Compiler) compileCallIndirect(e *ast.Expr, data ast.CallData, res program.Resolved) *wasm.Expr {
	m := c.module
	vl, ok := res.Element.(program.VariableLike)
	if !ok {
		c.currentType = types.Void
		return m.CreateUnreachable()
	}
	t := vl.ValueType()
	sig, ok := c.prg.Types.Signature(t.Signature)
	if !ok {
		c.error(diag.TypeNotCallable, e.Span, "%s %q is not callable", res.Element.Kind(), res.Element.SimpleName())
		c.currentType = types.Void
		return m.CreateUnreachable()
	}
	if !c.checkCallSignature(sig, len(data.Args), res.IsInstanceTarget, e) {
		c.currentType = sig.ReturnType
		return m.CreateUnreachable()
	}
	if len(data.Args) < len(sig.ParamTypes) {
		// No trampolines for indirect targets; defaults need the callee.
		c.error(diag.LowerArityMismatch, e.Span, "indirect calls must supply every argument")
		c.currentType = sig.ReturnType
		return m.CreateUnreachable()
	}

	index := c.compileCalleeIndex(e, res)
	operands := make([]*wasm.Expr, 0, sig.ArgumentCount())
	if res.IsInstanceTarget {
		operands = append(operands, c.compileExpression(res.TargetExpression, sig.This, ConvImplicit, false))
	}
	for i, arg := range data.Args {
		operands = append(operands, c.compileExpression(arg, sig.ParamTypes[i], ConvImplicit, true))
	}

	sigName := program.MangledSignatureName(sig, c.options.Target)
	c.ensureFunctionType(sigName, sig)
	c.currentType = sig.ReturnType
	return m.CreateCallIndirect(index, operands, sigName, c.nativeType(sig.ReturnType))
}

// compileCalleeIndex produces the i32 table index for an indirect call:
// a get-local, get-global, field load, or any index-typed expression.
func (c *Compiler) compileCalleeIndex(e *ast.Expr, res program.Resolved) *wasm.Expr {
	data := e.Data.(ast.CallData)
	return c.compileExpression(data.Callee, types.I32, ConvNone, false)
}

// ensureFunctionType registers the wasm function type for a signature.
func (c *Compiler) ensureFunctionType(name string, sig *types.Signature) *wasm.FunctionType {
	if ft, ok := c.module.GetFunctionType(name); ok {
		return ft
	}
	params := make([]wasm.Type, 0, sig.ArgumentCount())
	if sig.HasThis {
		params = append(params, c.nativeType(sig.This))
	}
	for _, p := range sig.ParamTypes {
		params = append(params, c.nativeType(p))
	}
	return c.module.AddFunctionType(name, params, c.nativeType(sig.ReturnType))
}

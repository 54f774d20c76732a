package compiler

import (
	"fmt"

	"fortio.org/safecast"

	"coral/internal/program"
	"coral/internal/types"
	"coral/internal/wasm"
)

// ensureTrampoline synthesizes, once per callee, the argument-count
// dispatcher used by calls that omit optional arguments. The trampoline's
// parameter list is the original plus one trailing i32 counting how many
// optional arguments the caller actually supplied; its body is a nested
// block structure equivalent to a jump table that executes the remaining
// default initializers and then calls the original function.
func (c *Compiler) ensureTrampoline(original *program.Function) (*program.Function, error) {
	if original.Trampoline != nil {
		return original.Trampoline, nil
	}
	sig := original.Signature
	optional := sig.OptionalParameters()
	if optional <= 0 {
		return nil, fmt.Errorf("compiler: %q has no optional parameters", original.InternalName())
	}
	proto := original.Prototype
	if proto == nil || proto.Decl == nil {
		return nil, fmt.Errorf("compiler: %q has no declaration to read defaults from", original.InternalName())
	}

	name := original.InternalName() + "|trampoline"
	trampSigID := c.prg.Types.AddSignature(types.Signature{
		ParamTypes:         append(append([]types.Type(nil), sig.ParamTypes...), types.I32),
		ReturnType:         sig.ReturnType,
		This:               sig.This,
		HasThis:            sig.HasThis,
		RequiredParameters: len(sig.ParamTypes) + 1,
	})
	tramp := &program.Function{
		ElementBase: program.ElementBase{Name: name, Internal: name},
		Prototype:   proto,
		Signature:   c.prg.Types.MustSignature(trampSigID),
		SignatureID: trampSigID,
		InstanceOf:  original.InstanceOf,
		TypeArgCtx:  original.TypeArgCtx,
		TableIndex:  -1,
	}
	if sig.HasThis {
		tramp.AddLocal("this", sig.This)
	}
	for i, p := range proto.Decl.Params {
		tramp.AddLocal(p.Name, sig.ParamTypes[i])
	}
	countLocal := tramp.AddLocal("", types.I32)
	original.Trampoline = tramp

	// Defaults compile in the trampoline's scope so they can see `this`
	// and introduce locals of their own.
	savedFn, savedFlow, savedTemps, savedLabels := c.currentFunction, c.flow, c.freeTemps, c.labelCounter
	c.currentFunction = tramp
	c.flow = newFlow()
	c.freeTemps = make(map[wasm.Type][]*program.Local)
	c.labelCounter = 0
	defer func() {
		c.currentFunction, c.flow, c.freeTemps, c.labelCounter = savedFn, savedFlow, savedTemps, savedLabels
	}()

	m := c.module
	required := sig.RequiredParameters
	paramOffset := tramp.ParameterOffset()

	// br_table on the provided count, one label per optional parameter.
	caseLabels := make([]string, optional)
	for i := range caseLabels {
		caseLabels[i] = fmt.Sprintf("%d.of.%d", i, optional)
	}
	doneLabel := fmt.Sprintf("%d.of.%d", optional, optional)

	inner := m.CreateSwitch(caseLabels, doneLabel,
		m.CreateGetLocal(localIndex(countLocal), wasm.TypeI32), nil)

	// Innermost block holds the dispatch; each enclosing block appends the
	// default initializer for one more parameter, so jumping to label k
	// executes initializers k..optional-1 and falls out at the top.
	current := m.CreateBlock(caseLabels[0], []*wasm.Expr{inner}, wasm.TypeNone)
	for i := 0; i < optional; i++ {
		param := proto.Decl.Params[required+i]
		if param.Init == nil {
			return nil, fmt.Errorf("compiler: parameter %q of %q lacks a default initializer", param.Name, original.InternalName())
		}
		paramType := sig.ParamTypes[required+i]
		init := c.compileExpression(param.Init, paramType, ConvImplicit, true)
		slot, err := safecast.Conv[uint32](paramOffset + required + i)
		if err != nil {
			return nil, fmt.Errorf("compiler: parameter index overflow: %w", err)
		}
		assign := m.CreateSetLocal(slot, init)
		label := doneLabel
		if i+1 < optional {
			label = caseLabels[i+1]
		}
		current = m.CreateBlock(label, []*wasm.Expr{current, assign}, wasm.TypeNone)
	}

	// Forward the fully filled argument vector to the original.
	operands := make([]*wasm.Expr, 0, sig.ArgumentCount())
	for i := 0; i < paramOffset+len(sig.ParamTypes); i++ {
		slot, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, fmt.Errorf("compiler: parameter index overflow: %w", err)
		}
		operands = append(operands, m.CreateGetLocal(slot, c.nativeType(tramp.Locals[i].Type)))
	}
	call := m.CreateCall(original.InternalName(), operands, c.nativeType(sig.ReturnType))
	var tail *wasm.Expr
	if sig.ReturnType.Kind == types.KindVoid {
		tail = call
	} else {
		tail = m.CreateReturn(call)
	}
	body := m.CreateBlock("", []*wasm.Expr{current, tail}, c.nativeType(sig.ReturnType))

	ftype := c.ensureFunctionType(program.MangledSignatureName(tramp.Signature, c.options.Target), tramp.Signature)
	varTypes := c.collectVarTypes(tramp)
	m.AddFunction(name, ftype, varTypes, body)
	tramp.SetFlag(program.FlagCompiled)
	return tramp, nil
}

// collectVarTypes lists the native types of locals beyond the parameters.
func (c *Compiler) collectVarTypes(fn *program.Function) []wasm.Type {
	paramCount := fn.ParameterOffset() + len(fn.Signature.ParamTypes)
	if fn.HasFlag(program.FlagStart) {
		paramCount = 0
	}
	var out []wasm.Type
	for _, l := range fn.Locals[paramCount:] {
		out = append(out, c.nativeType(l.Type))
	}
	return out
}

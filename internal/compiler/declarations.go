package compiler

import (
	"fmt"

	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/source"
	"coral/internal/types"
	"coral/internal/wasm"
)

// compileGlobal lowers a module-level variable. Entering a second time
// short-circuits; every compiled element carries the flag exactly once.
func (c *Compiler) compileGlobal(g *program.Global) error {
	if g.HasFlag(program.FlagCompiled) {
		return nil
	}
	g.SetFlag(program.FlagCompiled)

	decl := g.Decl
	var span source.Span
	if decl != nil {
		span = decl.Span
	}

	// Imported (declared) globals carry no initializer; only constants
	// may cross the boundary.
	if g.HasFlag(program.FlagDeclared) {
		if decl != nil && decl.Type != nil {
			if t, ok := c.prg.ResolveType(decl.Type, nil); ok {
				g.Type = t
			}
		}
		if g.Type.Kind == types.KindVoid {
			c.error(diag.DeclMissingTypeOrInit, span, "imported global %q needs a type annotation", g.SimpleName())
			return nil
		}
		if !g.HasFlag(program.FlagConstant) {
			c.error(diag.DeclMutableGlobalImport, span, "mutable globals cannot be imported")
			return nil
		}
		c.module.AddGlobalImport(g.InternalName(), "env", g.SimpleName(), c.nativeType(g.Type), false)
		g.SetFlag(program.FlagImported)
		return nil
	}

	var init *wasm.Expr
	done := false
	c.inStartContext(func() {
		if decl != nil && decl.Type != nil {
			t, ok := c.prg.ResolveType(decl.Type, nil)
			if !ok {
				c.error(diag.LowerUnresolved, span, "type %s does not resolve", decl.Type)
				done = true
				return
			}
			g.Type = t
			if decl.Init != nil {
				init = c.compileExpression(decl.Init, g.Type, ConvImplicit, true)
			}
		} else if decl != nil && decl.Init != nil {
			init = c.compileExpression(decl.Init, types.Void, ConvNone, true)
			g.Type = c.currentType
			if g.Type.Kind == types.KindVoid {
				c.error(diag.DeclVoidInitializer, span, "the initializer of %q yields no value", g.SimpleName())
				done = true
				return
			}
		} else if g.Type.Kind == types.KindVoid {
			c.error(diag.DeclMissingTypeOrInit, span, "global %q needs a type annotation or an initializer", g.SimpleName())
			done = true
			return
		}
	})
	if done {
		return nil
	}

	native := c.nativeType(g.Type)
	if init == nil {
		c.module.AddGlobal(g.InternalName(), native, true, c.zeroConstant(g.Type))
		return nil
	}

	if folded, isConst := c.precomputeExpression(init, g.Type); isConst {
		if g.HasFlag(program.FlagConstant) {
			// Inline the literal; the immutable IR global stays so the
			// value may be re-exported.
			g.SetConstant(constValFromExpr(folded))
			c.module.AddGlobal(g.InternalName(), native, false, folded)
			return nil
		}
		c.module.AddGlobal(g.InternalName(), native, true, folded)
		return nil
	}

	if g.HasFlag(program.FlagConstant) {
		c.warn(diag.DeclConstNonConstantInit, span, "constant global %q has a non-constant initializer and is compiled as mutable", g.SimpleName())
	}
	c.module.AddGlobal(g.InternalName(), native, true, c.zeroConstant(g.Type))
	c.startBody = append(c.startBody, c.module.CreateSetGlobal(g.InternalName(), init))
	return nil
}

// compileEnum assigns values in declaration order: explicit expressions
// must precompute to i32 constants, omitted values continue from the
// previous one, and non-constant values fall back to runtime-initialized
// globals.
func (c *Compiler) compileEnum(enum *program.Enum) error {
	if enum.HasFlag(program.FlagCompiled) {
		return nil
	}
	enum.SetFlag(program.FlagCompiled)

	savedEnum := c.currentEnum
	c.currentEnum = enum
	defer func() { c.currentEnum = savedEnum }()

	var prev *program.EnumValue
	for _, v := range enum.Values {
		if v.Decl != nil && v.Decl.Value != nil {
			var init *wasm.Expr
			c.inStartContext(func() {
				init = c.compileExpression(v.Decl.Value, types.I32, ConvImplicit, true)
			})
			if folded, isConst := c.precomputeExpression(init, types.I32); isConst {
				v.SetConstant(int64(folded.ConstI32()))
			} else {
				c.emitRuntimeEnumValue(v, init)
			}
		} else if prev == nil {
			v.SetConstant(0)
		} else if cv, ok := prev.Constant(); ok {
			v.SetConstant(cv.I + 1)
		} else {
			// The previous value only exists at runtime; chain off its
			// global.
			init := c.module.CreateBinary(wasm.AddI32,
				c.module.CreateGetGlobal(prev.InternalName(), wasm.TypeI32),
				c.module.CreateI32(1), wasm.TypeI32)
			c.emitRuntimeEnumValue(v, init)
		}
		v.SetFlag(program.FlagCompiled)
		prev = v
	}
	return nil
}

func (c *Compiler) emitRuntimeEnumValue(v *program.EnumValue, init *wasm.Expr) {
	c.module.AddGlobal(v.InternalName(), wasm.TypeI32, true, c.module.CreateI32(0))
	c.startBody = append(c.startBody, c.module.CreateSetGlobal(v.InternalName(), init))
}

// compileFunction lowers a concrete function instance exactly once.
// Bodiless functions become imports.
func (c *Compiler) compileFunction(fn *program.Function) error {
	if fn.HasFlag(program.FlagCompiled) {
		return nil
	}
	fn.SetFlag(program.FlagCompiled)
	if fn.HasFlag(program.FlagBuiltin) {
		return nil
	}
	sig := fn.Signature
	if sig == nil {
		return fmt.Errorf("compiler: function %q has no signature", fn.InternalName())
	}
	ftype := c.ensureFunctionType(program.MangledSignatureName(sig, c.options.Target), sig)

	body := fn.Body()
	if body == nil {
		if !c.functionImports[fn.InternalName()] {
			c.module.AddFunctionImport(fn.InternalName(), "env", fn.SimpleName(), ftype)
			c.functionImports[fn.InternalName()] = true
		}
		fn.SetFlag(program.FlagImported)
		return nil
	}

	savedFn, savedFlow, savedTemps, savedLabels, savedType := c.currentFunction, c.flow, c.freeTemps, c.labelCounter, c.currentType
	c.currentFunction = fn
	c.flow = newFlow()
	c.freeTemps = make(map[wasm.Type][]*program.Local)
	c.labelCounter = 0
	bodyExpr := c.compileStatement(body)
	if sig.ReturnType.Kind != types.KindVoid && !c.flow.Returns() {
		var span source.Span
		if fn.Prototype != nil && fn.Prototype.Decl != nil && fn.Prototype.Decl.Body != nil {
			span = fn.Prototype.Decl.Body.Span
		}
		c.error(diag.FlowNotAllPathsReturn, span, "function %q lacks a return on some paths", fn.SimpleName())
	}
	varTypes := c.collectVarTypes(fn)
	c.currentFunction, c.flow, c.freeTemps, c.labelCounter, c.currentType = savedFn, savedFlow, savedTemps, savedLabels, savedType

	c.module.AddFunction(fn.InternalName(), ftype, varTypes, bodyExpr)
	return nil
}

// compileClassDeclaration materializes the resolved class as a type
// placeholder; methods and constructors lower on demand.
func (c *Compiler) compileClassDeclaration(proto *program.ClassPrototype, span source.Span) error {
	if proto.HasFlag(program.FlagCompiled) {
		return nil
	}
	if len(proto.Decl.TypeParams) > 0 {
		// Generic classes are only emitted through type-argument
		// applications.
		return nil
	}
	proto.SetFlag(program.FlagCompiled)
	if _, ok := proto.Resolve(c.prg, nil); !ok {
		c.error(diag.LowerUnresolved, span, "class %q does not resolve", proto.SimpleName())
	}
	return nil
}

// compileNamespace lowers each contained declaration per its kind.
func (c *Compiler) compileNamespace(ns *program.Namespace, span source.Span) error {
	if ns.HasFlag(program.FlagCompiled) {
		return nil
	}
	ns.SetFlag(program.FlagCompiled)
	for _, member := range ns.Members {
		if err := c.compileReachableElement(member, span); err != nil {
			return err
		}
	}
	return nil
}

// compileReachableElement dispatches a declaration element honoring
// reachability mode.
func (c *Compiler) compileReachableElement(elem program.Element, span source.Span) error {
	if !c.options.NoTreeShaking && !elem.HasFlag(program.FlagExported) {
		return nil
	}
	switch v := elem.(type) {
	case *program.Global:
		if err := c.compileGlobal(v); err != nil {
			return err
		}
		c.exportGlobal(v, span)
		return nil
	case *program.Enum:
		return c.compileEnum(v)
	case *program.FunctionPrototype:
		if v.HasFlag(program.FlagBuiltin) || v.Decl == nil {
			// Builtins lower at their call sites.
			return nil
		}
		if len(v.Decl.TypeParams) > 0 {
			return nil
		}
		inst, ok := v.Resolve(c.prg, nil)
		if !ok {
			c.error(diag.LowerUnresolved, span, "function %q does not resolve", v.SimpleName())
			return nil
		}
		if err := c.compileFunction(inst); err != nil {
			return err
		}
		if v.HasFlag(program.FlagExported) {
			c.exportFunction(inst)
		}
		return nil
	case *program.ClassPrototype:
		return c.compileClassDeclaration(v, span)
	case *program.Namespace:
		return c.compileNamespace(v, span)
	default:
		return nil
	}
}

// exportFunction places a compiled function on the module export surface.
func (c *Compiler) exportFunction(fn *program.Function) {
	if fn.HasFlag(program.FlagImported) {
		return
	}
	c.module.AddFunctionExport(fn.InternalName(), fn.SimpleName())
}

// exportGlobal exports inlined-constant globals; mutable ones are warned
// and skipped.
func (c *Compiler) exportGlobal(g *program.Global, span source.Span) {
	if !g.HasFlag(program.FlagExported) {
		return
	}
	if !g.HasFlag(program.FlagInlined) {
		c.warn(diag.DeclMutableGlobalExport, span, "mutable global %q cannot be exported and is skipped", g.SimpleName())
		return
	}
	c.module.AddGlobalExport(g.InternalName(), g.SimpleName())
}

// inStartContext runs f with the start function as the current lowering
// context, so initializer temps and labels land in the start function.
func (c *Compiler) inStartContext(f func()) {
	if c.currentFunction == c.startFn {
		f()
		return
	}
	savedFn, savedFlow, savedTemps, savedLabels := c.currentFunction, c.flow, c.freeTemps, c.labelCounter
	c.currentFunction = c.startFn
	if c.startFlow == nil {
		c.startFlow = newFlow()
	}
	c.flow = c.startFlow
	if c.startTemps == nil {
		c.startTemps = make(map[wasm.Type][]*program.Local)
	}
	c.freeTemps = c.startTemps
	c.labelCounter = c.startLabels
	f()
	c.startLabels = c.labelCounter
	c.currentFunction, c.flow, c.freeTemps, c.labelCounter = savedFn, savedFlow, savedTemps, savedLabels
}

package compiler

import (
	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/types"
	"coral/internal/wasm"
)

// compileCallBuiltin dispatches a call to a prototype marked builtin.
// Unknown builtins report and lower to an unreachable.
func (c *Compiler) compileCallBuiltin(e *ast.Expr, data ast.CallData, proto *program.FunctionPrototype) *wasm.Expr {
	m := c.module
	switch proto.SimpleName() {
	case "assert":
		// assert(cond) traps when the condition is false; a no-op under
		// NoAssert.
		c.currentType = types.Void
		if len(data.Args) < 1 {
			c.error(diag.LowerArityMismatch, e.Span, "assert expects a condition")
			return m.CreateUnreachable()
		}
		if c.options.NoAssert {
			return m.CreateNop()
		}
		cond := c.compileExpression(data.Args[0], types.Bool, ConvNone, true)
		check := c.makeIsFalseish(cond, c.currentType)
		c.currentType = types.Void
		return m.CreateIf(check, m.CreateUnreachable(), nil)

	case "unreachable", "abort":
		c.currentType = types.Void
		return m.CreateUnreachable()

	case "sizeof":
		// sizeof<T>() folds to the byte size of T.
		ctx := map[string]types.Type(nil)
		if c.currentFunction != nil {
			ctx = c.currentFunction.TypeArgCtx
		}
		if len(data.TypeArgs) != 1 {
			c.error(diag.LowerArityMismatch, e.Span, "sizeof expects exactly one type argument")
			c.currentType = types.Usize
			return m.CreateUnreachable()
		}
		t, ok := c.prg.ResolveType(data.TypeArgs[0], ctx)
		if !ok {
			c.error(diag.LowerUnresolved, e.Span, "type argument %s does not resolve", data.TypeArgs[0])
			c.currentType = types.Usize
			return m.CreateUnreachable()
		}
		size := t.ByteSize(c.options.Target)
		if t.Reference() {
			if cls, okC := c.prg.ClassByID(t.Class); okC {
				size = cls.MemorySize
			}
		}
		c.currentType = types.Usize
		return c.pointerConstant(size)

	case "select":
		if len(data.Args) != 3 {
			c.error(diag.LowerArityMismatch, e.Span, "select expects (ifTrue, ifFalse, condition)")
			c.currentType = types.Void
			return m.CreateUnreachable()
		}
		ifTrue := c.compileExpression(data.Args[0], types.Void, ConvNone, true)
		valueType := c.currentType
		ifFalse := c.compileExpression(data.Args[1], valueType, ConvImplicit, true)
		cond := c.compileExpression(data.Args[2], types.Bool, ConvNone, true)
		cond = c.makeIsTrueish(cond, c.currentType)
		c.currentType = valueType
		return m.CreateSelect(cond, ifTrue, ifFalse)

	case "changetype":
		// changetype<T>(value) reinterprets without conversion; the
		// native types must agree.
		ctx := map[string]types.Type(nil)
		if c.currentFunction != nil {
			ctx = c.currentFunction.TypeArgCtx
		}
		if len(data.TypeArgs) != 1 || len(data.Args) != 1 {
			c.error(diag.LowerArityMismatch, e.Span, "changetype expects one type argument and one value")
			c.currentType = types.Void
			return m.CreateUnreachable()
		}
		to, ok := c.prg.ResolveType(data.TypeArgs[0], ctx)
		if !ok {
			c.error(diag.LowerUnresolved, e.Span, "type argument %s does not resolve", data.TypeArgs[0])
			c.currentType = types.Void
			return m.CreateUnreachable()
		}
		value := c.compileExpression(data.Args[0], to, ConvNone, true)
		if c.nativeType(c.currentType) != c.nativeType(to) {
			c.error(diag.TypeUnexpected, e.Span, "changetype requires matching native types, got %s and %s", c.currentType, to)
		}
		c.currentType = to
		return value

	case "load":
		ctx := map[string]types.Type(nil)
		if c.currentFunction != nil {
			ctx = c.currentFunction.TypeArgCtx
		}
		if len(data.TypeArgs) != 1 || len(data.Args) != 1 {
			c.error(diag.LowerArityMismatch, e.Span, "load expects one type argument and a pointer")
			c.currentType = types.Void
			return m.CreateUnreachable()
		}
		t, ok := c.prg.ResolveType(data.TypeArgs[0], ctx)
		if !ok {
			c.currentType = types.Void
			return m.CreateUnreachable()
		}
		ptr := c.compileExpression(data.Args[0], types.Usize, ConvImplicit, false)
		c.currentType = t
		bytes := t.ByteSize(c.options.Target)
		return m.CreateLoad(bytes, t.Signed(), 0, bytes, c.nativeType(t), ptr)

	case "store":
		ctx := map[string]types.Type(nil)
		if c.currentFunction != nil {
			ctx = c.currentFunction.TypeArgCtx
		}
		if len(data.TypeArgs) != 1 || len(data.Args) != 2 {
			c.error(diag.LowerArityMismatch, e.Span, "store expects one type argument, a pointer and a value")
			c.currentType = types.Void
			return m.CreateUnreachable()
		}
		t, ok := c.prg.ResolveType(data.TypeArgs[0], ctx)
		if !ok {
			c.currentType = types.Void
			return m.CreateUnreachable()
		}
		ptr := c.compileExpression(data.Args[0], types.Usize, ConvImplicit, false)
		value := c.compileExpression(data.Args[1], t, ConvImplicit, true)
		c.currentType = types.Void
		bytes := t.ByteSize(c.options.Target)
		return m.CreateStore(bytes, 0, bytes, ptr, value, c.nativeType(t))

	default:
		c.error(diag.LowerUnsupportedBuiltin, e.Span, "builtin %q is not supported", proto.SimpleName())
		c.currentType = types.Void
		return m.CreateUnreachable()
	}
}

// ensureAllocatorImport makes the platform allocator callable: a program
// function with the configured name wins, otherwise an import from env is
// materialized.
func (c *Compiler) ensureAllocatorImport() (string, error) {
	name := c.options.AllocateImpl
	if elem, ok := c.prg.Elements[name]; ok {
		if proto, okP := elem.(*program.FunctionPrototype); okP {
			if inst, okR := proto.Resolve(c.prg, nil); okR {
				if err := c.compileFunction(inst); err != nil {
					return "", err
				}
				return inst.InternalName(), nil
			}
		}
	}
	if !c.functionImports[name] {
		ptr := c.nativeType(types.Usize)
		ftype := c.module.AddFunctionType("alloc_"+name, []wasm.Type{ptr}, ptr)
		c.module.AddFunctionImport(name, "env", name, ftype)
		c.functionImports[name] = true
	}
	return name, nil
}

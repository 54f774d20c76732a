package compiler

import (
	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/types"
	"coral/internal/wasm"
)

// compileNew lowers `new C(args)`: allocate the instance, run field
// initializers, call the constructor when one exists, and yield the
// pointer.
func (c *Compiler) compileNew(e *ast.Expr) *wasm.Expr {
	data := e.Data.(ast.NewData)
	m := c.module

	ctx := map[string]types.Type(nil)
	if c.currentFunction != nil {
		ctx = c.currentFunction.TypeArgCtx
	}
	classType, ok := c.prg.ResolveType(data.Class, ctx)
	if !ok || !classType.Reference() {
		c.error(diag.LowerUnresolved, e.Span, "cannot resolve class %s", data.Class)
		c.currentType = types.Usize
		return m.CreateUnreachable()
	}
	cls, ok := c.prg.ClassByID(classType.Class)
	if !ok {
		c.currentType = classType
		return m.CreateUnreachable()
	}

	allocName, err := c.ensureAllocatorImport()
	if err != nil {
		c.error(diag.LowerUnresolved, e.Span, "%v", err)
		c.currentType = classType
		return m.CreateUnreachable()
	}

	size := cls.MemorySize
	if size == 0 {
		size = 1
	}
	alloc := m.CreateCall(allocName, []*wasm.Expr{c.pointerConstant(size)}, c.nativeType(types.Usize))

	tmp := c.getTempLocal(classType)
	stmts := []*wasm.Expr{m.CreateSetLocal(localIndex(tmp), alloc)}

	// Field initializers store at their recorded offsets.
	for _, field := range cls.Fields {
		if field.Decl == nil || field.Decl.Init == nil {
			continue
		}
		init := c.compileExpression(field.Decl.Init, field.Type, ConvImplicit, true)
		bytes := field.Type.ByteSize(c.options.Target)
		ptr := m.CreateGetLocal(localIndex(tmp), c.nativeType(classType))
		stmts = append(stmts, m.CreateStore(bytes, field.MemoryOffset, bytes, ptr, init, c.nativeType(field.Type)))
	}

	if cls.Constructor != nil {
		ctor, okC := cls.Constructor.Resolve(c.prg, nil)
		if !okC {
			c.currentType = classType
			return m.CreateUnreachable()
		}
		if !c.checkCallSignature(ctor.Signature, len(data.Args), true, e) {
			c.currentType = classType
			return m.CreateUnreachable()
		}
		if err := c.compileFunction(ctor); err != nil {
			c.error(diag.LowerUnresolved, e.Span, "%v", err)
		}
		operands := []*wasm.Expr{m.CreateGetLocal(localIndex(tmp), c.nativeType(classType))}
		for i, arg := range data.Args {
			operands = append(operands, c.compileExpression(arg, ctor.Signature.ParamTypes[i], ConvImplicit, true))
		}
		call := m.CreateCall(ctor.InternalName(), operands, c.nativeType(ctor.Signature.ReturnType))
		if ctor.Signature.ReturnType.Kind != types.KindVoid {
			call = m.CreateDrop(call)
		}
		stmts = append(stmts, call)
	} else if len(data.Args) > 0 {
		c.error(diag.LowerArityMismatch, e.Span, "class %q has no constructor", cls.SimpleName())
	}

	stmts = append(stmts, m.CreateGetLocal(localIndex(tmp), c.nativeType(classType)))
	c.freeTempLocal(tmp)
	c.currentType = classType
	return m.CreateBlock("", stmts, c.nativeType(classType))
}

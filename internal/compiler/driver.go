package compiler

import (
	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/types"
	"coral/internal/wasm"
)

// compileSource lowers one translation unit: declarations per their kind,
// everything else into the start function, in source order. A set of
// normalized paths guards re-entry.
func (c *Compiler) compileSource(src *program.Source) error {
	if c.compiledSources[src.NormalizedPath] {
		return nil
	}
	c.compiledSources[src.NormalizedPath] = true

	for _, stmt := range src.Statements {
		switch stmt.Kind {
		case ast.StmtImport:
			data := stmt.Data.(ast.ImportData)
			target, ok := c.prg.SourceByPath(data.Path)
			if !ok {
				c.error(diag.LowerUnresolved, stmt.Span, "imported source %q is not part of the program", data.Path)
				continue
			}
			if err := c.compileSource(target); err != nil {
				return err
			}

		case ast.StmtExport:
			if err := c.compileExportStatement(stmt); err != nil {
				return err
			}

		case ast.StmtVariable:
			data := stmt.Data.(ast.VariableData)
			if !data.TopLevel {
				// Top-level code that is not a declaration feeds the
				// start function.
				c.appendStartStatement(stmt)
				continue
			}
			for _, decl := range data.Declarators {
				elem, ok := c.prg.Elements[decl.InternalName]
				if !ok {
					c.error(diag.LowerUnresolved, decl.Span, "global %q is not registered", decl.Name)
					continue
				}
				g, ok := elem.(*program.Global)
				if !ok {
					continue
				}
				if !c.options.NoTreeShaking && !g.HasFlag(program.FlagExported) {
					continue
				}
				if err := c.compileGlobal(g); err != nil {
					return err
				}
				c.exportGlobal(g, decl.Span)
			}

		case ast.StmtFunctionDecl:
			data := stmt.Data.(ast.FunctionDeclData)
			elem, ok := c.prg.Elements[data.InternalName]
			if !ok {
				c.error(diag.LowerUnresolved, stmt.Span, "function %q is not registered", data.Name)
				continue
			}
			if err := c.compileReachableElement(elem, stmt.Span); err != nil {
				return err
			}

		case ast.StmtEnumDecl:
			data := stmt.Data.(ast.EnumDeclData)
			if elem, ok := c.prg.Elements[data.InternalName]; ok {
				if err := c.compileReachableElement(elem, stmt.Span); err != nil {
					return err
				}
			}

		case ast.StmtClassDecl:
			data := stmt.Data.(ast.ClassDeclData)
			if elem, ok := c.prg.Elements[data.InternalName]; ok {
				if err := c.compileReachableElement(elem, stmt.Span); err != nil {
					return err
				}
			}

		case ast.StmtNamespaceDecl:
			data := stmt.Data.(ast.NamespaceDeclData)
			if elem, ok := c.prg.Elements[data.InternalName]; ok {
				if err := c.compileReachableElement(elem, stmt.Span); err != nil {
					return err
				}
			}

		case ast.StmtInterfaceDecl:
			c.error(diag.LowerNotImplemented, stmt.Span, "interfaces are not supported")

		default:
			c.appendStartStatement(stmt)
		}
	}
	return nil
}

// appendStartStatement lowers a top-level non-declaration statement into
// the start function body.
func (c *Compiler) appendStartStatement(stmt *ast.Stmt) {
	c.inStartContext(func() {
		c.startBody = append(c.startBody, c.compileStatement(stmt))
	})
}

// compileExportStatement handles re-exports: the transitively named
// source compiles first, then the selected exports are emitted.
func (c *Compiler) compileExportStatement(stmt *ast.Stmt) error {
	data := stmt.Data.(ast.ExportData)
	if data.Path != "" {
		target, ok := c.prg.SourceByPath(data.Path)
		if !ok {
			c.error(diag.LowerUnresolved, stmt.Span, "re-exported source %q is not part of the program", data.Path)
			return nil
		}
		if err := c.compileSource(target); err != nil {
			return err
		}
	}
	for _, member := range data.Members {
		elem, ok := c.prg.Exports[member.LocalName]
		if !ok {
			elem, ok = c.prg.Elements[member.LocalName]
		}
		if !ok {
			c.error(diag.LowerUnresolved, member.Span, "export %q does not resolve", member.LocalName)
			continue
		}
		switch v := elem.(type) {
		case *program.FunctionPrototype:
			if len(v.Decl.TypeParams) > 0 {
				continue
			}
			inst, okR := v.Resolve(c.prg, nil)
			if !okR {
				continue
			}
			if err := c.compileFunction(inst); err != nil {
				return err
			}
			c.module.AddFunctionExport(inst.InternalName(), member.ExternalName)
		case *program.Global:
			if err := c.compileGlobal(v); err != nil {
				return err
			}
			if v.HasFlag(program.FlagInlined) {
				c.module.AddGlobalExport(v.InternalName(), member.ExternalName)
			} else {
				c.warn(diag.DeclMutableGlobalExport, member.Span, "mutable global %q cannot be exported and is skipped", member.LocalName)
			}
		default:
		}
	}
	return nil
}

// finalize assembles the start function, the function table, static
// memory and HEAP_BASE.
func (c *Compiler) finalize() error {
	if len(c.startBody) > 0 {
		ftype := c.module.AddFunctionType("v_v", nil, wasm.TypeNone)
		body := c.module.CreateBlock("", c.startBody, wasm.TypeNone)
		varTypes := c.collectVarTypes(c.startFn)
		c.module.AddFunction(StartName, ftype, varTypes, body)
		c.module.SetStart(StartName)
	}

	c.writeFunctionTable()

	if c.options.NoMemory {
		return nil
	}
	ptr := c.options.Target.PointerSize()
	c.memoryOffset = alignOffset(c.memoryOffset, ptr)
	c.module.AddGlobal(HeapBaseName, c.nativeType(types.Usize), false, c.pointerConstant(c.memoryOffset))

	pages := (c.memoryOffset + memoryPageSize - 1) / memoryPageSize
	if pages == 0 {
		pages = 1
	}
	maxPages := c.options.Target.MaxMemoryPages()
	if c.options.ImportMemory {
		c.module.AddMemoryImport("env", "memory")
		c.module.SetMemory(pages, maxPages, "", c.segments)
		return nil
	}
	c.module.SetMemory(pages, maxPages, "memory", c.segments)
	return nil
}

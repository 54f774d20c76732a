package program

import (
	"coral/internal/ast"
)

// Bind registers the elements declared by a source's top-level statements.
// The frontend normally ships a bound model; test fixtures and snapshot
// loading reuse the same entry point.
func (p *Program) Bind(src *Source) {
	for _, stmt := range src.Statements {
		p.bindStatement(stmt, nil)
	}
}

// bindStatement registers one declaration; ns receives members when the
// declaration sits inside a namespace.
func (p *Program) bindStatement(stmt *ast.Stmt, ns *Namespace) {
	register := func(e Element, exported bool, externalName string) {
		p.Register(e)
		if ns != nil {
			ns.Members[e.SimpleName()] = e
		}
		if exported && ns == nil {
			p.RegisterExport(externalName, e)
		}
	}

	switch stmt.Kind {
	case ast.StmtVariable:
		data := stmt.Data.(ast.VariableData)
		if !data.TopLevel {
			return
		}
		flags := declFlags(data.Flags)
		if data.Const {
			flags |= FlagConstant
		}
		for _, decl := range data.Declarators {
			internal := decl.InternalName
			if internal == "" {
				internal = decl.Name
				decl.InternalName = internal
			}
			g := &Global{
				ElementBase: ElementBase{Name: decl.Name, Internal: internal, Flags: flags},
				Decl:        decl,
			}
			register(g, flags&FlagExported != 0, decl.Name)
		}

	case ast.StmtFunctionDecl:
		data := stmt.Data.(ast.FunctionDeclData)
		if data.InternalName == "" {
			data.InternalName = data.Name
			stmt.Data = data
		}
		flags := declFlags(data.Flags)
		if len(data.TypeParams) > 0 {
			flags |= FlagGeneric
		}
		proto := &FunctionPrototype{
			ElementBase: ElementBase{Name: data.Name, Internal: data.InternalName, Flags: flags},
			Decl:        &data,
		}
		register(proto, flags&FlagExported != 0, data.Name)

	case ast.StmtClassDecl:
		data := stmt.Data.(ast.ClassDeclData)
		if data.InternalName == "" {
			data.InternalName = data.Name
			stmt.Data = data
		}
		flags := declFlags(data.Flags)
		if len(data.TypeParams) > 0 {
			flags |= FlagGeneric
		}
		proto := &ClassPrototype{
			ElementBase: ElementBase{Name: data.Name, Internal: data.InternalName, Flags: flags},
			Decl:        &data,
		}
		register(proto, flags&FlagExported != 0, data.Name)

	case ast.StmtEnumDecl:
		data := stmt.Data.(ast.EnumDeclData)
		if data.InternalName == "" {
			data.InternalName = data.Name
			stmt.Data = data
		}
		flags := declFlags(data.Flags)
		enum := &Enum{
			ElementBase: ElementBase{Name: data.Name, Internal: data.InternalName, Flags: flags},
			Decl:        &data,
		}
		for i, vd := range data.Values {
			if vd.InternalName == "" {
				vd.InternalName = data.InternalName + "." + vd.Name
			}
			v := &EnumValue{
				ElementBase: ElementBase{Name: vd.Name, Internal: vd.InternalName},
				Enum:        enum,
				Decl:        vd,
				Index:       i,
			}
			enum.Values = append(enum.Values, v)
			p.Register(v)
		}
		register(enum, flags&FlagExported != 0, data.Name)

	case ast.StmtNamespaceDecl:
		data := stmt.Data.(ast.NamespaceDeclData)
		if data.InternalName == "" {
			data.InternalName = data.Name
			stmt.Data = data
		}
		flags := declFlags(data.Flags)
		nested := &Namespace{
			ElementBase: ElementBase{Name: data.Name, Internal: data.InternalName, Flags: flags},
			Decl:        &data,
			Members:     make(map[string]Element),
		}
		for _, member := range data.Members {
			p.bindStatement(member, nested)
		}
		register(nested, flags&FlagExported != 0, data.Name)
	}
}

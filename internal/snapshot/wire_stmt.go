package snapshot

import (
	"coral/internal/ast"
)

func stmtToWire(s *ast.Stmt) *wireStmt {
	if s == nil {
		return nil
	}
	out := &wireStmt{Kind: uint8(s.Kind), Span: spanToWire(s.Span)}
	switch data := s.Data.(type) {
	case ast.BlockData:
		for _, st := range data.Statements {
			out.Stmts = append(out.Stmts, stmtToWire(st))
		}
	case ast.IfData:
		out.Cond = exprToWire(data.Cond)
		out.Body = stmtToWire(data.Then)
		out.Else = stmtToWire(data.Else)
	case ast.WhileData:
		out.Cond = exprToWire(data.Cond)
		out.Body = stmtToWire(data.Body)
	case ast.DoData:
		out.Cond = exprToWire(data.Cond)
		out.Body = stmtToWire(data.Body)
	case ast.ForData:
		out.Init = stmtToWire(data.Init)
		out.Cond = exprToWire(data.Cond)
		out.Update = exprToWire(data.Update)
		out.Body = stmtToWire(data.Body)
	case ast.SwitchData:
		out.Cond = exprToWire(data.Cond)
		for i := range data.Cases {
			cs := &data.Cases[i]
			wc := &wireCase{Label: exprToWire(cs.Label), Span: spanToWire(cs.Span)}
			for _, st := range cs.Statements {
				wc.Statements = append(wc.Statements, stmtToWire(st))
			}
			out.Cases = append(out.Cases, wc)
		}
	case ast.ReturnData:
		out.Value = exprToWire(data.Value)
	case ast.ThrowData:
		out.Value = exprToWire(data.Value)
	case ast.BreakData:
		out.Label = data.Label
	case ast.ContinueData:
		out.Label = data.Label
	case ast.VariableData:
		out.Const = data.Const
		out.TopLevel = data.TopLevel
		out.Flags = uint16(data.Flags)
		for _, d := range data.Declarators {
			out.Declarators = append(out.Declarators, &wireDeclarator{
				Name:         d.Name,
				InternalName: d.InternalName,
				Type:         typeRefToWire(d.Type),
				Init:         exprToWire(d.Init),
				Span:         spanToWire(d.Span),
			})
		}
	case ast.ExpressionData:
		out.Value = exprToWire(data.Expr)
	case ast.FunctionDeclData:
		out.Name = data.Name
		out.InternalName = data.InternalName
		out.Flags = uint16(data.Flags)
		out.TypeParams = data.TypeParams
		out.ReturnType = typeRefToWire(data.ReturnType)
		out.Body = stmtToWire(data.Body)
		for _, p := range data.Params {
			out.Params = append(out.Params, &wireParam{
				Name: p.Name,
				Type: typeRefToWire(p.Type),
				Init: exprToWire(p.Init),
				Rest: p.Rest,
				Span: spanToWire(p.Span),
			})
		}
	case ast.ClassDeclData:
		out.Name = data.Name
		out.InternalName = data.InternalName
		out.Flags = uint16(data.Flags)
		out.TypeParams = data.TypeParams
		out.Extends = typeRefToWire(data.Extends)
		out.Constructor = stmtToWire(data.Constructor)
		for _, f := range data.Fields {
			out.Fields = append(out.Fields, &wireField{
				Name:  f.Name,
				Flags: uint16(f.Flags),
				Type:  typeRefToWire(f.Type),
				Init:  exprToWire(f.Init),
				Span:  spanToWire(f.Span),
			})
		}
		for _, method := range data.Methods {
			out.Methods = append(out.Methods, stmtToWire(method))
		}
	case ast.EnumDeclData:
		out.Name = data.Name
		out.InternalName = data.InternalName
		out.Flags = uint16(data.Flags)
		for _, v := range data.Values {
			out.Values = append(out.Values, &wireEnumValue{
				Name:         v.Name,
				InternalName: v.InternalName,
				Value:        exprToWire(v.Value),
				Span:         spanToWire(v.Span),
			})
		}
	case ast.NamespaceDeclData:
		out.Name = data.Name
		out.InternalName = data.InternalName
		out.Flags = uint16(data.Flags)
		for _, member := range data.Members {
			out.Members = append(out.Members, stmtToWire(member))
		}
	case ast.ImportData:
		out.Path = data.Path
	case ast.ExportData:
		out.Path = data.Path
		for i := range data.Members {
			m := &data.Members[i]
			out.Exports = append(out.Exports, &wireExportMember{
				Local:    m.LocalName,
				External: m.ExternalName,
				Span:     spanToWire(m.Span),
			})
		}
	}
	return out
}

func (w *wireStmt) stmt() *ast.Stmt {
	if w == nil {
		return nil
	}
	out := &ast.Stmt{Kind: ast.StmtKind(w.Kind), Span: w.Span.span()}
	switch out.Kind {
	case ast.StmtBlock:
		data := ast.BlockData{}
		for _, st := range w.Stmts {
			data.Statements = append(data.Statements, st.stmt())
		}
		out.Data = data
	case ast.StmtIf:
		out.Data = ast.IfData{Cond: w.Cond.expr(), Then: w.Body.stmt(), Else: w.Else.stmt()}
	case ast.StmtWhile:
		out.Data = ast.WhileData{Cond: w.Cond.expr(), Body: w.Body.stmt()}
	case ast.StmtDo:
		out.Data = ast.DoData{Cond: w.Cond.expr(), Body: w.Body.stmt()}
	case ast.StmtFor:
		out.Data = ast.ForData{Init: w.Init.stmt(), Cond: w.Cond.expr(), Update: w.Update.expr(), Body: w.Body.stmt()}
	case ast.StmtSwitch:
		data := ast.SwitchData{Cond: w.Cond.expr()}
		for _, wc := range w.Cases {
			cs := ast.SwitchCase{Label: wc.Label.expr(), Span: wc.Span.span()}
			for _, st := range wc.Statements {
				cs.Statements = append(cs.Statements, st.stmt())
			}
			data.Cases = append(data.Cases, cs)
		}
		out.Data = data
	case ast.StmtReturn:
		out.Data = ast.ReturnData{Value: w.Value.expr()}
	case ast.StmtThrow:
		out.Data = ast.ThrowData{Value: w.Value.expr()}
	case ast.StmtBreak:
		out.Data = ast.BreakData{Label: w.Label}
	case ast.StmtContinue:
		out.Data = ast.ContinueData{Label: w.Label}
	case ast.StmtVariable:
		data := ast.VariableData{Const: w.Const, TopLevel: w.TopLevel, Flags: ast.DeclFlags(w.Flags)}
		for _, d := range w.Declarators {
			data.Declarators = append(data.Declarators, &ast.VariableDeclarator{
				Name:         d.Name,
				InternalName: d.InternalName,
				Type:         d.Type.typeRef(),
				Init:         d.Init.expr(),
				Span:         d.Span.span(),
			})
		}
		out.Data = data
	case ast.StmtExpression:
		out.Data = ast.ExpressionData{Expr: w.Value.expr()}
	case ast.StmtEmpty:
		out.Data = ast.EmptyData{}
	case ast.StmtFunctionDecl:
		data := ast.FunctionDeclData{
			Name:         w.Name,
			InternalName: w.InternalName,
			Flags:        ast.DeclFlags(w.Flags),
			TypeParams:   w.TypeParams,
			ReturnType:   w.ReturnType.typeRef(),
			Body:         w.Body.stmt(),
		}
		for _, p := range w.Params {
			data.Params = append(data.Params, &ast.Parameter{
				Name: p.Name,
				Type: p.Type.typeRef(),
				Init: p.Init.expr(),
				Rest: p.Rest,
				Span: p.Span.span(),
			})
		}
		out.Data = data
	case ast.StmtClassDecl:
		data := ast.ClassDeclData{
			Name:         w.Name,
			InternalName: w.InternalName,
			Flags:        ast.DeclFlags(w.Flags),
			TypeParams:   w.TypeParams,
			Extends:      w.Extends.typeRef(),
			Constructor:  w.Constructor.stmt(),
		}
		for _, f := range w.Fields {
			data.Fields = append(data.Fields, &ast.FieldDecl{
				Name:  f.Name,
				Flags: ast.DeclFlags(f.Flags),
				Type:  f.Type.typeRef(),
				Init:  f.Init.expr(),
				Span:  f.Span.span(),
			})
		}
		for _, method := range w.Methods {
			data.Methods = append(data.Methods, method.stmt())
		}
		out.Data = data
	case ast.StmtEnumDecl:
		data := ast.EnumDeclData{
			Name:         w.Name,
			InternalName: w.InternalName,
			Flags:        ast.DeclFlags(w.Flags),
		}
		for _, v := range w.Values {
			data.Values = append(data.Values, &ast.EnumValueDecl{
				Name:         v.Name,
				InternalName: v.InternalName,
				Value:        v.Value.expr(),
				Span:         v.Span.span(),
			})
		}
		out.Data = data
	case ast.StmtNamespaceDecl:
		data := ast.NamespaceDeclData{
			Name:         w.Name,
			InternalName: w.InternalName,
			Flags:        ast.DeclFlags(w.Flags),
		}
		for _, member := range w.Members {
			data.Members = append(data.Members, member.stmt())
		}
		out.Data = data
	case ast.StmtImport:
		out.Data = ast.ImportData{Path: w.Path}
	case ast.StmtExport:
		data := ast.ExportData{Path: w.Path}
		for _, m := range w.Exports {
			data.Members = append(data.Members, ast.ExportMember{
				LocalName:    m.Local,
				ExternalName: m.External,
				Span:         m.Span.span(),
			})
		}
		out.Data = data
	case ast.StmtInterfaceDecl:
		out.Data = ast.InterfaceDeclData{Name: w.Name}
	}
	return out
}

package snapshot

import (
	"coral/internal/ast"
	"coral/internal/source"
)

// The wire model is a flattened, tag-driven mirror of the ast package:
// one struct per node class with a kind discriminator and a superset of
// payload fields, so msgpack needs no interface support.

type wireSpan struct {
	File  uint32 `msgpack:"f"`
	Start uint32 `msgpack:"s"`
	End   uint32 `msgpack:"e"`
}

func spanToWire(sp source.Span) wireSpan {
	return wireSpan{File: uint32(sp.File), Start: sp.Start, End: sp.End}
}

func (w wireSpan) span() source.Span {
	return source.Span{File: source.FileID(w.File), Start: w.Start, End: w.End}
}

type wireTypeRef struct {
	Name string         `msgpack:"n"`
	Args []*wireTypeRef `msgpack:"a,omitempty"`
}

func typeRefToWire(t *ast.TypeRef) *wireTypeRef {
	if t == nil {
		return nil
	}
	out := &wireTypeRef{Name: t.Name}
	for _, a := range t.Args {
		out.Args = append(out.Args, typeRefToWire(a))
	}
	return out
}

func (w *wireTypeRef) typeRef() *ast.TypeRef {
	if w == nil {
		return nil
	}
	out := &ast.TypeRef{Name: w.Name}
	for _, a := range w.Args {
		out.Args = append(out.Args, a.typeRef())
	}
	return out
}

type wireExpr struct {
	Kind uint8    `msgpack:"k"`
	Span wireSpan `msgpack:"sp"`

	// Literals.
	LitKind     uint8       `msgpack:"lk,omitempty"`
	IntValue    int64       `msgpack:"iv,omitempty"`
	FloatValue  float64     `msgpack:"fv,omitempty"`
	StringValue string      `msgpack:"sv,omitempty"`
	Elements    []*wireExpr `msgpack:"el,omitempty"`

	// Names.
	Name     string `msgpack:"nm,omitempty"`
	Target   string `msgpack:"tg,omitempty"`
	Property string `msgpack:"pr,omitempty"`

	// Operators.
	Op uint8 `msgpack:"op,omitempty"`

	// Subexpressions.
	A *wireExpr `msgpack:"a,omitempty"`
	B *wireExpr `msgpack:"b,omitempty"`
	C *wireExpr `msgpack:"c,omitempty"`

	// Calls and new.
	Args     []*wireExpr    `msgpack:"ar,omitempty"`
	TypeArgs []*wireTypeRef `msgpack:"ta,omitempty"`
	Class    *wireTypeRef   `msgpack:"cl,omitempty"`
}

func exprToWire(e *ast.Expr) *wireExpr {
	if e == nil {
		return nil
	}
	out := &wireExpr{Kind: uint8(e.Kind), Span: spanToWire(e.Span)}
	switch data := e.Data.(type) {
	case ast.LiteralData:
		out.LitKind = uint8(data.Kind)
		out.IntValue = data.IntValue
		out.FloatValue = data.FloatValue
		out.StringValue = data.StringValue
		for _, el := range data.Elements {
			out.Elements = append(out.Elements, exprToWire(el))
		}
	case ast.IdentifierData:
		out.Name = data.Name
		out.Target = data.Target
	case ast.PropertyAccessData:
		out.A = exprToWire(data.Object)
		out.Property = data.Property
	case ast.ElementAccessData:
		out.A = exprToWire(data.Object)
		out.B = exprToWire(data.Index)
	case ast.CallData:
		out.A = exprToWire(data.Callee)
		for _, a := range data.Args {
			out.Args = append(out.Args, exprToWire(a))
		}
		for _, t := range data.TypeArgs {
			out.TypeArgs = append(out.TypeArgs, typeRefToWire(t))
		}
	case ast.NewData:
		out.Class = typeRefToWire(data.Class)
		for _, a := range data.Args {
			out.Args = append(out.Args, exprToWire(a))
		}
	case ast.UnaryData:
		out.Op = uint8(data.Op)
		out.A = exprToWire(data.Operand)
	case ast.BinaryData:
		out.Op = uint8(data.Op)
		out.A = exprToWire(data.Left)
		out.B = exprToWire(data.Right)
	case ast.TernaryData:
		out.A = exprToWire(data.Cond)
		out.B = exprToWire(data.Then)
		out.C = exprToWire(data.Else)
	case ast.ParenData:
		out.A = exprToWire(data.Inner)
	}
	return out
}

func (w *wireExpr) expr() *ast.Expr {
	if w == nil {
		return nil
	}
	out := &ast.Expr{Kind: ast.ExprKind(w.Kind), Span: w.Span.span()}
	switch out.Kind {
	case ast.ExprLiteral:
		data := ast.LiteralData{
			Kind:        ast.LiteralKind(w.LitKind),
			IntValue:    w.IntValue,
			FloatValue:  w.FloatValue,
			StringValue: w.StringValue,
		}
		for _, el := range w.Elements {
			data.Elements = append(data.Elements, el.expr())
		}
		out.Data = data
	case ast.ExprIdentifier:
		out.Data = ast.IdentifierData{Name: w.Name, Target: w.Target}
	case ast.ExprPropertyAccess:
		out.Data = ast.PropertyAccessData{Object: w.A.expr(), Property: w.Property}
	case ast.ExprElementAccess:
		out.Data = ast.ElementAccessData{Object: w.A.expr(), Index: w.B.expr()}
	case ast.ExprCall:
		data := ast.CallData{Callee: w.A.expr()}
		for _, a := range w.Args {
			data.Args = append(data.Args, a.expr())
		}
		for _, t := range w.TypeArgs {
			data.TypeArgs = append(data.TypeArgs, t.typeRef())
		}
		out.Data = data
	case ast.ExprNew:
		data := ast.NewData{Class: w.Class.typeRef()}
		for _, a := range w.Args {
			data.Args = append(data.Args, a.expr())
		}
		out.Data = data
	case ast.ExprUnary:
		out.Data = ast.UnaryData{Op: ast.UnaryOp(w.Op), Operand: w.A.expr()}
	case ast.ExprBinary:
		out.Data = ast.BinaryData{Op: ast.BinaryOp(w.Op), Left: w.A.expr(), Right: w.B.expr()}
	case ast.ExprTernary:
		out.Data = ast.TernaryData{Cond: w.A.expr(), Then: w.B.expr(), Else: w.C.expr()}
	case ast.ExprParenthesized:
		out.Data = ast.ParenData{Inner: w.A.expr()}
	}
	return out
}

type wireParam struct {
	Name string       `msgpack:"n"`
	Type *wireTypeRef `msgpack:"t,omitempty"`
	Init *wireExpr    `msgpack:"i,omitempty"`
	Rest bool         `msgpack:"r,omitempty"`
	Span wireSpan     `msgpack:"sp"`
}

type wireDeclarator struct {
	Name         string       `msgpack:"n"`
	InternalName string       `msgpack:"in,omitempty"`
	Type         *wireTypeRef `msgpack:"t,omitempty"`
	Init         *wireExpr    `msgpack:"i,omitempty"`
	Span         wireSpan     `msgpack:"sp"`
}

type wireField struct {
	Name  string       `msgpack:"n"`
	Flags uint16       `msgpack:"f,omitempty"`
	Type  *wireTypeRef `msgpack:"t,omitempty"`
	Init  *wireExpr    `msgpack:"i,omitempty"`
	Span  wireSpan     `msgpack:"sp"`
}

type wireEnumValue struct {
	Name         string    `msgpack:"n"`
	InternalName string    `msgpack:"in,omitempty"`
	Value        *wireExpr `msgpack:"v,omitempty"`
	Span         wireSpan  `msgpack:"sp"`
}

type wireCase struct {
	Label      *wireExpr   `msgpack:"l,omitempty"`
	Statements []*wireStmt `msgpack:"s,omitempty"`
	Span       wireSpan    `msgpack:"sp"`
}

type wireExportMember struct {
	Local    string   `msgpack:"l"`
	External string   `msgpack:"x"`
	Span     wireSpan `msgpack:"sp"`
}

type wireStmt struct {
	Kind uint8    `msgpack:"k"`
	Span wireSpan `msgpack:"sp"`

	// Shared subnodes.
	Cond  *wireExpr   `msgpack:"c,omitempty"`
	Value *wireExpr   `msgpack:"v,omitempty"`
	Body  *wireStmt   `msgpack:"b,omitempty"`
	Else  *wireStmt   `msgpack:"e,omitempty"`
	Init  *wireStmt   `msgpack:"ini,omitempty"`
	Stmts []*wireStmt `msgpack:"ss,omitempty"`

	// For.
	Update *wireExpr `msgpack:"u,omitempty"`

	// Switch.
	Cases []*wireCase `msgpack:"cs,omitempty"`

	// Break/continue labels.
	Label string `msgpack:"lb,omitempty"`

	// Variables.
	Declarators []*wireDeclarator `msgpack:"d,omitempty"`
	Const       bool              `msgpack:"ct,omitempty"`
	TopLevel    bool              `msgpack:"tl,omitempty"`

	// Declarations.
	Name         string           `msgpack:"n,omitempty"`
	InternalName string           `msgpack:"in,omitempty"`
	Flags        uint16           `msgpack:"f,omitempty"`
	TypeParams   []string         `msgpack:"tp,omitempty"`
	Params       []*wireParam     `msgpack:"p,omitempty"`
	ReturnType   *wireTypeRef     `msgpack:"rt,omitempty"`
	Extends      *wireTypeRef     `msgpack:"ex,omitempty"`
	Fields       []*wireField     `msgpack:"fl,omitempty"`
	Methods      []*wireStmt      `msgpack:"m,omitempty"`
	Constructor  *wireStmt        `msgpack:"cc,omitempty"`
	Values       []*wireEnumValue `msgpack:"vs,omitempty"`
	Path         string           `msgpack:"pa,omitempty"`
	Members      []*wireStmt      `msgpack:"mb,omitempty"`
	Exports      []*wireExportMember `msgpack:"xm,omitempty"`
}

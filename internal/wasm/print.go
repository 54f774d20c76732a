package wasm

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteText renders the module in a wat-like s-expression form. The output
// is meant for humans and golden tests, not for a wasm assembler.
func (m *Module) WriteText(w io.Writer) error {
	p := &printer{w: w, m: m}
	p.line(0, "(module")
	for _, ft := range m.FuncTypes {
		p.line(1, "(type $%s (func%s%s))", ft.Name, paramsText(ft.Params), resultText(ft.Result))
	}
	for _, imp := range m.FunctionImports {
		p.line(1, "(import %q %q (func $%s%s%s))", imp.Module, imp.Base, imp.Name, paramsText(imp.FType.Params), resultText(imp.FType.Result))
	}
	for _, imp := range m.GlobalImports {
		p.line(1, "(import %q %q (global $%s %s))", imp.Module, imp.Base, imp.Name, globalTypeText(imp.Type, imp.Mutable))
	}
	if m.Memory.Imported {
		p.line(1, "(import %q %q (memory %d))", m.Memory.ImpModule, m.Memory.ImpBase, m.Memory.Initial)
	} else if m.Memory.Initial > 0 || len(m.Memory.Segments) > 0 {
		p.line(1, "(memory %d %d)", m.Memory.Initial, m.Memory.Max)
	}
	for _, seg := range m.Memory.Segments {
		p.line(1, "(data (i32.const %d) %q)", seg.Offset, string(seg.Data))
	}
	if m.Memory.ExportName != "" {
		p.line(1, "(export %q (memory 0))", m.Memory.ExportName)
	}
	if len(m.Table) > 0 {
		p.line(1, "(table funcref (elem %s))", "$"+strings.Join(m.Table, " $"))
	}
	for _, g := range m.Globals {
		p.printGlobal(g)
	}
	for _, fn := range m.Functions {
		p.printFunction(fn)
	}
	for _, ex := range m.FunctionExports {
		p.line(1, "(export %q (func $%s))", ex.External, ex.Internal)
	}
	for _, ex := range m.GlobalExports {
		p.line(1, "(export %q (global $%s))", ex.External, ex.Internal)
	}
	if m.Start != "" {
		p.line(1, "(start $%s)", m.Start)
	}
	p.line(0, ")")
	return p.err
}

// Text renders the module to a string.
func (m *Module) Text() string {
	var b strings.Builder
	_ = m.WriteText(&b)
	return b.String()
}

type printer struct {
	w   io.Writer
	m   *Module
	err error
}

func (p *printer) line(indent int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", indent), fmt.Sprintf(format, args...))
}

func (p *printer) printGlobal(g *Global) {
	init := p.exprText(g.Init)
	p.line(1, "(global $%s %s %s)", g.Name, globalTypeText(g.Type, g.Mutable), init)
}

func (p *printer) printFunction(fn *Function) {
	p.line(1, "(func $%s (type $%s)%s%s", fn.Name, fn.FType.Name, paramsText(fn.FType.Params), resultText(fn.FType.Result))
	for _, v := range fn.VarTypes {
		p.line(2, "(local %s)", v)
	}
	p.printExpr(2, fn.Body)
	p.line(1, ")")
}

func (p *printer) printExpr(indent int, e *Expr) {
	if e == nil {
		return
	}
	switch e.ID {
	case BlockExpr:
		label := ""
		if e.Name != "" {
			label = " $" + e.Name
		}
		p.line(indent, "(block%s", label)
		for _, c := range e.Children {
			p.printExpr(indent+1, c)
		}
		p.line(indent, ")")
	case LoopExpr:
		p.line(indent, "(loop $%s", e.Name)
		for _, c := range e.Children {
			p.printExpr(indent+1, c)
		}
		p.line(indent, ")")
	case IfExpr:
		p.line(indent, "(if")
		p.printExpr(indent+1, e.Cond)
		p.line(indent+1, "(then")
		p.printExpr(indent+2, e.IfTrue)
		p.line(indent+1, ")")
		if e.IfFalse != nil {
			p.line(indent+1, "(else")
			p.printExpr(indent+2, e.IfFalse)
			p.line(indent+1, ")")
		}
		p.line(indent, ")")
	default:
		p.line(indent, "%s", p.exprText(e))
	}
}

// exprText renders a non-structured expression on one line.
func (p *printer) exprText(e *Expr) string {
	if e == nil {
		return "(nop)"
	}
	switch e.ID {
	case ConstExpr:
		return constText(e.Lit)
	case GetLocalExpr:
		return fmt.Sprintf("(local.get %d)", e.Index)
	case SetLocalExpr:
		if e.IsTee {
			return fmt.Sprintf("(local.tee %d %s)", e.Index, p.exprText(e.Value))
		}
		return fmt.Sprintf("(local.set %d %s)", e.Index, p.exprText(e.Value))
	case GetGlobalExpr:
		return fmt.Sprintf("(global.get $%s)", e.Global)
	case SetGlobalExpr:
		return fmt.Sprintf("(global.set $%s %s)", e.Global, p.exprText(e.Value))
	case LoadExpr:
		return fmt.Sprintf("(%s offset=%d %s)", loadName(e), e.Offset, p.exprText(e.Ptr))
	case StoreExpr:
		return fmt.Sprintf("(%s offset=%d %s %s)", storeName(e), e.Offset, p.exprText(e.Ptr), p.exprText(e.Value))
	case UnaryExpr:
		return fmt.Sprintf("(%s %s)", unaryName(e.UnOp), p.exprText(e.Value))
	case BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", binaryName(e.BinOp), p.exprText(e.Left), p.exprText(e.Right))
	case SelectExpr:
		return fmt.Sprintf("(select %s %s %s)", p.exprText(e.IfTrue), p.exprText(e.IfFalse), p.exprText(e.Cond))
	case CallExpr:
		parts := make([]string, 0, len(e.Operands))
		for _, op := range e.Operands {
			parts = append(parts, p.exprText(op))
		}
		return fmt.Sprintf("(call $%s %s)", e.Target, strings.Join(parts, " "))
	case CallIndirectExpr:
		parts := make([]string, 0, len(e.Operands)+1)
		for _, op := range e.Operands {
			parts = append(parts, p.exprText(op))
		}
		parts = append(parts, p.exprText(e.Value))
		return fmt.Sprintf("(call_indirect (type $%s) %s)", e.SigName, strings.Join(parts, " "))
	case BreakExpr:
		if e.Cond != nil {
			return fmt.Sprintf("(br_if $%s %s)", e.Name, p.exprText(e.Cond))
		}
		return fmt.Sprintf("(br $%s)", e.Name)
	case SwitchExpr:
		return fmt.Sprintf("(br_table %s $%s %s)", "$"+strings.Join(e.Names, " $"), e.Name, p.exprText(e.Cond))
	case DropExpr:
		return fmt.Sprintf("(drop %s)", p.exprText(e.Value))
	case ReturnExpr:
		if e.Value != nil {
			return fmt.Sprintf("(return %s)", p.exprText(e.Value))
		}
		return "(return)"
	case NopExpr:
		return "(nop)"
	case UnreachableExpr:
		return "(unreachable)"
	case BlockExpr, LoopExpr, IfExpr:
		var b strings.Builder
		sub := &printer{w: &b, m: p.m}
		sub.printExpr(0, e)
		return strings.TrimRight(b.String(), "\n")
	default:
		return "(?)"
	}
}

func constText(lit Literal) string {
	switch lit.Type {
	case TypeI32:
		return fmt.Sprintf("(i32.const %d)", lit.I32)
	case TypeI64:
		return fmt.Sprintf("(i64.const %d)", lit.I64)
	case TypeF32:
		return fmt.Sprintf("(f32.const %s)", strconv.FormatFloat(float64(lit.F32), 'g', -1, 32))
	case TypeF64:
		return fmt.Sprintf("(f64.const %s)", strconv.FormatFloat(lit.F64, 'g', -1, 64))
	default:
		return "(nop)"
	}
}

func paramsText(params []Type) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, t := range params {
		parts[i] = t.String()
	}
	return " (param " + strings.Join(parts, " ") + ")"
}

func resultText(result Type) string {
	if result == TypeNone {
		return ""
	}
	return " (result " + result.String() + ")"
}

func globalTypeText(t Type, mutable bool) string {
	if mutable {
		return "(mut " + t.String() + ")"
	}
	return t.String()
}

func loadName(e *Expr) string {
	prefix := e.Type.String()
	full := e.Type == TypeF32 || e.Type == TypeF64 ||
		(e.Type == TypeI32 && e.Bytes == 4) || (e.Type == TypeI64 && e.Bytes == 8)
	if full {
		return prefix + ".load"
	}
	sign := "_u"
	if e.Signed {
		sign = "_s"
	}
	return fmt.Sprintf("%s.load%d%s", prefix, e.Bytes*8, sign)
}

func storeName(e *Expr) string {
	valueType := TypeI32
	if e.Value != nil {
		valueType = e.Value.Type
	}
	prefix := valueType.String()
	full := valueType == TypeF32 || valueType == TypeF64 ||
		(valueType == TypeI32 && e.Bytes == 4) || (valueType == TypeI64 && e.Bytes == 8)
	if full {
		return prefix + ".store"
	}
	return fmt.Sprintf("%s.store%d", prefix, e.Bytes*8)
}

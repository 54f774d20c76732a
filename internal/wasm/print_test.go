package wasm

import (
	"strings"
	"testing"
)

func TestWriteTextRendersModule(t *testing.T) {
	m := NewModule()
	ftype := m.AddFunctionType("ii_i", []Type{TypeI32, TypeI32}, TypeI32)
	body := m.CreateReturn(m.CreateBinary(AddI32, m.CreateGetLocal(0, TypeI32), m.CreateGetLocal(1, TypeI32), TypeI32))
	m.AddFunction("add", ftype, nil, body)
	m.AddFunctionExport("add", "add")
	m.AddGlobal("HEAP_BASE", TypeI32, false, m.CreateI32(8))
	m.SetMemory(1, 16384, "memory", []Segment{{Offset: 4, Data: []byte("hi")}})

	text := m.Text()
	for _, want := range []string{
		"(module",
		"(type $ii_i (func (param i32 i32) (result i32)))",
		"(func $add (type $ii_i) (param i32 i32) (result i32)",
		"(return (i32.add (local.get 0) (local.get 1)))",
		`(export "add" (func $add))`,
		"(global $HEAP_BASE i32 (i32.const 8))",
		`(export "memory" (memory 0))`,
		"(data (i32.const 4)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestLoadStoreNames(t *testing.T) {
	m := NewModule()
	tests := []struct {
		expr *Expr
		want string
	}{
		{m.CreateLoad(1, true, 0, 1, TypeI32, m.CreateI32(0)), "i32.load8_s"},
		{m.CreateLoad(2, false, 0, 2, TypeI32, m.CreateI32(0)), "i32.load16_u"},
		{m.CreateLoad(4, false, 0, 4, TypeI32, m.CreateI32(0)), "i32.load"},
		{m.CreateLoad(8, true, 0, 8, TypeI64, m.CreateI32(0)), "i64.load"},
		{m.CreateLoad(4, false, 0, 4, TypeF32, m.CreateI32(0)), "f32.load"},
		{m.CreateStore(1, 0, 1, m.CreateI32(0), m.CreateI32(0), TypeI32), "i32.store8"},
		{m.CreateStore(4, 0, 4, m.CreateI32(0), m.CreateI32(0), TypeI32), "i32.store"},
		{m.CreateStore(8, 0, 8, m.CreateI32(0), m.CreateF64(0), TypeF64), "f64.store"},
	}
	p := &printer{m: m}
	for _, tt := range tests {
		got := p.exprText(tt.expr)
		if !strings.Contains(got, tt.want) {
			t.Errorf("rendered %q, want op %q", got, tt.want)
		}
	}
}

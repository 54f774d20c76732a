package source

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"./a/b.cor", "a/b.cor"},
		{"a//b.cor", "a/b.cor"},
		{"a/./b.cor", "a/b.cor"},
		{"a/c/../b.cor", "a/b.cor"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPosition(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("main.cor", []byte("let a = 1\nlet b = 2\n"), FileVirtual)

	tests := []struct {
		offset uint32
		line   uint32
		col    uint32
	}{
		{0, 1, 1},
		{4, 1, 5},
		{10, 2, 1},
		{14, 2, 5},
	}
	for _, tt := range tests {
		_, lc := fs.Position(Span{File: id, Start: tt.offset, End: tt.offset})
		if lc.Line != tt.line || lc.Col != tt.col {
			t.Errorf("offset %d = %d:%d, want %d:%d", tt.offset, lc.Line, lc.Col, tt.line, tt.col)
		}
	}
}

func TestAddReplacesIndexEntry(t *testing.T) {
	fs := NewFileSet()
	fs.Add("a.cor", []byte("one"), FileVirtual)
	second := fs.Add("a.cor", []byte("two"), FileVirtual)
	f, ok := fs.ByPath("a.cor")
	if !ok {
		t.Fatal("path not indexed")
	}
	if f.ID != second {
		t.Fatal("index must point at the newest version")
	}
	if fs.Len() != 2 {
		t.Fatal("both versions stay addressable by ID")
	}
}

func TestInternerSharesIDs(t *testing.T) {
	in := NewInterner()
	a := in.Intern("hello")
	b := in.Intern("hello")
	c := in.Intern("world")
	if a != b {
		t.Fatal("identical strings must share an ID")
	}
	if a == c {
		t.Fatal("distinct strings must not share an ID")
	}
	if s, ok := in.Lookup(a); !ok || s != "hello" {
		t.Fatalf("Lookup = %q, %v", s, ok)
	}
	if in.Intern("") != NoStringID {
		t.Fatal("the empty string is NoStringID")
	}
}

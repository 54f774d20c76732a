package diag

import (
	"testing"

	"coral/internal/source"
)

func span(file, start uint32) source.Span {
	return source.Span{File: source.FileID(file), Start: start, End: start + 1}
}

func TestBagSeverityQueries(t *testing.T) {
	b := NewBag(8)
	b.Add(NewInfo(LowerInfo, span(0, 0), "note"))
	if b.HasWarnings() || b.HasErrors() {
		t.Fatal("info alone is neither warning nor error")
	}
	b.Add(NewWarning(DeclConstNonConstantInit, span(0, 1), "warn"))
	if !b.HasWarnings() || b.HasErrors() {
		t.Fatal("warning state wrong")
	}
	b.Add(NewError(TypeNotAssignable, span(0, 2), "boom"))
	if !b.HasErrors() {
		t.Fatal("error not observed")
	}
}

func TestBagCapacity(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(UnknownCode, span(0, 0), "a")) {
		t.Fatal("first add rejected")
	}
	if !b.Add(NewError(UnknownCode, span(0, 1), "b")) {
		t.Fatal("second add rejected")
	}
	if b.Add(NewError(UnknownCode, span(0, 2), "c")) {
		t.Fatal("add past capacity accepted")
	}
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}

func TestBagSortIsDeterministic(t *testing.T) {
	b := NewBag(8)
	b.Add(NewWarning(DeclConstNonConstantInit, span(1, 5), "later file"))
	b.Add(NewError(TypeNotAssignable, span(0, 9), "same file, later offset"))
	b.Add(NewError(FlowNotAllPathsReturn, span(0, 1), "first"))
	b.Sort()

	items := b.Items()
	if items[0].Code != FlowNotAllPathsReturn {
		t.Fatal("sort by offset within a file")
	}
	if items[2].Primary.File != 1 {
		t.Fatal("sort by file first")
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(8)
	b.Add(NewError(TypeNotAssignable, span(0, 3), "dup"))
	b.Add(NewError(TypeNotAssignable, span(0, 3), "dup"))
	b.Add(NewError(TypeNotAssignable, span(0, 4), "other site"))
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("len after dedup = %d, want 2", b.Len())
	}
}

func TestBagMergeGrowsCapacity(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(UnknownCode, span(0, 0), "a"))
	other := NewBag(2)
	other.Add(NewError(UnknownCode, span(0, 1), "b"))
	other.Add(NewError(UnknownCode, span(0, 2), "c"))
	a.Merge(other)
	if a.Len() != 3 {
		t.Fatalf("len after merge = %d, want 3", a.Len())
	}
}

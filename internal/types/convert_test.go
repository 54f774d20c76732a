package types

import "testing"

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		typ     Type
		small   bool
		signed  bool
		float   bool
		integer bool
	}{
		{I8, true, true, false, true},
		{I16, true, true, false, true},
		{U8, true, false, false, true},
		{U16, true, false, false, true},
		{Bool, true, false, false, true},
		{I32, false, true, false, true},
		{U64, false, false, false, true},
		{F32, false, false, true, false},
		{F64, false, false, true, false},
	}
	for _, tt := range tests {
		if tt.typ.Small() != tt.small {
			t.Errorf("%s.Small() = %v", tt.typ, tt.typ.Small())
		}
		if tt.typ.Signed() != tt.signed {
			t.Errorf("%s.Signed() = %v", tt.typ, tt.typ.Signed())
		}
		if tt.typ.Float() != tt.float {
			t.Errorf("%s.Float() = %v", tt.typ, tt.typ.Float())
		}
		if tt.typ.Integer() != tt.integer {
			t.Errorf("%s.Integer() = %v", tt.typ, tt.typ.Integer())
		}
	}
}

func TestPointerWidthFollowsTarget(t *testing.T) {
	if Usize.Size(WASM32) != 32 || Usize.Size(WASM64) != 64 {
		t.Fatal("usize width must follow the target")
	}
	if Isize.Long(WASM32) {
		t.Fatal("isize is not long on wasm32")
	}
	if !Isize.Long(WASM64) {
		t.Fatal("isize is long on wasm64")
	}
}

func TestFitsIn(t *testing.T) {
	tests := []struct {
		value int64
		typ   Type
		want  bool
	}{
		{127, I8, true},
		{128, I8, false},
		{-128, I8, true},
		{200, I8, false},
		{200, U8, true},
		{256, U8, false},
		{-1, U32, false},
		{1 << 31, I32, false},
		{1<<31 - 1, I32, true},
		{1 << 40, I64, true},
		{1, Bool, true},
		{2, Bool, false},
	}
	for _, tt := range tests {
		if got := FitsIn(tt.value, tt.typ, WASM32); got != tt.want {
			t.Errorf("FitsIn(%d, %s) = %v, want %v", tt.value, tt.typ, got, tt.want)
		}
	}
}

func TestCommonCompatible(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Type
		signed   bool
		want     Type
		possible bool
	}{
		{"same type", I32, I32, true, I32, true},
		{"wider int wins", I32, I64, false, I64, true},
		{"float beats int", I32, F64, false, F64, true},
		{"wider float wins", F32, F64, false, F64, true},
		{"same width sign clash tolerated", I32, U32, false, U32, true},
		{"same width sign clash refused when it matters", I32, U32, true, Void, false},
		{"small ints promote freely", I8, U8, true, U8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CommonCompatible(tt.a, tt.b, tt.signed, WASM32)
			if ok != tt.possible {
				t.Fatalf("ok = %v, want %v", ok, tt.possible)
			}
			if ok && got != tt.want {
				t.Fatalf("common = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAssignableTo(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		name string
		from Type
		to   Type
		want bool
	}{
		{"identity", I32, I32, true},
		{"widening signed", I8, I32, true},
		{"widening unsigned into signed", U8, I32, true},
		{"signed into unsigned refused", I8, U32, false},
		{"narrowing refused", I32, I8, false},
		{"small int into f32", U16, F32, true},
		{"i32 into f32 refused", I32, F32, false},
		{"i32 into f64", I32, F64, true},
		{"i64 into f64 refused", I64, F64, false},
		{"f32 into f64", F32, F64, true},
		{"f64 into f32 refused", F64, F32, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssignableTo(r, tt.from, tt.to, WASM32); got != tt.want {
				t.Fatalf("AssignableTo(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestClassArenaExtends(t *testing.T) {
	r := NewRegistry()
	base := r.AddClass(Class{Name: "Base"})
	mid := r.AddClass(Class{Name: "Mid", Base: base})
	leaf := r.AddClass(Class{Name: "Leaf", Base: mid})
	other := r.AddClass(Class{Name: "Other"})

	if !r.Extends(leaf, base) {
		t.Fatal("leaf extends base through mid")
	}
	if r.Extends(base, leaf) {
		t.Fatal("extension is not symmetric")
	}
	if r.Extends(other, base) {
		t.Fatal("unrelated classes do not extend")
	}
	if !AssignableTo(r, MakeClass(leaf), MakeClass(base), WASM32) {
		t.Fatal("subclass references assign to base references")
	}
	if AssignableTo(r, MakeClass(base), MakeClass(leaf), WASM32) {
		t.Fatal("base references do not assign to subclass references")
	}
}

func TestSignatureEquals(t *testing.T) {
	a := &Signature{ParamTypes: []Type{I32, F64}, ReturnType: I32, RequiredParameters: 2}
	b := &Signature{ParamTypes: []Type{I32, F64}, ReturnType: I32, RequiredParameters: 2}
	c := &Signature{ParamTypes: []Type{I32}, ReturnType: I32, RequiredParameters: 1}
	if !a.Equals(b) {
		t.Fatal("structurally equal signatures must compare equal")
	}
	if a.Equals(c) {
		t.Fatal("different arity must not compare equal")
	}
}

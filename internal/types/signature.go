package types

import "strings"

// Signature is the callable shape of a function after resolution. Immutable
// once interned; classes are referenced by ID so signatures never own class
// handles.
type Signature struct {
	ParamTypes         []Type
	ReturnType         Type
	This               Type // zero value when the callable is free-standing
	HasThis            bool
	RequiredParameters int
	HasRest            bool
}

// ArgumentCount returns the full operand count of a call, receiver included.
func (s *Signature) ArgumentCount() int {
	n := len(s.ParamTypes)
	if s.HasThis {
		n++
	}
	return n
}

// OptionalParameters returns how many trailing parameters carry defaults.
func (s *Signature) OptionalParameters() int {
	return len(s.ParamTypes) - s.RequiredParameters
}

func (s *Signature) String() string {
	var b strings.Builder
	b.WriteByte('(')
	if s.HasThis {
		b.WriteString("this: ")
		b.WriteString(s.This.String())
	}
	for i, p := range s.ParamTypes {
		if i > 0 || s.HasThis {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") -> ")
	b.WriteString(s.ReturnType.String())
	return b.String()
}

// Equals compares two signatures structurally. Used when checking an
// indirect call target against the type of the index expression.
func (s *Signature) Equals(other *Signature) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	if s.HasThis != other.HasThis || s.HasRest != other.HasRest {
		return false
	}
	if s.RequiredParameters != other.RequiredParameters {
		return false
	}
	if s.HasThis && s.This != other.This {
		return false
	}
	if s.ReturnType != other.ReturnType {
		return false
	}
	if len(s.ParamTypes) != len(other.ParamTypes) {
		return false
	}
	for i := range s.ParamTypes {
		if s.ParamTypes[i] != other.ParamTypes[i] {
			return false
		}
	}
	return true
}

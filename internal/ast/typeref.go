package ast

import "strings"

// TypeRef is a syntactic type annotation: a name plus optional type
// arguments. Resolution to a semantic type happens in the program model.
type TypeRef struct {
	Name string
	Args []*TypeRef
}

func (t *TypeRef) String() string {
	if t == nil {
		return "<none>"
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Name + "<" + strings.Join(parts, ",") + ">"
}

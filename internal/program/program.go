package program

import (
	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/source"
	"coral/internal/types"
)

// Source is one translation unit of the resolved model.
type Source struct {
	NormalizedPath string
	IsEntry        bool
	Statements     []*ast.Stmt
}

// Program is the resolved model: the element table, the export surface,
// the ordered sources, and the type registry. It is supplied to the
// compiler at construction and shared by reference; only compilation-state
// flags are mutated afterwards.
type Program struct {
	Elements map[string]Element
	Exports  map[string]Element
	Sources  []*Source
	Types    *types.Registry
	Target   types.Target

	// Reporter receives resolution diagnostics; defaults to a no-op.
	Reporter diag.Reporter
}

// NewProgram creates an empty program model for a target.
func NewProgram(target types.Target) *Program {
	return &Program{
		Elements: make(map[string]Element),
		Exports:  make(map[string]Element),
		Types:    types.NewRegistry(),
		Target:   target,
		Reporter: diag.NopReporter{},
	}
}

// AddSource appends a translation unit.
func (p *Program) AddSource(path string, isEntry bool, statements []*ast.Stmt) *Source {
	s := &Source{
		NormalizedPath: source.NormalizePath(path),
		IsEntry:        isEntry,
		Statements:     statements,
	}
	p.Sources = append(p.Sources, s)
	return s
}

// SourceByPath returns the source registered under the normalized path.
func (p *Program) SourceByPath(path string) (*Source, bool) {
	normalized := source.NormalizePath(path)
	for _, s := range p.Sources {
		if s.NormalizedPath == normalized {
			return s, true
		}
	}
	return nil, false
}

// Register inserts an element under its internal name.
func (p *Program) Register(e Element) {
	p.Elements[e.InternalName()] = e
}

// RegisterExport inserts an element into the export table.
func (p *Program) RegisterExport(externalName string, e Element) {
	p.Exports[externalName] = e
}

// ResolveType resolves a syntactic type reference against the primitive
// table, the type-argument context, and class prototypes, in that order.
// Returns false (after reporting) when the reference does not resolve.
func (p *Program) ResolveType(ref *ast.TypeRef, ctx map[string]types.Type) (types.Type, bool) {
	if ref == nil {
		return types.Void, false
	}
	if t, ok := types.ByName(ref.Name); ok {
		return t, true
	}
	if ctx != nil {
		if t, ok := ctx[ref.Name]; ok {
			return t, true
		}
	}
	if elem, ok := p.Elements[ref.Name]; ok {
		if proto, ok := elem.(*ClassPrototype); ok {
			args := make([]types.Type, 0, len(ref.Args))
			for _, a := range ref.Args {
				at, ok := p.ResolveType(a, ctx)
				if !ok {
					return types.Void, false
				}
				args = append(args, at)
			}
			if c, ok := proto.Resolve(p, args); ok {
				return c.Type, true
			}
			return types.Void, false
		}
	}
	return types.Void, false
}

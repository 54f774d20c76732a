package program

import (
	"coral/internal/ast"
	"coral/internal/types"
)

// Resolved is the result of expression resolution: the element plus, for
// instance members, the object expression the member is accessed on.
type Resolved struct {
	Element          Element
	TargetExpression *ast.Expr
	IsInstanceTarget bool
}

// ResolveExpression resolves a reference-shaped expression to an element.
func (p *Program) ResolveExpression(e *ast.Expr, fn *Function, enum *Enum) (Resolved, bool) {
	e = e.Unwrap()
	switch e.Kind {
	case ast.ExprIdentifier:
		elem, ok := p.ResolveIdentifier(e, fn, enum)
		if !ok {
			return Resolved{}, false
		}
		return Resolved{Element: elem}, true
	case ast.ExprPropertyAccess:
		return p.ResolvePropertyAccess(e, fn, enum)
	case ast.ExprElementAccess:
		return p.ResolveElementAccess(e, fn, enum, false)
	default:
		return Resolved{}, false
	}
}

// ResolveIdentifier resolves a plain name: function locals first, then the
// current enum's members, then the bound target, then the global table.
func (p *Program) ResolveIdentifier(e *ast.Expr, fn *Function, enum *Enum) (Element, bool) {
	data, ok := e.Data.(ast.IdentifierData)
	if !ok {
		return nil, false
	}
	if fn != nil {
		if l, ok := fn.LocalByName(data.Name); ok {
			return l, true
		}
	}
	if enum != nil {
		if v, ok := enum.ValueByName(data.Name); ok {
			return v, true
		}
	}
	if data.Target != "" {
		if elem, ok := p.Elements[data.Target]; ok {
			return elem, true
		}
	}
	if elem, ok := p.Elements[data.Name]; ok {
		return elem, true
	}
	return nil, false
}

// ResolvePropertyAccess resolves obj.prop through namespaces, enums,
// static class members, or the static type of the object expression.
func (p *Program) ResolvePropertyAccess(e *ast.Expr, fn *Function, enum *Enum) (Resolved, bool) {
	data, ok := e.Data.(ast.PropertyAccessData)
	if !ok {
		return Resolved{}, false
	}
	object := data.Object.Unwrap()

	// Static path: the object names a namespace, enum, or class.
	if object.Kind == ast.ExprIdentifier {
		if elem, ok := p.ResolveIdentifier(object, fn, enum); ok {
			switch container := elem.(type) {
			case *Namespace:
				if m, ok := container.Members[data.Property]; ok {
					return Resolved{Element: m}, true
				}
				return Resolved{}, false
			case *Enum:
				if v, ok := container.ValueByName(data.Property); ok {
					return Resolved{Element: v}, true
				}
				return Resolved{}, false
			case *ClassPrototype:
				if c, ok := container.Resolve(p, nil); ok {
					if m, ok := c.Member(data.Property); ok && m.HasFlag(FlagStatic) {
						return Resolved{Element: m}, true
					}
				}
				return Resolved{}, false
			}
		}
	}

	// Instance path: resolve through the object's static type.
	objType, ok := p.TypeOf(object, fn, enum)
	if !ok || !objType.Reference() {
		return Resolved{}, false
	}
	c, ok := p.ClassByID(objType.Class)
	if !ok {
		return Resolved{}, false
	}
	m, ok := c.Member(data.Property)
	if !ok {
		return Resolved{}, false
	}
	return Resolved{Element: m, TargetExpression: data.Object, IsInstanceTarget: true}, true
}

// ResolveElementAccess resolves obj[index] to the class's indexed
// operator: "[]" for reads, "[]=" for assignment targets.
func (p *Program) ResolveElementAccess(e *ast.Expr, fn *Function, enum *Enum, set bool) (Resolved, bool) {
	data, ok := e.Data.(ast.ElementAccessData)
	if !ok {
		return Resolved{}, false
	}
	objType, ok := p.TypeOf(data.Object, fn, enum)
	if !ok || !objType.Reference() {
		return Resolved{}, false
	}
	c, ok := p.ClassByID(objType.Class)
	if !ok {
		return Resolved{}, false
	}
	name := OperatorIndexedGet
	if set {
		name = OperatorIndexedSet
	}
	m, ok := c.Member(name)
	if !ok {
		return Resolved{}, false
	}
	return Resolved{Element: m, TargetExpression: data.Object, IsInstanceTarget: true}, true
}

// ClassByID finds the class instance element owning the given arena ID.
func (p *Program) ClassByID(id types.ClassID) (*Class, bool) {
	rec, ok := p.Types.Class(id)
	if !ok {
		return nil, false
	}
	if elem, ok := p.Elements[rec.Name]; ok {
		if c, ok := elem.(*Class); ok {
			return c, true
		}
		if proto, ok := elem.(*ClassPrototype); ok {
			for _, inst := range proto.Instances {
				if inst.ClassID == id {
					return inst, true
				}
			}
		}
	}
	// Instances of generic prototypes register under their prototype's
	// name; scan prototypes as a fallback.
	for _, elem := range p.Elements {
		if proto, ok := elem.(*ClassPrototype); ok {
			for _, inst := range proto.Instances {
				if inst.ClassID == id {
					return inst, true
				}
			}
		}
	}
	return nil, false
}

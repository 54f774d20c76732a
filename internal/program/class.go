package program

import (
	"coral/internal/ast"
	"coral/internal/types"
)

// OperatorIndexedGet and OperatorIndexedSet are the member names of the
// element-access operators resolved on a class.
const (
	OperatorIndexedGet = "[]"
	OperatorIndexedSet = "[]="
)

// ClassPrototype is an uninstantiated class with its generic instance
// cache.
type ClassPrototype struct {
	ElementBase
	Decl      *ast.ClassDeclData
	Instances map[string]*Class
}

func (p *ClassPrototype) Kind() ElemKind { return ElemClassPrototype }

// Resolve instantiates the prototype with the given type arguments: lays
// out fields, registers the class in the type registry, and clones method
// prototypes bound to the instance.
func (p *ClassPrototype) Resolve(prg *Program, typeArgs []types.Type) (*Class, bool) {
	if p.Instances == nil {
		p.Instances = make(map[string]*Class)
	}
	key := typeArgsKey(typeArgs)
	if c, ok := p.Instances[key]; ok {
		return c, true
	}
	if p.Decl == nil {
		return nil, false
	}
	if len(typeArgs) != len(p.Decl.TypeParams) {
		return nil, false
	}
	ctx := make(map[string]types.Type, len(typeArgs))
	for i, name := range p.Decl.TypeParams {
		ctx[name] = typeArgs[i]
	}

	var base *Class
	if p.Decl.Extends != nil {
		baseElem, ok := prg.Elements[p.Decl.Extends.Name]
		if !ok {
			return nil, false
		}
		baseProto, ok := baseElem.(*ClassPrototype)
		if !ok {
			return nil, false
		}
		baseArgs := make([]types.Type, 0, len(p.Decl.Extends.Args))
		for _, argRef := range p.Decl.Extends.Args {
			at, ok := prg.ResolveType(argRef, ctx)
			if !ok {
				return nil, false
			}
			baseArgs = append(baseArgs, at)
		}
		base, ok = baseProto.Resolve(prg, baseArgs)
		if !ok {
			return nil, false
		}
	}

	internal := p.Internal
	if key != "" {
		internal += key
	}
	c := &Class{
		ElementBase: ElementBase{Name: p.Name, Internal: internal, Flags: p.Flags},
		Prototype:   p,
		Base:        base,
		TypeArgCtx:  ctx,
		Members:     make(map[string]Element),
	}
	baseID := types.NoClassID
	if base != nil {
		baseID = base.ClassID
	}
	c.ClassID = prg.Types.AddClass(types.Class{Name: internal, Base: baseID})
	c.Type = types.MakeClass(c.ClassID)
	p.Instances[key] = c

	// Field layout: base fields keep their offsets, own fields follow
	// aligned to their size.
	offset := uint32(0)
	if base != nil {
		offset = base.MemorySize
		for name, m := range base.Members {
			c.Members[name] = m
		}
		c.Fields = append(c.Fields, base.Fields...)
	}
	for _, fd := range p.Decl.Fields {
		ft, ok := prg.ResolveType(fd.Type, ctx)
		if !ok {
			return nil, false
		}
		size := ft.ByteSize(prg.Target)
		if size == 0 {
			size = 1
		}
		offset = alignTo(offset, size)
		field := &Field{
			ElementBase:  ElementBase{Name: fd.Name, Internal: internal + "#" + fd.Name},
			Type:         ft,
			MemoryOffset: offset,
			Class:        c,
			Decl:         fd,
		}
		if fd.Flags.Has(ast.DeclReadonly) {
			field.SetFlag(FlagReadonly)
		}
		offset += size
		c.Members[fd.Name] = field
		c.Fields = append(c.Fields, field)
	}
	c.MemorySize = offset
	prg.Types.MustClass(c.ClassID).Size = offset

	for _, m := range p.Decl.Methods {
		data := m.Data.(ast.FunctionDeclData)
		proto := &FunctionPrototype{
			ElementBase: ElementBase{
				Name:     data.Name,
				Internal: internal + "#" + data.Name,
				Flags:    declFlags(data.Flags),
			},
			Decl:       &data,
			ClassProto: p,
			BoundClass: c,
		}
		if !data.Flags.Has(ast.DeclStatic) {
			proto.SetFlag(FlagInstance)
		}
		switch {
		case data.Flags.Has(ast.DeclGet), data.Flags.Has(ast.DeclSet):
			prop, _ := c.Members[data.Name].(*Property)
			if prop == nil {
				prop = &Property{
					ElementBase: ElementBase{Name: data.Name, Internal: internal + "#" + data.Name},
					Class:       c,
				}
				c.Members[data.Name] = prop
			}
			if data.Flags.Has(ast.DeclGet) {
				prop.Getter = proto
			} else {
				prop.Setter = proto
			}
		default:
			c.Members[data.Name] = proto
		}
	}
	if p.Decl.Constructor != nil {
		data := p.Decl.Constructor.Data.(ast.FunctionDeclData)
		c.Constructor = &FunctionPrototype{
			ElementBase: ElementBase{
				Name:     "constructor",
				Internal: internal + "#constructor",
				Flags:    FlagInstance,
			},
			Decl:          &data,
			ClassProto:    p,
			BoundClass:    c,
			IsConstructor: true,
		}
	}
	return c, true
}

// Class is a concrete (monomorphic) class instance.
type Class struct {
	ElementBase
	Prototype  *ClassPrototype
	Base       *Class
	ClassID    types.ClassID
	Type       types.Type
	TypeArgCtx map[string]types.Type

	Members     map[string]Element
	Fields      []*Field // declaration order, base first
	Constructor *FunctionPrototype
	MemorySize  uint32
}

func (c *Class) Kind() ElemKind { return ElemClass }

// Member returns a member by name, searching base classes through the
// copied member table.
func (c *Class) Member(name string) (Element, bool) {
	m, ok := c.Members[name]
	return m, ok
}

// Namespace is a scope over declarations.
type Namespace struct {
	ElementBase
	Decl    *ast.NamespaceDeclData
	Members map[string]Element
}

func (n *Namespace) Kind() ElemKind { return ElemNamespace }

func alignTo(offset, size uint32) uint32 {
	mask := size - 1
	return (offset + mask) &^ mask
}

func declFlags(f ast.DeclFlags) Flags {
	var out Flags
	if f.Has(ast.DeclExport) {
		out |= FlagExported
	}
	if f.Has(ast.DeclDeclare) {
		out |= FlagDeclared
	}
	if f.Has(ast.DeclConst) {
		out |= FlagConstant
	}
	if f.Has(ast.DeclReadonly) {
		out |= FlagReadonly
	}
	if f.Has(ast.DeclStatic) {
		out |= FlagStatic
	}
	if f.Has(ast.DeclBuiltin) {
		out |= FlagBuiltin
	}
	return out
}

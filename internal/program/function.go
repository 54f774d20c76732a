package program

import (
	"fmt"
	"strings"

	"coral/internal/ast"
	"coral/internal/types"
)

// FunctionPrototype is an uninstantiated function: the declaration plus the
// generic instance cache. Methods keep a link to their class prototype.
type FunctionPrototype struct {
	ElementBase
	Decl          *ast.FunctionDeclData
	ClassProto    *ClassPrototype // nil for free functions
	BoundClass    *Class          // set on prototypes cloned into a class instance
	IsConstructor bool
	Instances     map[string]*Function
}

func (p *FunctionPrototype) Kind() ElemKind { return ElemFunctionPrototype }

// Resolve instantiates the prototype with the given type arguments,
// returning the cached instance when it exists. A prototype with type
// parameters requires exactly matching arguments.
func (p *FunctionPrototype) Resolve(prg *Program, typeArgs []types.Type) (*Function, bool) {
	if p.Instances == nil {
		p.Instances = make(map[string]*Function)
	}
	key := typeArgsKey(typeArgs)
	if fn, ok := p.Instances[key]; ok {
		return fn, true
	}
	if p.Decl == nil {
		return nil, false
	}
	if len(typeArgs) != len(p.Decl.TypeParams) {
		return nil, false
	}
	ctx := make(map[string]types.Type, len(typeArgs)+8)
	for i, name := range p.Decl.TypeParams {
		ctx[name] = typeArgs[i]
	}
	if p.BoundClass != nil {
		for name, t := range p.BoundClass.TypeArgCtx {
			if _, exists := ctx[name]; !exists {
				ctx[name] = t
			}
		}
	}

	sig := types.Signature{RequiredParameters: len(p.Decl.Params)}
	if p.BoundClass != nil && p.HasFlag(FlagInstance) {
		sig.HasThis = true
		sig.This = p.BoundClass.Type
	}
	for i, param := range p.Decl.Params {
		if param.Rest {
			sig.HasRest = true
		}
		pt, ok := prg.ResolveType(param.Type, ctx)
		if !ok {
			return nil, false
		}
		sig.ParamTypes = append(sig.ParamTypes, pt)
		if param.Init != nil && sig.RequiredParameters > i {
			sig.RequiredParameters = i
		}
	}
	sig.ReturnType = types.Void
	if p.Decl.ReturnType != nil {
		rt, ok := prg.ResolveType(p.Decl.ReturnType, ctx)
		if !ok {
			return nil, false
		}
		sig.ReturnType = rt
	}
	sigID := prg.Types.AddSignature(sig)

	internal := p.Internal
	if key != "" {
		internal += key
	}
	fn := &Function{
		ElementBase: ElementBase{Name: p.Name, Internal: internal, Flags: p.Flags},
		Prototype:   p,
		Signature:   prg.Types.MustSignature(sigID),
		SignatureID: sigID,
		TypeArgCtx:  ctx,
		TableIndex:  -1,
	}
	if p.BoundClass != nil && p.HasFlag(FlagInstance) {
		fn.InstanceOf = p.BoundClass
		fn.AddLocal("this", p.BoundClass.Type)
	}
	for i, param := range p.Decl.Params {
		fn.AddLocal(param.Name, fn.Signature.ParamTypes[i])
	}
	p.Instances[key] = fn
	return fn, true
}

// Function is a concrete (monomorphic) function instance.
type Function struct {
	ElementBase
	Prototype   *FunctionPrototype
	Signature   *types.Signature
	SignatureID types.SignatureID
	InstanceOf  *Class // receiver class for instance methods
	TypeArgCtx  map[string]types.Type

	Locals       []*Local
	localsByName map[string]*Local

	// TableIndex is the cached function-table slot, -1 until the
	// function's address is first taken.
	TableIndex int

	// Trampoline is the cached optional-argument dispatcher.
	Trampoline *Function
}

func (f *Function) Kind() ElemKind { return ElemFunction }

// Body returns the declared body statement, nil for imports.
func (f *Function) Body() *ast.Stmt {
	if f.Prototype == nil || f.Prototype.Decl == nil {
		return nil
	}
	return f.Prototype.Decl.Body
}

// AddLocal appends a slot-backed local and returns it.
func (f *Function) AddLocal(name string, ty types.Type) *Local {
	l := &Local{
		ElementBase: ElementBase{Name: name, Internal: f.Internal + "~" + name},
		Index:       len(f.Locals),
		Type:        ty,
	}
	f.Locals = append(f.Locals, l)
	if f.localsByName == nil {
		f.localsByName = make(map[string]*Local)
	}
	if name != "" {
		if _, exists := f.localsByName[name]; !exists {
			f.localsByName[name] = l
		}
	}
	return l
}

// LocalByName returns the parameter or named local for a name.
func (f *Function) LocalByName(name string) (*Local, bool) {
	l, ok := f.localsByName[name]
	return l, ok
}

// ParameterOffset is the local index of the first declared parameter (1
// when the function has a receiver).
func (f *Function) ParameterOffset() int {
	if f.Signature != nil && f.Signature.HasThis {
		return 1
	}
	return 0
}

func typeArgsKey(args []types.Type) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "<" + strings.Join(parts, ",") + ">"
}

// MangledSignatureName derives the function-type name used for
// call_indirect checks, e.g. "ii_i".
func MangledSignatureName(sig *types.Signature, tgt types.Target) string {
	var b strings.Builder
	if sig.HasThis {
		b.WriteString(sigChar(sig.This, tgt))
	}
	for _, p := range sig.ParamTypes {
		b.WriteString(sigChar(p, tgt))
	}
	b.WriteByte('_')
	if sig.ReturnType.Kind == types.KindVoid {
		b.WriteByte('v')
	} else {
		b.WriteString(sigChar(sig.ReturnType, tgt))
	}
	return b.String()
}

func sigChar(t types.Type, tgt types.Target) string {
	switch {
	case t.Float():
		if t.Kind == types.KindF32 {
			return "f"
		}
		return "F"
	case t.Long(tgt):
		return "I"
	default:
		return "i"
	}
}

func (f *Function) String() string {
	return fmt.Sprintf("%s%s", f.Internal, f.Signature)
}

package program

import (
	"coral/internal/ast"
	"coral/internal/types"
)

// TypeOf computes the static type of an expression for resolution
// purposes. Best effort: returns false when the shape is not typeable
// without full lowering.
func (p *Program) TypeOf(e *ast.Expr, fn *Function, enum *Enum) (types.Type, bool) {
	e = e.Unwrap()
	switch e.Kind {
	case ast.ExprLiteral:
		data := e.Data.(ast.LiteralData)
		switch data.Kind {
		case ast.LiteralInt:
			if types.FitsIn(data.IntValue, types.I32, p.Target) {
				return types.I32, true
			}
			return types.I64, true
		case ast.LiteralFloat:
			return types.F64, true
		case ast.LiteralString:
			return p.Types.StringType(), true
		default:
			return types.Void, false
		}
	case ast.ExprIdentifier:
		data := e.Data.(ast.IdentifierData)
		switch data.Name {
		case "null":
			return types.Usize, true
		case "true", "false":
			return types.Bool, true
		case "this":
			if fn != nil && fn.InstanceOf != nil {
				return fn.InstanceOf.Type, true
			}
			return types.Void, false
		case "super":
			if fn != nil && fn.InstanceOf != nil && fn.InstanceOf.Base != nil {
				return fn.InstanceOf.Base.Type, true
			}
			return types.Void, false
		}
		elem, ok := p.ResolveIdentifier(e, fn, enum)
		if !ok {
			return types.Void, false
		}
		return p.elementType(elem)
	case ast.ExprPropertyAccess, ast.ExprElementAccess:
		res, ok := p.ResolveExpression(e, fn, enum)
		if !ok {
			return types.Void, false
		}
		return p.elementType(res.Element)
	case ast.ExprCall:
		data := e.Data.(ast.CallData)
		res, ok := p.ResolveExpression(data.Callee, fn, enum)
		if !ok {
			return types.Void, false
		}
		switch callee := res.Element.(type) {
		case *FunctionPrototype:
			typeArgs := make([]types.Type, 0, len(data.TypeArgs))
			ctx := typeArgCtx(fn)
			for _, ta := range data.TypeArgs {
				t, ok := p.ResolveType(ta, ctx)
				if !ok {
					return types.Void, false
				}
				typeArgs = append(typeArgs, t)
			}
			inst, ok := callee.Resolve(p, typeArgs)
			if !ok {
				return types.Void, false
			}
			return inst.Signature.ReturnType, true
		case *Function:
			return callee.Signature.ReturnType, true
		default:
			if vl, ok := res.Element.(VariableLike); ok {
				t := vl.ValueType()
				if sig, ok := p.Types.Signature(t.Signature); ok {
					return sig.ReturnType, true
				}
			}
			return types.Void, false
		}
	case ast.ExprNew:
		data := e.Data.(ast.NewData)
		t, ok := p.ResolveType(data.Class, typeArgCtx(fn))
		if !ok {
			return types.Void, false
		}
		return t, true
	case ast.ExprUnary:
		data := e.Data.(ast.UnaryData)
		if data.Op == ast.UnaryNot {
			return types.Bool, true
		}
		return p.TypeOf(data.Operand, fn, enum)
	case ast.ExprBinary:
		data := e.Data.(ast.BinaryData)
		switch data.Op {
		case ast.BinaryEq, ast.BinaryNe, ast.BinaryLt, ast.BinaryLe,
			ast.BinaryGt, ast.BinaryGe:
			return types.Bool, true
		case ast.BinaryLogicalAnd, ast.BinaryLogicalOr:
			return p.TypeOf(data.Left, fn, enum)
		}
		if data.Op.IsAssign() {
			return p.TypeOf(data.Left, fn, enum)
		}
		lt, okL := p.TypeOf(data.Left, fn, enum)
		rt, okR := p.TypeOf(data.Right, fn, enum)
		if !okL || !okR {
			return types.Void, false
		}
		common, ok := types.CommonCompatible(lt, rt, false, p.Target)
		return common, ok
	case ast.ExprTernary:
		data := e.Data.(ast.TernaryData)
		return p.TypeOf(data.Then, fn, enum)
	default:
		return types.Void, false
	}
}

// elementType projects an element onto the type of a read of it.
func (p *Program) elementType(elem Element) (types.Type, bool) {
	switch v := elem.(type) {
	case *Local:
		return v.Type, true
	case *Global:
		return v.Type, v.Type.Kind != types.KindVoid
	case *Field:
		return v.Type, true
	case *EnumValue:
		return types.I32, true
	case *FunctionTarget:
		return v.Type, true
	case *Property:
		if v.Getter != nil {
			if inst, ok := v.Getter.Resolve(p, nil); ok {
				return inst.Signature.ReturnType, true
			}
		}
		return types.Void, false
	case *Function:
		return types.MakeFunction(v.SignatureID), true
	default:
		return types.Void, false
	}
}

func typeArgCtx(fn *Function) map[string]types.Type {
	if fn == nil {
		return nil
	}
	return fn.TypeArgCtx
}

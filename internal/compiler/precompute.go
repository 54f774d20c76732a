package compiler

import (
	"coral/internal/types"
	"coral/internal/wasm"
)

const precomputeFunctionName = "precompute|tmp"

// precomputeExpression folds an expression by materializing it as the body
// of a private function, running the backend's precompute pass on it, and
// removing the function again. This round-trip is a stable contract with
// the IR builder. Returns the (possibly folded) body and whether it is now
// a literal constant.
func (c *Compiler) precomputeExpression(expr *wasm.Expr, t types.Type) (*wasm.Expr, bool) {
	m := c.module
	native := c.nativeType(t)
	ftype := m.AddFunctionType("precompute|"+native.String(), nil, native)
	fn := m.AddFunction(precomputeFunctionName, ftype, nil, expr)
	_ = m.RunPassesOnFunction(fn, []string{"precompute"})
	body := fn.Body
	m.RemoveFunction(precomputeFunctionName)
	if body.ID == wasm.ConstExpr {
		return body, true
	}
	return body, false
}

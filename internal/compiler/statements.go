package compiler

import (
	"fmt"

	"coral/internal/ast"
	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/types"
	"coral/internal/wasm"
)

// compileStatement lowers one statement into an IR expression.
func (c *Compiler) compileStatement(s *ast.Stmt) *wasm.Expr {
	m := c.module
	switch s.Kind {
	case ast.StmtBlock:
		return c.compileBlockStatement(s)
	case ast.StmtIf:
		return c.compileIfStatement(s)
	case ast.StmtWhile:
		return c.compileWhileStatement(s)
	case ast.StmtDo:
		return c.compileDoStatement(s)
	case ast.StmtFor:
		return c.compileForStatement(s)
	case ast.StmtSwitch:
		return c.compileSwitchStatement(s)
	case ast.StmtReturn:
		return c.compileReturnStatement(s)
	case ast.StmtThrow:
		return c.compileThrowStatement(s)
	case ast.StmtBreak:
		return c.compileBreakStatement(s, false)
	case ast.StmtContinue:
		return c.compileBreakStatement(s, true)
	case ast.StmtVariable:
		return c.compileVariableStatement(s)
	case ast.StmtExpression:
		data := s.Data.(ast.ExpressionData)
		return c.compileExpression(data.Expr, types.Void, ConvImplicit, false)
	case ast.StmtEmpty:
		return m.CreateNop()
	case ast.StmtTryCatch:
		c.error(diag.LowerNotImplemented, s.Span, "try/catch/finally is not supported")
		return m.CreateUnreachable()
	default:
		c.error(diag.LowerNotImplemented, s.Span, "statement kind %s is not supported here", s.Kind)
		return m.CreateUnreachable()
	}
}

// compileBlockStatement pushes a scope; RETURNS propagates to the parent
// when the block ends in a returning state.
func (c *Compiler) compileBlockStatement(s *ast.Stmt) *wasm.Expr {
	data := s.Data.(ast.BlockData)
	c.flow = c.flow.EnterBranchOrScope()
	body := make([]*wasm.Expr, 0, len(data.Statements))
	for _, stmt := range data.Statements {
		body = append(body, c.compileStatement(stmt))
	}
	inner := c.flow
	c.flow = c.flow.LeaveBranchOrScope()
	c.flow.Inherit(inner)
	return c.module.CreateBlock("", body, wasm.TypeNone)
}

// compileIfStatement pushes a scope per arm; the parent RETURNS only when
// both arms return.
func (c *Compiler) compileIfStatement(s *ast.Stmt) *wasm.Expr {
	data := s.Data.(ast.IfData)
	cond := c.compileExpression(data.Cond, types.Bool, ConvNone, true)
	cond = c.makeIsTrueish(cond, c.currentType)

	c.flow = c.flow.EnterBranchOrScope()
	ifTrue := c.compileStatement(data.Then)
	thenFlow := c.flow
	c.flow = c.flow.LeaveBranchOrScope()
	c.flow.InheritNonReturning(thenFlow)

	var ifFalse *wasm.Expr
	bothReturn := false
	if data.Else != nil {
		c.flow = c.flow.EnterBranchOrScope()
		ifFalse = c.compileStatement(data.Else)
		elseFlow := c.flow
		c.flow = c.flow.LeaveBranchOrScope()
		c.flow.InheritNonReturning(elseFlow)
		bothReturn = thenFlow.Returns() && elseFlow.Returns()
	}
	if bothReturn {
		c.flow.Set(FlowReturns)
	}
	return c.module.CreateIf(cond, ifTrue, ifFalse)
}

// compileWhileStatement treats the loop as possibly not entered: RETURNS
// never propagates, even for provably true conditions.
func (c *Compiler) compileWhileStatement(s *ast.Stmt) *wasm.Expr {
	data := s.Data.(ast.WhileData)
	m := c.module
	n := c.nextLabelContext()
	breakLabel := fmt.Sprintf("break|%d", n)
	continueLabel := fmt.Sprintf("continue|%d", n)

	cond := c.compileExpression(data.Cond, types.Bool, ConvNone, true)
	exit := m.CreateBreak(breakLabel, c.makeIsFalseish(cond, c.currentType), nil)

	c.flow = c.flow.EnterBranchOrScope()
	c.flow.SetLoopLabels(breakLabel, continueLabel)
	body := c.compileStatement(data.Body)
	inner := c.flow
	c.flow = c.flow.LeaveBranchOrScope()
	if inner.Has(FlowPossiblyThrows) {
		c.flow.Set(FlowPossiblyThrows)
	}

	loop := m.CreateLoop(continueLabel, m.CreateBlock("", []*wasm.Expr{
		exit,
		body,
		m.CreateBreak(continueLabel, nil, nil),
	}, wasm.TypeNone))
	return m.CreateBlock(breakLabel, []*wasm.Expr{loop}, wasm.TypeNone)
}

// compileDoStatement shares the enclosing scope because the body executes
// at least once, so RETURNS flows out naturally.
func (c *Compiler) compileDoStatement(s *ast.Stmt) *wasm.Expr {
	data := s.Data.(ast.DoData)
	m := c.module
	n := c.nextLabelContext()
	breakLabel := fmt.Sprintf("break|%d", n)
	continueLabel := fmt.Sprintf("continue|%d", n)

	savedBreak, savedContinue := c.flow.BreakLabel(), c.flow.ContinueLabel()
	savedFlags := c.flow.flags
	c.flow.SetLoopLabels(breakLabel, continueLabel)
	body := c.compileStatement(data.Body)
	c.flow.SetLoopLabels(savedBreak, savedContinue)
	// Breaks and continues are consumed by this loop's labels.
	c.flow.flags = savedFlags | (c.flow.flags &^ (FlowPossiblyBreaks | FlowPossiblyContinues))

	cond := c.compileExpression(data.Cond, types.Bool, ConvNone, true)
	repeat := m.CreateBreak(continueLabel, c.makeIsTrueish(cond, c.currentType), nil)

	loop := m.CreateLoop(continueLabel, m.CreateBlock("", []*wasm.Expr{
		body,
		repeat,
	}, wasm.TypeNone))
	return m.CreateBlock(breakLabel, []*wasm.Expr{loop}, wasm.TypeNone)
}

// compileForStatement is while with an initializer scope; an omitted
// condition makes the loop always-true, so a returning body proves
// RETURNS and a hint unreachable follows the loop.
func (c *Compiler) compileForStatement(s *ast.Stmt) *wasm.Expr {
	data := s.Data.(ast.ForData)
	m := c.module
	n := c.nextLabelContext()
	breakLabel := fmt.Sprintf("break|%d", n)
	continueLabel := fmt.Sprintf("continue|%d", n)

	c.flow = c.flow.EnterBranchOrScope()
	c.flow.SetLoopLabels(breakLabel, continueLabel)

	var init *wasm.Expr
	if data.Init != nil {
		init = c.compileStatement(data.Init)
	}
	var exit *wasm.Expr
	if data.Cond != nil {
		cond := c.compileExpression(data.Cond, types.Bool, ConvNone, true)
		exit = m.CreateBreak(breakLabel, c.makeIsFalseish(cond, c.currentType), nil)
	}
	body := c.compileStatement(data.Body)
	var update *wasm.Expr
	if data.Update != nil {
		update = c.compileExpression(data.Update, types.Void, ConvImplicit, false)
	}

	inner := c.flow
	c.flow = c.flow.LeaveBranchOrScope()
	if inner.Has(FlowPossiblyThrows) {
		c.flow.Set(FlowPossiblyThrows)
	}
	alwaysTrue := data.Cond == nil
	returns := alwaysTrue && inner.Returns()
	if returns {
		c.flow.Set(FlowReturns)
	}

	loopBody := make([]*wasm.Expr, 0, 4)
	if exit != nil {
		loopBody = append(loopBody, exit)
	}
	loopBody = append(loopBody, body)
	if update != nil {
		loopBody = append(loopBody, update)
	}
	loopBody = append(loopBody, m.CreateBreak(continueLabel, nil, nil))
	loop := m.CreateLoop(continueLabel, m.CreateBlock("", loopBody, wasm.TypeNone))

	outer := make([]*wasm.Expr, 0, 3)
	if init != nil {
		outer = append(outer, init)
	}
	outer = append(outer, m.CreateBlock(breakLabel, []*wasm.Expr{loop}, wasm.TypeNone))
	if returns {
		// Hint for the backend: control cannot reach past the loop.
		outer = append(outer, m.CreateUnreachable())
	}
	return m.CreateBlock("", outer, wasm.TypeNone)
}

// compileSwitchStatement tees the tested value into a temp and compares
// per case with br_if, a structure amenable to br-table optimization.
func (c *Compiler) compileSwitchStatement(s *ast.Stmt) *wasm.Expr {
	data := s.Data.(ast.SwitchData)
	m := c.module
	n := c.nextLabelContext()
	breakLabel := fmt.Sprintf("break|%d", n)

	cond := c.compileExpression(data.Cond, types.I32, ConvImplicit, true)
	if len(data.Cases) == 0 {
		return m.CreateDrop(cond)
	}
	tmp := c.getTempLocal(types.I32)

	caseLabels := make([]string, len(data.Cases))
	defaultIndex := -1
	for i, cs := range data.Cases {
		caseLabels[i] = fmt.Sprintf("case%d|%d", i, n)
		if cs.Label == nil {
			defaultIndex = i
		}
	}

	// Dispatch: compare the tee'd value against each case label in order,
	// then fall through to the default (or out of the switch).
	dispatch := make([]*wasm.Expr, 0, len(data.Cases)+1)
	condValue := m.CreateTeeLocal(localIndex(tmp), cond, wasm.TypeI32)
	for i, cs := range data.Cases {
		if cs.Label == nil {
			continue
		}
		label := c.compileExpression(cs.Label, types.I32, ConvImplicit, true)
		compare := m.CreateBinary(wasm.EqI32, condValue, label, wasm.TypeI32)
		condValue = m.CreateGetLocal(localIndex(tmp), wasm.TypeI32)
		dispatch = append(dispatch, m.CreateBreak(caseLabels[i], compare, nil))
	}
	if defaultIndex >= 0 {
		dispatch = append(dispatch, m.CreateBreak(caseLabels[defaultIndex], nil, nil))
	} else {
		dispatch = append(dispatch, m.CreateBreak(breakLabel, nil, nil))
	}

	// Nest the case bodies so each one can fall through to the next.
	current := m.CreateBlock(caseLabels[0], dispatch, wasm.TypeNone)
	anyBreaks := false
	lastReturns := false
	for i, cs := range data.Cases {
		c.flow = c.flow.EnterBranchOrScope()
		c.flow.SetLoopLabels(breakLabel, c.flow.ContinueLabel())
		body := []*wasm.Expr{current}
		for _, stmt := range cs.Statements {
			body = append(body, c.compileStatement(stmt))
		}
		inner := c.flow
		c.flow = c.flow.LeaveBranchOrScope()
		if inner.Has(FlowPossiblyThrows) {
			c.flow.Set(FlowPossiblyThrows)
		}
		if inner.Has(FlowPossiblyBreaks) {
			anyBreaks = true
		}
		lastReturns = inner.Returns()
		label := breakLabel
		if i+1 < len(data.Cases) {
			label = caseLabels[i+1]
		}
		current = m.CreateBlock(label, body, wasm.TypeNone)
	}
	c.freeTempLocal(tmp)

	if defaultIndex >= 0 && !anyBreaks && lastReturns {
		c.flow.Set(FlowReturns)
	}
	return current
}

// compileReturnStatement converts the value to the enclosing return type
// and proves RETURNS.
func (c *Compiler) compileReturnStatement(s *ast.Stmt) *wasm.Expr {
	data := s.Data.(ast.ReturnData)
	m := c.module
	fn := c.currentFunction
	returnType := types.Void
	if fn != nil && fn.Signature != nil {
		returnType = fn.Signature.ReturnType
	}
	c.flow.Set(FlowReturns)
	if data.Value == nil {
		if returnType.Kind != types.KindVoid {
			c.error(diag.TypeUnexpected, s.Span, "a function with return type %s must return a value", returnType)
			return m.CreateUnreachable()
		}
		return m.CreateReturn(nil)
	}
	if returnType.Kind == types.KindVoid {
		c.error(diag.TypeUnexpected, s.Span, "a void function cannot return a value")
		value := c.compileExpression(data.Value, types.Void, ConvExplicit, false)
		return m.CreateBlock("", []*wasm.Expr{value, m.CreateReturn(nil)}, wasm.TypeNone)
	}
	value := c.compileExpression(data.Value, returnType, ConvImplicit, true)
	return m.CreateReturn(value)
}

// compileThrowStatement lowers to an unreachable trap until an exception
// model exists; it counts as returning so flow analysis can continue.
func (c *Compiler) compileThrowStatement(s *ast.Stmt) *wasm.Expr {
	data := s.Data.(ast.ThrowData)
	m := c.module
	c.flow.Set(FlowPossiblyThrows | FlowReturns)
	value := c.compileExpression(data.Value, types.Void, ConvExplicit, false)
	return m.CreateBlock("", []*wasm.Expr{value, m.CreateUnreachable()}, wasm.TypeNone)
}

// compileBreakStatement handles break and continue; labeled forms are
// refused.
func (c *Compiler) compileBreakStatement(s *ast.Stmt, isContinue bool) *wasm.Expr {
	m := c.module
	var label, word string
	if isContinue {
		word = "continue"
		label = c.flow.ContinueLabel()
		if s.Data.(ast.ContinueData).Label != "" {
			c.error(diag.FlowLabeledUnsupported, s.Span, "labeled continue is not supported")
			return m.CreateUnreachable()
		}
	} else {
		word = "break"
		label = c.flow.BreakLabel()
		if s.Data.(ast.BreakData).Label != "" {
			c.error(diag.FlowLabeledUnsupported, s.Span, "labeled break is not supported")
			return m.CreateUnreachable()
		}
	}
	if label == "" {
		code := diag.FlowBreakOutsideLoop
		if isContinue {
			code = diag.FlowContinueOutsideLoop
		}
		c.error(code, s.Span, "%s used outside of a loop or switch", word)
		return m.CreateUnreachable()
	}
	if isContinue {
		c.flow.Set(FlowPossiblyContinues)
	} else {
		c.flow.Set(FlowPossiblyBreaks)
	}
	return m.CreateBreak(label, nil, nil)
}

// compileVariableStatement declares scoped locals. A const with a
// foldable initializer becomes a virtual local inlined at every read;
// everything else takes a real slot.
func (c *Compiler) compileVariableStatement(s *ast.Stmt) *wasm.Expr {
	data := s.Data.(ast.VariableData)
	m := c.module
	fn := c.currentFunction
	if fn == nil {
		fn = c.startFn
	}

	var inits []*wasm.Expr
	for _, decl := range data.Declarators {
		var declType types.Type
		var initExpr *wasm.Expr
		hasType := false

		if decl.Type != nil {
			t, ok := c.prg.ResolveType(decl.Type, typeArgCtxOf(fn))
			if !ok {
				c.error(diag.LowerUnresolved, decl.Span, "type %s does not resolve", decl.Type)
				continue
			}
			declType = t
			hasType = true
			if decl.Init != nil {
				initExpr = c.compileExpression(decl.Init, declType, ConvImplicit, true)
			}
		} else if decl.Init != nil {
			initExpr = c.compileExpression(decl.Init, types.Void, ConvNone, true)
			declType = c.currentType
			if declType.Kind == types.KindVoid {
				c.error(diag.DeclVoidInitializer, decl.Span, "the initializer of %q yields no value", decl.Name)
				continue
			}
			hasType = true
		}
		if !hasType {
			c.error(diag.DeclMissingTypeOrInit, decl.Span, "variable %q needs a type annotation or an initializer", decl.Name)
			continue
		}

		if data.Const && initExpr != nil {
			if folded, isConst := c.precomputeExpression(initExpr, declType); isConst {
				virtual := &program.Local{
					ElementBase: program.ElementBase{Name: decl.Name},
					Index:       -1,
					Type:        declType,
					Const:       constValFromExpr(folded),
				}
				virtual.SetFlag(program.FlagConstant | program.FlagInlined)
				if !c.flow.AddScopedLocal(decl.Name, virtual) {
					c.error(diag.DeclDuplicateLocal, decl.Span, "duplicate local name %q", decl.Name)
				}
				continue
			}
		}

		local := fn.AddLocal(decl.Name, declType)
		if data.Const {
			local.SetFlag(program.FlagConstant)
		}
		if !c.flow.AddScopedLocal(decl.Name, local) {
			c.error(diag.DeclDuplicateLocal, decl.Span, "duplicate local name %q", decl.Name)
			continue
		}
		if initExpr != nil {
			inits = append(inits, m.CreateSetLocal(localIndex(local), initExpr))
		}
	}
	if len(inits) == 0 {
		return m.CreateNop()
	}
	if len(inits) == 1 {
		return inits[0]
	}
	return m.CreateBlock("", inits, wasm.TypeNone)
}

func typeArgCtxOf(fn *program.Function) map[string]types.Type {
	if fn == nil {
		return nil
	}
	return fn.TypeArgCtx
}

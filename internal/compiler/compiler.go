package compiler

import (
	"fmt"

	"coral/internal/diag"
	"coral/internal/program"
	"coral/internal/source"
	"coral/internal/types"
	"coral/internal/wasm"
)

// HeapBaseName is the reserved global holding the first free static
// offset.
const HeapBaseName = "HEAP_BASE"

// StartName is the synthetic function run at module instantiation.
const StartName = "start"

const memoryPageSize = 65536

// Compiler lowers a resolved program model into a wasm IR module. One
// instance compiles one program; instances are not safe for concurrent
// use.
type Compiler struct {
	prg     *program.Program
	options Options
	module  *wasm.Module
	bag     *diag.Bag

	// Static memory layout.
	memoryOffset   uint32
	segments       []wasm.Segment
	stringSegments map[string]uint32 // literal value -> offset

	// Dense zero-indexed function table.
	functionTable []*program.Function

	// Visited-source guard.
	compiledSources map[string]bool

	// Start function accumulation.
	startBody   []*wasm.Expr
	startFn     *program.Function
	startFlow   *Flow
	startTemps  map[wasm.Type][]*program.Local
	startLabels int

	// Transient lowering context.
	currentFunction *program.Function
	currentEnum     *program.Enum
	currentType     types.Type
	flow            *Flow
	labelCounter    int

	// Temp slot pool of the current function.
	freeTemps map[wasm.Type][]*program.Local

	// Per-expression source ranges when options.SourceMap is set.
	exprRanges map[*wasm.Expr]source.Span

	// Imports already materialized, keyed by internal name.
	functionImports map[string]bool
}

// New creates a compiler over a program model.
func New(prg *program.Program, options Options, bag *diag.Bag) *Compiler {
	options = options.normalize()
	c := &Compiler{
		prg:             prg,
		options:         options,
		module:          wasm.NewModule(),
		bag:             bag,
		stringSegments:  make(map[string]uint32),
		compiledSources: make(map[string]bool),
		functionImports: make(map[string]bool),
	}
	prg.Target = options.Target
	c.memoryOffset = options.MemoryBase
	if ptr := options.Target.PointerSize(); c.memoryOffset < ptr {
		// The first slot stays reserved so that address 0 reads as null.
		c.memoryOffset = ptr
	}
	if options.SourceMap {
		c.exprRanges = make(map[*wasm.Expr]source.Span)
	}
	startSig := types.Signature{ReturnType: types.Void}
	sigID := prg.Types.AddSignature(startSig)
	c.startFn = &program.Function{
		ElementBase: program.ElementBase{Name: StartName, Internal: StartName},
		Signature:   prg.Types.MustSignature(sigID),
		SignatureID: sigID,
		TableIndex:  -1,
	}
	c.startFn.SetFlag(program.FlagStart)
	return c
}

// Module returns the module under construction.
func (c *Compiler) Module() *wasm.Module { return c.module }

// Compile walks the program and produces the finished module. Semantic
// problems land in the diagnostic bag; only internal invariant violations
// return an error.
func (c *Compiler) Compile() (*wasm.Module, error) {
	for _, src := range c.prg.Sources {
		if c.options.NoTreeShaking || src.IsEntry {
			if err := c.compileSource(src); err != nil {
				return nil, err
			}
		}
	}
	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c.module, nil
}

// error reports a user-facing error diagnostic.
func (c *Compiler) error(code diag.Code, span source.Span, format string, args ...any) {
	c.bag.Add(diag.NewError(code, span, fmt.Sprintf(format, args...)))
}

// warn reports a warning diagnostic.
func (c *Compiler) warn(code diag.Code, span source.Span, format string, args ...any) {
	c.bag.Add(diag.NewWarning(code, span, fmt.Sprintf(format, args...)))
}

// track records the source range of an emitted expression when source maps
// are requested, and returns the expression unchanged.
func (c *Compiler) track(e *wasm.Expr, span source.Span) *wasm.Expr {
	if c.exprRanges != nil && e != nil {
		c.exprRanges[e] = span
	}
	return e
}

// ExprRange returns the recorded source range of an expression.
func (c *Compiler) ExprRange(e *wasm.Expr) (source.Span, bool) {
	sp, ok := c.exprRanges[e]
	return sp, ok
}

// nextLabelContext returns the per-function monotonically increasing label
// context.
func (c *Compiler) nextLabelContext() int {
	n := c.labelCounter
	c.labelCounter++
	return n
}

// nativeType projects a semantic type onto its wasm value type.
func (c *Compiler) nativeType(t types.Type) wasm.Type {
	switch t.Kind {
	case types.KindVoid:
		return wasm.TypeNone
	case types.KindF32:
		return wasm.TypeF32
	case types.KindF64:
		return wasm.TypeF64
	default:
		if t.Long(c.options.Target) {
			return wasm.TypeI64
		}
		return wasm.TypeI32
	}
}

// zeroConstant returns the zero value of a type as an IR constant.
func (c *Compiler) zeroConstant(t types.Type) *wasm.Expr {
	switch c.nativeType(t) {
	case wasm.TypeI64:
		return c.module.CreateI64(0)
	case wasm.TypeF32:
		return c.module.CreateF32(0)
	case wasm.TypeF64:
		return c.module.CreateF64(0)
	default:
		return c.module.CreateI32(0)
	}
}

// constantExpr lowers a cached element constant to an IR literal.
func (c *Compiler) constantExpr(v program.ConstVal, t types.Type) *wasm.Expr {
	switch c.nativeType(t) {
	case wasm.TypeI64:
		return c.module.CreateI64(v.I)
	case wasm.TypeF32:
		if v.Kind == program.ConstInteger {
			return c.module.CreateF32(float32(v.I))
		}
		return c.module.CreateF32(float32(v.F))
	case wasm.TypeF64:
		if v.Kind == program.ConstInteger {
			return c.module.CreateF64(float64(v.I))
		}
		return c.module.CreateF64(v.F)
	default:
		return c.module.CreateI32(int32(v.I))
	}
}

// getTempLocal allocates or reuses a temp slot of the given type in the
// current function.
func (c *Compiler) getTempLocal(t types.Type) *program.Local {
	native := c.nativeType(t)
	if pool := c.freeTemps[native]; len(pool) > 0 {
		l := pool[len(pool)-1]
		c.freeTemps[native] = pool[:len(pool)-1]
		l.Type = t
		return l
	}
	fn := c.currentFunction
	if fn == nil {
		fn = c.startFn
	}
	return fn.AddLocal("", t)
}

// freeTempLocal releases a temp slot back to the pool. Never free a slot
// whose value an outstanding expression still needs.
func (c *Compiler) freeTempLocal(l *program.Local) {
	if l == nil {
		return
	}
	if c.freeTemps == nil {
		c.freeTemps = make(map[wasm.Type][]*program.Local)
	}
	native := c.nativeType(l.Type)
	c.freeTemps[native] = append(c.freeTemps[native], l)
}

// getAndFreeTempLocal allocates a slot and immediately returns it to the
// pool, so the very next expression may reuse it.
func (c *Compiler) getAndFreeTempLocal(t types.Type) *program.Local {
	l := c.getTempLocal(t)
	c.freeTempLocal(l)
	return l
}

// localIndex narrows a local's index for IR emission.
func localIndex(l *program.Local) uint32 {
	if l.Index < 0 {
		panic(fmt.Errorf("compiler: virtual local %q has no slot", l.SimpleName()))
	}
	return uint32(l.Index)
}

package wasm

import (
	"fmt"
)

// FunctionType is a named wasm function signature.
type FunctionType struct {
	Name   string
	Params []Type
	Result Type
}

// Function is a defined function: its type, extra locals past the
// parameters, and a body expression.
type Function struct {
	Name     string
	FType    *FunctionType
	VarTypes []Type // locals beyond the parameters
	Body     *Expr
}

// Global is a module global with a constant initializer expression.
type Global struct {
	Name    string
	Type    Type
	Mutable bool
	Init    *Expr
}

// FunctionImport describes an imported function.
type FunctionImport struct {
	Name   string // internal name used by call sites
	Module string
	Base   string
	FType  *FunctionType
}

// GlobalImport describes an imported global.
type GlobalImport struct {
	Name    string
	Module  string
	Base    string
	Type    Type
	Mutable bool
}

// Export maps an external name onto an internal one.
type Export struct {
	External string
	Internal string
}

// Segment is a run of static bytes placed at a fixed memory offset.
type Segment struct {
	Offset uint32
	Data   []byte
}

// Memory describes the module's linear memory.
type Memory struct {
	Initial    uint32 // pages
	Max        uint32 // pages
	ExportName string // "" when not exported
	Segments   []Segment
	Imported   bool
	ImpModule  string
	ImpBase    string
}

// Module is the unit of output: everything the backend serializes.
type Module struct {
	FuncTypes     []*FunctionType
	funcTypeIndex map[string]*FunctionType

	Functions []*Function
	funcIndex map[string]*Function

	Globals     []*Global
	globalIndex map[string]*Global

	FunctionImports []*FunctionImport
	GlobalImports   []*GlobalImport

	FunctionExports []Export
	GlobalExports   []Export

	Memory Memory
	Table  []string // function names, dense and zero-indexed
	Start  string   // start function name, "" when unset
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{
		funcTypeIndex: make(map[string]*FunctionType),
		funcIndex:     make(map[string]*Function),
		globalIndex:   make(map[string]*Global),
	}
}

// AddFunctionType registers a named signature. Re-adding the same name
// returns the existing record.
func (m *Module) AddFunctionType(name string, params []Type, result Type) *FunctionType {
	if existing, ok := m.funcTypeIndex[name]; ok {
		return existing
	}
	ft := &FunctionType{Name: name, Params: params, Result: result}
	m.FuncTypes = append(m.FuncTypes, ft)
	m.funcTypeIndex[name] = ft
	return ft
}

// GetFunctionType returns a previously registered signature.
func (m *Module) GetFunctionType(name string) (*FunctionType, bool) {
	ft, ok := m.funcTypeIndex[name]
	return ft, ok
}

// AddFunction registers a defined function.
func (m *Module) AddFunction(name string, ftype *FunctionType, varTypes []Type, body *Expr) *Function {
	fn := &Function{Name: name, FType: ftype, VarTypes: varTypes, Body: body}
	m.Functions = append(m.Functions, fn)
	m.funcIndex[name] = fn
	return fn
}

// GetFunction returns a defined function by name.
func (m *Module) GetFunction(name string) (*Function, bool) {
	fn, ok := m.funcIndex[name]
	return fn, ok
}

// RemoveFunction drops a defined function. Part of the precompute
// round-trip contract.
func (m *Module) RemoveFunction(name string) {
	fn, ok := m.funcIndex[name]
	if !ok {
		return
	}
	delete(m.funcIndex, name)
	for i, f := range m.Functions {
		if f == fn {
			m.Functions = append(m.Functions[:i], m.Functions[i+1:]...)
			break
		}
	}
}

// AddGlobal registers a module global.
func (m *Module) AddGlobal(name string, ty Type, mutable bool, init *Expr) *Global {
	g := &Global{Name: name, Type: ty, Mutable: mutable, Init: init}
	m.Globals = append(m.Globals, g)
	m.globalIndex[name] = g
	return g
}

// GetGlobalDef returns a defined global by name.
func (m *Module) GetGlobalDef(name string) (*Global, bool) {
	g, ok := m.globalIndex[name]
	return g, ok
}

// AddFunctionImport registers an imported function under an internal name.
func (m *Module) AddFunctionImport(name, module, base string, ftype *FunctionType) *FunctionImport {
	imp := &FunctionImport{Name: name, Module: module, Base: base, FType: ftype}
	m.FunctionImports = append(m.FunctionImports, imp)
	return imp
}

// AddGlobalImport registers an imported global under an internal name.
func (m *Module) AddGlobalImport(name, module, base string, ty Type, mutable bool) *GlobalImport {
	imp := &GlobalImport{Name: name, Module: module, Base: base, Type: ty, Mutable: mutable}
	m.GlobalImports = append(m.GlobalImports, imp)
	return imp
}

// AddFunctionExport exposes a defined function under an external name.
func (m *Module) AddFunctionExport(internal, external string) {
	m.FunctionExports = append(m.FunctionExports, Export{External: external, Internal: internal})
}

// AddGlobalExport exposes a defined global under an external name.
func (m *Module) AddGlobalExport(internal, external string) {
	m.GlobalExports = append(m.GlobalExports, Export{External: external, Internal: internal})
}

// AddMemoryImport switches the module to an imported memory.
func (m *Module) AddMemoryImport(module, base string) {
	m.Memory.Imported = true
	m.Memory.ImpModule = module
	m.Memory.ImpBase = base
}

// SetMemory configures the linear memory and its static segments.
func (m *Module) SetMemory(initial, max uint32, exportName string, segments []Segment) {
	m.Memory.Initial = initial
	m.Memory.Max = max
	m.Memory.ExportName = exportName
	m.Memory.Segments = segments
}

// SetFunctionTable installs the indirect-call table.
func (m *Module) SetFunctionTable(funcs []string) {
	m.Table = funcs
}

// SetStart marks the function run at instantiation.
func (m *Module) SetStart(name string) {
	m.Start = name
}

// RunPasses applies named optimization passes to every defined function.
// Only "precompute" is recognized.
func (m *Module) RunPasses(passes []string) error {
	for _, p := range passes {
		if p != "precompute" {
			return fmt.Errorf("wasm: unknown pass %q", p)
		}
		for _, fn := range m.Functions {
			m.precomputeFunction(fn)
		}
	}
	return nil
}

// RunPassesOnFunction applies named passes to a single function.
func (m *Module) RunPassesOnFunction(fn *Function, passes []string) error {
	for _, p := range passes {
		if p != "precompute" {
			return fmt.Errorf("wasm: unknown pass %q", p)
		}
		m.precomputeFunction(fn)
	}
	return nil
}

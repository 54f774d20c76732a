// Package wasm is the typed WebAssembly IR the lowering core builds into.
//
// The design follows the classic module-builder shape: a Module owns
// functions, globals, imports, exports, memory segments, a function table
// and a start function; expressions form a tree of Expr nodes created
// through the Module's Create* methods. Expression types are the four wasm
// value types plus none and unreachable.
//
// The "precompute" pass is part of the builder contract: the compiler wraps
// an expression in a throwaway function, runs the pass, and inspects whether
// the body folded to a literal constant. The pass therefore only evaluates
// side-effect-free nodes and leaves everything else untouched.
package wasm

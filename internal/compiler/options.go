package compiler

import (
	"coral/internal/types"
)

// Options configures one compilation. The zero value plus Defaults() is a
// 32-bit build with tree shaking on.
type Options struct {
	// Target selects the 32-bit or 64-bit pointer and memory model.
	Target types.Target

	// NoTreeShaking compiles every declaration rather than only those
	// reachable from entry-source exports.
	NoTreeShaking bool

	// NoAssert replaces assertion calls with no-ops.
	NoAssert bool

	// NoMemory skips the default memory section entirely.
	NoMemory bool

	// ImportMemory imports memory from env.memory instead of defining it.
	ImportMemory bool

	// MemoryBase is the start offset for static memory. Offsets below the
	// pointer size are bumped past it so that address 0 stays null.
	MemoryBase uint32

	// AllocateImpl names the allocator builtin used by `new`.
	AllocateImpl string

	// FreeImpl names the free builtin.
	FreeImpl string

	// SourceMap records per-expression source ranges.
	SourceMap bool
}

// Defaults returns the default option set.
func Defaults() Options {
	return Options{
		Target:       types.WASM32,
		AllocateImpl: "allocate_memory",
		FreeImpl:     "free_memory",
	}
}

// normalize fills empty option slots with their defaults.
func (o Options) normalize() Options {
	if o.AllocateImpl == "" {
		o.AllocateImpl = "allocate_memory"
	}
	if o.FreeImpl == "" {
		o.FreeImpl = "free_memory"
	}
	return o
}

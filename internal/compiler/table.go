package compiler

import (
	"fmt"

	"fortio.org/safecast"

	"coral/internal/program"
)

// ensureFunctionTableIndex appends the function to the table the first
// time its address is taken; the index is cached on the element and stable
// for the function's lifetime.
func (c *Compiler) ensureFunctionTableIndex(fn *program.Function) (int32, error) {
	if fn.TableIndex >= 0 {
		idx, err := safecast.Conv[int32](fn.TableIndex)
		if err != nil {
			return 0, fmt.Errorf("compiler: table index overflow: %w", err)
		}
		return idx, nil
	}
	idx, err := safecast.Conv[int32](len(c.functionTable))
	if err != nil {
		return 0, fmt.Errorf("compiler: table index overflow: %w", err)
	}
	fn.TableIndex = int(idx)
	c.functionTable = append(c.functionTable, fn)
	if err := c.compileFunction(fn); err != nil {
		return 0, err
	}
	return idx, nil
}

// writeFunctionTable installs the accumulated table on the module.
func (c *Compiler) writeFunctionTable() {
	if len(c.functionTable) == 0 {
		return
	}
	names := make([]string, len(c.functionTable))
	for i, fn := range c.functionTable {
		names[i] = fn.InternalName()
	}
	c.module.SetFunctionTable(names)
}

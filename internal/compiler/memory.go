package compiler

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"coral/internal/wasm"
)

// addMemorySegment hands out an aligned offset from the monotonic cursor
// and records the segment. Offsets never decrease.
func (c *Compiler) addMemorySegment(data []byte, align uint32) uint32 {
	if align == 0 {
		align = 1
	}
	offset := alignOffset(c.memoryOffset, align)
	c.segments = append(c.segments, wasm.Segment{Offset: offset, Data: data})
	c.memoryOffset = offset + uint32(len(data))
	return offset
}

// ensureStringSegment interns a string literal by value: identical
// literals share one segment. The layout is a 4-byte little-endian length
// prefix (in UTF-16 code units) followed by the UTF-16LE code units.
func (c *Compiler) ensureStringSegment(value string) (uint32, error) {
	if offset, ok := c.stringSegments[value]; ok {
		return offset, nil
	}
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	units, err := enc.Bytes([]byte(value))
	if err != nil {
		return 0, fmt.Errorf("compiler: utf-16 encoding of %q: %w", value, err)
	}
	data := make([]byte, 4+len(units))
	codeUnits := len(units) / 2
	binary.LittleEndian.PutUint32(data, uint32(codeUnits))
	copy(data[4:], units)
	offset := c.addMemorySegment(data, 4)
	c.stringSegments[value] = offset
	return offset, nil
}

func alignOffset(offset, align uint32) uint32 {
	mask := align - 1
	return (offset + mask) &^ mask
}

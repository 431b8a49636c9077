package object

import (
	"unsafe"

	"github.com/corevm/corevm/internal/cell"
	"github.com/corevm/corevm/internal/value"
)

// StringCell is the heap cell a KindString Value points at (spec.md
// §3.2's cell kinds list "string" alongside object/array/function): an
// immutable Go string plus the standard GC header, allocated once per
// literal/concatenation result rather than re-deriving the UTF-8 bytes
// on every read.
type StringCell struct {
	cell.Header
	s string
}

// NewString allocates a StringCell wrapping s.
func NewString(s string) *StringCell {
	return &StringCell{
		Header: cell.NewHeader(cell.KindString, uint32(unsafe.Sizeof(StringCell{}))+uint32(len(s))),
		s:      s,
	}
}

// AsValue wraps the cell as a KindString Value.
func (c *StringCell) AsValue() value.Value {
	return value.StringPtr(unsafe.Pointer(c))
}

// Go returns the cell's payload as a plain Go string.
func (c *StringCell) Go() string { return c.s }

// Len returns the string's length, the value `.length` reads on a
// string receiver (spec.md's Supplemented Feature "transient property
// access on primitives").
func (c *StringCell) Len() int { return len(c.s) }

// CharAt returns the single-character StringCell at byte index i, or
// nil if i is out of range — JS string indexing never throws, it
// yields undefined instead, which the caller maps accordingly.
func (c *StringCell) CharAt(i int) *StringCell {
	if i < 0 || i >= len(c.s) {
		return nil
	}
	return NewString(c.s[i : i+1])
}

// StringFromValue unwraps a KindString Value back to its *StringCell.
func StringFromValue(v value.Value) *StringCell {
	return (*StringCell)(v.AsPointer())
}

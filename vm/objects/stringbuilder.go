package objects

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
)

// StringBuilder accumulates formatted output for the `formatter` /
// `append_format` / `format_result` opcode trio (spec §4.5). It is a
// SPEC_FULL supplemented feature (see DESIGN.md): the distilled spec
// names the opcodes but not their backing object, and original_source
// backs formatting with exactly this kind of growable-buffer object.
type StringBuilder struct {
	heap.Header
	buf []byte
}

// NewStringBuilder allocates an empty builder (bytecode's `formatter`
// opcode).
func NewStringBuilder(h *heap.Heap, t *types.Type) *StringBuilder {
	sb := &StringBuilder{}
	h.AllocateInto(&sb.Header, t, 0)
	sb.Header.Payload = sb
	return sb
}

// Append appends s's rendering (bytecode's `append_format` opcode, which
// the interpreter feeds via ToString/custom per-kind formatting).
func (sb *StringBuilder) Append(s string) { sb.buf = append(sb.buf, s...) }

// Bytes returns the accumulated content (bytecode's `format_result`
// opcode reads this to build the final String).
func (sb *StringBuilder) Bytes() []byte { return sb.buf }

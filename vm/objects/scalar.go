package objects

import (
	"strconv"

	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
)

// Integer is a boxed 64-bit integer, used when a value does not fit the
// small-integer range (spec §3).
type Integer struct {
	heap.Header
	Value int64
}

// NewInteger allocates a boxed Integer.
func NewInteger(h *heap.Heap, t *types.Type, n int64) *Integer {
	i := &Integer{Value: n}
	h.AllocateInto(&i.Header, t, 8)
	i.Header.Payload = i
	return i
}

// Float is a 64-bit IEEE-754 value (spec §3).
type Float struct {
	heap.Header
	Value float64
}

// NewFloat allocates a boxed Float.
func NewFloat(h *heap.Heap, t *types.Type, f float64) *Float {
	v := &Float{Value: f}
	h.AllocateInto(&v.Header, t, 8)
	v.Header.Payload = v
	return v
}

// Boolean is one of the two context-lifetime singleton constants (spec
// §3 "Boolean (constants, created once per context)").
type Boolean struct {
	heap.Header
	Value bool
}

// NewBoolean allocates the True or False singleton; callers should only
// ever call this twice per context (once per value) during context init.
func NewBoolean(h *heap.Heap, t *types.Type, b bool) *Boolean {
	v := &Boolean{Value: b}
	h.AllocateInto(&v.Header, t, 0)
	v.Header.Payload = v
	return v
}

// Undefined is the context-lifetime singleton representing "no value"
// (e.g. an uninitialized module Variable member, spec §4.7).
type Undefined struct {
	heap.Header
}

// NewUndefined allocates the Undefined singleton; called once per context.
func NewUndefined(h *heap.Heap, t *types.Type) *Undefined {
	v := &Undefined{}
	h.AllocateInto(&v.Header, t, 0)
	v.Header.Payload = v
	return v
}

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

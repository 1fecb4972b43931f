package objects

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// Tuple is a fixed-length ordered sequence of Values (spec §3). Unlike
// Array it never grows; module members tuples and bytecode make_tuple
// both construct one of these.
type Tuple struct {
	heap.Header
	Elems []value.Value
}

// NewTuple allocates a Tuple of the given length, all slots Null.
func NewTuple(h *heap.Heap, t *types.Type, length int) *Tuple {
	tup := &Tuple{Elems: make([]value.Value, length)}
	h.AllocateInto(&tup.Header, t, uintptr(length)*8)
	tup.Header.Payload = tup
	return tup
}

// Len returns the tuple's fixed length.
func (t *Tuple) Len() int { return len(t.Elems) }

// Get returns element i, or (Null, false) if i is out of range.
func (t *Tuple) Get(i int) (value.Value, bool) {
	if i < 0 || i >= len(t.Elems) {
		return value.Value{}, false
	}
	return t.Elems[i], true
}

// Set overwrites element i in place; load/store_tuple_member and the
// module loader both use this (the loader populates members in
// topological order, one index at a time).
func (t *Tuple) Set(i int, v value.Value) bool {
	if i < 0 || i >= len(t.Elems) {
		return false
	}
	t.Elems[i] = v
	return true
}

package objects

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// Iterator walks some other heap value (Array, Tuple, HashTable, Set)
// producing successive Values; make_iterator/iterator_next (spec §4.5)
// use it uniformly regardless of what kind it wraps. This is one of
// SPEC_FULL's supplemented features, grounded on original_source's
// iterator protocol (see DESIGN.md).
type Iterator struct {
	heap.Header
	next func() (value.Value, bool)
}

// NewIterator allocates an Iterator backed by next, which must return
// (value, true) for each successive element and (_, false) once
// exhausted.
func NewIterator(h *heap.Heap, t *types.Type, next func() (value.Value, bool)) *Iterator {
	it := &Iterator{next: next}
	h.AllocateInto(&it.Header, t, 0)
	it.Header.Payload = it
	return it
}

// Next advances the iterator (the bytecode's iterator_next opcode).
func (it *Iterator) Next() (value.Value, bool) { return it.next() }

// NewArrayIterator returns an Iterator over a's elements in index order.
func NewArrayIterator(h *heap.Heap, t *types.Type, a *Array) *Iterator {
	i := 0
	return NewIterator(h, t, func() (value.Value, bool) {
		if i >= a.Len() {
			return value.Value{}, false
		}
		v, _ := a.Get(i)
		i++
		return v, true
	})
}

// NewTupleIterator returns an Iterator over tup's elements in index order.
func NewTupleIterator(h *heap.Heap, t *types.Type, tup *Tuple) *Iterator {
	i := 0
	return NewIterator(h, t, func() (value.Value, bool) {
		if i >= tup.Len() {
			return value.Value{}, false
		}
		v, _ := tup.Get(i)
		i++
		return v, true
	})
}

// NewSetIterator returns an Iterator over s's members in insertion order.
func NewSetIterator(h *heap.Heap, t *types.Type, s *Set) *Iterator {
	var members []value.Value
	s.Iterate(func(v value.Value) { members = append(members, v) })
	i := 0
	return NewIterator(h, t, func() (value.Value, bool) {
		if i >= len(members) {
			return value.Value{}, false
		}
		v := members[i]
		i++
		return v, true
	})
}

// NewHashTableIterator returns an Iterator over ht's entries in insertion
// order, yielding a 2-element Tuple (key, value) per step.
func NewHashTableIterator(h *heap.Heap, iterType *types.Type, ht *HashTable, allocTuple func() *Tuple) *Iterator {
	var pairs [][2]value.Value
	ht.Iterate(func(k, v value.Value) { pairs = append(pairs, [2]value.Value{k, v}) })
	i := 0
	return NewIterator(h, iterType, func() (value.Value, bool) {
		if i >= len(pairs) {
			return value.Value{}, false
		}
		tup := allocTuple()
		tup.Set(0, pairs[i][0])
		tup.Set(1, pairs[i][1])
		i++
		return value.FromHeap(&tup.Header), true
	})
}

package objects

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// Set is a wrapper over HashTable storing each member as its own key
// (spec §3 "Set (wrapper over HashTable)"); the value slot is unused.
type Set struct {
	heap.Header
	table *HashTable
}

// NewSet allocates an empty Set backed by a fresh HashTable.
func NewSet(h *heap.Heap, setType, tableType *types.Type) *Set {
	s := &Set{table: NewHashTable(h, tableType)}
	h.AllocateInto(&s.Header, setType, 0)
	s.Header.Payload = s
	return s
}

// Add inserts v, returning true iff it was not already present.
func (s *Set) Add(v value.Value) bool { return s.table.Set(v, v) }

// Contains reports membership.
func (s *Set) Contains(v value.Value) bool { return s.table.Contains(v) }

// Remove deletes v, returning whether it was present.
func (s *Set) Remove(v value.Value) bool { return s.table.Remove(v) }

// Size returns the member count.
func (s *Set) Size() int { return s.table.Size() }

// Iterate calls f for every member in insertion order.
func (s *Set) Iterate(f func(value.Value)) {
	s.table.Iterate(func(k, _ value.Value) { f(k) })
}

// Table exposes the backing HashTable so the collector can walk it.
func (s *Set) Table() *HashTable { return s.table }

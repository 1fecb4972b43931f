package objects

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// minArrayCap is the minimum growth target used by Array.Append's
// doubling rule (spec §4.4 "new_cap = max(min_cap, 2 × old_cap)").
const minArrayCap = 4

// ArrayStorage is the backing buffer an Array grows into; it is its own
// heap object so the collector can walk and (eventually) reclaim the old
// buffer independently of the Array header that points at it, the same
// separation hive/bigdata draws between a growable value's directory cell
// and its big-data segments.
type ArrayStorage struct {
	heap.Header
	Elems []value.Value
}

// NewArrayStorage allocates backing storage with room for cap elements.
func NewArrayStorage(h *heap.Heap, t *types.Type, cap int) *ArrayStorage {
	s := &ArrayStorage{Elems: make([]value.Value, cap)}
	h.AllocateInto(&s.Header, t, uintptr(cap)*8)
	s.Header.Payload = s
	return s
}

// Array is a growable sequence (spec §3/§4.4).
type Array struct {
	heap.Header
	storage *ArrayStorage
	length  int
}

// NewArray allocates an empty Array whose initial storage has zero
// capacity; the first Append allocates real storage.
func NewArray(h *heap.Heap, t *types.Type) *Array {
	a := &Array{}
	h.AllocateInto(&a.Header, t, 0)
	a.Header.Payload = a
	return a
}

// Len returns the number of logical elements.
func (a *Array) Len() int { return a.length }

// Cap returns the current backing capacity.
func (a *Array) Cap() int {
	if a.storage == nil {
		return 0
	}
	return len(a.storage.Elems)
}

// Get returns element i, or (Null, false) if out of range.
func (a *Array) Get(i int) (value.Value, bool) {
	if i < 0 || i >= a.length {
		return value.Value{}, false
	}
	return a.storage.Elems[i], true
}

// Set overwrites element i in place.
func (a *Array) Set(i int, v value.Value) bool {
	if i < 0 || i >= a.length {
		return false
	}
	a.storage.Elems[i] = v
	return true
}

// Append adds v at the end, growing storage via allocStorage when at
// capacity (amortized O(1), spec §4.4). allocStorage is supplied by the
// caller (the interpreter/context) since only it can allocate a heap
// object with accounting.
func (a *Array) Append(v value.Value, allocStorage func(cap int) *ArrayStorage) {
	if a.storage == nil || a.length == a.Cap() {
		newCap := minArrayCap
		if old := a.Cap(); 2*old > newCap {
			newCap = 2 * old
		}
		next := allocStorage(newCap)
		if a.storage != nil {
			copy(next.Elems, a.storage.Elems[:a.length])
		}
		a.storage = next
	}
	a.storage.Elems[a.length] = v
	a.length++
}

// Storage exposes the backing buffer so the collector can walk it as a
// reachable object.
func (a *Array) Storage() *ArrayStorage { return a.storage }

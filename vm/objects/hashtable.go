package objects

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// minHashCap is the smallest entries backing size a HashTable grows into,
// matching the index-capacity floor spec §3 requires ("Index capacity is
// always a power of two ≥ 8").
const minHashCap = 8

// hashTombstone is the sentinel hash value reserved for "deleted" entries
// (spec §3: "Hash values reserve one sentinel (all-ones) for 'deleted'").
const hashTombstone = ^uint64(0)

// reduceHash maps the sentinel value into the usable range, used on every
// stored/looked-up hash.
func reduceHash(h uint64) uint64 {
	if h == hashTombstone {
		return h - 1
	}
	return h
}

type htEntry struct {
	key, val value.Value
	hash     uint64
	deleted  bool
}

// HashTable is an insertion-ordered open-addressing map using robin-hood
// probing over a separate index array, matching spec §3's description.
// The spec's varying-width (u8/u16/u32/u64) index element encoding is a
// C++ memory-density optimization with no externally observable effect —
// this implementation uses a single uniformly-sized index slice instead,
// which preserves every behavioral invariant spec §8 tests (insertion
// order, sizing thresholds, tombstone accounting) and is documented as a
// deliberate simplification in the design ledger.
type HashTable struct {
	heap.Header
	entries   []htEntry
	entryUsed int
	liveCount int
	index     []int32
}

// NewHashTable allocates an empty table.
func NewHashTable(h *heap.Heap, t *types.Type) *HashTable {
	ht := &HashTable{}
	h.AllocateInto(&ht.Header, t, 0)
	ht.Header.Payload = ht
	return ht
}

func probeDistance(home, slot, cap int) int {
	d := slot - home
	if d < 0 {
		d += cap
	}
	return d
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func indexCapFor(entriesCap int) int {
	need := (entriesCap*4 + 2) / 3 // ceil(entriesCap * 4/3)
	if need < minHashCap {
		need = minHashCap
	}
	return nextPow2(need)
}

func (t *HashTable) rebuildIndex() {
	capv := indexCapFor(len(t.entries))
	t.index = make([]int32, capv)
	for i := range t.index {
		t.index[i] = -1
	}
	for i := 0; i < t.entryUsed; i++ {
		if !t.entries[i].deleted {
			t.robinInsert(int32(i))
		}
	}
}

func (t *HashTable) robinInsert(newIdx int32) {
	capv := len(t.index)
	cur := newIdx
	home := int(t.entries[cur].hash % uint64(capv))
	slot := home
	dist := 0
	for {
		occ := t.index[slot]
		if occ == -1 {
			t.index[slot] = cur
			return
		}
		occHome := int(t.entries[occ].hash % uint64(capv))
		occDist := probeDistance(occHome, slot, capv)
		if occDist < dist {
			t.index[slot], cur = cur, occ
			dist = occDist
		}
		slot = (slot + 1) % capv
		dist++
	}
}

func (t *HashTable) removeFromIndex(slot int) {
	capv := len(t.index)
	t.index[slot] = -1
	next := (slot + 1) % capv
	for t.index[next] != -1 {
		occ := t.index[next]
		occHome := int(t.entries[occ].hash % uint64(capv))
		dist := probeDistance(occHome, next, capv)
		if dist == 0 {
			break
		}
		t.index[slot] = occ
		t.index[next] = -1
		slot = next
		next = (next + 1) % capv
	}
}

func (t *HashTable) findSlot(k value.Value, h uint64) (idx, slot int, found bool) {
	if len(t.index) == 0 {
		return 0, 0, false
	}
	capv := len(t.index)
	home := int(h % uint64(capv))
	s := home
	dist := 0
	for {
		occ := t.index[s]
		if occ == -1 {
			return 0, 0, false
		}
		occHash := t.entries[occ].hash
		occHome := int(occHash % uint64(capv))
		occDist := probeDistance(occHome, s, capv)
		if dist > occDist {
			return 0, 0, false
		}
		if occHash == h && Equal(t.entries[occ].key, k) {
			return int(occ), s, true
		}
		s = (s + 1) % capv
		dist++
	}
}

func (t *HashTable) ensureCapacityForInsert() {
	if t.entries == nil {
		t.entries = make([]htEntry, minHashCap)
		t.rebuildIndex()
		return
	}
	if (t.entryUsed+1)*3 > len(t.entries)*2 {
		newCap := len(t.entries) * 2
		if newCap < minHashCap {
			newCap = minHashCap
		}
		grown := make([]htEntry, newCap)
		copy(grown, t.entries[:t.entryUsed])
		t.entries = grown
		t.rebuildIndex()
	}
}

func (t *HashTable) compact() {
	n := t.liveCount
	newCap := nextPow2(n)
	if newCap < minHashCap {
		newCap = minHashCap
	}
	newEntries := make([]htEntry, newCap)
	w := 0
	for i := 0; i < t.entryUsed; i++ {
		if !t.entries[i].deleted {
			newEntries[w] = t.entries[i]
			w++
		}
	}
	t.entries = newEntries
	t.entryUsed = w
	t.rebuildIndex()
}

func (t *HashTable) maybeCompact() {
	if t.entryUsed == 0 {
		return
	}
	if t.liveCount*4 < t.entryUsed {
		t.compact()
	}
}

// Set inserts or overwrites k→v, returning true iff this was a fresh
// insertion (spec §4.4).
func (t *HashTable) Set(k, v value.Value) bool {
	h := reduceHash(Hash(k))
	if idx, _, found := t.findSlot(k, h); found {
		t.entries[idx].val = v
		return false
	}
	t.ensureCapacityForInsert()
	idx := t.entryUsed
	t.entries[idx] = htEntry{key: k, val: v, hash: h}
	t.entryUsed++
	t.liveCount++
	t.robinInsert(int32(idx))
	return true
}

// Get returns the value stored for k, if any.
func (t *HashTable) Get(k value.Value) (value.Value, bool) {
	h := reduceHash(Hash(k))
	idx, _, found := t.findSlot(k, h)
	if !found {
		return value.Value{}, false
	}
	return t.entries[idx].val, true
}

// Find returns the stored key identity alongside the value (spec §4.4:
// "returning the stored key identity (important for symbol interning)").
func (t *HashTable) Find(k value.Value) (storedKey, v value.Value, found bool) {
	h := reduceHash(Hash(k))
	idx, _, ok := t.findSlot(k, h)
	if !ok {
		return value.Value{}, value.Value{}, false
	}
	return t.entries[idx].key, t.entries[idx].val, true
}

// Contains reports whether k is present.
func (t *HashTable) Contains(k value.Value) bool {
	_, _, found := t.findSlot(k, reduceHash(Hash(k)))
	return found
}

// Remove deletes k if present, returning whether it was present.
func (t *HashTable) Remove(k value.Value) bool {
	h := reduceHash(Hash(k))
	idx, slot, found := t.findSlot(k, h)
	if !found {
		return false
	}
	t.entries[idx].deleted = true
	t.entries[idx].val = value.Value{}
	t.liveCount--
	t.removeFromIndex(slot)
	t.maybeCompact()
	return true
}

// Clear empties the table.
func (t *HashTable) Clear() {
	t.entries = nil
	t.index = nil
	t.entryUsed = 0
	t.liveCount = 0
}

// Size returns the number of live (non-deleted) entries.
func (t *HashTable) Size() int { return t.liveCount }

// Iterate calls f for every live entry in insertion order of first
// insertion, skipping tombstones (spec §4.4 / §8).
func (t *HashTable) Iterate(f func(k, v value.Value)) {
	for i := 0; i < t.entryUsed; i++ {
		if !t.entries[i].deleted {
			f(t.entries[i].key, t.entries[i].val)
		}
	}
}

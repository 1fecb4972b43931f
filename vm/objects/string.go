package objects

import (
	"hash/fnv"

	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
)

// String is an immutable UTF-8 byte sequence (spec §3). Its hash is
// computed lazily and cached, matching the hash/fnv-based lazy-hash
// pattern hive/namecache's cacheEntry uses for decoded names, and the
// Interned flag follows spec §4.4's String.intern contract.
type String struct {
	heap.Header
	bytes    []byte
	hash     uint64
	hashed   bool
	interned bool
}

// NewString allocates a String over bytes (not copied further; callers
// that don't already own the slice should copy before calling).
func NewString(h *heap.Heap, t *types.Type, bytes []byte) *String {
	s := &String{bytes: bytes}
	h.AllocateInto(&s.Header, t, uintptr(len(bytes)))
	s.Header.Payload = s
	return s
}

// Bytes returns the raw UTF-8 bytes.
func (s *String) Bytes() []byte { return s.bytes }

// String implements fmt.Stringer for diagnostics (spec §4.1 to_string).
func (s *String) String() string { return string(s.bytes) }

// Interned reports whether this String has been registered in the
// context's intern table.
func (s *String) Interned() bool { return s.interned }

// MarkInterned records that this String is now the canonical instance for
// its byte content. Only the intern table calls this.
func (s *String) MarkInterned() { s.interned = true }

// Hash returns the cached FNV-1a hash of the byte content, computing it on
// first use (spec §4.1 "Strings cache their hash").
func (s *String) Hash() uint64 {
	if !s.hashed {
		h := fnv.New64a()
		h.Write(s.bytes)
		s.hash = h.Sum64()
		s.hashed = true
	}
	return s.hash
}

// Equal performs character-wise comparison, never identity comparison;
// callers that want "are these the same interned string" should compare
// pointers directly.
func (s *String) Equal(o *String) bool {
	if s == o {
		return true
	}
	return string(s.bytes) == string(o.bytes)
}

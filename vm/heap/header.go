package heap

import "github.com/emberlang/ember/vm/types"

// Flag bits stored on a Header. Marked is cleared at the end of every
// sweep (spec §4.6 "Clear the MARKED flag on every surviving object").
type Flag uint8

const (
	FlagMarked Flag = 1 << iota
	FlagFinalizable
)

// Header is the fixed prefix every heap object carries (spec §3
// "Header"): a pointer to the object's Type, flag bits, and the intrusive
// links used by the object list and (when applicable) the finalizer list.
//
// Concrete object kinds (package objects) embed Header by value as their
// first field, so a *ConcreteKind can always be viewed as a *Header via
// &concrete.Header for generic heap/collector bookkeeping.
type Header struct {
	Type *types.Type
	flag Flag

	// Payload points back at the concrete object (package objects) that
	// embeds this exact Header by value as its first field. Generic code
	// that only has a *Header — the collector's mark/sweep walker, the
	// cross-kind Equal/Hash dispatch — type-switches on Payload to reach
	// kind-specific fields without objects and heap importing each other.
	Payload any

	// id is assigned once at allocation time and never reused. It backs a
	// stable, collection-independent hash for reference types (spec §4.1
	// "Reference types may use a stable per-object number; the implementer
	// must document stability under collection.") instead of hashing the
	// Go pointer value directly, which would be legal today (this
	// collector never compacts) but would silently break if a compacting
	// collector were ever introduced — spec §9 flags exactly this risk.
	id uint64

	// next/prev intrusively link every live object into the heap's object
	// list, in allocation order. Sweep unlinks unmarked headers in place.
	next, prev *Header

	// finNext/finPrev link this header into the finalizer list when
	// FlagFinalizable is set (only NativeObject headers ever set it).
	finNext, finPrev *Header

	// Finalize, when non-nil, runs exactly once during sweep before the
	// header is unlinked and reclaimed (spec §4.6 "if it is on the
	// finalizer list, run its cleanup first").
	Finalize func()

	size uintptr
}

// ID returns the object's stable per-allocation identity number.
func (h *Header) ID() uint64 { return h.id }

// Marked reports whether the collector's current mark phase has visited
// this object.
func (h *Header) Marked() bool { return h.flag&FlagMarked != 0 }

// Mark sets the MARKED flag.
func (h *Header) Mark() { h.flag |= FlagMarked }

// Unmark clears the MARKED flag (end of sweep).
func (h *Header) Unmark() { h.flag &^= FlagMarked }

// Size returns the accounted byte size passed to Allocate, used for the
// collector's heap-growth trigger (spec §4.6).
func (h *Header) Size() uintptr { return h.size }

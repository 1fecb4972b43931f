package heap

import "github.com/emberlang/ember/vm/types"

// Heap owns the intrusive object list for one context and the running
// byte/object counts the collector uses to decide when to trigger
// (spec §4.6 "heap grew past a threshold").
//
// Heap is not safe for concurrent use; the runtime is single-threaded
// cooperative per spec §5, so a Heap is only ever touched by its owning
// context's run loop.
type Heap struct {
	head, tail *Header
	finHead    *Header

	count     int
	bytes     uintptr
	nextID    uint64
	threshold uintptr
}

// New creates an empty heap with the given initial collection threshold
// (spec §4.6's Automatic trigger fires once Bytes() exceeds this value).
func New(initialThreshold uintptr) *Heap {
	return &Heap{threshold: initialThreshold}
}

// Allocate links a freshly constructed Header into the object list and
// returns it, ready for the caller to finish initializing its payload.
// byteSize is the accounted size used for GC trigger bookkeeping; it need
// not match Go's actual allocation size exactly, only be a reasonable
// proxy (spec leaves this to the implementer).
//
// Allocate never triggers a collection itself: per spec §4.2, "allocation
// never triggers GC implicitly unless an out-of-memory condition is
// observed" — scheduling a collection is the scheduler/collector's job,
// driven by ShouldCollect after the fact.
func (h *Heap) Allocate(t *types.Type, byteSize uintptr) *Header {
	hdr := &Header{}
	h.AllocateInto(hdr, t, byteSize)
	return hdr
}

// AllocateInto is Allocate for a Header whose memory the caller already
// owns: every concrete kind in package objects embeds Header by value as
// its first field and calls this via &obj.Header so the exact same Header
// the heap's object list tracks is the one reachable through the concrete
// object's pointer (no separate copy to keep in sync).
func (h *Heap) AllocateInto(hdr *Header, t *types.Type, byteSize uintptr) {
	hdr.Type = t
	hdr.id = h.nextID
	h.nextID++
	hdr.size = byteSize

	hdr.prev = h.tail
	if h.tail != nil {
		h.tail.next = hdr
	} else {
		h.head = hdr
	}
	h.tail = hdr

	h.count++
	h.bytes += byteSize
}

// RegisterFinalizer links hdr into the finalizer list and arms
// FlagFinalizable so sweep runs hdr.Finalize before reclaiming it. Only
// NativeObject headers are expected to call this (spec §3 "Objects needing
// cleanup (only NativeObject)").
func (h *Heap) RegisterFinalizer(hdr *Header) {
	if hdr.flag&FlagFinalizable != 0 {
		return
	}
	hdr.flag |= FlagFinalizable
	hdr.finNext = h.finHead
	if h.finHead != nil {
		h.finHead.finPrev = hdr
	}
	h.finHead = hdr
}

// IterateObjects calls f for every live object in allocation order. f must
// not mutate the object list; use Unlink from within the collector's sweep
// instead, which is written to tolerate in-iteration removal of the
// current cursor (spec §9 "cursor-style removal must be preserved to allow
// safe in-iteration unlinking during sweep").
func (h *Heap) IterateObjects(f func(*Header)) {
	cur := h.head
	for cur != nil {
		next := cur.next // saved before f runs: f may Unlink cur, which nils cur.next
		f(cur)
		cur = next
	}
}

// Head returns the first object in the list, or nil if the heap is empty.
// The collector's sweep does not use it; it walks the list through
// IterateObjects.
func (h *Heap) Head() *Header { return h.head }

// Unlink removes hdr from the object list (and the finalizer list, if
// present) in O(1), preserving the cursor of any in-progress iteration
// positioned after hdr.
func (h *Heap) Unlink(hdr *Header) {
	if hdr.prev != nil {
		hdr.prev.next = hdr.next
	} else {
		h.head = hdr.next
	}
	if hdr.next != nil {
		hdr.next.prev = hdr.prev
	} else {
		h.tail = hdr.prev
	}
	hdr.next, hdr.prev = nil, nil

	if hdr.flag&FlagFinalizable != 0 {
		if hdr.finPrev != nil {
			hdr.finPrev.finNext = hdr.finNext
		} else {
			h.finHead = hdr.finNext
		}
		if hdr.finNext != nil {
			hdr.finNext.finPrev = hdr.finPrev
		}
		hdr.finNext, hdr.finPrev = nil, nil
	}

	h.count--
	h.bytes -= hdr.size
}

// Count returns the number of live objects, i.e. allocated_objects() from
// spec §8's GC-soundness property.
func (h *Heap) Count() int { return h.count }

// Bytes returns the accounted live byte total.
func (h *Heap) Bytes() uintptr { return h.bytes }

// Threshold returns the current Automatic-trigger threshold.
func (h *Heap) Threshold() uintptr { return h.threshold }

// SetThreshold installs a new Automatic-trigger threshold, following
// spec §4.6's rule: "max(prev_threshold, next_power_of_two(surviving_bytes))",
// resetting when survivors drop below 2/3 of the previous threshold. The
// collector computes the new value and calls this after every cycle.
func (h *Heap) SetThreshold(t uintptr) { h.threshold = t }

// ShouldCollect reports whether live bytes have grown past the current
// threshold (the Automatic trigger condition).
func (h *Heap) ShouldCollect() bool { return h.bytes > h.threshold }

// NextPowerOfTwo rounds n up to the next power of two (n itself if already
// one), used by the collector's threshold formula.
func NextPowerOfTwo(n uintptr) uintptr {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

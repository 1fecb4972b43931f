package value

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
)

// Pointer width the small-integer range is derived from. Every supported
// Go target for this module is 64-bit (spec §4.1 "W is the pointer
// width"); a 32-bit build would need a narrower range, which we do not
// attempt to support.
const intBits = 64

const (
	// SmallIntMin and SmallIntMax bound the inline small-integer range
	// [-2^(W-2), 2^(W-2)-1] from spec §4.1.
	SmallIntMin = -(int64(1) << (intBits - 2))
	SmallIntMax = int64(1)<<(intBits-2) - 1
)

// Value is the uniform representation spec §3/§4.1 describe as a one
// machine word tagged pointer. Go cannot safely bit-pack a live heap
// pointer into an integer, so Value instead carries a real typed pointer
// for the heap case and a Kind discriminant for the two immediate cases
// (Null, small Integer); see the package doc for the full rationale.
//
// The zero Value is Null, mirroring the convention (used throughout the
// interpreter for uninitialized registers/slots) that a freshly zeroed
// slot already holds a well-defined value.
type Value struct {
	ptr  *heap.Header
	smi  int64
	kind types.Kind // meaningful only when ptr == nil
}

// Null is the immediate null value.
var Null = Value{kind: types.KindNull}

// FromHeap wraps a heap object as a Value.
func FromHeap(hdr *heap.Header) Value {
	return Value{ptr: hdr}
}

// MakeSmallInt attempts to inline n as a small integer, reporting ok=false
// if n falls outside [SmallIntMin, SmallIntMax]. This mirrors spec §4.1's
// make_small_int but surfaces the range failure as a boolean rather than
// allocating an error, since small-int construction is on the arithmetic
// hot path; callers that must report spec's RangeError/Overflow kinds to
// a caller (e.g. the interpreter's checked-arithmetic opcodes, or the host
// API) wrap the boolean themselves.
func MakeSmallInt(n int64) (Value, bool) {
	if n < SmallIntMin || n > SmallIntMax {
		return Value{}, false
	}
	return Value{smi: n, kind: types.KindInteger}, true
}

// MustMakeSmallInt is MakeSmallInt for callers holding a constant already
// known to be in range (e.g. building the booted context's well-known
// values); it panics otherwise.
func MustMakeSmallInt(n int64) Value {
	v, ok := MakeSmallInt(n)
	if !ok {
		panic("value: constant out of small-integer range")
	}
	return v
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.ptr == nil && v.kind == types.KindNull }

// IsSmallInt reports whether v is an inlined small integer (as opposed to
// a boxed Integer object on the heap).
func (v Value) IsSmallInt() bool { return v.ptr == nil && v.kind == types.KindInteger }

// IsHeap reports whether v references a heap object.
func (v Value) IsHeap() bool { return v.ptr != nil }

// SmallIntValue returns the inlined integer and true, or (0, false) if v is
// not a small integer.
func (v Value) SmallIntValue() (int64, bool) {
	if !v.IsSmallInt() {
		return 0, false
	}
	return v.smi, true
}

// HeapPtr returns the referenced header and true, or (nil, false) if v is
// not a heap value.
func (v Value) HeapPtr() (*heap.Header, bool) {
	if v.ptr == nil {
		return nil, false
	}
	return v.ptr, true
}

// Kind returns the value's type kind: for heap values this reads the
// object's Header.Type.Kind; for immediates it is the Kind carried
// directly on the Value.
func (v Value) Kind() types.Kind {
	if v.ptr != nil {
		return v.ptr.Type.Kind
	}
	return v.kind
}

// IdentityKey returns a value usable as a map key for pointer-identity
// comparisons ("is" semantics, spec §4.1): the header's stable id for heap
// values, or the small integer itself (small integers have no separate
// identity from their value; two small ints with the same value are
// always identical, per spec's "Reference equality (is)" note that
// immediates compare equal by value).
func (v Value) IdentityKey() any {
	if v.ptr != nil {
		return v.ptr.ID()
	}
	if v.kind == types.KindInteger {
		return v.smi
	}
	return nil // Null: the single immediate null is always "is"-equal to itself
}

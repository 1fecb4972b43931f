package objects

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// NativeVariant distinguishes the host-callback shapes: synchronous and
// asynchronous. There is no resumable variant.
type NativeVariant uint8

const (
	NativeSync NativeVariant = iota
	NativeAsync
)

// NativeCallFrame is the view a NativeFunction's Go callback gets over its
// arguments. It carries no context and no result slot: a sync callback
// returns its result, an async one fulfills its ResumeToken.
type NativeCallFrame struct {
	Args []value.Value
}

func (f *NativeCallFrame) Arg(i int) (value.Value, bool) {
	if i < 0 || i >= len(f.Args) {
		return value.Value{}, false
	}
	return f.Args[i], true
}

// ResumeToken is delivered to an async NativeFunction's callback instead
// of a direct return (GLOSSARY "Resume token"). Fulfilling it only records
// the outcome; the host then passes the token to Context.CompleteAsync,
// which resumes the waiting coroutine.
type ResumeToken struct {
	Coroutine *Coroutine
	fulfilled bool
	result    value.Value
	err       error
}

// Fulfill records the result and marks the token fulfilled;
// Context.CompleteAsync reads Result/Err when the host hands it the token.
func (r *ResumeToken) Fulfill(v value.Value) {
	r.result = v
	r.fulfilled = true
}

// FulfillError records an error result.
func (r *ResumeToken) FulfillError(err error) {
	r.err = err
	r.fulfilled = true
}

func (r *ResumeToken) Fulfilled() bool    { return r.fulfilled }
func (r *ResumeToken) Result() value.Value { return r.result }
func (r *ResumeToken) Err() error          { return r.err }

// NativeFunction wraps a host callback (spec §3/§4.5).
type NativeFunction struct {
	heap.Header
	Name      string
	MinParams int
	Variant   NativeVariant
	Sync      func(frame *NativeCallFrame) (value.Value, error)
	Async     func(frame *NativeCallFrame, token *ResumeToken)
}

// NewNativeFunction allocates a synchronous native function.
func NewNativeFunction(h *heap.Heap, t *types.Type, name string, minParams int, fn func(*NativeCallFrame) (value.Value, error)) *NativeFunction {
	nf := &NativeFunction{Name: name, MinParams: minParams, Variant: NativeSync, Sync: fn}
	h.AllocateInto(&nf.Header, t, 0)
	nf.Header.Payload = nf
	return nf
}

// NewNativeAsyncFunction allocates an asynchronous native function.
func NewNativeAsyncFunction(h *heap.Heap, t *types.Type, name string, minParams int, fn func(*NativeCallFrame, *ResumeToken)) *NativeFunction {
	nf := &NativeFunction{Name: name, MinParams: minParams, Variant: NativeAsync, Async: fn}
	h.AllocateInto(&nf.Header, t, 0)
	nf.Header.Payload = nf
	return nf
}

// NativeObject is opaque host data with an optional finalizer (spec §3/
// §6.3 "finalizers must not allocate").
type NativeObject struct {
	heap.Header
	Data     any
	OnFinal  func(data any)
}

// NewNativeObject allocates opaque host data, registering a finalizer
// with h if onFinal is non-nil (spec §3 "Objects needing cleanup (only
// NativeObject)").
func NewNativeObject(h *heap.Heap, t *types.Type, data any, onFinal func(any)) *NativeObject {
	no := &NativeObject{Data: data, OnFinal: onFinal}
	h.AllocateInto(&no.Header, t, 0)
	no.Header.Payload = no
	if onFinal != nil {
		no.Header.Finalize = func() { onFinal(no.Data) }
		h.RegisterFinalizer(&no.Header)
	}
	return no
}

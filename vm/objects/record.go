package objects

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// RecordTemplate is an ordered set of Symbol keys shared by every Record
// constructed from it (spec §3/§6.1).
type RecordTemplate struct {
	heap.Header
	Keys []*Symbol
}

// NewRecordTemplate allocates a template over keys (not copied).
func NewRecordTemplate(h *heap.Heap, t *types.Type, keys []*Symbol) *RecordTemplate {
	rt := &RecordTemplate{Keys: keys}
	h.AllocateInto(&rt.Header, t, uintptr(len(keys))*8)
	rt.Header.Payload = rt
	return rt
}

// IndexOf returns the slot index for key sym, or -1 if sym is not one of
// the template's fixed keys.
func (rt *RecordTemplate) IndexOf(sym *Symbol) int {
	for i, k := range rt.Keys {
		if k == sym {
			return i
		}
	}
	return -1
}

// Record maps exactly the keys fixed by its RecordTemplate (spec §3/§4.4).
type Record struct {
	heap.Header
	Template *RecordTemplate
	Values   []value.Value
}

// NewRecord allocates a Record instantiated from template, all values
// Null.
func NewRecord(h *heap.Heap, t *types.Type, template *RecordTemplate) *Record {
	r := &Record{Template: template, Values: make([]value.Value, len(template.Keys))}
	h.AllocateInto(&r.Header, t, uintptr(len(template.Keys))*8)
	r.Header.Payload = r
	return r
}

// Get returns the value stored for sym, if sym is one of the record's
// fixed keys.
func (r *Record) Get(sym *Symbol) (value.Value, bool) {
	i := r.Template.IndexOf(sym)
	if i < 0 {
		return value.Value{}, false
	}
	return r.Values[i], true
}

// Set stores v under sym, returning true iff sym is one of the record's
// fixed keys (spec §4.4 "succeeds iff k is one of the keys fixed at
// record creation; otherwise no-op and returns false").
func (r *Record) Set(sym *Symbol, v value.Value) bool {
	i := r.Template.IndexOf(sym)
	if i < 0 {
		return false
	}
	r.Values[i] = v
	return true
}

package gc

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/value"
)

// markFunc marks a header reachable and schedules its children for
// walking, if it has not already been visited this cycle.
type markFunc func(*heap.Header)

func markValue(v value.Value, mark markFunc) {
	if hdr, ok := v.HeapPtr(); ok {
		mark(hdr)
	}
}

// walkChildren visits every outgoing Value/heap reference held by the
// object behind hdr (spec §4.6 "visits every outgoing Value reference,
// including payload slots, storage arrays, frames on coroutine stacks,
// and closure parents").
func walkChildren(hdr *heap.Header, mark markFunc) {
	switch o := hdr.Payload.(type) {
	case *objects.Symbol:
		mark(&o.Name.Header)

	case *objects.Tuple:
		for _, v := range o.Elems {
			markValue(v, mark)
		}

	case *objects.Array:
		if s := o.Storage(); s != nil {
			mark(&s.Header)
		}

	case *objects.ArrayStorage:
		for _, v := range o.Elems {
			markValue(v, mark)
		}

	case *objects.HashTable:
		o.Iterate(func(k, v value.Value) {
			markValue(k, mark)
			markValue(v, mark)
		})

	case *objects.Set:
		mark(&o.Table().Header)

	case *objects.Record:
		mark(&o.Template.Header)
		for _, v := range o.Values {
			markValue(v, mark)
		}

	case *objects.RecordTemplate:
		for _, k := range o.Keys {
			mark(&k.Header)
		}

	case *objects.FunctionTemplate:
		if o.Code != nil {
			mark(&o.Code.Header)
		}
		if o.Home != nil {
			mark(&o.Home.Header)
		}

	case *objects.ClosureContext:
		if o.Parent != nil {
			mark(&o.Parent.Header)
		}
		for _, v := range o.Slots {
			markValue(v, mark)
		}

	case *objects.Function:
		if o.Template != nil {
			mark(&o.Template.Header)
		}
		if o.Closure != nil {
			mark(&o.Closure.Header)
		}

	case *objects.BoundMethod:
		if o.Fn != nil {
			mark(&o.Fn.Header)
		}
		markValue(o.Receiver, mark)

	case *objects.Module:
		if o.Name != nil {
			mark(&o.Name.Header)
		}
		if o.Members != nil {
			mark(&o.Members.Header)
		}
		for _, sym := range o.ExportOrder {
			mark(&sym.Header)
		}

	case *objects.UnresolvedImport:
		if o.ModuleName != nil {
			mark(&o.ModuleName.Header)
		}

	case *objects.Coroutine:
		if o.Stack != nil {
			mark(&o.Stack.Header)
		}
		markValue(o.Result, mark)

	case *objects.CoroutineStack:
		for _, v := range o.Values {
			markValue(v, mark)
		}
		for _, f := range o.Frames {
			if f.Template != nil {
				mark(&f.Template.Header)
			}
			if f.Closure != nil {
				mark(&f.Closure.Header)
			}
		}

	case *objects.String, *objects.Integer, *objects.Float, *objects.Boolean,
		*objects.Undefined, *objects.BytecodeCode, *objects.NativeFunction,
		*objects.StringBuilder:
		// Leaf kinds: no outgoing Value references.

	case *objects.Iterator:
		// Iterator wraps a Go closure over another heap object's contents;
		// that object must already be rooted independently by whatever
		// produced the iterator (the source Array/Tuple/HashTable remains
		// on a handle or the value stack for the iterator's lifetime).

	case *objects.NativeObject:
		// Opaque host data (spec §6.3): the host is responsible for not
		// stashing an unrooted heap reference inside Data.
	}
}

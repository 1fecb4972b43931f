package interp

import (
	"github.com/emberlang/ember"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/value"
)

func (it *Interpreter) allocArrayStorage(cap int) *objects.ArrayStorage {
	return objects.NewArrayStorage(it.Heap, it.T.ArrayStorage, cap)
}

func (it *Interpreter) opMakeArray(co *objects.Coroutine, frame *objects.CallFrame) error {
	n, err := it.u32(frame)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(int(n))
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	arr := objects.NewArray(it.Heap, it.T.Array)
	for _, v := range vals {
		arr.Append(v, it.allocArrayStorage)
	}
	return co.Stack.PushValue(value.FromHeap(&arr.Header))
}

func (it *Interpreter) opMakeTuple(co *objects.Coroutine, frame *objects.CallFrame) error {
	n, err := it.u32(frame)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(int(n))
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	tup := objects.NewTuple(it.Heap, it.T.Tuple, int(n))
	for i, v := range vals {
		tup.Set(i, v)
	}
	return co.Stack.PushValue(value.FromHeap(&tup.Header))
}

func (it *Interpreter) opMakeMap(co *objects.Coroutine, frame *objects.CallFrame) error {
	nPairs, err := it.u32(frame)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(int(nPairs) * 2)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	ht := objects.NewHashTable(it.Heap, it.T.HashTable)
	for i := 0; i < len(vals); i += 2 {
		ht.Set(vals[i], vals[i+1])
	}
	return co.Stack.PushValue(value.FromHeap(&ht.Header))
}

func (it *Interpreter) opMakeSet(co *objects.Coroutine, frame *objects.CallFrame) error {
	n, err := it.u32(frame)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(int(n))
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	s := objects.NewSet(it.Heap, it.T.Set, it.T.HashTable)
	for _, v := range vals {
		s.Add(v)
	}
	return co.Stack.PushValue(value.FromHeap(&s.Header))
}

func (it *Interpreter) recordTemplateMember(frame *objects.CallFrame, idx int) (*objects.RecordTemplate, error) {
	v, ok := frame.Template.Home.Members.Get(idx)
	if !ok {
		return nil, ember.NewError(ember.KindModuleFormat, "record template member index %d out of range", idx)
	}
	hdr, ok := v.HeapPtr()
	if !ok {
		return nil, ember.NewError(ember.KindModuleFormat, "member %d is not a record template", idx)
	}
	rt, ok := hdr.Payload.(*objects.RecordTemplate)
	if !ok {
		return nil, ember.NewError(ember.KindModuleFormat, "member %d is not a record template", idx)
	}
	return rt, nil
}

// opMakeRecord pops len(template.Keys) values, in key order, and builds a
// Record from the RecordTemplate named by the home-module member index.
func (it *Interpreter) opMakeRecord(co *objects.Coroutine, frame *objects.CallFrame) error {
	idx, err := it.u32(frame)
	if err != nil {
		return err
	}
	rt, err := it.recordTemplateMember(frame, int(idx))
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(len(rt.Keys))
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	rec := objects.NewRecord(it.Heap, it.T.Record, rt)
	for i, v := range vals {
		rec.Set(rt.Keys[i], v)
	}
	return co.Stack.PushValue(value.FromHeap(&rec.Header))
}

func (it *Interpreter) functionTemplateMember(frame *objects.CallFrame, idx int) (*objects.FunctionTemplate, error) {
	v, ok := frame.Template.Home.Members.Get(idx)
	if !ok {
		return nil, ember.NewError(ember.KindModuleFormat, "function member index %d out of range", idx)
	}
	hdr, ok := v.HeapPtr()
	if !ok {
		return nil, ember.NewError(ember.KindModuleFormat, "member %d is not a closure template", idx)
	}
	switch p := hdr.Payload.(type) {
	case *objects.FunctionTemplate:
		return p, nil
	case *objects.Function:
		return p.Template, nil
	default:
		return nil, ember.NewError(ember.KindModuleFormat, "member %d is not a closure template", idx)
	}
}

// opMakeClosure implements `make_closure(template_ref)` (spec §4.5): pops
// an env value (a ClosureContext, or Null for no capture) off the stack
// and pairs it with the referenced template.
func (it *Interpreter) opMakeClosure(co *objects.Coroutine, frame *objects.CallFrame) error {
	idx, err := it.u32(frame)
	if err != nil {
		return err
	}
	tmpl, err := it.functionTemplateMember(frame, int(idx))
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	var env *objects.ClosureContext
	if !vals[0].IsNull() {
		hdr, ok := vals[0].HeapPtr()
		if !ok {
			return ember.NewError(ember.KindTypeError, "closure env must be a closure context or null")
		}
		cc, ok := hdr.Payload.(*objects.ClosureContext)
		if !ok {
			return ember.NewError(ember.KindTypeError, "closure env must be a closure context or null")
		}
		env = cc
	}
	fn := objects.NewFunction(it.Heap, it.T.Function, tmpl, env)
	return co.Stack.PushValue(value.FromHeap(&fn.Header))
}

// opMakeEnv implements `make_env(size)` (spec §4.5): pops a parent value
// (a ClosureContext, or Null for a top-level env) and allocates a fresh
// context chained to it.
func (it *Interpreter) opMakeEnv(co *objects.Coroutine, frame *objects.CallFrame) error {
	size, err := it.u32(frame)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	var parent *objects.ClosureContext
	if !vals[0].IsNull() {
		hdr, ok := vals[0].HeapPtr()
		if !ok {
			return ember.NewError(ember.KindTypeError, "env parent must be a closure context or null")
		}
		cc, ok := hdr.Payload.(*objects.ClosureContext)
		if !ok {
			return ember.NewError(ember.KindTypeError, "env parent must be a closure context or null")
		}
		parent = cc
	}
	cc := objects.NewClosureContext(it.Heap, it.T.ClosureContext, parent, int(size))
	return co.Stack.PushValue(value.FromHeap(&cc.Header))
}

func (it *Interpreter) allocTuple2() *objects.Tuple {
	return objects.NewTuple(it.Heap, it.T.Tuple, 2)
}

// opMakeIterator implements `make_iterator` over any of the four
// container kinds spec §4.4 names.
func (it *Interpreter) opMakeIterator(co *objects.Coroutine) error {
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	hdr, ok := vals[0].HeapPtr()
	if !ok {
		return ember.NewError(ember.KindTypeError, "value is not iterable")
	}
	var iter *objects.Iterator
	switch p := hdr.Payload.(type) {
	case *objects.Array:
		iter = objects.NewArrayIterator(it.Heap, it.T.Iterator, p)
	case *objects.Tuple:
		iter = objects.NewTupleIterator(it.Heap, it.T.Iterator, p)
	case *objects.HashTable:
		iter = objects.NewHashTableIterator(it.Heap, it.T.Iterator, p, it.allocTuple2)
	case *objects.Set:
		iter = objects.NewSetIterator(it.Heap, it.T.Iterator, p)
	default:
		return ember.NewError(ember.KindTypeError, "value of kind %s is not iterable", hdr.Type.Kind)
	}
	return co.Stack.PushValue(value.FromHeap(&iter.Header))
}

func (it *Interpreter) opIteratorNext(co *objects.Coroutine) error {
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	hdr, ok := vals[0].HeapPtr()
	if !ok {
		return ember.NewError(ember.KindTypeError, "value is not an iterator")
	}
	iter, ok := hdr.Payload.(*objects.Iterator)
	if !ok {
		return ember.NewError(ember.KindTypeError, "value of kind %s is not an iterator", hdr.Type.Kind)
	}
	v, more := iter.Next()
	if !more {
		v = it.Null
	}
	if err := co.Stack.PushValue(v); err != nil {
		return err
	}
	return co.Stack.PushValue(it.boolValue(more))
}

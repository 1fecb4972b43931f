package interp

import (
	"github.com/emberlang/ember"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/value"
)

func (it *Interpreter) symbolMember(frame *objects.CallFrame, idx int) (*objects.Symbol, error) {
	v, ok := frame.Template.Home.Members.Get(idx)
	if !ok {
		return nil, ember.NewError(ember.KindModuleFormat, "symbol member index %d out of range", idx)
	}
	hdr, ok := v.HeapPtr()
	if !ok {
		return nil, ember.NewError(ember.KindModuleFormat, "member %d is not a symbol", idx)
	}
	sym, ok := hdr.Payload.(*objects.Symbol)
	if !ok {
		return nil, ember.NewError(ember.KindModuleFormat, "member %d is not a symbol", idx)
	}
	return sym, nil
}

// opLoadMember implements `load_member(name)` (spec §4.5): pops a
// receiver, pushes the field named by the Symbol at the given home-module
// member index. Only Record receivers carry named fields.
func (it *Interpreter) opLoadMember(co *objects.Coroutine, frame *objects.CallFrame) error {
	idx, err := it.u32(frame)
	if err != nil {
		return err
	}
	sym, err := it.symbolMember(frame, int(idx))
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	rec, err := asRecord(vals[0])
	if err != nil {
		return err
	}
	v, ok := rec.Get(sym)
	if !ok {
		return ember.NewError(ember.KindNameError, "no such field %q", sym.String())
	}
	return co.Stack.PushValue(v)
}

func (it *Interpreter) opStoreMember(co *objects.Coroutine, frame *objects.CallFrame) error {
	idx, err := it.u32(frame)
	if err != nil {
		return err
	}
	sym, err := it.symbolMember(frame, int(idx))
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(2)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	rec, err := asRecord(vals[0])
	if err != nil {
		return err
	}
	if !rec.Set(sym, vals[1]) {
		return ember.NewError(ember.KindNameError, "no such field %q", sym.String())
	}
	return nil
}

func asRecord(v value.Value) (*objects.Record, error) {
	hdr, ok := v.HeapPtr()
	if !ok {
		return nil, ember.NewError(ember.KindTypeError, "value has no fields")
	}
	rec, ok := hdr.Payload.(*objects.Record)
	if !ok {
		return nil, ember.NewError(ember.KindTypeError, "value of kind %s has no fields", hdr.Type.Kind)
	}
	return rec, nil
}

func asTuple(v value.Value) (*objects.Tuple, error) {
	hdr, ok := v.HeapPtr()
	if !ok {
		return nil, ember.NewError(ember.KindTypeError, "value is not a tuple")
	}
	tup, ok := hdr.Payload.(*objects.Tuple)
	if !ok {
		return nil, ember.NewError(ember.KindTypeError, "value of kind %s is not a tuple", hdr.Type.Kind)
	}
	return tup, nil
}

func (it *Interpreter) opLoadTupleMember(co *objects.Coroutine, frame *objects.CallFrame) error {
	n, err := it.u32(frame)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	tup, err := asTuple(vals[0])
	if err != nil {
		return err
	}
	v, ok := tup.Get(int(n))
	if !ok {
		return ember.NewError(ember.KindIndexOutOfBounds, "tuple index %d out of range", n)
	}
	return co.Stack.PushValue(v)
}

func (it *Interpreter) opStoreTupleMember(co *objects.Coroutine, frame *objects.CallFrame) error {
	n, err := it.u32(frame)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(2)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	tup, err := asTuple(vals[0])
	if err != nil {
		return err
	}
	if !tup.Set(int(n), vals[1]) {
		return ember.NewError(ember.KindIndexOutOfBounds, "tuple index %d out of range", n)
	}
	return nil
}

// opLoadIndex implements `load_index` (spec §4.5): pops index, pops
// container, pushes the element. Supports Array, Tuple, HashTable, Set
// membership-as-index is not defined; Set has no index operator.
func (it *Interpreter) opLoadIndex(co *objects.Coroutine) error {
	vals, ok := co.Stack.PopValue(2)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	container, index := vals[0], vals[1]
	hdr, ok := container.HeapPtr()
	if !ok {
		return ember.NewError(ember.KindTypeError, "value is not indexable")
	}
	switch p := hdr.Payload.(type) {
	case *objects.Array:
		i, ok := intIndex(index)
		if !ok {
			return ember.NewError(ember.KindTypeError, "array index must be an integer")
		}
		v, ok := p.Get(i)
		if !ok {
			return ember.NewError(ember.KindIndexOutOfBounds, "array index %d out of range", i)
		}
		return co.Stack.PushValue(v)
	case *objects.Tuple:
		i, ok := intIndex(index)
		if !ok {
			return ember.NewError(ember.KindTypeError, "tuple index must be an integer")
		}
		v, ok := p.Get(i)
		if !ok {
			return ember.NewError(ember.KindIndexOutOfBounds, "tuple index %d out of range", i)
		}
		return co.Stack.PushValue(v)
	case *objects.HashTable:
		v, ok := p.Get(index)
		if !ok {
			return ember.NewError(ember.KindKeyError, "key not found")
		}
		return co.Stack.PushValue(v)
	default:
		return ember.NewError(ember.KindTypeError, "value of kind %s is not indexable", hdr.Type.Kind)
	}
}

func (it *Interpreter) opStoreIndex(co *objects.Coroutine) error {
	vals, ok := co.Stack.PopValue(3)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	container, index, val := vals[0], vals[1], vals[2]
	hdr, ok := container.HeapPtr()
	if !ok {
		return ember.NewError(ember.KindTypeError, "value is not indexable")
	}
	switch p := hdr.Payload.(type) {
	case *objects.Array:
		i, ok := intIndex(index)
		if !ok {
			return ember.NewError(ember.KindTypeError, "array index must be an integer")
		}
		if !p.Set(i, val) {
			return ember.NewError(ember.KindIndexOutOfBounds, "array index %d out of range", i)
		}
		return nil
	case *objects.Tuple:
		i, ok := intIndex(index)
		if !ok {
			return ember.NewError(ember.KindTypeError, "tuple index must be an integer")
		}
		if !p.Set(i, val) {
			return ember.NewError(ember.KindIndexOutOfBounds, "tuple index %d out of range", i)
		}
		return nil
	case *objects.HashTable:
		p.Set(index, val)
		return nil
	default:
		return ember.NewError(ember.KindTypeError, "value of kind %s is not indexable", hdr.Type.Kind)
	}
}

func intIndex(v value.Value) (int, bool) {
	if n, ok := v.SmallIntValue(); ok {
		return int(n), true
	}
	if hdr, ok := v.HeapPtr(); ok {
		if n, ok := hdr.Payload.(*objects.Integer); ok {
			return int(n.Value), true
		}
	}
	return 0, false
}

// opLoadModule pops an already-resolved Module value and reads member
// index idx from its tuple, distinct from load_module_member which reads
// from the *current frame's* home module directly.
func (it *Interpreter) opLoadModule(co *objects.Coroutine, frame *objects.CallFrame) error {
	idx, err := it.u32(frame)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	mod, err := asModule(vals[0])
	if err != nil {
		return err
	}
	v, ok := mod.Members.Get(int(idx))
	if !ok {
		return ember.NewError(ember.KindModuleFormat, "module member index %d out of range", idx)
	}
	return co.Stack.PushValue(v)
}

func (it *Interpreter) opStoreModule(co *objects.Coroutine, frame *objects.CallFrame) error {
	idx, err := it.u32(frame)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(2)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	mod, err := asModule(vals[0])
	if err != nil {
		return err
	}
	if !mod.Members.Set(int(idx), vals[1]) {
		return ember.NewError(ember.KindModuleFormat, "module member index %d out of range", idx)
	}
	return nil
}

func asModule(v value.Value) (*objects.Module, error) {
	hdr, ok := v.HeapPtr()
	if !ok {
		return nil, ember.NewError(ember.KindTypeError, "value is not a module")
	}
	mod, ok := hdr.Payload.(*objects.Module)
	if !ok {
		return nil, ember.NewError(ember.KindTypeError, "value of kind %s is not a module", hdr.Type.Kind)
	}
	return mod, nil
}

// opRotate implements rot2/rot3/rot4: bring the nth-from-top value to the
// top, shifting the others down (used to reorder operands ahead of a
// binary op or aggregate construction).
func (it *Interpreter) opRotate(co *objects.Coroutine, op Opcode) error {
	n := map[Opcode]int{OpRot2: 2, OpRot3: 3, OpRot4: 4}[op]
	vals, ok := co.Stack.PopValue(n)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	bottom := vals[0]
	rest := vals[1:]
	for _, v := range rest {
		if err := co.Stack.PushValue(v); err != nil {
			return err
		}
	}
	return co.Stack.PushValue(bottom)
}

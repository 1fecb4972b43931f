package objects

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// FunctionKind distinguishes a function that never captures an enclosing
// environment from one that must be paired with a ClosureContext before
// it is callable (spec §4.7 "if Normal, wrap in a Function with no
// closure; if Closure, store the bare template").
type FunctionKind uint8

const (
	FunctionNormal FunctionKind = iota
	FunctionClosure
)

// BytecodeCode is an immutable byte blob (spec §3).
type BytecodeCode struct {
	heap.Header
	Code []byte
}

// NewBytecodeCode allocates Code over code (not copied).
func NewBytecodeCode(h *heap.Heap, t *types.Type, code []byte) *BytecodeCode {
	c := &BytecodeCode{Code: code}
	h.AllocateInto(&c.Header, t, uintptr(len(code)))
	c.Header.Payload = c
	return c
}

// FunctionTemplate is the immutable description of a callable (spec §3/
// §4.5/GLOSSARY): name, home module, parameter count, local slot count,
// code.
type FunctionTemplate struct {
	heap.Header
	Name       string
	Home       *Module
	Params     int
	Locals     int
	Code       *BytecodeCode
	Kind       FunctionKind
}

// NewFunctionTemplate allocates a template.
func NewFunctionTemplate(h *heap.Heap, t *types.Type, name string, home *Module, params, locals int, code *BytecodeCode, kind FunctionKind) *FunctionTemplate {
	ft := &FunctionTemplate{Name: name, Home: home, Params: params, Locals: locals, Code: code, Kind: kind}
	h.AllocateInto(&ft.Header, t, 0)
	ft.Header.Payload = ft
	return ft
}

// ClosureContext is a chain of captured-variable slots (GLOSSARY).
type ClosureContext struct {
	heap.Header
	Parent *ClosureContext
	Slots  []value.Value
}

// NewClosureContext allocates a context with size slots, parented to
// parent (nil for a top-level closure).
func NewClosureContext(h *heap.Heap, t *types.Type, parent *ClosureContext, size int) *ClosureContext {
	cc := &ClosureContext{Parent: parent, Slots: make([]value.Value, size)}
	h.AllocateInto(&cc.Header, t, uintptr(size)*8)
	cc.Header.Payload = cc
	return cc
}

// At returns the slot at (level, index): level 0 is this context, level 1
// is its parent, and so on (spec §4.5 "closure_var(level, index)").
func (cc *ClosureContext) At(level, index int) (value.Value, bool) {
	cur := cc
	for ; level > 0 && cur != nil; level-- {
		cur = cur.Parent
	}
	if cur == nil || index < 0 || index >= len(cur.Slots) {
		return value.Value{}, false
	}
	return cur.Slots[index], true
}

// SetAt stores v at (level, index).
func (cc *ClosureContext) SetAt(level, index int, v value.Value) bool {
	cur := cc
	for ; level > 0 && cur != nil; level-- {
		cur = cur.Parent
	}
	if cur == nil || index < 0 || index >= len(cur.Slots) {
		return false
	}
	cur.Slots[index] = v
	return true
}

// Function pairs a template with an optional closure (spec §3).
type Function struct {
	heap.Header
	Template *FunctionTemplate
	Closure  *ClosureContext
}

// NewFunction allocates a Function.
func NewFunction(h *heap.Heap, t *types.Type, template *FunctionTemplate, closure *ClosureContext) *Function {
	f := &Function{Template: template, Closure: closure}
	h.AllocateInto(&f.Header, t, 0)
	f.Header.Payload = f
	return f
}

// BoundMethod binds a function to a receiver as if the receiver were an
// implicit first argument (spec §4.5).
type BoundMethod struct {
	heap.Header
	Fn       *Function
	Receiver value.Value
}

// NewBoundMethod allocates a BoundMethod.
func NewBoundMethod(h *heap.Heap, t *types.Type, fn *Function, receiver value.Value) *BoundMethod {
	bm := &BoundMethod{Fn: fn, Receiver: receiver}
	h.AllocateInto(&bm.Header, t, 0)
	bm.Header.Payload = bm
	return bm
}

package objects

import (
	"errors"

	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// ErrStackOverflow is returned by CoroutineStack growth once the fixed
// maximum stack size is exceeded (spec §4.4 "exceeding it fails with
// StackOverflow"). The interpreter (which can see package vm's error
// kinds) wraps this into an *vm.Error of kind StackOverflow; objects
// itself stays independent of the root error package to avoid an import
// cycle (vm wires objects, interp, gc, etc. together).
var ErrStackOverflow = errors.New("objects: coroutine stack overflow")

// MaxStackValues and MaxStackFrames bound a single coroutine's stack
// (spec §4.4's "fixed constant").
const (
	MaxStackValues = 1 << 20
	MaxStackFrames = 1 << 16

	minStackValues = 64
	minStackFrames = 8
)

// FrameFlag bits recorded on a CallFrame.
type FrameFlag uint8

const (
	// FlagPopReceiverOnReturn marks a frame entered via call_method where
	// the resolved name was a plain attribute, not a method: the second
	// (null) "receiver" slot pushed by load_method must be popped on
	// return even though it was never part of argc (spec §4.5).
	FlagPopReceiverOnReturn FrameFlag = 1 << iota
)

// CallFrame is the frame layout spec §4.5 describes: function template,
// closure, program counter, parameter count, and scheduling flags. BaseSlot
// holds the callee; params and then locals live on the value stack
// directly above it.
type CallFrame struct {
	Template   *FunctionTemplate
	Closure    *ClosureContext
	PC         int
	ParamCount int
	Flags      FrameFlag
	BaseSlot   int
}

// CoroutineStack is a growable buffer of values and call frames (spec §3/
// §4.4/GLOSSARY), rooted for GC while its owning Coroutine is reachable.
type CoroutineStack struct {
	heap.Header
	Values []value.Value
	Frames []CallFrame
}

// NewCoroutineStack allocates a stack with a small initial capacity.
func NewCoroutineStack(h *heap.Heap, t *types.Type) *CoroutineStack {
	s := &CoroutineStack{
		Values: make([]value.Value, 0, minStackValues),
		Frames: make([]CallFrame, 0, minStackFrames),
	}
	h.AllocateInto(&s.Header, t, 0)
	s.Header.Payload = s
	return s
}

// PushValue pushes v, growing Values if necessary. Returns
// ErrStackOverflow once MaxStackValues would be exceeded.
func (s *CoroutineStack) PushValue(v value.Value) error {
	if len(s.Values) == cap(s.Values) {
		if err := s.growValues(); err != nil {
			return err
		}
	}
	s.Values = append(s.Values, v)
	return nil
}

func (s *CoroutineStack) growValues() error {
	newCap := 2 * cap(s.Values)
	if newCap == 0 {
		newCap = minStackValues
	}
	if newCap > MaxStackValues {
		if cap(s.Values) >= MaxStackValues {
			return ErrStackOverflow
		}
		newCap = MaxStackValues
	}
	grown := make([]value.Value, len(s.Values), newCap)
	copy(grown, s.Values)
	s.Values = grown
	return nil
}

// PopValue pops and returns the top n values, in push order (index 0 of
// the result is the deepest of the n popped).
func (s *CoroutineStack) PopValue(n int) ([]value.Value, bool) {
	if n < 0 || n > len(s.Values) {
		return nil, false
	}
	start := len(s.Values) - n
	popped := append([]value.Value(nil), s.Values[start:]...)
	s.Values = s.Values[:start]
	return popped, true
}

// TopValue returns the value i slots from the top (0 = the very top).
func (s *CoroutineStack) TopValue(i int) (value.Value, bool) {
	idx := len(s.Values) - 1 - i
	if idx < 0 || idx >= len(s.Values) {
		return value.Value{}, false
	}
	return s.Values[idx], true
}

// SetTopValue overwrites the value i slots from the top.
func (s *CoroutineStack) SetTopValue(i int, v value.Value) bool {
	idx := len(s.Values) - 1 - i
	if idx < 0 || idx >= len(s.Values) {
		return false
	}
	s.Values[idx] = v
	return true
}

// PushFrame pushes a new call frame, growing Frames if necessary.
func (s *CoroutineStack) PushFrame(template *FunctionTemplate, closure *ClosureContext, flags FrameFlag, baseSlot int) error {
	if len(s.Frames) == cap(s.Frames) {
		newCap := 2 * cap(s.Frames)
		if newCap == 0 {
			newCap = minStackFrames
		}
		if newCap > MaxStackFrames {
			if cap(s.Frames) >= MaxStackFrames {
				return ErrStackOverflow
			}
			newCap = MaxStackFrames
		}
		grown := make([]CallFrame, len(s.Frames), newCap)
		copy(grown, s.Frames)
		s.Frames = grown
	}
	s.Frames = append(s.Frames, CallFrame{Template: template, Closure: closure, ParamCount: template.Params, Flags: flags, BaseSlot: baseSlot})
	return nil
}

// PopFrame removes and returns the top frame.
func (s *CoroutineStack) PopFrame() (CallFrame, bool) {
	if len(s.Frames) == 0 {
		return CallFrame{}, false
	}
	f := s.Frames[len(s.Frames)-1]
	s.Frames = s.Frames[:len(s.Frames)-1]
	return f, true
}

// TopFrame returns a pointer to the current frame for in-place PC
// updates, or nil if the stack is empty.
func (s *CoroutineStack) TopFrame() *CallFrame {
	if len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}

// Len returns the number of values currently on the stack, used by the
// interpreter to compute absolute slot positions for params/locals
// relative to a frame's BaseSlot.
func (s *CoroutineStack) Len() int { return len(s.Values) }

// ValueAt returns the value at absolute index i (0 = bottom of stack).
func (s *CoroutineStack) ValueAt(i int) (value.Value, bool) {
	if i < 0 || i >= len(s.Values) {
		return value.Value{}, false
	}
	return s.Values[i], true
}

// SetValueAt overwrites the value at absolute index i.
func (s *CoroutineStack) SetValueAt(i int, v value.Value) bool {
	if i < 0 || i >= len(s.Values) {
		return false
	}
	s.Values[i] = v
	return true
}

// Truncate discards every value at or above absolute index i.
func (s *CoroutineStack) Truncate(i int) {
	if i < 0 || i > len(s.Values) {
		return
	}
	s.Values = s.Values[:i]
}

// CoroutineState is the lifecycle spec §3/§4.9 describes.
type CoroutineState uint8

const (
	CoroutineReady CoroutineState = iota
	CoroutineRunning
	CoroutineWaiting
	CoroutineDone
)

// Coroutine is an independent unit of execution with its own stack,
// scheduled cooperatively (spec §3/GLOSSARY). next links it into the
// scheduler's ready queue.
type Coroutine struct {
	heap.Header
	Stack  *CoroutineStack
	State  CoroutineState
	Result value.Value
	Err    error
	next   *Coroutine
}

// NewCoroutine allocates a coroutine with a fresh stack, state Ready.
func NewCoroutine(h *heap.Heap, t *types.Type, stack *CoroutineStack) *Coroutine {
	c := &Coroutine{Stack: stack, State: CoroutineReady}
	h.AllocateInto(&c.Header, t, 0)
	c.Header.Payload = c
	return c
}

// Next returns the next coroutine in the scheduler's ready-queue link, or
// nil.
func (c *Coroutine) Next() *Coroutine { return c.next }

// SetNext installs the ready-queue link; only package scheduler calls
// this.
func (c *Coroutine) SetNext(n *Coroutine) { c.next = n }

// Finish transitions the coroutine to Done with the given result,
// releasing its stack (spec §3 "in state Done it holds a result value and
// releases its stack").
func (c *Coroutine) Finish(result value.Value) {
	c.State = CoroutineDone
	c.Result = result
	c.Stack = nil
}

// Fail transitions the coroutine to Done with an error result.
func (c *Coroutine) Fail(err error) {
	c.State = CoroutineDone
	c.Err = err
	c.Stack = nil
}

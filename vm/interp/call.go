package interp

import (
	"github.com/emberlang/ember"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

func (it *Interpreter) isTruthy(v value.Value) bool {
	if v.IsNull() {
		return false
	}
	if hdr, ok := v.HeapPtr(); ok {
		if b, ok := hdr.Payload.(*objects.Boolean); ok {
			return b.Value
		}
	}
	return true
}

func (it *Interpreter) condJumpPeek(co *objects.Coroutine, frame *objects.CallFrame, op Opcode) error {
	off, err := it.i32(frame)
	if err != nil {
		return err
	}
	top, ok := co.Stack.TopValue(0)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	var take bool
	switch op {
	case OpJmpTrue:
		take = it.isTruthy(top)
	case OpJmpFalse:
		take = !it.isTruthy(top)
	case OpJmpNull:
		take = top.IsNull()
	case OpJmpNotNull:
		take = !top.IsNull()
	}
	if take {
		frame.PC += int(off)
		return nil
	}
	_, _ = co.Stack.PopValue(1)
	return nil
}

func (it *Interpreter) condJumpPop(co *objects.Coroutine, frame *objects.CallFrame, op Opcode) error {
	off, err := it.i32(frame)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	truthy := it.isTruthy(vals[0])
	if (op == OpJmpTruePop && truthy) || (op == OpJmpFalsePop && !truthy) {
		frame.PC += int(off)
	}
	return nil
}

// doCall implements `call(argc)` (spec §4.5): stack holds
// [..., callable, arg1, ..., argN] with the callable argc+1 slots below
// the top. BaseSlot is the callable's own slot, overwritten by the
// return value once the call completes.
func (it *Interpreter) doCall(co *objects.Coroutine, argc int) error {
	total := co.Stack.Len()
	calleeIdx := total - argc - 1
	if calleeIdx < 0 {
		return ember.NewError(ember.KindTypeError, "stack underflow in call")
	}
	return it.dispatch(co, calleeIdx, calleeIdx, argc, 0)
}

// opLoadMethod implements `load_method(name)` (spec §4.5): pops a
// receiver, resolves name against it (Record field first, falling back to
// the receiver's Type method table), and pushes a two-slot layout:
// [callable, receiver_or_null]. A Record field resolves to a "plain
// attribute" call (receiver_or_null is Null, and the caller is
// responsible for invoking the attribute value itself with no implicit
// receiver); a Type method resolves with the receiver re-pushed so
// call_method can fold it into argc uniformly.
func (it *Interpreter) opLoadMethod(co *objects.Coroutine, frame *objects.CallFrame, symIdx int) error {
	sym, err := it.symbolMember(frame, symIdx)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	receiver := vals[0]

	if hdr, ok := receiver.HeapPtr(); ok {
		if rec, ok := hdr.Payload.(*objects.Record); ok {
			if v, ok := rec.Get(sym); ok {
				if err := co.Stack.PushValue(v); err != nil {
					return err
				}
				return co.Stack.PushValue(it.Null)
			}
		}
	}

	typ := it.resolveType(receiver)
	if typ == nil {
		return ember.NewError(ember.KindNameError, "no such method %q", sym.String())
	}
	m, ok := typ.Lookup(sym.String())
	if !ok {
		return ember.NewError(ember.KindNameError, "no such method %q", sym.String())
	}
	recv := receiver
	// call_method folds the receiver in as the first argument; the builtin
	// takes it separately, so it is counted in MinParams and dropped here.
	callable := value.FromHeap(&objects.NewNativeFunction(it.Heap, it.T.NativeFunction, m.Name, m.Arity+1, func(f *objects.NativeCallFrame) (value.Value, error) {
		return it.invokeBuiltin(m, recv, &objects.NativeCallFrame{Args: f.Args[1:]})
	}).Header)
	if err := co.Stack.PushValue(callable); err != nil {
		return err
	}
	return co.Stack.PushValue(receiver)
}

// resolveType returns the Type descriptor governing v's method table: a
// heap object's own Header.Type for heap values, or the matching boxed
// Type for an inlined small integer (Null carries no methods).
func (it *Interpreter) resolveType(v value.Value) *types.Type {
	if hdr, ok := v.HeapPtr(); ok {
		return hdr.Type
	}
	if v.IsSmallInt() {
		return it.T.Integer
	}
	return nil
}

// invokeBuiltin adapts a types.Method's (recv any, args []any) shape to
// the interpreter's value.Value world, used by method dispatch's
// built-in fast path for methods registered on a receiver's Type via
// Type.Define (see DESIGN.md).
func (it *Interpreter) invokeBuiltin(m *types.Method, recv value.Value, f *objects.NativeCallFrame) (value.Value, error) {
	args := make([]any, len(f.Args))
	for i, a := range f.Args {
		args[i] = a
	}
	result, err := m.Builtin(recv, args)
	if err != nil {
		return value.Value{}, err
	}
	v, ok := result.(value.Value)
	if !ok {
		return value.Value{}, ember.NewError(ember.KindTypeError, "builtin method %s returned a non-Value result", m.Name)
	}
	return v, nil
}

// doCallMethod implements `call_method(argc)` (spec §4.5), consuming the
// two-slot layout load_method produced: [callable, receiver_or_null,
// arg1..argN]. A null receiver folds into a plain call over just the
// args (the stray null slot is popped on return via
// FlagPopReceiverOnReturn); a non-null receiver becomes param 0.
func (it *Interpreter) doCallMethod(co *objects.Coroutine, argc int) error {
	total := co.Stack.Len()
	receiverIdx := total - argc - 1
	calleeIdx := receiverIdx - 1
	if calleeIdx < 0 {
		return ember.NewError(ember.KindTypeError, "stack underflow in call_method")
	}
	receiver, _ := co.Stack.ValueAt(receiverIdx)

	if receiver.IsNull() {
		return it.dispatch(co, calleeIdx, receiverIdx, argc, objects.FlagPopReceiverOnReturn)
	}
	return it.dispatch(co, calleeIdx, calleeIdx, argc+1, 0)
}

// dispatch resolves the callable at calleeIdx and either pushes a new
// bytecode frame (Function) or performs a synchronous host call
// (NativeFunction/BoundMethod), truncating the stack back to baseSlot and
// pushing the single result in the native case.
func (it *Interpreter) dispatch(co *objects.Coroutine, calleeIdx, baseSlot, argc int, flags objects.FrameFlag) error {
	calleeVal, _ := co.Stack.ValueAt(calleeIdx)
	hdr, ok := calleeVal.HeapPtr()
	if !ok {
		return ember.NewError(ember.KindTypeError, "value is not callable")
	}
	switch p := hdr.Payload.(type) {
	case *objects.Function:
		if p.Template.Params != argc {
			return ember.NewError(ember.KindTypeError, "expected %d arguments, got %d", p.Template.Params, argc)
		}
		if err := co.Stack.PushFrame(p.Template, p.Closure, flags, baseSlot); err != nil {
			return err
		}
		for i := 0; i < p.Template.Locals; i++ {
			if err := co.Stack.PushValue(it.Null); err != nil {
				return err
			}
		}
		return nil
	case *objects.BoundMethod:
		args, err := it.collectArgs(co, baseSlot, argc)
		if err != nil {
			return err
		}
		co.Stack.Truncate(baseSlot)
		full := append([]value.Value{p.Receiver}, args...)
		if err := co.Stack.PushValue(value.FromHeap(&p.Fn.Header)); err != nil {
			return err
		}
		for _, a := range full {
			if err := co.Stack.PushValue(a); err != nil {
				return err
			}
		}
		return it.dispatch(co, baseSlot, baseSlot, len(full), 0)
	case *objects.NativeFunction:
		return it.invokeNative(co, p, baseSlot, argc, flags)
	default:
		return ember.NewError(ember.KindTypeError, "value of kind %s is not callable", hdr.Type.Kind)
	}
}

func (it *Interpreter) collectArgs(co *objects.Coroutine, baseSlot, argc int) ([]value.Value, error) {
	args := make([]value.Value, argc)
	for i := 0; i < argc; i++ {
		v, ok := co.Stack.ValueAt(baseSlot + 1 + i)
		if !ok {
			return nil, ember.NewError(ember.KindTypeError, "stack underflow collecting arguments")
		}
		args[i] = v
	}
	return args, nil
}

func (it *Interpreter) invokeNative(co *objects.Coroutine, nf *objects.NativeFunction, baseSlot, argc int, flags objects.FrameFlag) error {
	if argc < nf.MinParams {
		return ember.NewError(ember.KindTypeError, "%s expects at least %d arguments, got %d", nf.Name, nf.MinParams, argc)
	}
	args, err := it.collectArgs(co, baseSlot, argc)
	if err != nil {
		return err
	}
	switch nf.Variant {
	case objects.NativeSync:
		result, err := nf.Sync(&objects.NativeCallFrame{Args: args})
		if err != nil {
			return err
		}
		if flags&objects.FlagPopReceiverOnReturn != 0 {
			baseSlot--
		}
		co.Stack.Truncate(baseSlot)
		return co.Stack.PushValue(result)
	default: // NativeAsync
		token := &objects.ResumeToken{Coroutine: co}
		popBase := baseSlot
		if flags&objects.FlagPopReceiverOnReturn != 0 {
			popBase--
		}
		it.pending[co] = pendingCall{baseSlot: popBase}
		co.State = objects.CoroutineWaiting
		nf.Async(&objects.NativeCallFrame{Args: args}, token)
		return nil
	}
}

// doReturn implements `return` (spec §4.5): pops the single return value,
// pops the current frame, discards down to BaseSlot (minus one extra slot
// if FlagPopReceiverOnReturn is set), then pushes the return value back
// in the overwritten slot. When the outermost frame returns, the
// coroutine finishes with that value instead.
func (it *Interpreter) doReturn(co *objects.Coroutine) error {
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow on return")
	}
	result := vals[0]
	frame, ok := co.Stack.PopFrame()
	if !ok {
		return ember.NewError(ember.KindTypeError, "return with no active frame")
	}
	base := frame.BaseSlot
	if frame.Flags&objects.FlagPopReceiverOnReturn != 0 {
		base--
	}
	co.Stack.Truncate(base)
	if co.Stack.TopFrame() == nil {
		co.Finish(result)
		return nil
	}
	return co.Stack.PushValue(result)
}

// opAssertFail implements `assert_fail(exprIndex, msgIndex)` (spec §4.5):
// both operands reference String members in the current frame's home
// module; msgIndex may be the sentinel bytecode.InvalidMemberId when no
// custom message was given.
func (it *Interpreter) opAssertFail(frame *objects.CallFrame) error {
	exprIdx, err := it.u32(frame)
	if err != nil {
		return err
	}
	msgIdx, err := it.u32(frame)
	if err != nil {
		return err
	}
	expr, err := it.stringMember(frame, int(exprIdx))
	if err != nil {
		return err
	}
	if msgIdx == ^uint32(0) {
		return ember.NewError(ember.KindAssertion, "assertion failed: %s", expr)
	}
	msg, err := it.stringMember(frame, int(msgIdx))
	if err != nil {
		return err
	}
	return ember.NewError(ember.KindAssertion, "assertion failed: %s (%s)", expr, msg)
}

func (it *Interpreter) stringMember(frame *objects.CallFrame, idx int) (string, error) {
	v, ok := frame.Template.Home.Members.Get(idx)
	if !ok {
		return "", ember.NewError(ember.KindModuleFormat, "string member index %d out of range", idx)
	}
	hdr, ok := v.HeapPtr()
	if !ok {
		return "", ember.NewError(ember.KindModuleFormat, "member %d is not a string", idx)
	}
	s, ok := hdr.Payload.(*objects.String)
	if !ok {
		return "", ember.NewError(ember.KindModuleFormat, "member %d is not a string", idx)
	}
	return s.String(), nil
}

func (it *Interpreter) opAppendFormat(co *objects.Coroutine) error {
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	top, ok := co.Stack.TopValue(0)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	hdr, ok := top.HeapPtr()
	if !ok {
		return ember.NewError(ember.KindTypeError, "formatter is not a string builder")
	}
	sb, ok := hdr.Payload.(*objects.StringBuilder)
	if !ok {
		return ember.NewError(ember.KindTypeError, "formatter is not a string builder")
	}
	sb.Append(objects.ToString(vals[0]))
	return nil
}

func (it *Interpreter) opFormatResult(co *objects.Coroutine) error {
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	hdr, ok := vals[0].HeapPtr()
	if !ok {
		return ember.NewError(ember.KindTypeError, "formatter is not a string builder")
	}
	sb, ok := hdr.Payload.(*objects.StringBuilder)
	if !ok {
		return ember.NewError(ember.KindTypeError, "formatter is not a string builder")
	}
	s := it.Strings.Intern(sb.Bytes())
	return co.Stack.PushValue(value.FromHeap(&s.Header))
}

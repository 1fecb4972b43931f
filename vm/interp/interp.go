package interp

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/emberlang/ember"
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/intern"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/registry"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// Types bundles every Type descriptor the interpreter needs to allocate
// objects of its own (boxed numbers, aggregates, closures) as opposed to
// ones produced ahead of time by the loader.
type Types struct {
	Null, Boolean, Undefined                             *types.Type
	Integer, Float, String, Symbol                        *types.Type
	Tuple, Array, ArrayStorage                            *types.Type
	Record, RecordTemplate                                *types.Type
	HashTable, Set                                        *types.Type
	BytecodeCode, FunctionTemplate, ClosureContext         *types.Type
	Function, BoundMethod                                 *types.Type
	NativeFunction, NativeObject                          *types.Type
	Module, UnresolvedImport                              *types.Type
	Coroutine, CoroutineStack                             *types.Type
	Iterator, StringBuilder                               *types.Type
}

// FromTable builds a Types bundle from a fully-populated type table,
// mirroring loader.FromTable's pattern.
func FromTable(tbl *types.Table) Types {
	return Types{
		Boolean:          tbl.Of(types.KindBoolean),
		Undefined:        tbl.Of(types.KindUndefined),
		Integer:          tbl.Of(types.KindInteger),
		Float:            tbl.Of(types.KindFloat),
		String:           tbl.Of(types.KindString),
		Symbol:           tbl.Of(types.KindSymbol),
		Tuple:            tbl.Of(types.KindTuple),
		Array:            tbl.Of(types.KindArray),
		ArrayStorage:     tbl.Of(types.KindInternalType),
		Record:           tbl.Of(types.KindRecord),
		RecordTemplate:   tbl.Of(types.KindRecordTemplate),
		HashTable:        tbl.Of(types.KindHashTable),
		Set:              tbl.Of(types.KindSet),
		BytecodeCode:     tbl.Of(types.KindBytecodeCode),
		FunctionTemplate: tbl.Of(types.KindFunctionTemplate),
		ClosureContext:   tbl.Of(types.KindClosureContext),
		Function:         tbl.Of(types.KindFunction),
		BoundMethod:      tbl.Of(types.KindBoundMethod),
		NativeFunction:   tbl.Of(types.KindNativeFunction),
		NativeObject:     tbl.Of(types.KindNativeObject),
		Module:           tbl.Of(types.KindModule),
		UnresolvedImport: tbl.Of(types.KindUnresolvedImport),
		Coroutine:        tbl.Of(types.KindCoroutine),
		CoroutineStack:   tbl.Of(types.KindCoroutineStack),
		Iterator:         tbl.Of(types.KindIterator),
		StringBuilder:    tbl.Of(types.KindStringBuilder),
	}
}

// pendingCall records where to resume the value stack once an async
// native function's ResumeToken is fulfilled (spec §4.5 "Function call").
// Keyed by coroutine rather than stored on objects.Coroutine so package
// objects stays independent of interp.
type pendingCall struct {
	baseSlot int
}

// Interpreter executes coroutines one fetch/decode/dispatch step at a
// time (spec §4.5/§5), grounded on hive/edit's small-named-method dispatch
// style (see doc.go).
type Interpreter struct {
	Heap     *heap.Heap
	T        Types
	Strings  *intern.Strings
	Symbols  *intern.Symbols
	Registry *registry.Registry

	Null, True, False, Undefined value.Value

	pending map[*objects.Coroutine]pendingCall
}

// New builds an Interpreter, allocating the True/False/Undefined
// singletons (spec §3: "created once per context").
func New(h *heap.Heap, t Types, strs *intern.Strings, syms *intern.Symbols, reg *registry.Registry) *Interpreter {
	return &Interpreter{
		Heap:     h,
		T:        t,
		Strings:  strs,
		Symbols:  syms,
		Registry: reg,
		Null:     value.Null,
		True:     value.FromHeap(&objects.NewBoolean(h, t.Boolean, true).Header),
		False:    value.FromHeap(&objects.NewBoolean(h, t.Boolean, false).Header),
		Undefined: value.FromHeap(&objects.NewUndefined(h, t.Undefined).Header),
		pending:  make(map[*objects.Coroutine]pendingCall),
	}
}

func (it *Interpreter) boolValue(b bool) value.Value {
	if b {
		return it.True
	}
	return it.False
}

// Run drives co from Ready/Waiting-just-resumed through Running until it
// reaches Done or Waiting again (spec §3's coroutine lifecycle; spec §5's
// single-threaded cooperative run loop).
func (it *Interpreter) Run(co *objects.Coroutine) (value.Value, error) {
	co.State = objects.CoroutineRunning
	for co.State == objects.CoroutineRunning {
		if err := it.step(co); err != nil {
			ee := asEmberError(err, co)
			co.Fail(ee)
			return value.Value{}, ee
		}
	}
	switch co.State {
	case objects.CoroutineDone:
		return co.Result, co.Err
	default: // Waiting
		return value.Value{}, nil
	}
}

// RunFunction spawns fn as a fresh no-argument coroutine and drives it to
// completion, used by the module registry to invoke each module's
// initializer exactly once (spec §4.8). fn must take zero parameters.
func (it *Interpreter) RunFunction(fn *objects.Function) (value.Value, error) {
	stack := objects.NewCoroutineStack(it.Heap, it.T.CoroutineStack)
	if err := stack.PushValue(value.FromHeap(&fn.Header)); err != nil {
		return value.Value{}, err
	}
	if err := stack.PushFrame(fn.Template, fn.Closure, 0, 0); err != nil {
		return value.Value{}, err
	}
	for i := 0; i < fn.Template.Locals; i++ {
		if err := stack.PushValue(value.Null); err != nil {
			return value.Value{}, err
		}
	}
	co := objects.NewCoroutine(it.Heap, it.T.Coroutine, stack)
	return it.Run(co)
}

// Resume re-enters co after a ResumeToken fulfilled (spec §4.5 async
// native call path). result/err is what the token was fulfilled with.
func (it *Interpreter) Resume(co *objects.Coroutine, result value.Value, err error) (value.Value, error) {
	pc, ok := it.pending[co]
	if !ok {
		return value.Value{}, ember.NewError(ember.KindTypeError, "coroutine has no pending native call to resume")
	}
	delete(it.pending, co)
	if err != nil {
		ee := asEmberError(err, co)
		co.Fail(ee)
		return value.Value{}, ee
	}
	co.Stack.Truncate(pc.baseSlot)
	_ = co.Stack.PushValue(result)
	return it.Run(co)
}

func asEmberError(err error, co *objects.Coroutine) *ember.Error {
	if ee, ok := err.(*ember.Error); ok {
		frame := ember.Frame{}
		if f := co.Stack.TopFrame(); f != nil {
			frame = ember.Frame{Function: f.Template.Name, Offset: f.PC}
			if f.Template.Home != nil {
				frame.Module = f.Template.Home.Name.String()
			}
		}
		if ee.Frame.Function == "" {
			return ee.WithFrame(frame)
		}
		return ee
	}
	if errors.Is(err, objects.ErrStackOverflow) {
		return asEmberError(ember.WrapError(ember.KindStackOverflow, err, "%s", err.Error()), co)
	}
	return ember.WrapError(ember.KindTypeError, err, "%s", err.Error())
}

// code reader helpers — operate directly on a frame's bytecode buffer,
// advancing frame.PC in place.

func (it *Interpreter) u8(f *objects.CallFrame) (byte, error) {
	code := f.Template.Code.Code
	if f.PC >= len(code) {
		return 0, ember.NewError(ember.KindModuleFormat, "pc past end of code")
	}
	b := code[f.PC]
	f.PC++
	return b, nil
}

func (it *Interpreter) u32(f *objects.CallFrame) (uint32, error) {
	code := f.Template.Code.Code
	if f.PC+4 > len(code) {
		return 0, ember.NewError(ember.KindModuleFormat, "pc past end of code reading u32")
	}
	v := binary.BigEndian.Uint32(code[f.PC:])
	f.PC += 4
	return v, nil
}

func (it *Interpreter) i32(f *objects.CallFrame) (int32, error) {
	v, err := it.u32(f)
	return int32(v), err
}

func (it *Interpreter) i64(f *objects.CallFrame) (int64, error) {
	code := f.Template.Code.Code
	if f.PC+8 > len(code) {
		return 0, ember.NewError(ember.KindModuleFormat, "pc past end of code reading i64")
	}
	v := int64(binary.BigEndian.Uint64(code[f.PC:]))
	f.PC += 8
	return v, nil
}

func (it *Interpreter) f64(f *objects.CallFrame) (float64, error) {
	bits, err := it.i64(f)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(bits)), nil
}

// step executes exactly one instruction of co's top frame.
func (it *Interpreter) step(co *objects.Coroutine) error {
	frame := co.Stack.TopFrame()
	if frame == nil {
		co.Finish(it.Null)
		return nil
	}
	opByte, err := it.u8(frame)
	if err != nil {
		return err
	}
	op := Opcode(opByte)
	if !op.valid() {
		return ember.NewError(ember.KindModuleFormat, "unknown opcode %d", opByte)
	}

	switch op {
	case OpLoadNull:
		return co.Stack.PushValue(it.Null)
	case OpLoadTrue:
		return co.Stack.PushValue(it.True)
	case OpLoadFalse:
		return co.Stack.PushValue(it.False)
	case OpLoadInt:
		n, err := it.i64(frame)
		if err != nil {
			return err
		}
		return co.Stack.PushValue(it.makeInt(n))
	case OpLoadFloat:
		f, err := it.f64(frame)
		if err != nil {
			return err
		}
		return co.Stack.PushValue(value.FromHeap(&objects.NewFloat(it.Heap, it.T.Float, f).Header))
	case OpLoadModuleMember:
		idx, err := it.u32(frame)
		if err != nil {
			return err
		}
		home := frame.Template.Home
		v, ok := home.Members.Get(int(idx))
		if !ok {
			return ember.NewError(ember.KindModuleFormat, "module member index %d out of range", idx)
		}
		return co.Stack.PushValue(v)
	case OpStoreModuleMember:
		idx, err := it.u32(frame)
		if err != nil {
			return err
		}
		vals, ok := co.Stack.PopValue(1)
		if !ok {
			return ember.NewError(ember.KindTypeError, "stack underflow")
		}
		if !frame.Template.Home.Members.Set(int(idx), vals[0]) {
			return ember.NewError(ember.KindModuleFormat, "module member index %d out of range", idx)
		}
		return nil

	case OpLoadParam:
		return it.loadLocalSlot(co, frame, 1)
	case OpStoreParam:
		return it.storeLocalSlot(co, frame, 1)
	case OpLoadLocal:
		return it.loadLocalSlot(co, frame, 1+frame.ParamCount)
	case OpStoreLocal:
		return it.storeLocalSlot(co, frame, 1+frame.ParamCount)

	case OpLoadClosureVar:
		level, err := it.u32(frame)
		if err != nil {
			return err
		}
		index, err := it.u32(frame)
		if err != nil {
			return err
		}
		if frame.Closure == nil {
			return ember.NewError(ember.KindNameError, "no enclosing closure")
		}
		v, ok := frame.Closure.At(int(level), int(index))
		if !ok {
			return ember.NewError(ember.KindNameError, "closure slot (%d,%d) out of range", level, index)
		}
		return co.Stack.PushValue(v)
	case OpStoreClosureVar:
		level, err := it.u32(frame)
		if err != nil {
			return err
		}
		index, err := it.u32(frame)
		if err != nil {
			return err
		}
		vals, ok := co.Stack.PopValue(1)
		if !ok {
			return ember.NewError(ember.KindTypeError, "stack underflow")
		}
		if frame.Closure == nil || !frame.Closure.SetAt(int(level), int(index), vals[0]) {
			return ember.NewError(ember.KindNameError, "closure slot (%d,%d) out of range", level, index)
		}
		return nil
	case OpLoadClosure:
		if frame.Closure == nil {
			return co.Stack.PushValue(it.Null)
		}
		return co.Stack.PushValue(value.FromHeap(&frame.Closure.Header))

	case OpLoadMember:
		return it.opLoadMember(co, frame)
	case OpStoreMember:
		return it.opStoreMember(co, frame)
	case OpLoadTupleMember:
		return it.opLoadTupleMember(co, frame)
	case OpStoreTupleMember:
		return it.opStoreTupleMember(co, frame)
	case OpLoadIndex:
		return it.opLoadIndex(co)
	case OpStoreIndex:
		return it.opStoreIndex(co)
	case OpLoadModule:
		return it.opLoadModule(co, frame)
	case OpStoreModule:
		return it.opStoreModule(co, frame)

	case OpDup:
		top, ok := co.Stack.TopValue(0)
		if !ok {
			return ember.NewError(ember.KindTypeError, "stack underflow")
		}
		return co.Stack.PushValue(top)
	case OpPop:
		_, ok := co.Stack.PopValue(1)
		if !ok {
			return ember.NewError(ember.KindTypeError, "stack underflow")
		}
		return nil
	case OpRot2, OpRot3, OpRot4:
		return it.opRotate(co, op)

	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow,
		OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr:
		return it.binaryArith(co, op)
	case OpBitNot, OpUnaryPlus, OpUnaryMinus, OpLogicalNot:
		return it.unaryArith(co, op)

	case OpLt, OpLte, OpGt, OpGte, OpEq, OpNeq:
		return it.compare(co, op)

	case OpMakeArray:
		return it.opMakeArray(co, frame)
	case OpMakeTuple:
		return it.opMakeTuple(co, frame)
	case OpMakeMap:
		return it.opMakeMap(co, frame)
	case OpMakeSet:
		return it.opMakeSet(co, frame)
	case OpMakeRecord:
		return it.opMakeRecord(co, frame)
	case OpMakeClosure:
		return it.opMakeClosure(co, frame)
	case OpMakeEnv:
		return it.opMakeEnv(co, frame)
	case OpMakeIterator:
		return it.opMakeIterator(co)
	case OpIteratorNext:
		return it.opIteratorNext(co)

	case OpJmp:
		off, err := it.i32(frame)
		if err != nil {
			return err
		}
		frame.PC += int(off)
		return nil
	case OpJmpTrue, OpJmpFalse, OpJmpNull, OpJmpNotNull:
		return it.condJumpPeek(co, frame, op)
	case OpJmpTruePop, OpJmpFalsePop:
		return it.condJumpPop(co, frame, op)

	case OpCall:
		argc, err := it.u32(frame)
		if err != nil {
			return err
		}
		return it.doCall(co, int(argc))
	case OpLoadMethod:
		idx, err := it.u32(frame)
		if err != nil {
			return err
		}
		return it.opLoadMethod(co, frame, int(idx))
	case OpCallMethod:
		argc, err := it.u32(frame)
		if err != nil {
			return err
		}
		return it.doCallMethod(co, int(argc))
	case OpReturn:
		return it.doReturn(co)
	case OpRethrow:
		vals, ok := co.Stack.PopValue(1)
		if !ok {
			return ember.NewError(ember.KindTypeError, "stack underflow")
		}
		return ember.NewError(ember.KindTypeError, "rethrow: %s", objects.ToString(vals[0]))
	case OpAssertFail:
		return it.opAssertFail(frame)

	case OpFormatter:
		return co.Stack.PushValue(value.FromHeap(&objects.NewStringBuilder(it.Heap, it.T.StringBuilder).Header))
	case OpAppendFormat:
		return it.opAppendFormat(co)
	case OpFormatResult:
		return it.opFormatResult(co)
	}
	return ember.NewError(ember.KindModuleFormat, "opcode %d not handled", op)
}

// makeInt inlines n as a small integer when possible, else boxes it.
func (it *Interpreter) makeInt(n int64) value.Value {
	if v, ok := value.MakeSmallInt(n); ok {
		return v
	}
	return value.FromHeap(&objects.NewInteger(it.Heap, it.T.Integer, n).Header)
}

func (it *Interpreter) loadLocalSlot(co *objects.Coroutine, frame *objects.CallFrame, baseOffset int) error {
	idx, err := it.u32(frame)
	if err != nil {
		return err
	}
	abs := frame.BaseSlot + baseOffset + int(idx)
	v, ok := co.Stack.ValueAt(abs)
	if !ok {
		return ember.NewError(ember.KindNameError, "slot %d out of range", idx)
	}
	return co.Stack.PushValue(v)
}

func (it *Interpreter) storeLocalSlot(co *objects.Coroutine, frame *objects.CallFrame, baseOffset int) error {
	idx, err := it.u32(frame)
	if err != nil {
		return err
	}
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	abs := frame.BaseSlot + baseOffset + int(idx)
	if !co.Stack.SetValueAt(abs, vals[0]) {
		return ember.NewError(ember.KindNameError, "slot %d out of range", idx)
	}
	return nil
}

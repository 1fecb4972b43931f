package interp_test

import (
	"encoding/binary"
	"testing"

	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/intern"
	"github.com/emberlang/ember/vm/interp"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/registry"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
	"github.com/stretchr/testify/require"
)

// asm concatenates raw instruction byte sequences into one code buffer.
func asm(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func op(o interp.Opcode) []byte { return []byte{byte(o)} }

func u32(n uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, n)
	return b
}

func i64(n int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}

type harness struct {
	heap *heap.Heap
	it   *interp.Interpreter
}

func newHarness() *harness {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	it := interp.New(h, interp.FromTable(tbl), intern.NewStrings(h, tbl.Of(types.KindString)), intern.NewSymbols(h, tbl.Of(types.KindSymbol)), registry.New(nil))
	return &harness{heap: h, it: it}
}

// runMain builds a homeless module-free function template wrapping code
// (params locals) and executes it to completion on a fresh coroutine.
func (hn *harness) runMain(code []byte, params, locals int) (value.Value, error) {
	bc := objects.NewBytecodeCode(hn.heap, hn.it.T.BytecodeCode, code)
	tmpl := objects.NewFunctionTemplate(hn.heap, hn.it.T.FunctionTemplate, "main", nil, params, locals, bc, objects.FunctionNormal)
	stack := objects.NewCoroutineStack(hn.heap, hn.it.T.CoroutineStack)
	// A synthetic placeholder occupies the "callee" slot a real call
	// opcode would have left behind at BaseSlot, which the final return
	// overwrites with the result.
	if err := stack.PushValue(value.Null); err != nil {
		return value.Value{}, err
	}
	if err := stack.PushFrame(tmpl, nil, 0, 0); err != nil {
		return value.Value{}, err
	}
	for i := 0; i < locals; i++ {
		if err := stack.PushValue(value.Null); err != nil {
			return value.Value{}, err
		}
	}
	co := objects.NewCoroutine(hn.heap, hn.it.T.Coroutine, stack)
	return hn.it.Run(co)
}

func TestArithmeticAddAndReturn(t *testing.T) {
	hn := newHarness()
	code := asm(
		op(interp.OpLoadInt), i64(2),
		op(interp.OpLoadInt), i64(3),
		op(interp.OpAdd),
		op(interp.OpReturn),
	)
	result, err := hn.runMain(code, 0, 0)
	require.NoError(t, err)
	n, ok := result.SmallIntValue()
	require.True(t, ok)
	require.Equal(t, int64(5), n)
}

func TestSmallIntBoundaryPromotesToBoxedInteger(t *testing.T) {
	hn := newHarness()
	code := asm(
		op(interp.OpLoadInt), i64(value.SmallIntMax),
		op(interp.OpLoadInt), i64(1),
		op(interp.OpAdd),
		op(interp.OpReturn),
	)
	result, err := hn.runMain(code, 0, 0)
	require.NoError(t, err)
	require.False(t, result.IsSmallInt(), "2^62 must not fit the small-int range")
	hdr, ok := result.HeapPtr()
	require.True(t, ok)
	boxed, ok := hdr.Payload.(*objects.Integer)
	require.True(t, ok)
	require.Equal(t, value.SmallIntMax+1, boxed.Value)
}

func TestDivisionByZeroFails(t *testing.T) {
	hn := newHarness()
	code := asm(
		op(interp.OpLoadInt), i64(1),
		op(interp.OpLoadInt), i64(0),
		op(interp.OpDiv),
		op(interp.OpReturn),
	)
	_, err := hn.runMain(code, 0, 0)
	require.Error(t, err)
}

func TestJumpTruePeekShortCircuit(t *testing.T) {
	hn := newHarness()
	// if (true) jump past the false-load, leaving true on the stack.
	code := asm(
		op(interp.OpLoadTrue),
		op(interp.OpJmpTrue), u32(uint32(len(asm(op(interp.OpLoadFalse))))),
		op(interp.OpLoadFalse),
		op(interp.OpReturn),
	)
	result, err := hn.runMain(code, 0, 0)
	require.NoError(t, err)
	hdr, ok := result.HeapPtr()
	require.True(t, ok)
	b, ok := hdr.Payload.(*objects.Boolean)
	require.True(t, ok)
	require.True(t, b.Value)
}

func TestMakeArrayAndIndex(t *testing.T) {
	hn := newHarness()
	code := asm(
		op(interp.OpLoadInt), i64(10),
		op(interp.OpLoadInt), i64(20),
		op(interp.OpLoadInt), i64(30),
		op(interp.OpMakeArray), u32(3),
		op(interp.OpLoadInt), i64(1),
		op(interp.OpLoadIndex),
		op(interp.OpReturn),
	)
	result, err := hn.runMain(code, 0, 0)
	require.NoError(t, err)
	n, ok := result.SmallIntValue()
	require.True(t, ok)
	require.Equal(t, int64(20), n)
}

func TestLocalSlotRoundTrip(t *testing.T) {
	hn := newHarness()
	// one local slot: store 7 into it, load it back, return.
	code := asm(
		op(interp.OpLoadInt), i64(7),
		op(interp.OpStoreLocal), u32(0),
		op(interp.OpLoadLocal), u32(0),
		op(interp.OpReturn),
	)
	result, err := hn.runMain(code, 0, 1)
	require.NoError(t, err)
	n, ok := result.SmallIntValue()
	require.True(t, ok)
	require.Equal(t, int64(7), n)
}

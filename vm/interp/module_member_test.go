package interp_test

import (
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

// TestStoreModuleMemberIncrementsOwnSlot exercises store_module_member's
// local fast path: a function writing into its own home module's member
// slot, the mechanism behind spec §8 scenario 3's helper.side_effect
// incrementing a module-local counter across repeated calls.
func TestStoreModuleMemberIncrementsOwnSlot(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	strs := intern.NewStrings(h, tbl.Of(types.KindString))
	syms := intern.NewSymbols(h, tbl.Of(types.KindSymbol))
	it := interp.New(h, interp.FromTable(tbl), strs, syms, registry.New(nil))

	home := objects.NewModule(h, tbl.Of(types.KindModule), strs.Intern([]byte("helper")), 1, tbl.Of(types.KindTuple))
	home.Members.Set(0, value.MustMakeSmallInt(0))

	// side_effect(): store (load_module_member(0) + 1) back into member 0,
	// then return the new value.
	code := asm(
		op(interp.OpLoadModuleMember), u32(0),
		op(interp.OpLoadInt), i64(1),
		op(interp.OpAdd),
		op(interp.OpStoreModuleMember), u32(0),
		op(interp.OpLoadModuleMember), u32(0),
		op(interp.OpReturn),
	)
	bc := objects.NewBytecodeCode(h, it.T.BytecodeCode, code)
	tmpl := objects.NewFunctionTemplate(h, it.T.FunctionTemplate, "side_effect", home, 0, 0, bc, objects.FunctionNormal)

	run := func() int64 {
		stack := objects.NewCoroutineStack(h, it.T.CoroutineStack)
		require.NoError(t, stack.PushValue(value.Null))
		require.NoError(t, stack.PushFrame(tmpl, nil, 0, 0))
		co := objects.NewCoroutine(h, it.T.Coroutine, stack)
		result, err := it.Run(co)
		require.NoError(t, err)
		n, ok := result.SmallIntValue()
		require.True(t, ok)
		return n
	}

	require.Equal(t, int64(1), run())
	require.Equal(t, int64(2), run())
	require.Equal(t, int64(3), run())

	v, ok := home.Members.Get(0)
	require.True(t, ok)
	n, ok := v.SmallIntValue()
	require.True(t, ok)
	require.Equal(t, int64(3), n)
}

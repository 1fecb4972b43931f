package value_test

import (
	"testing"

	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
	"github.com/stretchr/testify/require"
)

func TestZeroValueIsNull(t *testing.T) {
	var v value.Value
	require.True(t, v.IsNull())
	require.Equal(t, types.KindNull, v.Kind())
}

func TestMakeSmallIntBoundary(t *testing.T) {
	v, ok := value.MakeSmallInt(value.SmallIntMax)
	require.True(t, ok)
	n, ok := v.SmallIntValue()
	require.True(t, ok)
	require.Equal(t, value.SmallIntMax, n)

	_, ok = value.MakeSmallInt(value.SmallIntMax + 1)
	require.False(t, ok)

	v, ok = value.MakeSmallInt(value.SmallIntMin)
	require.True(t, ok)
	n, _ = v.SmallIntValue()
	require.Equal(t, value.SmallIntMin, n)

	_, ok = value.MakeSmallInt(value.SmallIntMin - 1)
	require.False(t, ok)
}

func TestHeapValueKindReadsHeader(t *testing.T) {
	h := heap.New(1024)
	tbl := types.NewTable()
	hdr := h.Allocate(tbl.Of(types.KindString), 8)

	v := value.FromHeap(hdr)
	require.True(t, v.IsHeap())
	require.Equal(t, types.KindString, v.Kind())

	got, ok := v.HeapPtr()
	require.True(t, ok)
	require.Same(t, hdr, got)
}

func TestIdentityKeySmallIntsByValue(t *testing.T) {
	a, _ := value.MakeSmallInt(42)
	b, _ := value.MakeSmallInt(42)
	require.Equal(t, a.IdentityKey(), b.IdentityKey())

	c, _ := value.MakeSmallInt(43)
	require.NotEqual(t, a.IdentityKey(), c.IdentityKey())
}

func TestIdentityKeyHeapObjectsByID(t *testing.T) {
	h := heap.New(1024)
	tbl := types.NewTable()
	a := value.FromHeap(h.Allocate(tbl.Of(types.KindString), 8))
	b := value.FromHeap(h.Allocate(tbl.Of(types.KindString), 8))
	require.NotEqual(t, a.IdentityKey(), b.IdentityKey())
}

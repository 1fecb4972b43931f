package objects_test

import (
	"testing"

	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/types"
	"github.com/stretchr/testify/require"
)

func TestArrayAppendGrowsAndPreservesOrder(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	storageType := tbl.Of(types.KindArray)
	a := objects.NewArray(h, tbl.Of(types.KindArray))

	alloc := func(cap int) *objects.ArrayStorage { return objects.NewArrayStorage(h, storageType, cap) }

	for i := int64(0); i < 10; i++ {
		a.Append(smallInt(i), alloc)
	}

	require.Equal(t, 10, a.Len())
	require.GreaterOrEqual(t, a.Cap(), 10)
	for i := 0; i < 10; i++ {
		v, ok := a.Get(i)
		require.True(t, ok)
		n, _ := v.SmallIntValue()
		require.Equal(t, int64(i), n)
	}
}

func TestRecordSetOnlyFixedKeys(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()

	strType := tbl.Of(types.KindString)
	symType := tbl.Of(types.KindSymbol)
	nameA := objects.NewString(h, strType, []byte("a"))
	nameB := objects.NewString(h, strType, []byte("b"))
	symA := objects.NewSymbol(h, symType, nameA)
	symB := objects.NewSymbol(h, symType, nameB)

	rt := objects.NewRecordTemplate(h, tbl.Of(types.KindRecordTemplate), []*objects.Symbol{symA})
	r := objects.NewRecord(h, tbl.Of(types.KindRecord), rt)

	require.True(t, r.Set(symA, smallInt(1)))
	require.False(t, r.Set(symB, smallInt(2)))

	v, ok := r.Get(symA)
	require.True(t, ok)
	n, _ := v.SmallIntValue()
	require.Equal(t, int64(1), n)

	_, ok = r.Get(symB)
	require.False(t, ok)
}

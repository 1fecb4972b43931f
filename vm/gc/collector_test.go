package gc_test

import (
	"testing"

	"github.com/emberlang/ember/vm/gc"
	"github.com/emberlang/ember/vm/handle"
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
	"github.com/stretchr/testify/require"
)

// TestForcedCollectionReclaimsUnreachable is spec §8 scenario 5: allocate
// an array of capacity 1024 inside a scope, append one string, drop the
// scope, force a collection; the allocated-object count returns to the
// pre-allocation baseline.
func TestForcedCollectionReclaimsUnreachable(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	globals := handle.NewGlobalTable()
	baseline := h.Count()

	func() {
		scope := handle.NewScope(nil)
		defer scope.Close()

		arrayType := tbl.Of(types.KindArray)
		stringType := tbl.Of(types.KindString)

		arr := objects.NewArray(h, arrayType)
		scope.Open(value.FromHeap(&arr.Header))

		alloc := func(cap int) *objects.ArrayStorage { return objects.NewArrayStorage(h, arrayType, cap) }
		_ = objects.NewArrayStorage(h, arrayType, 1024) // simulate pre-sized capacity 1024

		str := objects.NewString(h, stringType, []byte("hello"))
		arr.Append(value.FromHeap(&str.Header), alloc)
	}()

	require.Greater(t, h.Count(), baseline)

	c := gc.New()
	stats := c.Collect(h, gc.Roots{Globals: globals}, gc.Forced)

	require.Equal(t, baseline, h.Count())
	require.Equal(t, 0, stats.Survivors)
}

func TestCollectKeepsGloballyRootedValues(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	globals := handle.NewGlobalTable()

	str := objects.NewString(h, tbl.Of(types.KindString), []byte("kept"))
	g := globals.Register(value.FromHeap(&str.Header))
	defer g.Release()

	before := h.Count()
	c := gc.New()
	c.Collect(h, gc.Roots{Globals: globals}, gc.Forced)
	require.Equal(t, before, h.Count())
}

func TestCollectWalksNestedStructures(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	globals := handle.NewGlobalTable()

	tup := objects.NewTuple(h, tbl.Of(types.KindTuple), 1)
	inner := objects.NewString(h, tbl.Of(types.KindString), []byte("nested"))
	tup.Set(0, value.FromHeap(&inner.Header))

	g := globals.Register(value.FromHeap(&tup.Header))
	defer g.Release()

	baselineWithBoth := h.Count()
	c := gc.New()
	c.Collect(h, gc.Roots{Globals: globals}, gc.Forced)
	require.Equal(t, baselineWithBoth, h.Count())
}

package registry_test

import (
	"testing"

	"github.com/emberlang/ember"
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/intern"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/registry"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
	"github.com/stretchr/testify/require"
)

func newModule(h *heap.Heap, tbl *types.Table, strs *intern.Strings, name string, memberCount int) *objects.Module {
	return objects.NewModule(h, tbl.Of(types.KindModule), strs.Intern([]byte(name)), memberCount, tbl.Of(types.KindTuple))
}

func newNormalFunction(h *heap.Heap, tbl *types.Table, name string, run func()) *objects.Function {
	code := objects.NewBytecodeCode(h, tbl.Of(types.KindBytecodeCode), nil)
	ft := objects.NewFunctionTemplate(h, tbl.Of(types.KindFunctionTemplate), name, nil, 0, 0, code, objects.FunctionNormal)
	return objects.NewFunction(h, tbl.Of(types.KindFunction), ft, nil)
}

// TestModuleInitializerSideEffectRunsOnce is spec §8 scenario 3: a module's
// initializer runs at most once across repeated lookups of the module.
func TestModuleInitializerSideEffectRunsOnce(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	strs := intern.NewStrings(h, tbl.Of(types.KindString))

	counter := 1
	var ran int
	helper := newModule(h, tbl, strs, "helper", 1)
	fn := newNormalFunction(h, tbl, "side_effect", func() { counter++; ran++ })
	helper.Members.Set(0, value.FromHeap(&fn.Header))
	helper.InitIndex = 0

	r := registry.New(func(f *objects.Function) (value.Value, error) {
		require.Same(t, fn, f)
		counter++
		ran++
		return value.Null, nil
	})
	require.True(t, r.AddModule(helper))

	_, err := r.GetModule("helper")
	require.NoError(t, err)
	_, err = r.GetModule("helper")
	require.NoError(t, err)

	require.Equal(t, 1, ran)
}

// TestMissingImportFailsWithUnknownModule is spec §8 scenario 6.
func TestMissingImportFailsWithUnknownModule(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	strs := intern.NewStrings(h, tbl.Of(types.KindString))

	a := newModule(h, tbl, strs, "A", 1)
	bName := strs.Intern([]byte("B"))
	placeholder := objects.NewUnresolvedImport(h, tbl.Of(types.KindUnresolvedImport), bName)
	a.Members.Set(0, value.FromHeap(&placeholder.Header))

	r := registry.New(nil)
	require.True(t, r.AddModule(a))

	_, err := r.GetModule("A")
	require.Error(t, err)
	var embErr *ember.Error
	require.ErrorAs(t, err, &embErr)
	require.Equal(t, ember.KindUnknownModule, embErr.Kind)
	require.Contains(t, embErr.Message, "B")
}

func TestImportCycleIsRejected(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	strs := intern.NewStrings(h, tbl.Of(types.KindString))

	a := newModule(h, tbl, strs, "A", 1)
	b := newModule(h, tbl, strs, "B", 1)

	bNameForA := strs.Intern([]byte("B"))
	aNameForB := strs.Intern([]byte("A"))
	impB := objects.NewUnresolvedImport(h, tbl.Of(types.KindUnresolvedImport), bNameForA)
	impA := objects.NewUnresolvedImport(h, tbl.Of(types.KindUnresolvedImport), aNameForB)
	a.Members.Set(0, value.FromHeap(&impB.Header))
	b.Members.Set(0, value.FromHeap(&impA.Header))

	r := registry.New(nil)
	require.True(t, r.AddModule(a))
	require.True(t, r.AddModule(b))

	_, err := r.GetModule("A")
	require.Error(t, err)
	var embErr *ember.Error
	require.ErrorAs(t, err, &embErr)
	require.Equal(t, ember.KindImportCycle, embErr.Kind)
}

func TestAddModuleRejectsDuplicateName(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	strs := intern.NewStrings(h, tbl.Of(types.KindString))

	m1 := newModule(h, tbl, strs, "same", 0)
	m2 := newModule(h, tbl, strs, "same", 0)

	r := registry.New(nil)
	require.True(t, r.AddModule(m1))
	require.False(t, r.AddModule(m2))
}

func TestGetModuleNotRegisteredReturnsNilNil(t *testing.T) {
	r := registry.New(nil)
	m, err := r.GetModule("nope")
	require.NoError(t, err)
	require.Nil(t, m)
}

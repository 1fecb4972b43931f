package handle_test

import (
	"testing"

	"github.com/emberlang/ember/vm/handle"
	"github.com/emberlang/ember/vm/value"
	"github.com/stretchr/testify/require"
)

func TestScopeWalkVisitsOpenLocalsInOrder(t *testing.T) {
	s := handle.NewScope(nil)
	a, _ := value.MakeSmallInt(1)
	b, _ := value.MakeSmallInt(2)
	s.Open(a)
	s.Open(b)

	var walked []value.Value
	s.Walk(func(v value.Value) { walked = append(walked, v) })
	require.Len(t, walked, 2)
	n0, _ := walked[0].SmallIntValue()
	n1, _ := walked[1].SmallIntValue()
	require.Equal(t, int64(1), n0)
	require.Equal(t, int64(2), n1)
}

func TestScopeCloseDropsLocalsAndIsIdempotent(t *testing.T) {
	s := handle.NewScope(nil)
	v, _ := value.MakeSmallInt(7)
	s.Open(v)
	s.Close()
	s.Close()

	var walked []value.Value
	s.Walk(func(v value.Value) { walked = append(walked, v) })
	require.Empty(t, walked)
}

func TestNestedScopesIndependentlyClose(t *testing.T) {
	parent := handle.NewScope(nil)
	pv, _ := value.MakeSmallInt(1)
	parent.Open(pv)

	child := handle.NewScope(parent)
	cv, _ := value.MakeSmallInt(2)
	child.Open(cv)
	child.Close()

	var parentWalked, childWalked []value.Value
	parent.Walk(func(v value.Value) { parentWalked = append(parentWalked, v) })
	child.Walk(func(v value.Value) { childWalked = append(childWalked, v) })

	require.Len(t, parentWalked, 1)
	require.Empty(t, childWalked)
	require.Same(t, parent, child.Parent())
}

func TestGlobalTableRegisterAndRelease(t *testing.T) {
	tbl := handle.NewGlobalTable()
	v, _ := value.MakeSmallInt(42)
	g := tbl.Register(v)
	require.Equal(t, 1, tbl.Count())

	g.Release()
	require.Equal(t, 0, tbl.Count())
	g.Release() // idempotent

	var walked []value.Value
	tbl.Walk(func(v value.Value) { walked = append(walked, v) })
	require.Empty(t, walked)
}

func TestGlobalTableWalkMultiple(t *testing.T) {
	tbl := handle.NewGlobalTable()
	a, _ := value.MakeSmallInt(1)
	b, _ := value.MakeSmallInt(2)
	tbl.Register(a)
	g2 := tbl.Register(b)

	var walked []value.Value
	tbl.Walk(func(v value.Value) { walked = append(walked, v) })
	require.Len(t, walked, 2)

	g2.Release()
	walked = nil
	tbl.Walk(func(v value.Value) { walked = append(walked, v) })
	require.Len(t, walked, 1)
}

package intern_test

import (
	"testing"

	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/intern"
	"github.com/emberlang/ember/vm/types"
	"github.com/stretchr/testify/require"
)

func TestInternStringsIdentityEqualIffCharacterEqual(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	strings := intern.NewStrings(h, tbl.Of(types.KindString))

	a := strings.Intern([]byte("hello"))
	b := strings.Intern([]byte("hello"))
	c := strings.Intern([]byte("world"))

	require.Same(t, a, b)
	require.NotSame(t, a, c)
	require.Equal(t, a.Hash(), b.Hash())
}

func TestInternSymbolsBackedByInternedStrings(t *testing.T) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	strings := intern.NewStrings(h, tbl.Of(types.KindString))
	symbols := intern.NewSymbols(h, tbl.Of(types.KindSymbol))

	name1 := strings.Intern([]byte("x"))
	name2 := strings.Intern([]byte("x"))
	require.Same(t, name1, name2)

	s1 := symbols.Intern(name1)
	s2 := symbols.Intern(name2)
	require.Same(t, s1, s2)
}

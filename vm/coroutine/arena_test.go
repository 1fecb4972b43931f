package coroutine_test

import (
	"testing"

	"github.com/emberlang/ember/vm/coroutine"
	"github.com/stretchr/testify/require"
)

func TestArenaGrowAndExhaustion(t *testing.T) {
	a, err := coroutine.NewArena(64)
	require.NoError(t, err)
	defer a.Close()

	b1, ok := a.Grow(40)
	require.True(t, ok)
	require.Len(t, b1, 40)

	b2, ok := a.Grow(30)
	require.False(t, ok)
	require.Nil(t, b2)

	b3, ok := a.Grow(24)
	require.True(t, ok)
	require.Len(t, b3, 24)
	require.Len(t, a.Used(), 64)
}

func TestArenaResetReusesCapacity(t *testing.T) {
	a, err := coroutine.NewArena(16)
	require.NoError(t, err)
	defer a.Close()

	_, ok := a.Grow(16)
	require.True(t, ok)
	_, ok = a.Grow(1)
	require.False(t, ok)

	a.Reset()
	b, ok := a.Grow(16)
	require.True(t, ok)
	require.Len(t, b, 16)
}

func TestPoolReusesReleasedArenas(t *testing.T) {
	p := coroutine.NewPool(32)
	defer p.Close()

	a1, err := p.Acquire()
	require.NoError(t, err)
	b, ok := a1.Grow(10)
	require.True(t, ok)
	b[0] = 0xff
	p.Release(a1)

	a2, err := p.Acquire()
	require.NoError(t, err)
	require.Equal(t, a1, a2, "pool should hand back the same recycled arena")
	require.Empty(t, a2.Used())
}

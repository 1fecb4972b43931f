package coroutine

import "fmt"

// Arena is a fixed-capacity byte buffer carved out by mapArena (platform-
// specific) and handed out in pieces via Grow. It never shrinks; Reset
// rewinds it for reuse by the next coroutine pulled from the pool.
type Arena struct {
	data    []byte
	used    int
	release func() error
}

// NewArena reserves size bytes of scratch memory.
func NewArena(size int) (*Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("coroutine: arena size must be positive, got %d", size)
	}
	data, release, err := mapArena(size)
	if err != nil {
		return nil, fmt.Errorf("coroutine: map arena: %w", err)
	}
	return &Arena{data: data, release: release}, nil
}

// Grow returns the next n bytes of the arena and advances the cursor, or
// ok=false if the arena's capacity is exhausted.
func (a *Arena) Grow(n int) (b []byte, ok bool) {
	if n < 0 || a.used+n > len(a.data) {
		return nil, false
	}
	b = a.data[a.used : a.used+n]
	a.used += n
	return b, true
}

// Used returns the bytes handed out so far since the last Reset.
func (a *Arena) Used() []byte { return a.data[:a.used] }

// Cap returns the arena's total capacity.
func (a *Arena) Cap() int { return len(a.data) }

// Reset rewinds the arena to empty without releasing its backing memory,
// so a coroutine pool can recycle one Arena across many coroutines.
func (a *Arena) Reset() { a.used = 0 }

// Close releases the arena's backing memory. Safe to call once per Arena;
// a closed Arena must not be used again.
func (a *Arena) Close() error {
	if a.release == nil {
		return nil
	}
	err := a.release()
	a.release = nil
	a.data = nil
	return err
}

// Pool recycles Arenas of a fixed size across coroutines so short-lived
// coroutines don't pay a fresh mmap per run.
type Pool struct {
	size int
	free []*Arena
}

// NewPool creates a pool that hands out arenas of arenaSize bytes.
func NewPool(arenaSize int) *Pool {
	return &Pool{size: arenaSize}
}

// Acquire returns a reset arena, reusing one from the free list when
// available.
func (p *Pool) Acquire() (*Arena, error) {
	if n := len(p.free); n > 0 {
		a := p.free[n-1]
		p.free = p.free[:n-1]
		a.Reset()
		return a, nil
	}
	return NewArena(p.size)
}

// Release returns a to the pool for reuse. Callers must not use a after
// calling Release.
func (p *Pool) Release(a *Arena) {
	if a == nil {
		return
	}
	a.Reset()
	p.free = append(p.free, a)
}

// Close releases every pooled arena's backing memory.
func (p *Pool) Close() error {
	var firstErr error
	for _, a := range p.free {
		if err := a.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.free = nil
	return firstErr
}

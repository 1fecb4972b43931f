package heap

import "errors"

var (
	// ErrOutOfMemory indicates the host allocator reported an allocation
	// failure; this is the AllocFailure collection trigger's companion
	// error when even a forced collection cannot free enough space.
	ErrOutOfMemory = errors.New("heap: out of memory")
)

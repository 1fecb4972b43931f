// Package coroutine provides pooled, OS-backed scratch memory for
// byte-oriented work outside the GC-traced heap that never holds a Go
// pointer. No other package in the runtime allocates from it: native call
// arguments and StringBuilder contents are ordinary Go slices.
//
// objects.CoroutineStack's Values and Frames slices are NOT backed by this
// package — they hold live value.Value/CallFrame data the collector's mark
// phase must trace (vm/gc/walk.go), and Go's garbage collector cannot scan
// memory it didn't allocate. Arena is only for pointer-free byte buffers,
// reusing the
// teacher's per-OS mmap split (internal/mmfile) for that narrower purpose.
package coroutine

//go:build unix

package coroutine

import "golang.org/x/sys/unix"

// mapArena reserves an anonymous private mapping plus one trailing guard
// page mapped PROT_NONE, so a coroutine that somehow walks off the end of
// its scratch arena faults immediately instead of silently corrupting an
// adjacent mapping (the same guard-page idea hive/dirty's flush_unix.go
// family relies on msync respecting, here applied at allocation time via
// golang.org/x/sys/unix instead of that package's msync-only use there).
func mapArena(size int) ([]byte, func() error, error) {
	pageSize := unix.Getpagesize()
	total := roundUpToPage(size, pageSize) + pageSize

	full, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}

	guardOff := total - pageSize
	if err := unix.Mprotect(full[guardOff:], unix.PROT_NONE); err != nil {
		_ = unix.Munmap(full)
		return nil, nil, err
	}

	data := full[:size]
	release := func() error { return unix.Munmap(full) }
	return data, release, nil
}

func roundUpToPage(n, pageSize int) int {
	if n%pageSize == 0 {
		return n
	}
	return (n/pageSize + 1) * pageSize
}

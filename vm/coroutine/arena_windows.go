//go:build windows

package coroutine

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapArena reserves and commits size bytes via VirtualAlloc. Windows has
// no equivalent of mprotect-after-the-fact guard pages without a second
// VirtualAlloc call at a fixed neighboring address, which is fragile
// across Windows versions, so this platform skips the guard page the unix
// implementation installs (documented simplification: Windows arenas rely
// on the bounds check in Arena.Grow alone).
func mapArena(size int) ([]byte, func() error, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, nil, err
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	release := func() error { return windows.VirtualFree(addr, 0, windows.MEM_RELEASE) }
	return data, release, nil
}

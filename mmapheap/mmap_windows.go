//go:build windows

package mmapheap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapRegion reserves and commits size bytes of zeroed memory.
func mapRegion(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// unmapRegion releases a region created by mapRegion.
func unmapRegion(data []byte) error {
	return windows.VirtualFree(uintptr(unsafe.Pointer(&data[0])), 0, windows.MEM_RELEASE)
}

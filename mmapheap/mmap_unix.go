//go:build unix

package mmapheap

import "golang.org/x/sys/unix"

// mapRegion maps size bytes of zeroed anonymous memory.
func mapRegion(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

// unmapRegion releases a mapping created by mapRegion.
func unmapRegion(data []byte) error {
	return unix.Munmap(data)
}

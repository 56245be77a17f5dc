package mmapheap

import "math/bits"

const (
	minClassShift = 4
	maxClassShift = 12

	// numClasses covers 16 B through 4 KiB in power-of-two steps.
	numClasses = maxClassShift - minClassShift + 1

	minClassSize = 1 << minClassShift
	maxClassSize = 1 << maxClassShift

	// spanSize is the mapping granularity for class-backed blocks.
	spanSize = 256 << 10
)

// classIndex maps a request size to its size class. Only valid for
// size <= maxClassSize.
func classIndex(size uintptr) int {
	if size <= minClassSize {
		return 0
	}
	return bits.Len(uint(size-1)) - minClassShift
}

// classSize reports the block size of class ci.
func classSize(ci int) uintptr {
	return 1 << (minClassShift + ci)
}

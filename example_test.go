package heapkit_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/heapkit"
	"github.com/hupe1980/heapkit/mmapheap"
)

// Example demonstrates the basic malloc/realloc/free cycle on the
// mmap-backed pool.
func Example() {
	pool, err := mmapheap.New()
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	heap := heapkit.New(pool)

	p := heap.Malloc(64)
	p = heap.Realloc(p, 256)
	fmt.Println(heap.UsableSize(p) >= 256)

	heap.Free(p)
	// Output: true
}

// Example_posixMemalign demonstrates aligned allocation with argument
// validation.
func Example_posixMemalign() {
	pool, err := mmapheap.New()
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	heap := heapkit.New(pool)

	if _, err := heap.PosixMemalign(3, 64); err != nil {
		fmt.Println("rejected:", err)
	}

	p, err := heap.PosixMemalign(4096, 1<<16)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(uintptr(p)%4096 == 0)

	heap.Free(p)
	// Output:
	// rejected: heapkit: alignment must be a nonzero power of two
	// true
}

// Example_zone demonstrates building an explicit zone descriptor for a
// platform-registration layer.
func Example_zone() {
	pool, err := mmapheap.New()
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	heap := heapkit.New(pool)
	zone := heapkit.NewZone(heap, "DefaultMallocZone")

	fmt.Println(zone.Name, zone.Version, zone.Check())
	// Output: DefaultMallocZone 8 true
}

// Package myheap simulates a dynamic-memory allocator on top of a small,
// fixed-size byte arena, to show how allocation, fragmentation and freeing
// behave.
//
// # Overview
//
// An Allocator owns an Arena (a zero-initialized byte buffer that never
// grows) and a bounded chunk table. The table holds at most
// HeapSize/PointerWidth chunks, standing in for the per-allocation
// bookkeeping a real allocator pays for.
//
// # Basic Usage
//
//	heap := myheap.New() // 256-byte arena, best-fit
//
//	h, err := heap.Allocate(10)
//	if err != nil {
//		// ErrCapacityExceeded or ErrNoSuitableChunk: nothing changed, retry later
//	}
//	heap.Write(h, []byte("hello"))
//
//	if err := heap.Free(h); myheap.IsFatal(err) {
//		// the heap is corrupt; stop or Reset
//	}
//
// # Strategies
//
// BestFit (the default) starts with one free chunk covering the arena. An
// allocation picks the smallest free chunk that is large enough, ties going to
// the earliest table entry, and carves the request off its end. Free marks the
// chunk free again; adjacent free chunks are never merged, so fragmentation is
// visible and permanent.
//
// FirstFit starts with an empty table. An allocation probes start offsets in
// ascending order (stepping by the configured alignment) and takes the first
// range that overlaps no allocated chunk. Free removes the chunk and compacts
// the table.
//
// # Invalid Frees
//
// Freeing a handle that is not allocated is treated like heap corruption. Free
// returns an *InvalidFreeError and every later mutating call returns the same
// error until Reset. Capacity and fit failures, by contrast, are ordinary
// recoverable errors.
//
// # Thread Safety
//
// Allocator is not thread-safe. SafeAllocator wraps it with a mutex held
// across each scan-then-mutate sequence:
//
//	heap := myheap.NewSafe(myheap.WithStrategy(myheap.FirstFit))
//
// # Inspection
//
// Enumerate reports the owner and state of every byte, WriteTable prints the
// chunk table, Snapshot copies the raw arena bytes and Metrics summarizes
// usage and fragmentation:
//
//	m := heap.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
//	fmt.Printf("Largest free request: %d bytes\n", m.LargestFree)
package myheap

package myheap

// SizeInUse returns the number of bytes covered by allocated chunks.
func (a *Allocator) SizeInUse() int {
	sum := 0
	for _, c := range a.table.chunks {
		if c.State == StateAllocated {
			sum += c.Size
		}
	}
	return sum
}

// FreeBytes returns the number of bytes not covered by an allocated chunk.
func (a *Allocator) FreeBytes() int {
	return a.arena.Len() - a.SizeInUse()
}

// LargestFree returns the largest request that could be placed right now,
// ignoring the chunk table capacity.
func (a *Allocator) LargestFree() int {
	return a.placer.largestFree(a.table, a.arena.Len())
}

// Utilization returns the ratio of bytes in use to heap size (0.0 to 1.0).
func (a *Allocator) Utilization() float64 {
	return float64(a.SizeInUse()) / float64(a.arena.Len())
}

// Fragmentation returns 1 - LargestFree/FreeBytes: 0 when all free space is
// usable by a single request, approaching 1 as it splinters.
// Returns 0.0 when nothing is free.
func (a *Allocator) Fragmentation() float64 {
	free := a.FreeBytes()
	if free == 0 {
		return 0
	}
	return 1 - float64(a.LargestFree())/float64(free)
}

// Metrics returns a snapshot of allocator statistics.
func (a *Allocator) Metrics() Metrics {
	return Metrics{
		HeapSize:      a.HeapSize(),
		SizeInUse:     a.SizeInUse(),
		FreeBytes:     a.FreeBytes(),
		LargestFree:   a.LargestFree(),
		NumChunks:     a.ChunkCount(),
		Capacity:      a.Capacity(),
		Utilization:   a.Utilization(),
		Fragmentation: a.Fragmentation(),
	}
}

// Metrics contains statistical information about an allocator.
type Metrics struct {
	HeapSize      int     // Arena length in bytes
	SizeInUse     int     // Bytes covered by allocated chunks
	FreeBytes     int     // Bytes not allocated
	LargestFree   int     // Largest request that fits right now
	NumChunks     int     // Chunk table entries
	Capacity      int     // Chunk table capacity
	Utilization   float64 // Ratio of used bytes to heap size (0.0-1.0)
	Fragmentation float64 // 1 - LargestFree/FreeBytes (0.0-1.0)
}

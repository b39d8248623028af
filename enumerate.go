package myheap

import (
	"github.com/pkg/errors"
)

// ByteOwner describes one arena offset.
type ByteOwner struct {
	Offset int
	// Chunk is the table index of the owning chunk, or -1 when unowned.
	Chunk int
	State ChunkState
	// Boundary is true for the first byte of a chunk.
	Boundary bool
}

// Enumerate reports, for every offset of the arena, which chunk owns it and in
// which state. It does not modify the allocator.
func (a *Allocator) Enumerate() []ByteOwner {
	owners := make([]ByteOwner, a.arena.Len())
	for off := range owners {
		owners[off] = ByteOwner{Offset: off, Chunk: -1, State: StateUnowned}
	}
	for i, c := range a.table.chunks {
		for off := c.Start; off < c.End(); off++ {
			// An allocated owner wins over a free one. The invariants make
			// this unreachable, but Enumerate must never report two owners.
			if owners[off].State == StateAllocated {
				continue
			}
			owners[off] = ByteOwner{Offset: off, Chunk: i, State: c.State, Boundary: off == c.Start}
		}
	}
	return owners
}

// Validate checks the table against the heap invariants: every chunk is
// non-empty and inside the arena, the table is within capacity, allocated
// chunks never overlap and, for BestFit, the chunks partition the arena.
func (a *Allocator) Validate() error {
	size := a.arena.Len()
	if a.table.len() > a.table.capacity {
		return errors.Errorf("chunk table holds %d entries, capacity is %d", a.table.len(), a.table.capacity)
	}

	for i, c := range a.table.chunks {
		if c.Size < 1 {
			return errors.Errorf("chunk %d at %d is empty", i, c.Start)
		}
		if c.Start < 0 || c.End() > size {
			return errors.Errorf("chunk %d [%d, %d) is outside the arena [0, %d)", i, c.Start, c.End(), size)
		}
	}

	chunks := a.table.chunks
	for i := 0; i < len(chunks); i++ {
		for j := i + 1; j < len(chunks); j++ {
			c1, c2 := chunks[i], chunks[j]
			if c1.State != StateAllocated || c2.State != StateAllocated {
				continue
			}
			if c1.overlaps(c2.Start, c2.Size) {
				return errors.Errorf("overlapping allocations: chunk %d [%d, %d) and chunk %d [%d, %d)",
					i, c1.Start, c1.End(), j, c2.Start, c2.End())
			}
		}
	}

	if !a.placer.partitioned() {
		return nil
	}
	covered := make([]int, size)
	for _, c := range chunks {
		for off := c.Start; off < c.End(); off++ {
			covered[off]++
		}
	}
	for off, n := range covered {
		if n != 1 {
			return errors.Errorf("offset %d is covered by %d chunks, want exactly 1", off, n)
		}
	}
	return nil
}

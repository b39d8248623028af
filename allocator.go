package myheap

import (
	"github.com/go-kit/log"
)

// Handle identifies an allocation. It equals the start offset of its chunk.
type Handle int

// NilHandle is returned for zero-size requests. Freeing it is a no-op.
const NilHandle Handle = -1

// Allocator owns an Arena and a bounded chunk table describing which byte
// ranges are in use. Not goroutine-safe; use SafeAllocator for concurrent access.
type Allocator struct {
	arena    *Arena
	table    *chunkTable
	placer   placer
	strategy Strategy
	logger   log.Logger
	observer Observer

	// fault is set by an invalid free and returned by every mutating call
	// until Reset.
	fault error
}

// New creates an Allocator. Without options it manages a DefaultHeapSize
// arena with the BestFit strategy.
func New(opts ...Option) *Allocator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	a := &Allocator{
		arena:    NewArena(o.heapSize),
		table:    newChunkTable(max(o.heapSize/o.pointerWidth, 1)),
		placer:   newPlacer(o.strategy, o.alignment),
		strategy: o.strategy,
		logger:   log.With(o.logger, "component", "allocator", "strategy", o.strategy),
		observer: o.observer,
	}
	a.placer.init(a.table, a.arena.Len())
	return a
}

// Reset reinitializes the chunk table, zeroes the arena and clears a fault
// left by an invalid free. Handles issued before Reset are no longer valid.
func (a *Allocator) Reset() {
	a.table.reset()
	a.arena.zero()
	a.placer.init(a.table, a.arena.Len())
	a.fault = nil
}

// Strategy returns the placement strategy of this allocator.
func (a *Allocator) Strategy() Strategy {
	return a.strategy
}

// HeapSize returns the arena length in bytes.
func (a *Allocator) HeapSize() int {
	return a.arena.Len()
}

// ChunkCount returns the number of chunks in the table.
func (a *Allocator) ChunkCount() int {
	return a.table.len()
}

// Capacity returns the maximum number of chunks the table can hold.
func (a *Allocator) Capacity() int {
	return a.table.capacity
}

// Chunks returns a copy of the chunk table in table order.
func (a *Allocator) Chunks() []Chunk {
	return a.table.snapshot()
}

// Snapshot returns a copy of the arena contents.
func (a *Allocator) Snapshot() []byte {
	return a.arena.Snapshot()
}

// Err returns the fatal error recorded by an invalid free, or nil.
func (a *Allocator) Err() error {
	return a.fault
}

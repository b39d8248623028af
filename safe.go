package myheap

import (
	"io"
	"sync"
)

// SafeAllocator is a mutex-protected wrapper around Allocator for concurrent
// access. Every call holds the lock for its whole scan-then-mutate sequence.
type SafeAllocator struct {
	mu sync.Mutex
	a  *Allocator
}

// NewSafe creates a thread-safe allocator configured by opts.
func NewSafe(opts ...Option) *SafeAllocator {
	return &SafeAllocator{a: New(opts...)}
}

// Allocate thread-safely reserves size bytes.
func (s *SafeAllocator) Allocate(size int) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(size)
}

// Free thread-safely releases h.
func (s *SafeAllocator) Free(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Free(h)
}

// Bytes thread-safely returns the region of h. The caller must not use the
// slice concurrently with a Free of h; prefer Write.
func (s *SafeAllocator) Bytes(h Handle) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Bytes(h)
}

// Write thread-safely copies p into the allocation h.
func (s *SafeAllocator) Write(h Handle, p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Write(h, p)
}

// Reset thread-safely reinitializes the allocator.
func (s *SafeAllocator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Reset()
}

// Enumerate thread-safely reports the owner of every offset.
func (s *SafeAllocator) Enumerate() []ByteOwner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Enumerate()
}

// Validate thread-safely checks the heap invariants.
func (s *SafeAllocator) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Validate()
}

// WriteTable thread-safely prints the chunk table.
func (s *SafeAllocator) WriteTable(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.WriteTable(w)
}

// Chunks thread-safely returns a copy of the chunk table.
func (s *SafeAllocator) Chunks() []Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Chunks()
}

// Snapshot thread-safely returns a copy of the arena contents.
func (s *SafeAllocator) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Snapshot()
}

// Err thread-safely returns the recorded fatal error, if any.
func (s *SafeAllocator) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Err()
}

// Thread-safe metrics for SafeAllocator

// ChunkCount thread-safely returns the number of chunks in the table.
func (s *SafeAllocator) ChunkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.ChunkCount()
}

// Capacity thread-safely returns the chunk table capacity.
func (s *SafeAllocator) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Capacity()
}

// HeapSize returns the arena length. It never changes, so no lock is taken.
func (s *SafeAllocator) HeapSize() int {
	return s.a.HeapSize()
}

// Strategy returns the placement strategy. It never changes, so no lock is taken.
func (s *SafeAllocator) Strategy() Strategy {
	return s.a.Strategy()
}

// Metrics thread-safely returns a snapshot of allocator statistics.
func (s *SafeAllocator) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}

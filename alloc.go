package myheap

import (
	"github.com/go-kit/log/level"
)

// Allocate reserves size bytes and returns the handle of the new chunk.
//
// A zero size returns NilHandle and no error without touching the table.
// ErrCapacityExceeded, ErrNoSuitableChunk (BestFit) and ErrHeapExhausted
// (FirstFit) leave the allocator unchanged. Arena bytes are not zeroed.
func (a *Allocator) Allocate(size int) (Handle, error) {
	h, err := a.allocate(size)
	if a.observer != nil {
		a.observer.ObserveAllocate(size, h, err)
	}
	return h, err
}

func (a *Allocator) allocate(size int) (Handle, error) {
	if a.fault != nil {
		return NilHandle, a.fault
	}
	if size < 0 {
		return NilHandle, ErrInvalidSize
	}
	if size == 0 {
		return NilHandle, nil
	}
	if a.table.full() {
		level.Warn(a.logger).Log("msg", "allocation failed", "size", size, "chunks", a.table.len(), "err", ErrCapacityExceeded)
		return NilHandle, ErrCapacityExceeded
	}

	start, err := a.placer.place(a.table, a.arena.Len(), size)
	if err != nil {
		level.Warn(a.logger).Log("msg", "allocation failed", "size", size, "err", err)
		return NilHandle, err
	}
	level.Debug(a.logger).Log("msg", "allocated", "size", size, "handle", start, "chunks", a.table.len())
	return Handle(start), nil
}

// Free releases the chunk identified by h. Freeing NilHandle does nothing.
//
// Freeing a handle that is not currently allocated, including a second free
// of the same handle, returns an *InvalidFreeError and leaves the table as it
// was. The error is fatal: every later Allocate, Free, Write and Bytes call
// returns it until Reset.
func (a *Allocator) Free(h Handle) error {
	err := a.free(h)
	if a.observer != nil {
		a.observer.ObserveFree(h, err)
	}
	return err
}

func (a *Allocator) free(h Handle) error {
	if a.fault != nil {
		return a.fault
	}
	if h == NilHandle {
		return nil
	}

	i := a.table.findAllocated(int(h))
	if i < 0 {
		a.fault = &InvalidFreeError{Handle: h}
		level.Error(a.logger).Log("msg", "invalid pointer freed, heap is unusable until reset", "handle", int(h))
		return a.fault
	}
	a.placer.release(a.table, i)
	level.Debug(a.logger).Log("msg", "freed", "handle", int(h), "chunks", a.table.len())
	return nil
}

// Bytes returns the arena region covered by the allocated chunk h. The slice
// aliases the arena and is only meaningful until h is freed.
func (a *Allocator) Bytes(h Handle) ([]byte, error) {
	if a.fault != nil {
		return nil, a.fault
	}
	if h == NilHandle {
		return nil, nil
	}
	i := a.table.findAllocated(int(h))
	if i < 0 {
		return nil, ErrUnknownHandle
	}
	c := a.table.chunks[i]
	return a.arena.region(c.Start, c.Size), nil
}

// Write copies p into the allocation h, truncating to the chunk size, and
// returns the number of bytes written.
func (a *Allocator) Write(h Handle, p []byte) (int, error) {
	b, err := a.Bytes(h)
	if err != nil {
		return 0, err
	}
	return copy(b, p), nil
}

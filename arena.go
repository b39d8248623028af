package myheap

import "unsafe"

// DefaultHeapSize is the arena length used when no size is configured.
const DefaultHeapSize = 256

// PointerWidth is the size of a pointer on the target architecture. The chunk
// table capacity is the heap size divided by this width.
const PointerWidth = int(unsafe.Sizeof(uintptr(0)))

// Arena is a fixed-length, zero-initialized byte buffer. It is never resized
// and does not interpret its contents.
type Arena struct {
	buf []byte
}

// NewArena creates an Arena of the given length.
// If size <= 0, DefaultHeapSize is used.
func NewArena(size int) *Arena {
	if size <= 0 {
		size = DefaultHeapSize
	}
	return &Arena{buf: make([]byte, size)}
}

// Len returns the arena length in bytes.
func (a *Arena) Len() int {
	return len(a.buf)
}

// ByteAt returns the byte stored at off. It panics if off is out of range.
func (a *Arena) ByteAt(off int) byte {
	return a.buf[off]
}

// Snapshot returns a copy of the arena contents.
func (a *Arena) Snapshot() []byte {
	out := make([]byte, len(a.buf))
	copy(out, a.buf)
	return out
}

// region returns a view of [start, start+n) whose capacity stops at the end of
// the region, so appends by the caller never spill into a neighbour.
func (a *Arena) region(start, n int) []byte {
	return a.buf[start : start+n : start+n]
}

// zero clears every byte of the arena.
func (a *Arena) zero() {
	clear(a.buf)
}

// alignUp rounds off up to the next multiple of align.
func alignUp(off, align int) int {
	if align <= 1 {
		return off
	}
	if r := off % align; r != 0 {
		return off + align - r
	}
	return off
}

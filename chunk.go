package myheap

// ChunkState describes who owns a byte range.
type ChunkState uint8

const (
	// StateUnowned marks bytes no chunk covers. Only FirstFit leaves such gaps.
	StateUnowned ChunkState = iota
	StateFree
	StateAllocated
)

func (s ChunkState) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateAllocated:
		return "allocated"
	default:
		return "unowned"
	}
}

// Chunk is one tracked, non-empty byte range of the arena.
type Chunk struct {
	Start int
	Size  int
	State ChunkState
}

// End returns the offset one past the last byte of the chunk.
func (c Chunk) End() int {
	return c.Start + c.Size
}

// overlaps applies the closed-range test x1 <= y2 && y1 <= x2 to both chunks.
func (c Chunk) overlaps(start, size int) bool {
	return c.Start <= start+size-1 && start <= c.End()-1
}

// chunkTable is a bounded, dense, insertion-ordered list of chunks.
type chunkTable struct {
	chunks   []Chunk
	capacity int
}

func newChunkTable(capacity int) *chunkTable {
	return &chunkTable{
		chunks:   make([]Chunk, 0, capacity),
		capacity: capacity,
	}
}

func (t *chunkTable) len() int {
	return len(t.chunks)
}

func (t *chunkTable) full() bool {
	return len(t.chunks) >= t.capacity
}

// add appends c. Callers check full() first; overflowing the table is a bug.
func (t *chunkTable) add(c Chunk) int {
	if t.full() {
		panic("myheap: chunk table overflow")
	}
	t.chunks = append(t.chunks, c)
	return len(t.chunks) - 1
}

// removeAt deletes the chunk at i and shifts the rest down to keep the table dense.
func (t *chunkTable) removeAt(i int) {
	copy(t.chunks[i:], t.chunks[i+1:])
	t.chunks = t.chunks[:len(t.chunks)-1]
}

// findAllocated returns the index of the allocated chunk starting at start, or -1.
func (t *chunkTable) findAllocated(start int) int {
	for i, c := range t.chunks {
		if c.State == StateAllocated && c.Start == start {
			return i
		}
	}
	return -1
}

func (t *chunkTable) reset() {
	t.chunks = t.chunks[:0]
}

func (t *chunkTable) snapshot() []Chunk {
	out := make([]Chunk, len(t.chunks))
	copy(out, t.chunks)
	return out
}

package myheap

import (
	"strings"

	"github.com/pkg/errors"
)

// Strategy selects how the allocator places new chunks.
type Strategy uint8

const (
	// BestFit splits the smallest free chunk that is large enough, carving the
	// allocation off its end. Freed chunks are marked free and never merged.
	BestFit Strategy = iota
	// FirstFit probes ascending start addresses for the first range that does
	// not overlap an allocated chunk. Freed chunks are removed from the table.
	FirstFit
)

func (s Strategy) String() string {
	switch s {
	case BestFit:
		return "best-fit"
	case FirstFit:
		return "first-fit"
	default:
		return "unknown"
	}
}

// Set implements flag.Value.
func (s *Strategy) Set(v string) error {
	parsed, err := ParseStrategy(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	return s.Set(string(text))
}

// ParseStrategy accepts "best-fit" or "first-fit" (case-insensitive, with or
// without the dash).
func ParseStrategy(v string) (Strategy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), "-", "") {
	case "bestfit", "best", "split":
		return BestFit, nil
	case "firstfit", "first", "probe":
		return FirstFit, nil
	}
	return 0, errors.Errorf("myheap: unknown strategy %q", v)
}

// placer holds everything that differs between strategies.
type placer interface {
	// init seeds an empty table for a fresh heap.
	init(t *chunkTable, heapSize int)
	// place records a new allocated chunk of size bytes and returns its start.
	place(t *chunkTable, heapSize, size int) (int, error)
	// release undoes the allocated chunk at index i.
	release(t *chunkTable, i int)
	// largestFree is the biggest request place could satisfy right now.
	largestFree(t *chunkTable, heapSize int) int
	// partitioned reports whether chunks must cover the whole heap.
	partitioned() bool
}

func newPlacer(s Strategy, alignment int) placer {
	if s == FirstFit {
		return &probePlacer{alignment: max(alignment, 1)}
	}
	return splitPlacer{}
}

// splitPlacer implements BestFit.
type splitPlacer struct{}

func (splitPlacer) init(t *chunkTable, heapSize int) {
	t.add(Chunk{Start: 0, Size: heapSize, State: StateFree})
}

func (splitPlacer) place(t *chunkTable, _ int, size int) (int, error) {
	best := -1
	for i, c := range t.chunks {
		if c.State == StateFree && c.Size >= size && (best < 0 || c.Size < t.chunks[best].Size) {
			best = i
		}
	}
	if best < 0 {
		return 0, ErrNoSuitableChunk
	}

	src := &t.chunks[best]
	if src.Size == size {
		// Exact fit: take over the free chunk instead of leaving an empty one.
		src.State = StateAllocated
		return src.Start, nil
	}
	src.Size -= size
	start := src.Start + src.Size
	t.add(Chunk{Start: start, Size: size, State: StateAllocated})
	return start, nil
}

func (splitPlacer) release(t *chunkTable, i int) {
	t.chunks[i].State = StateFree
}

func (splitPlacer) largestFree(t *chunkTable, _ int) int {
	largest := 0
	for _, c := range t.chunks {
		if c.State == StateFree && c.Size > largest {
			largest = c.Size
		}
	}
	return largest
}

func (splitPlacer) partitioned() bool { return true }

// probePlacer implements FirstFit.
type probePlacer struct {
	alignment int
}

func (p *probePlacer) init(*chunkTable, int) {}

func (p *probePlacer) place(t *chunkTable, heapSize, size int) (int, error) {
	for start := 0; start <= heapSize-size; {
		end, hit := p.collision(t, start, size)
		if !hit {
			t.add(Chunk{Start: start, Size: size, State: StateAllocated})
			return start, nil
		}
		// Every candidate before end overlaps the same chunk.
		start = alignUp(end, p.alignment)
	}
	return 0, ErrHeapExhausted
}

// collision returns the end of the first allocated chunk overlapping
// [start, start+size).
func (p *probePlacer) collision(t *chunkTable, start, size int) (int, bool) {
	for _, c := range t.chunks {
		if c.State == StateAllocated && c.overlaps(start, size) {
			return c.End(), true
		}
	}
	return 0, false
}

func (p *probePlacer) release(t *chunkTable, i int) {
	t.removeAt(i)
}

// largestFree walks the aligned candidate starts and measures the gap before
// the next allocated chunk.
func (p *probePlacer) largestFree(t *chunkTable, heapSize int) int {
	largest := 0
	for start := 0; start < heapSize; start += p.alignment {
		end := heapSize
		owned := false
		for _, c := range t.chunks {
			if c.Start <= start && start < c.End() {
				owned = true
				break
			}
			if c.Start > start && c.Start < end {
				end = c.Start
			}
		}
		if !owned && end-start > largest {
			largest = end - start
		}
	}
	return largest
}

func (p *probePlacer) partitioned() bool { return false }

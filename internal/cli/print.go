package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-faker/faker/v4"
)

func (c *CLI) printAllocations() {
	if len(c.allocations) == 0 {
		fmt.Fprintln(c.out, "No allocations are defined.")
		return
	}

	ColorHeader.Fprintf(c.out, "Allocations (%d):\n", len(c.allocations))
	fmt.Fprintf(c.out, "| %-2s | %-16s | %-16s |\n", "#", "Address", "Size")
	for i, a := range c.allocations {
		fmt.Fprintf(c.out, "| %-2d | %-16s | %-16d |\n", i+1, formatHandle(a.handle), a.size)
	}
}

func (c *CLI) printStats() {
	m := c.heap.Metrics()

	ColorHeader.Fprintf(c.out, "Heap (%s):\n", c.heap.Strategy())
	fmt.Fprintf(c.out, "  Size:          %s\n", humanize.IBytes(uint64(m.HeapSize)))
	fmt.Fprintf(c.out, "  In use:        %s (%.2f%%)\n", humanize.IBytes(uint64(m.SizeInUse)), m.Utilization*100)
	fmt.Fprintf(c.out, "  Free:          %s\n", humanize.IBytes(uint64(m.FreeBytes)))
	fmt.Fprintf(c.out, "  Largest free:  %s\n", humanize.IBytes(uint64(m.LargestFree)))
	fmt.Fprintf(c.out, "  Fragmentation: %.2f%%\n", m.Fragmentation*100)
	fmt.Fprintf(c.out, "  Chunks:        %s / %s\n", humanize.Comma(int64(m.NumChunks)), humanize.Comma(int64(m.Capacity)))
}

// randomText returns exactly size bytes of space-separated random words.
func randomText(size int) []byte {
	var b strings.Builder
	for b.Len() < size {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(faker.Word())
	}
	return []byte(b.String()[:size])
}

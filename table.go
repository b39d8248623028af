package myheap

import (
	"bufio"
	"fmt"
	"io"
)

// WriteTable prints the chunk table: index, start offset, size and, for
// BestFit, the chunk state.
//
//	Chunks (2):
//	| #  | Start offset     | Size             | State            |
//	| 0  | 0                | 246              | free             |
//	| 1  | 246              | 10               | allocated        |
func (a *Allocator) WriteTable(w io.Writer) error {
	bw := bufio.NewWriter(w)
	withState := a.placer.partitioned()

	fmt.Fprintf(bw, "Chunks (%d):\n", a.table.len())
	if withState {
		fmt.Fprintf(bw, "| %-2s | %-16s | %-16s | %-16s |\n", "#", "Start offset", "Size", "State")
	} else {
		fmt.Fprintf(bw, "| %-2s | %-16s | %-16s |\n", "#", "Start offset", "Size")
	}
	for i, c := range a.table.chunks {
		if withState {
			fmt.Fprintf(bw, "| %-2d | %-16d | %-16d | %-16s |\n", i, c.Start, c.Size, c.State)
		} else {
			fmt.Fprintf(bw, "| %-2d | %-16d | %-16d |\n", i, c.Start, c.Size)
		}
	}
	return bw.Flush()
}

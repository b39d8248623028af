// Package cli implements the interactive myheap prompt.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/pavanmanishd/myheap"
	"github.com/pavanmanishd/myheap/internal/render"
)

// MaxAllocations bounds the list of tracked allocations.
const MaxAllocations = 100

var (
	ColorError  = color.New(color.FgHiRed)
	ColorHeader = color.New(color.FgHiCyan, color.Bold)
	ColorOK     = color.New(color.FgHiGreen)
)

var errQuit = errors.New("quit")

// Heap is the allocator surface the prompt drives. *myheap.Allocator and
// *myheap.SafeAllocator both implement it.
type Heap interface {
	Allocate(size int) (myheap.Handle, error)
	Free(h myheap.Handle) error
	Write(h myheap.Handle, p []byte) (int, error)
	Reset()
	Validate() error
	WriteTable(w io.Writer) error
	Enumerate() []myheap.ByteOwner
	Snapshot() []byte
	Metrics() myheap.Metrics
	Strategy() myheap.Strategy
}

// Options configures a CLI.
type Options struct {
	// Height of the dumped bitmaps.
	Height     int
	ChunksFile string
	DataFile   string
	// OnChange rewrites the chunk bitmap after every ALLOC and FREE.
	OnChange bool
	Logger   log.Logger
	// Rand picks sizes for SEED. Nil means a fixed-seed source.
	Rand *rand.Rand
}

type allocation struct {
	handle myheap.Handle
	size   int
}

type CLI struct {
	scanner     *bufio.Scanner
	out         io.Writer
	heap        Heap
	opts        Options
	logger      log.Logger
	allocations []allocation
}

func NewCLI(in io.Reader, out io.Writer, heap Heap, opts Options) *CLI {
	if opts.Height <= 0 {
		opts.Height = render.DefaultHeight
	}
	if opts.ChunksFile == "" {
		opts.ChunksFile = render.DefaultChunksFile
	}
	if opts.DataFile == "" {
		opts.DataFile = render.DefaultDataFile
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	return &CLI{
		scanner: bufio.NewScanner(in),
		out:     out,
		heap:    heap,
		opts:    opts,
		logger:  log.With(opts.Logger, "component", "cli"),
	}
}

// Start runs the prompt until EXIT or the end of input. It returns the fatal
// allocator error if an invalid free corrupts the heap.
func (c *CLI) Start() error {
	c.printHelp()
	c.printPrompt()
	for c.scanner.Scan() {
		if err := c.processInput(c.scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
		c.printPrompt()
	}
	return c.scanner.Err()
}

func (c *CLI) printHelp() {
	ColorHeader.Fprintf(c.out, "\nMyHeap CLI (%s)\n", c.heap.Strategy())
	fmt.Fprint(c.out, `
Available Commands:
  ALLOC <size>         Allocate size bytes and track the allocation
  FREE <#>             Free the tracked allocation number #
  FREEAT <offset>      Free the raw handle at offset (an unknown offset corrupts the heap)
  WRITE <#> <text>     Write text into allocation # and dump the data bitmap
  FILL <#>             Fill allocation # with random words and dump the data bitmap
  SEED <n>             Make n random allocations
  LIST                 Show tracked allocations
  TABLE                Show the chunk table
  STATS                Show heap usage
  CHECK                Verify the heap invariants
  CHUNKS [file]        Write the chunk bitmap
  DATA [file]          Write the raw data bitmap
  RESET                Reinitialize the heap and forget all allocations
  HELP                 Show this help
  EXIT                 Terminate this session
`)
}

func (c *CLI) printPrompt() {
	fmt.Fprint(c.out, "\n> ")
}

func (c *CLI) processInput(line string) error {
	fields := strings.Fields(line)

	if len(fields) < 1 {
		return nil
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	default:
		ColorError.Fprintf(c.out, "Unknown command \"%s\"\n", command)
	case "alloc":
		return c.processAllocCommand(args)
	case "free":
		return c.processFreeCommand(args)
	case "freeat":
		return c.processFreeAtCommand(args)
	case "write":
		return c.processWriteCommand(args)
	case "fill":
		return c.processFillCommand(args)
	case "seed":
		return c.processSeedCommand(args)
	case "list":
		c.printAllocations()
	case "table":
		return c.heap.WriteTable(c.out)
	case "stats":
		c.printStats()
	case "check":
		c.processCheckCommand()
	case "chunks":
		c.processDumpCommand(args, c.opts.ChunksFile, c.dumpChunks)
	case "data":
		c.processDumpCommand(args, c.opts.DataFile, c.dumpData)
	case "reset":
		c.heap.Reset()
		c.allocations = c.allocations[:0]
		fmt.Fprintln(c.out, "Heap reset.")
		c.dumpChunksOnChange()
	case "help":
		c.printHelp()
	case "exit", "quit":
		return errQuit
	}
	return nil
}

func (c *CLI) processAllocCommand(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: ALLOC <size>")
		return nil
	}
	size, ok := c.parseNumber(args[0], 0)
	if !ok {
		return nil
	}
	return c.allocate(size)
}

func (c *CLI) allocate(size int) error {
	if len(c.allocations) == MaxAllocations {
		ColorError.Fprintf(c.out, "Maximum number of allocations (%d) reached.\n", MaxAllocations)
		return nil
	}

	h, err := c.heap.Allocate(size)
	if err != nil {
		if myheap.IsFatal(err) {
			return c.fatal(err)
		}
		ColorError.Fprintf(c.out, "Allocation of %d bytes failed: %v\n", size, err)
		return nil
	}

	c.allocations = append(c.allocations, allocation{handle: h, size: size})
	fmt.Fprintf(c.out, "Added allocation #%d of size %d at %s.\n", len(c.allocations), size, formatHandle(h))
	c.dumpChunksOnChange()
	return nil
}

func (c *CLI) processFreeCommand(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: FREE <#>")
		return nil
	}
	if len(c.allocations) == 0 {
		fmt.Fprintln(c.out, "No allocations are defined.")
		return nil
	}
	i, ok := c.parseIndex(args[0])
	if !ok {
		return nil
	}

	a := c.allocations[i]
	if err := c.heap.Free(a.handle); err != nil {
		return c.fatal(err)
	}
	c.removeAt(i)
	fmt.Fprintf(c.out, "Freed allocation of size %d at %s (%d remaining).\n", a.size, formatHandle(a.handle), len(c.allocations))
	c.dumpChunksOnChange()
	return nil
}

func (c *CLI) processFreeAtCommand(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: FREEAT <offset>")
		return nil
	}
	off, ok := c.parseNumber(args[0], 0)
	if !ok {
		return nil
	}

	h := myheap.Handle(off)
	if err := c.heap.Free(h); err != nil {
		return c.fatal(err)
	}
	for i, a := range c.allocations {
		if a.handle == h {
			c.removeAt(i)
			break
		}
	}
	fmt.Fprintf(c.out, "Freed chunk at %s.\n", formatHandle(h))
	c.dumpChunksOnChange()
	return nil
}

func (c *CLI) processWriteCommand(args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: WRITE <#> <text>")
		return nil
	}
	i, ok := c.parseIndex(args[0])
	if !ok {
		return nil
	}
	return c.write(i, []byte(strings.Join(args[1:], " ")))
}

func (c *CLI) processFillCommand(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: FILL <#>")
		return nil
	}
	i, ok := c.parseIndex(args[0])
	if !ok {
		return nil
	}
	return c.write(i, randomText(c.allocations[i].size))
}

func (c *CLI) write(i int, p []byte) error {
	a := c.allocations[i]
	n, err := c.heap.Write(a.handle, p)
	if err != nil {
		if myheap.IsFatal(err) {
			return c.fatal(err)
		}
		ColorError.Fprintf(c.out, "Write failed: %v\n", err)
		return nil
	}
	fmt.Fprintf(c.out, "Wrote %d bytes to allocation #%d.\n", n, i+1)
	c.dumpData(c.opts.DataFile)
	return nil
}

func (c *CLI) processSeedCommand(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: SEED <n>")
		return nil
	}
	n, ok := c.parseNumber(args[0], 0)
	if !ok {
		return nil
	}
	return c.Seed(n)
}

// Seed makes n allocations of random size and fills each with random words.
func (c *CLI) Seed(n int) error {
	maxSize := max(c.heap.Metrics().HeapSize/16, 1)
	for range n {
		before := len(c.allocations)
		if err := c.allocate(1 + c.opts.Rand.Intn(maxSize)); err != nil {
			return err
		}
		if len(c.allocations) == before {
			continue
		}
		a := c.allocations[len(c.allocations)-1]
		if _, err := c.heap.Write(a.handle, randomText(a.size)); err != nil {
			return c.fatal(err)
		}
	}
	level.Debug(c.logger).Log("msg", "seeded heap", "requested", n, "allocations", len(c.allocations))
	return nil
}

func (c *CLI) processCheckCommand() {
	if err := c.heap.Validate(); err != nil {
		ColorError.Fprintf(c.out, "Heap is inconsistent: %v\n", err)
		return
	}
	ColorOK.Fprintln(c.out, "Heap is consistent.")
}

func (c *CLI) processDumpCommand(args []string, def string, dump func(string)) {
	switch len(args) {
	case 0:
		dump(def)
	case 1:
		dump(args[0])
	default:
		fmt.Fprintln(c.out, "Usage: CHUNKS|DATA [file]")
	}
}

func (c *CLI) dumpChunksOnChange() {
	if c.opts.OnChange {
		c.dumpChunks(c.opts.ChunksFile)
	}
}

func (c *CLI) dumpChunks(path string) {
	c.reportDump(path, "chunk", render.DumpChunks(path, c.heap, c.opts.Height))
}

func (c *CLI) dumpData(path string) {
	c.reportDump(path, "data", render.DumpData(path, c.heap, c.opts.Height))
}

func (c *CLI) reportDump(path, kind string, err error) {
	if err != nil {
		level.Warn(c.logger).Log("msg", "bitmap dump failed", "kind", kind, "path", path, "err", err)
		ColorError.Fprintf(c.out, "Writing %s bitmap failed: %v\n", kind, err)
		return
	}
	level.Debug(c.logger).Log("msg", "bitmap dumped", "kind", kind, "path", path)
}

func (c *CLI) fatal(err error) error {
	ColorError.Fprintf(c.out, "Heap corrupted: %v\n", err)
	return err
}

// parseNumber accepts decimal, hex (0x) and octal (0) literals no smaller than lo.
func (c *CLI) parseNumber(s string, lo int) (int, bool) {
	n, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		ColorError.Fprintf(c.out, "Argument %q is not a number.\n", s)
		return 0, false
	}
	if int(n) < lo {
		ColorError.Fprintf(c.out, "Argument must be at least %d.\n", lo)
		return 0, false
	}
	return int(n), true
}

// parseIndex turns a 1-based allocation number into a list index.
func (c *CLI) parseIndex(s string) (int, bool) {
	n, ok := c.parseNumber(s, 1)
	if !ok {
		return 0, false
	}
	if n > len(c.allocations) {
		ColorError.Fprintf(c.out, "Allocation # must be in [1;%d].\n", len(c.allocations))
		return 0, false
	}
	return n - 1, true
}

func (c *CLI) removeAt(i int) {
	c.allocations = append(c.allocations[:i], c.allocations[i+1:]...)
}

func formatHandle(h myheap.Handle) string {
	if h == myheap.NilHandle {
		return "nil"
	}
	return fmt.Sprintf("0x%04x", int(h))
}

// Package config holds the myheap binary configuration. Values come from flag
// defaults, then an optional YAML file, then flags given on the command line.
package config

import (
	"flag"
	"io"
	"slices"
	"strings"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pavanmanishd/myheap"
	"github.com/pavanmanishd/myheap/internal/logging"
	"github.com/pavanmanishd/myheap/internal/render"
)

// Config is the root configuration.
type Config struct {
	ConfigFile  string `yaml:"-"`
	PrintConfig bool   `yaml:"-"`

	Heap    HeapConfig    `yaml:"heap"`
	Dump    DumpConfig    `yaml:"dump"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`

	// Seed is the number of random allocations made before the prompt opens.
	Seed int `yaml:"seed"`
}

// HeapConfig configures the simulated allocator.
type HeapConfig struct {
	Size         int             `yaml:"size"`
	PointerWidth int             `yaml:"pointer_width"`
	Strategy     myheap.Strategy `yaml:"strategy"`
	Alignment    int             `yaml:"alignment"`
}

// DumpConfig configures the bitmap dumps.
type DumpConfig struct {
	Height     int    `yaml:"height"`
	ChunksFile string `yaml:"chunks_file"`
	DataFile   string `yaml:"data_file"`
	OnChange   bool   `yaml:"on_change"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

// RegisterFlags registers every setting on f and resets c to the defaults.
func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.ConfigFile, "config.file", "", "YAML file to load settings from. Flags given on the command line take precedence.")
	f.BoolVar(&c.PrintConfig, "print-config-stderr", false, "Dump the entire configuration to stderr as YAML.")
	c.Heap.RegisterFlags(f)
	c.Dump.RegisterFlags(f)
	c.Log.RegisterFlags(f)
	c.Metrics.RegisterFlags(f)
	f.IntVar(&c.Seed, "seed", 0, "Number of random allocations to make on startup.")
}

func (c *HeapConfig) RegisterFlags(f *flag.FlagSet) {
	f.IntVar(&c.Size, "heap.size", myheap.DefaultHeapSize, "Size of the simulated heap in bytes.")
	f.IntVar(&c.PointerWidth, "heap.pointer-width", myheap.PointerWidth, "Bookkeeping bytes per chunk; the chunk table holds heap.size / heap.pointer-width entries.")
	c.Strategy = myheap.BestFit
	f.Var(&c.Strategy, "heap.strategy", "Placement strategy: best-fit or first-fit.")
	f.IntVar(&c.Alignment, "heap.alignment", 1, "Start offset alignment for first-fit.")
}

func (c *DumpConfig) RegisterFlags(f *flag.FlagSet) {
	f.IntVar(&c.Height, "dump.height", render.DefaultHeight, "Height in pixels of the dumped bitmaps.")
	f.StringVar(&c.ChunksFile, "dump.chunks-file", render.DefaultChunksFile, "Path of the chunk bitmap.")
	f.StringVar(&c.DataFile, "dump.data-file", render.DefaultDataFile, "Path of the raw data bitmap.")
	f.BoolVar(&c.OnChange, "dump.on-change", true, "Rewrite the chunk bitmap after every allocation and free.")
}

func (c *LogConfig) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.Level, "log.level", "info", "Only log messages with the given severity or above. Valid levels: ["+strings.Join(logging.Levels, ", ")+"]")
	f.StringVar(&c.Format, "log.format", "logfmt", "Output log messages in the given format. Valid formats: ["+strings.Join(logging.Formats, ", ")+"]")
}

func (c *MetricsConfig) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.ListenAddress, "metrics.listen-address", "", "Address to serve /metrics on. Empty disables the endpoint.")
}

// Validate checks the configuration for values the binary cannot run with.
func (c *Config) Validate() error {
	if c.Heap.Size <= 0 {
		return errors.Errorf("heap.size must be positive, got %d", c.Heap.Size)
	}
	if c.Heap.PointerWidth <= 0 {
		return errors.Errorf("heap.pointer_width must be positive, got %d", c.Heap.PointerWidth)
	}
	if c.Heap.Alignment <= 0 {
		return errors.Errorf("heap.alignment must be positive, got %d", c.Heap.Alignment)
	}
	if c.Heap.Strategy.String() == "unknown" {
		return errors.Errorf("heap.strategy %d is not a known strategy", c.Heap.Strategy)
	}
	if c.Dump.Height <= 0 {
		return errors.Errorf("dump.height must be positive, got %d", c.Dump.Height)
	}
	if c.Dump.ChunksFile == "" || c.Dump.DataFile == "" {
		return errors.New("dump.chunks_file and dump.data_file must be set")
	}
	if !slices.Contains(logging.Levels, strings.ToLower(c.Log.Level)) {
		return errors.Errorf("log.level %q is not one of %s", c.Log.Level, strings.Join(logging.Levels, ", "))
	}
	if !slices.Contains(logging.Formats, strings.ToLower(c.Log.Format)) {
		return errors.Errorf("log.format %q is not one of %s", c.Log.Format, strings.Join(logging.Formats, ", "))
	}
	if c.Seed < 0 {
		return errors.Errorf("seed must not be negative, got %d", c.Seed)
	}
	return nil
}

// Print writes c to w as YAML.
func (c *Config) Print(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return enc.Close()
}

// AllocatorOptions translates the heap section into allocator options.
func (c *Config) AllocatorOptions(logger log.Logger) []myheap.Option {
	return []myheap.Option{
		myheap.WithHeapSize(c.Heap.Size),
		myheap.WithPointerWidth(c.Heap.PointerWidth),
		myheap.WithStrategy(c.Heap.Strategy),
		myheap.WithAlignment(c.Heap.Alignment),
		myheap.WithLogger(logger),
	}
}

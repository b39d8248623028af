package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/myheap"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "myheap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("myheap", nil, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, HeapConfig{
		Size:         myheap.DefaultHeapSize,
		PointerWidth: myheap.PointerWidth,
		Strategy:     myheap.BestFit,
		Alignment:    1,
	}, cfg.Heap)
	assert.Equal(t, DumpConfig{
		Height:     10,
		ChunksFile: "heap_chunks_dump.bmp",
		DataFile:   "heap_data_dump.bmp",
		OnChange:   true,
	}, cfg.Dump)
	assert.Equal(t, LogConfig{Level: "info", Format: "logfmt"}, cfg.Log)
	assert.Empty(t, cfg.Metrics.ListenAddress)
	assert.Zero(t, cfg.Seed)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, `
heap:
  size: 512
  strategy: first-fit
  alignment: 8
dump:
  on_change: false
log:
  level: debug
seed: 5
`)

	cfg, err := Load("myheap", []string{"-config.file=" + path}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, 512, cfg.Heap.Size)
	assert.Equal(t, myheap.FirstFit, cfg.Heap.Strategy)
	assert.Equal(t, 8, cfg.Heap.Alignment)
	assert.Equal(t, myheap.PointerWidth, cfg.Heap.PointerWidth, "keys missing from the file keep their defaults")
	assert.False(t, cfg.Dump.OnChange)
	assert.Equal(t, 10, cfg.Dump.Height)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "logfmt", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Seed)
}

func TestLoadFlagsOverrideYAML(t *testing.T) {
	path := writeFile(t, `
heap:
  size: 512
  strategy: first-fit
log:
  level: debug
`)

	cfg, err := Load("myheap", []string{
		"-config.file", path,
		"-heap.strategy=best-fit",
		"-log.level=warn",
		"-dump.height=3",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Heap.Size, "not given as a flag, so the file wins")
	assert.Equal(t, myheap.BestFit, cfg.Heap.Strategy)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Dump.Height)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load("myheap", []string{"-config.file=" + writeFile(t, "")}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, myheap.DefaultHeapSize, cfg.Heap.Size)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		args []string
		msg  string
	}{
		{"unknown key", "heap:\n  sise: 10\n", nil, "field sise not found"},
		{"bad strategy in file", "heap:\n  strategy: worst-fit\n", nil, `unknown strategy "worst-fit"`},
		{"bad strategy flag", "", []string{"-heap.strategy=worst-fit"}, `unknown strategy "worst-fit"`},
		{"unknown flag", "", []string{"-heap.sise=10"}, "flag provided but not defined"},
		{"zero size", "", []string{"-heap.size=0"}, "heap.size must be positive"},
		{"zero height", "dump:\n  height: 0\n", nil, "dump.height must be positive"},
		{"bad level", "", []string{"-log.level=trace"}, `log.level "trace" is not one of`},
		{"bad format", "log:\n  format: xml\n", nil, `log.format "xml" is not one of`},
		{"negative seed", "", []string{"-seed=-1"}, "seed must not be negative"},
		{"positional args", "", []string{"extra"}, "unexpected arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.yaml != "" {
				args = append([]string{"-config.file=" + writeFile(t, tt.yaml)}, args...)
			}
			_, err := Load("myheap", args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("myheap", []string{"-config.file=" + filepath.Join(t.TempDir(), "nope.yaml")}, &bytes.Buffer{})
	require.ErrorContains(t, err, "sourcing: reading config file")
}

func TestLoadHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := Load("myheap", []string{"-h"}, &out)
	require.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, out.String(), "-heap.strategy")
}

func TestUnmarshalPanicsWithoutSources(t *testing.T) {
	assert.Panics(t, func() { _ = Unmarshal(&Config{}) })
}

func TestAllocatorOptions(t *testing.T) {
	cfg, err := Load("myheap", []string{"-heap.size=64", "-heap.pointer-width=4", "-heap.strategy=first-fit"}, &bytes.Buffer{})
	require.NoError(t, err)

	heap := myheap.New(cfg.AllocatorOptions(log.NewNopLogger())...)
	assert.Equal(t, 64, heap.HeapSize())
	assert.Equal(t, 16, heap.Capacity())
	assert.Equal(t, myheap.FirstFit, heap.Strategy())
}

func TestPrintRoundTrips(t *testing.T) {
	cfg, err := Load("myheap", []string{"-heap.strategy=first-fit", "-heap.pointer-width=8", "-seed=3"}, &bytes.Buffer{})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, cfg.Print(&out))
	assert.Contains(t, out.String(), "strategy: first-fit")
	assert.Contains(t, out.String(), "chunks_file: heap_chunks_dump.bmp")
	assert.NotContains(t, out.String(), "configfile")

	loaded, err := Load("myheap", []string{"-config.file=" + writeFile(t, out.String())}, &bytes.Buffer{})
	require.NoError(t, err)
	loaded.ConfigFile = ""
	assert.Equal(t, cfg, loaded)
}

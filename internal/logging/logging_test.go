package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersByLevel(t *testing.T) {
	tests := []struct {
		level   string
		visible []string
	}{
		{"debug", []string{"debug", "info", "warn", "error"}},
		{"info", []string{"info", "warn", "error"}},
		{"", []string{"info", "warn", "error"}},
		{"WARN", []string{"warn", "error"}},
		{"error", []string{"error"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(&buf, tt.level, "logfmt")
			require.NoError(t, err)

			level.Debug(logger).Log("msg", "debug")
			level.Info(logger).Log("msg", "info")
			level.Warn(logger).Log("msg", "warn")
			level.Error(logger).Log("msg", "error")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.Len(t, lines, len(tt.visible))
			for i, want := range tt.visible {
				assert.Contains(t, lines[i], "level="+want)
				assert.Contains(t, lines[i], "msg="+want)
				assert.Contains(t, lines[i], "ts=")
				assert.Contains(t, lines[i], "caller=logging_test.go:")
			}
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	require.NoError(t, err)

	level.Info(logger).Log("msg", "hello", "size", 10)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, float64(10), entry["size"])
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "verbose", "logfmt")
	require.ErrorContains(t, err, `unknown log level "verbose"`)

	_, err = New(&bytes.Buffer{}, "info", "xml")
	require.ErrorContains(t, err, `unknown log format "xml"`)
}

func TestCheckFatal(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "logfmt")
	require.NoError(t, err)

	assert.False(t, CheckFatal(logger, "loading config", nil))
	assert.Empty(t, buf.String())

	assert.True(t, CheckFatal(logger, "loading config", errors.New("boom")))
	assert.Contains(t, buf.String(), `msg="loading config"`)
	assert.Contains(t, buf.String(), "err=boom")
}

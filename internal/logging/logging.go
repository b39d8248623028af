// Package logging builds the go-kit logger shared by the allocator and the CLI.
package logging

import (
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Supported values for the log.level and log.format settings.
var (
	Levels  = []string{"debug", "info", "warn", "error"}
	Formats = []string{"logfmt", "json"}
)

// New returns a logger writing to w in the given format, dropping entries
// below lvl. Every entry carries a UTC timestamp and the caller.
func New(w io.Writer, lvl, format string) (log.Logger, error) {
	filter, err := levelOption(lvl)
	if err != nil {
		return nil, err
	}

	var logger log.Logger
	switch strings.ToLower(format) {
	case "", "logfmt":
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	case "json":
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	default:
		return nil, errors.Errorf("unknown log format %q, expected one of %s", format, strings.Join(Formats, ", "))
	}

	logger = level.NewFilter(logger, filter)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}

func levelOption(lvl string) (level.Option, error) {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	}
	return nil, errors.Errorf("unknown log level %q, expected one of %s", lvl, strings.Join(Levels, ", "))
}

// CheckFatal logs err at error level and reports whether the caller should
// exit. location names the step that failed.
func CheckFatal(logger log.Logger, location string, err error) bool {
	if err == nil {
		return false
	}
	level.Error(logger).Log("msg", location, "err", err)
	return true
}

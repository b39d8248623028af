package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pavanmanishd/myheap"
	"github.com/pavanmanishd/myheap/internal/cli"
	"github.com/pavanmanishd/myheap/internal/config"
	"github.com/pavanmanishd/myheap/internal/logging"
	"github.com/pavanmanishd/myheap/internal/metrics"
)

func main() {
	cfg, err := config.Load(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed parsing config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed creating logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.PrintConfig {
		if err := cfg.Print(os.Stderr); err != nil {
			level.Error(logger).Log("msg", "failed to print config to stderr", "err", err.Error())
		}
	}

	reg := prometheus.NewRegistry()
	var heap *myheap.SafeAllocator
	m := metrics.NewAllocatorMetrics(reg, metrics.SourceFunc(func() myheap.Metrics { return heap.Metrics() }))
	heap = myheap.NewSafe(append(cfg.AllocatorOptions(logger), myheap.WithObserver(m))...)

	if cfg.Metrics.ListenAddress != "" {
		go serveMetrics(cfg.Metrics.ListenAddress, reg, logger)
	}

	prompt := cli.NewCLI(os.Stdin, os.Stdout, heap, cli.Options{
		Height:     cfg.Dump.Height,
		ChunksFile: cfg.Dump.ChunksFile,
		DataFile:   cfg.Dump.DataFile,
		OnChange:   cfg.Dump.OnChange,
		Logger:     logger,
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	})

	level.Info(logger).Log("msg", "starting myheap",
		"strategy", heap.Strategy(), "heap_size", heap.HeapSize(), "chunk_capacity", heap.Capacity())

	if cfg.Seed > 0 {
		if logging.CheckFatal(logger, "seeding heap", prompt.Seed(cfg.Seed)) {
			os.Exit(1)
		}
	}
	if logging.CheckFatal(logger, "running prompt", prompt.Start()) {
		os.Exit(1)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	level.Info(logger).Log("msg", "serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		level.Error(logger).Log("msg", "metrics server stopped", "err", err)
	}
}

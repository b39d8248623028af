// Package metrics exports allocator activity to Prometheus.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pavanmanishd/myheap"
)

const (
	namespace = "myheap"

	resultSuccess  = "success"
	resultCapacity = "capacity_exceeded"
	resultNoFit    = "no_fit"
	resultInvalid  = "invalid"
	resultFatal    = "fatal"
)

// Source is what the gauges read on every scrape. Both *myheap.Allocator and
// *myheap.SafeAllocator satisfy it; only the latter may be scraped while in use.
type Source interface {
	Metrics() myheap.Metrics
}

// SourceFunc adapts a function to Source, for allocators that are built after
// their metrics.
type SourceFunc func() myheap.Metrics

// Metrics implements Source.
func (f SourceFunc) Metrics() myheap.Metrics { return f() }

// AllocatorMetrics counts allocator operations by result and exposes the
// allocator's usage as gauges. It implements myheap.Observer.
type AllocatorMetrics struct {
	allocations *prometheus.CounterVec
	frees       *prometheus.CounterVec
	bytes       prometheus.Counter
}

// NewAllocatorMetrics creates and registers the allocator metrics. The gauges
// call src.Metrics on every collection.
func NewAllocatorMetrics(reg prometheus.Registerer, src Source) *AllocatorMetrics {
	m := &AllocatorMetrics{
		allocations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "allocations_total",
				Help:      "Total number of allocation requests by result.",
			},
			[]string{"result"},
		),
		frees: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frees_total",
				Help:      "Total number of free requests by result.",
			},
			[]string{"result"},
		),
		bytes: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "allocated_bytes_total",
				Help:      "Total number of bytes handed out by successful allocations.",
			},
		),
	}

	gauge := func(name, help string, value func(myheap.Metrics) float64) {
		promauto.With(reg).NewGaugeFunc(
			prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help},
			func() float64 { return value(src.Metrics()) },
		)
	}
	gauge("heap_size_bytes", "Size of the simulated heap.", func(s myheap.Metrics) float64 { return float64(s.HeapSize) })
	gauge("in_use_bytes", "Bytes covered by allocated chunks.", func(s myheap.Metrics) float64 { return float64(s.SizeInUse) })
	gauge("largest_free_bytes", "Largest request that would fit right now.", func(s myheap.Metrics) float64 { return float64(s.LargestFree) })
	gauge("chunks", "Entries in the chunk table.", func(s myheap.Metrics) float64 { return float64(s.NumChunks) })
	gauge("chunk_capacity", "Maximum entries in the chunk table.", func(s myheap.Metrics) float64 { return float64(s.Capacity) })
	gauge("fragmentation_ratio", "1 - largest free / free bytes.", func(s myheap.Metrics) float64 { return s.Fragmentation })

	// Initialise every result so rate() works from the first scrape.
	for _, r := range []string{resultSuccess, resultCapacity, resultNoFit, resultInvalid, resultFatal} {
		m.allocations.WithLabelValues(r)
	}
	for _, r := range []string{resultSuccess, resultFatal} {
		m.frees.WithLabelValues(r)
	}
	return m
}

// ObserveAllocate implements myheap.Observer.
func (m *AllocatorMetrics) ObserveAllocate(size int, _ myheap.Handle, err error) {
	m.allocations.WithLabelValues(resultLabel(err)).Inc()
	if err == nil {
		m.bytes.Add(float64(size))
	}
}

// ObserveFree implements myheap.Observer.
func (m *AllocatorMetrics) ObserveFree(_ myheap.Handle, err error) {
	m.frees.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case myheap.IsFatal(err):
		return resultFatal
	case errors.Is(err, myheap.ErrCapacityExceeded):
		return resultCapacity
	case errors.Is(err, myheap.ErrNoSuitableChunk), errors.Is(err, myheap.ErrHeapExhausted):
		return resultNoFit
	default:
		return resultInvalid
	}
}

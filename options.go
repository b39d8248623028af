package myheap

import "github.com/go-kit/log"

// Option configures an Allocator.
type Option func(*options)

type options struct {
	heapSize     int
	pointerWidth int
	strategy     Strategy
	alignment    int
	logger       log.Logger
	observer     Observer
}

func defaultOptions() *options {
	return &options{
		heapSize:     DefaultHeapSize,
		pointerWidth: PointerWidth,
		strategy:     BestFit,
		alignment:    1,
		logger:       log.NewNopLogger(),
	}
}

// WithHeapSize sets the arena length. Non-positive values are ignored.
func WithHeapSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.heapSize = size
		}
	}
}

// WithPointerWidth overrides the per-chunk bookkeeping width used to size the
// chunk table. Non-positive values are ignored.
func WithPointerWidth(width int) Option {
	return func(o *options) {
		if width > 0 {
			o.pointerWidth = width
		}
	}
}

// WithStrategy selects the placement strategy.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithAlignment sets the probing step for FirstFit. BestFit ignores it.
func WithAlignment(align int) Option {
	return func(o *options) {
		if align > 0 {
			o.alignment = align
		}
	}
}

// WithLogger sets the logger used to report failures and, at debug level,
// every operation.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers a hook notified after every Allocate and Free.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// Observer is notified of allocator events. err is nil on success.
type Observer interface {
	ObserveAllocate(size int, h Handle, err error)
	ObserveFree(h Handle, err error)
}

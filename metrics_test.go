package myheap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorMetrics(t *testing.T) {
	tests := []struct {
		name        string
		opts        []Option
		largestFree int
		numChunks   int
	}{
		{"best-fit", []Option{WithStrategy(BestFit)}, 106, 3},
		{"first-fit", []Option{WithStrategy(FirstFit)}, 106, 1},
		// The 50-byte chunk lands on 104, so the gap in front of it is the largest.
		{"first-fit aligned", []Option{WithStrategy(FirstFit), WithAlignment(8)}, 104, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(append([]Option{WithPointerWidth(8)}, tt.opts...)...)

			m := a.Metrics()
			assert.Equal(t, 256, m.HeapSize)
			assert.Zero(t, m.SizeInUse)
			assert.Equal(t, 256, m.FreeBytes)
			assert.Equal(t, 256, m.LargestFree)
			assert.Zero(t, m.Utilization)
			assert.Zero(t, m.Fragmentation)

			first, err := a.Allocate(100)
			require.NoError(t, err)
			_, err = a.Allocate(50)
			require.NoError(t, err)
			require.NoError(t, a.Free(first))

			m = a.Metrics()
			assert.Equal(t, 50, m.SizeInUse)
			assert.Equal(t, 206, m.FreeBytes)
			assert.Equal(t, tt.largestFree, m.LargestFree)
			assert.Equal(t, tt.numChunks, m.NumChunks)
			assert.Equal(t, 32, m.Capacity)
			assert.InDelta(t, 50.0/256.0, m.Utilization, 1e-9)
			assert.InDelta(t, 1-float64(tt.largestFree)/206.0, m.Fragmentation, 1e-9)

			// The snapshot agrees with the individual accessors.
			assert.Equal(t, a.SizeInUse(), m.SizeInUse)
			assert.Equal(t, a.LargestFree(), m.LargestFree)
			assert.Equal(t, a.ChunkCount(), m.NumChunks)
		})
	}
}

func TestMetricsFullHeap(t *testing.T) {
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			a := newTestAllocator(s)
			_, err := a.Allocate(a.HeapSize())
			require.NoError(t, err)

			m := a.Metrics()
			assert.Equal(t, 1.0, m.Utilization)
			assert.Zero(t, m.FreeBytes)
			assert.Zero(t, m.LargestFree)
			assert.Zero(t, m.Fragmentation, "nothing free means nothing fragmented")
		})
	}
}

func TestMetricsAfterReset(t *testing.T) {
	a := newTestAllocator(BestFit)
	for range 5 {
		_, err := a.Allocate(7)
		require.NoError(t, err)
	}
	require.NotZero(t, a.SizeInUse())

	a.Reset()
	m := a.Metrics()
	assert.Zero(t, m.SizeInUse)
	assert.Equal(t, 1, m.NumChunks)
	assert.Equal(t, 256, m.LargestFree)
}

func TestFragmentationGrowsWithoutCoalescing(t *testing.T) {
	a := newTestAllocator(BestFit)

	var handles []Handle
	for range 8 {
		h, err := a.Allocate(32)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	for _, h := range handles {
		require.NoError(t, a.Free(h))
	}

	// Everything is free again but split into 32-byte pieces.
	assert.Equal(t, 256, a.FreeBytes())
	assert.Equal(t, 32, a.LargestFree())
	assert.InDelta(t, 0.875, a.Fragmentation(), 1e-9)

	_, err := a.Allocate(33)
	require.ErrorIs(t, err, ErrNoSuitableChunk)
}

func BenchmarkMetrics(b *testing.B) {
	for _, s := range strategies {
		a := New(WithPointerWidth(8), WithStrategy(s))
		for range 16 {
			if _, err := a.Allocate(8); err != nil {
				b.Fatal(err)
			}
		}

		b.Run(s.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				a.Metrics()
			}
		})
	}
}

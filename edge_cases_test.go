package myheap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRandomInterleavings drives both strategies through random allocate and
// free sequences and checks the heap invariants after every step.
func TestRandomInterleavings(t *testing.T) {
	for _, s := range strategies {
		for seed := int64(1); seed <= 20; seed++ {
			rng := rand.New(rand.NewSource(seed))
			a := newTestAllocator(s, WithAlignment(1+rng.Intn(4)))
			live := map[Handle]int{}

			for step := 0; step < 300; step++ {
				if len(live) > 0 && rng.Intn(3) == 0 {
					h := anyHandle(rng, live)
					require.NoError(t, a.Free(h), "seed %d step %d", seed, step)
					delete(live, h)
				} else {
					size := rng.Intn(48)
					h, err := a.Allocate(size)
					switch {
					case err != nil:
						require.False(t, IsFatal(err), "seed %d step %d: %v", seed, step, err)
					case size == 0:
						require.Equal(t, NilHandle, h)
					default:
						_, dup := live[h]
						require.False(t, dup, "seed %d step %d: handle %d issued twice", seed, step, h)
						require.GreaterOrEqual(t, int(h), 0)
						require.LessOrEqual(t, int(h)+size, a.HeapSize())
						live[h] = size
					}
				}
				checkInvariants(t, a)
				assertLiveChunks(t, a, live)
			}
		}
	}
}

func anyHandle(rng *rand.Rand, live map[Handle]int) Handle {
	k := rng.Intn(len(live))
	for h := range live {
		if k == 0 {
			return h
		}
		k--
	}
	panic("unreachable")
}

// assertLiveChunks checks that the allocated chunks are exactly the live handles.
func assertLiveChunks(t *testing.T, a *Allocator, live map[Handle]int) {
	t.Helper()
	got := map[Handle]int{}
	for _, c := range a.Chunks() {
		if c.State == StateAllocated {
			got[Handle(c.Start)] = c.Size
		}
	}
	require.Equal(t, live, got)
}

func TestTinyHeap(t *testing.T) {
	tests := []struct {
		strategy Strategy
		first    Handle
	}{
		{BestFit, 1},
		{FirstFit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			a := New(WithHeapSize(2), WithPointerWidth(1), WithStrategy(tt.strategy))
			require.Equal(t, 2, a.Capacity())

			h, err := a.Allocate(1)
			require.NoError(t, err)
			assert.Equal(t, tt.first, h)
			checkInvariants(t, a)

			_, err = a.Allocate(2)
			require.Error(t, err)

			require.NoError(t, a.Free(h))
			checkInvariants(t, a)
		})
	}
}

func TestSingleEntryTableRejectsBestFitAllocations(t *testing.T) {
	// The initial free chunk already fills a one-entry table.
	a := New(WithHeapSize(1), WithPointerWidth(8))
	require.Equal(t, 1, a.Capacity())

	_, err := a.Allocate(1)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	checkInvariants(t, a)
}

func TestFailedAllocationLeavesStateUntouched(t *testing.T) {
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			a := newTestAllocator(s)
			_, err := a.Allocate(200)
			require.NoError(t, err)

			chunks, data := a.Chunks(), a.Snapshot()
			_, err = a.Allocate(100)
			require.Error(t, err)
			assert.Equal(t, chunks, a.Chunks())
			assert.Equal(t, data, a.Snapshot())
			assert.NoError(t, a.Err(), "fit failures are not fatal")
		})
	}
}

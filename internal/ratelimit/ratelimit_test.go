package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowBurst(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{"burst covers initial calls", 1, 3, 3, 3},
		{"calls beyond burst are dropped", 1, 2, 5, 2},
		{"single token", 1, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := New(tt.rps, tt.burst)
			defer k.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if k.Allow("model-a") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestWaitThrottles(t *testing.T) {
	k := New(10, 1) // one token, then ~100ms per refill
	defer k.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, k.Wait(ctx, "model-a"))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "first call should not wait")

	start = time.Now()
	require.NoError(t, k.Wait(ctx, "model-a"))
	elapsed := time.Since(start)
	assert.Greater(t, elapsed, 80*time.Millisecond, "second call should be throttled")
	assert.Less(t, elapsed, 200*time.Millisecond)
}

func TestWaitContextCancelled(t *testing.T) {
	k := New(0.1, 1) // one token per ten seconds
	defer k.Stop()

	k.Allow("model-a")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, k.Wait(ctx, "model-a"))
}

func TestKeysAreIndependent(t *testing.T) {
	k := New(1, 1)
	defer k.Stop()

	k.Allow("model-a")
	assert.False(t, k.Allow("model-a"), "first key should be exhausted")
	assert.True(t, k.Allow("model-b"), "second key should be untouched")
}

func TestSweepEvictsIdleBuckets(t *testing.T) {
	k := New(1, 1)
	defer k.Stop()

	require.True(t, k.Allow("model-a"))
	require.False(t, k.Allow("model-a"), "burst should be spent")

	// Evict everything touched before a future cutoff; the key starts over
	// with a fresh burst.
	k.sweep(time.Now().Add(time.Second))

	assert.True(t, k.Allow("model-a"))
}

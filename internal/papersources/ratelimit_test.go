package papersources

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	t.Run("starts with a full bucket", func(t *testing.T) {
		rl := NewRateLimiter(5, 3)
		assert.InDelta(t, 3.0, rl.Tokens(), 0.1)
	})

	t.Run("non-positive rate disables limiting", func(t *testing.T) {
		rl := NewRateLimiter(0, 0)
		for i := 0; i < 100; i++ {
			require.True(t, rl.Allow())
		}
	})
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Run("paces requests beyond the burst", func(t *testing.T) {
		rl := NewRateLimiter(20, 1)
		ctx := context.Background()

		start := time.Now()
		for i := 0; i < 3; i++ {
			require.NoError(t, rl.Wait(ctx))
		}

		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("returns error when context is cancelled", func(t *testing.T) {
		rl := NewRateLimiter(0.1, 1)
		rl.Allow()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.Error(t, rl.Wait(ctx))
	})
}

func TestRateLimiter_SetRate(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Allow()
	assert.False(t, rl.Allow())

	rl.SetRate(0)
	assert.True(t, rl.Allow())
}

func TestRateLimiter_Concurrency(t *testing.T) {
	rl := NewRateLimiter(1000, 50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rl.Wait(context.Background())
		}()
	}
	wg.Wait()
}

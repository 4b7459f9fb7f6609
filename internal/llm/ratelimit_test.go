package llm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(rpm int) (*rateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := newRateLimiter(rpm)
	rl.now = clock.Now
	rl.lastRefill = clock.Now()
	return rl, clock
}

func TestRateLimiter(t *testing.T) {
	t.Run("burst up to capacity", func(t *testing.T) {
		rl, _ := newTestLimiter(5)

		for i := 0; i < 5; i++ {
			assert.Zero(t, rl.reserve(), "request %d should not wait", i+1)
		}
		assert.Equal(t, 12*time.Second, rl.reserve())
	})

	t.Run("refills over time", func(t *testing.T) {
		rl, clock := newTestLimiter(60)

		for i := 0; i < 60; i++ {
			require.Zero(t, rl.reserve())
		}
		require.NotZero(t, rl.reserve())

		clock.Advance(time.Second)
		assert.Zero(t, rl.reserve())
	})

	t.Run("never exceeds capacity", func(t *testing.T) {
		rl, clock := newTestLimiter(2)
		clock.Advance(time.Hour)

		assert.Zero(t, rl.reserve())
		assert.Zero(t, rl.reserve())
		assert.NotZero(t, rl.reserve())
	})

	t.Run("default rate limit", func(t *testing.T) {
		rl, _ := newTestLimiter(0)

		for i := 0; i < 60; i++ {
			require.Zero(t, rl.reserve())
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- rl.wait(ctx)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		err := <-done
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limiter canceled")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type echoClient struct {
	calls int
	mu    sync.Mutex
}

func (c *echoClient) Complete(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return prompt, nil
}

func TestRateLimitedClient(t *testing.T) {
	next := &echoClient{}
	client := NewRateLimitedClient(next, 100)
	defer client.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := client.Complete(context.Background(), "ping")
			assert.NoError(t, err)
			assert.Equal(t, "ping", out)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, next.calls)
}

package processor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"drover/internal/exchange"
)

func TestThrottleWithinRateCompletesSynchronously(t *testing.T) {
	th := NewThrottle(1000, 10, goroutineScheduler{})

	ex := exchange.New()
	sync := th.Process(context.Background(), ex, func(doneSync bool) {
		assert.True(t, doneSync)
	})

	assert.True(t, sync)
}

func TestThrottleDefersBeyondBurst(t *testing.T) {
	th := NewThrottle(50, 1, goroutineScheduler{})

	first := exchange.New()
	assert.True(t, th.Process(context.Background(), first, func(bool) {}))

	second := exchange.New()
	done := make(chan struct{})
	start := time.Now()
	sync := th.Process(context.Background(), second, func(doneSync bool) {
		assert.False(t, doneSync)
		close(done)
	})

	assert.False(t, sync, "a throttled exchange must not complete synchronously")
	waitDone(t, done)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond,
		"the deferred continuation waits out the reservation delay")
}

func TestThrottledRouteContinues(t *testing.T) {
	tr := &trace{}
	th := NewThrottle(100, 1, goroutineScheduler{})
	route := NewPipeline(step("before", tr), th, step("after", tr))

	// Exhaust the burst so the second exchange takes the deferred path.
	route.Process(context.Background(), exchange.New(), func(bool) {})

	done := make(chan struct{})
	route.Process(context.Background(), exchange.New(), func(bool) { close(done) })
	waitDone(t, done)

	assert.Equal(t, []string{"before", "after", "before", "after"}, tr.get())
}

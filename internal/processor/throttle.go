package processor

import (
	"context"

	"golang.org/x/time/rate"

	"drover/internal/exchange"
)

// Throttle bounds the rate at which exchanges pass this point of the
// route. Instead of sleeping on a worker it reserves a slot and defers its
// continuation by the reservation delay, so a throttled route holds no
// thread while it waits.
type Throttle struct {
	limiter   *rate.Limiter
	scheduler Scheduler
}

func NewThrottle(perSecond float64, burst int, scheduler Scheduler) *Throttle {
	return &Throttle{
		limiter:   rate.NewLimiter(rate.Limit(perSecond), burst),
		scheduler: scheduler,
	}
}

func (t *Throttle) Process(ctx context.Context, ex *exchange.Exchange, done Callback) bool {
	if t.limiter.Allow() {
		done(true)
		return true
	}

	r := t.limiter.Reserve()
	t.scheduler.Schedule(r.Delay(), func() {
		done(false)
	})
	return false
}

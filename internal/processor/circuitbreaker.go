package processor

import (
	"context"

	"drover/internal/exchange"
	"drover/pkg/circuitbreaker"
	"drover/pkg/errors"
)

// CircuitBreaker guards its child: while the circuit is open, exchanges
// fail fast with kind "resource.rejected" instead of reaching a
// collaborator that is already struggling. Outcomes are reported to the
// breaker from the child's continuation, whichever context it fires on.
type CircuitBreaker struct {
	breaker *circuitbreaker.Wrapper
	child   Processor
}

func NewCircuitBreaker(breaker *circuitbreaker.Wrapper, child Processor) *CircuitBreaker {
	return &CircuitBreaker{breaker: breaker, child: child}
}

func (c *CircuitBreaker) Process(ctx context.Context, ex *exchange.Exchange, done Callback) bool {
	report, err := c.breaker.Allow()
	if err != nil {
		ex.SetErr(errors.NewProcessingFailure(errors.KindResourceRejected, err))
		done(true)
		return true
	}

	sync := c.child.Process(ctx, ex, func(doneSync bool) {
		report(!ex.Failed())
		if doneSync {
			return
		}
		done(false)
	})
	if !sync {
		return false
	}
	done(true)
	return true
}

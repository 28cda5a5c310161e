package errorhandler

import (
	"context"

	"drover/internal/exchange"
	"drover/internal/logger"
	"drover/internal/processor"
	"drover/pkg/errors"
	"drover/pkg/metrics"
)

// StepHandler intercepts failures surfacing from the step it wraps and
// drives them through clause selection: redelivery of the failing step
// (never the whole pipeline), recovery via a compensation sub-route, or
// propagation. Redelivery delays are realized by deferred scheduling, so
// a waiting exchange never holds a worker.
type StepHandler struct {
	child     processor.Processor
	scheduler processor.Scheduler
	log       logger.Logger
}

func Wrap(child processor.Processor, scheduler processor.Scheduler, log logger.Logger) *StepHandler {
	if log == nil {
		log = logger.NopLogger()
	}
	return &StepHandler{child: child, scheduler: scheduler, log: log}
}

func (h *StepHandler) Process(ctx context.Context, ex *exchange.Exchange, done processor.Callback) bool {
	return h.attempt(ctx, ex, done, true)
}

func (h *StepHandler) attempt(ctx context.Context, ex *exchange.Exchange, done processor.Callback, onStack bool) bool {
	sync := h.child.Process(ctx, ex, func(doneSync bool) {
		if doneSync {
			return
		}
		h.afterAttempt(ctx, ex, done, false)
	})
	if !sync {
		return false
	}
	return h.afterAttempt(ctx, ex, done, onStack)
}

// afterAttempt runs once per child invocation, on whatever execution
// context the child completed on. It either finishes the step or
// schedules a redelivery and returns without completing.
func (h *StepHandler) afterAttempt(ctx context.Context, ex *exchange.Exchange, done processor.Callback, onStack bool) bool {
	err := ex.Err()
	if err == nil || ex.IsCancelled() {
		ex.RemoveProperty(exchange.PropRedeliveryCounter)
		done(onStack)
		return onStack
	}

	clause, depth := selectClause(ctx, ex, err)
	if clause == nil {
		done(onStack)
		return onStack
	}

	kind := errors.KindOf(err)
	if clause.Policy != nil && clause.Policy.MaxRedeliveries > 0 {
		redelivered := 0
		if v, ok := ex.Property(exchange.PropRedeliveryCounter); ok {
			redelivered, _ = v.(int)
		}

		if redelivered < clause.Policy.MaxRedeliveries {
			attempt := redelivered + 1
			ex.SetProperty(exchange.PropRedeliveryCounter, attempt)
			ex.ClearErr()

			delay := clause.Policy.NextDelay(attempt)
			metrics.RedeliveriesTotal.WithLabelValues(string(kind)).Inc()
			h.log.DebugwCtx(ctx, "Scheduling redelivery",
				"exchange_id", ex.ID(),
				"kind", string(kind),
				"attempt", attempt,
				"delay", delay.String(),
			)

			h.scheduler.Schedule(delay, func() {
				h.attempt(ctx, ex, done, false)
			})
			return false
		}

		ex.RemoveProperty(exchange.PropRedeliveryCounter)
		ex.SetErr(&errors.RedeliveryExhausted{Attempts: redelivered + 1, Cause: err})
		metrics.RedeliveriesExhaustedTotal.WithLabelValues(string(kind)).Inc()
		h.log.WarnwCtx(ctx, "Redelivery exhausted",
			"exchange_id", ex.ID(),
			"kind", string(kind),
			"attempts", redelivered+1,
		)
		done(onStack)
		return onStack
	}

	switch clause.Action {
	case Handled, Continued:
		return h.recover(ctx, ex, clause, depth, err, done, onStack)
	default:
		done(onStack)
		return onStack
	}
}

// recover clears the failure and runs the clause's compensation
// sub-route. For Handled the unwind marker is planted afterwards so
// routing resumes past the scope that declared the clause; for Continued
// routing resumes at the step after the failing one. A failure inside the
// compensation sub-route propagates as-is.
func (h *StepHandler) recover(ctx context.Context, ex *exchange.Exchange, clause *Clause, depth int, cause error, done processor.Callback, onStack bool) bool {
	ex.ClearErr()
	ex.RemoveProperty(exchange.PropRedeliveryCounter)
	ex.SetProperty(exchange.PropFailureCaught, cause)

	finish := func(stk bool) bool {
		if clause.Action == Handled && !ex.Failed() {
			ex.SetProperty(exchange.PropUnwindDepth, depth)
		}
		done(stk)
		return stk
	}

	if clause.Handler == nil {
		return finish(onStack)
	}

	sync := clause.Handler.Process(ctx, ex, func(doneSync bool) {
		if doneSync {
			return
		}
		finish(false)
	})
	if !sync {
		return false
	}
	return finish(onStack)
}

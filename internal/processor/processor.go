// Package processor implements the composable steps a route is built
// from. Every processor follows the same asynchronous contract: Process
// either completes the exchange on the caller's stack and returns true, or
// returns false and guarantees the callback fires exactly once when the
// asynchronous portion completes, from whatever execution context that
// completion arrives on. Structural processors (pipeline, choice,
// multicast, enrich) compose the contract recursively; only leaves backed
// by real I/O ever suspend.
//
// Failures travel through the exchange's exception slot, never the call
// stack: by the time a failure is observed, control may already have
// migrated to another goroutine.
package processor

import (
	"context"
	"time"

	"drover/internal/exchange"
)

// Callback is the continuation representing the rest of the route.
// doneSync is true when the callback is invoked on the stack of the
// Process call that installed it, letting composites keep looping instead
// of scheduling a continuation hop.
type Callback func(doneSync bool)

type Processor interface {
	// Process drives the exchange through this step. The return value
	// is true when the step (and the callback) completed synchronously
	// before Process returned.
	Process(ctx context.Context, ex *exchange.Exchange, done Callback) bool
}

// Scheduler is the slice of the execution engine that processors need:
// running a continuation on a pooled worker and deferring one without
// holding a worker while the delay elapses. The engine package provides
// the implementation.
type Scheduler interface {
	Submit(fn func())
	Schedule(delay time.Duration, fn func())
}

// Do adapts a synchronous function into a leaf processor. A returned
// error lands in the exchange's exception slot.
func Do(fn func(ctx context.Context, ex *exchange.Exchange) error) Processor {
	return doFunc(fn)
}

type doFunc func(ctx context.Context, ex *exchange.Exchange) error

func (f doFunc) Process(ctx context.Context, ex *exchange.Exchange, done Callback) bool {
	if err := f(ctx, ex); err != nil {
		ex.SetErr(err)
	}
	done(true)
	return true
}

// continueRouting reports whether routing may advance past a composition
// boundary. Routing stops on failure, cancellation, and while a handled
// failure is unwinding to its exception scope.
func continueRouting(ex *exchange.Exchange) bool {
	if ex.Failed() || ex.IsCancelled() {
		return false
	}
	if _, unwinding := ex.Property(exchange.PropUnwindDepth); unwinding {
		return false
	}
	return true
}

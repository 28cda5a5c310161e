// Package endpoint defines the contract between the routing engine and
// protocol-specific transports. Producers perform the actual send and
// report completion through the engine's continuation; consumers originate
// exchanges and submit them to a route's entry processor. The engine never
// sees protocol details, only this contract.
package endpoint

import (
	"context"

	"drover/internal/exchange"
)

// DoneFunc mirrors the processor callback contract: invoked exactly once,
// with doneSync true only when the send completed on the caller's stack.
type DoneFunc func(doneSync bool)

// Producer performs a protocol-specific send. Failures go into the
// exchange's exception slot, never a return value, so the engine observes
// them regardless of which execution context completion arrives on.
type Producer interface {
	Send(ctx context.Context, ex *exchange.Exchange, done DoneFunc) bool
	Close() error
}

// Consumer originates exchanges from an external source and hands them to
// the submit function for routing. Start blocks until the context is
// cancelled or the source fails.
type Consumer interface {
	Start(ctx context.Context, submit func(ctx context.Context, ex *exchange.Exchange)) error
	Close() error
}

package deadletter

import (
	"context"
	"time"

	"drover/internal/exchange"
	"drover/internal/logger"
	"drover/internal/processor"
	"drover/pkg/errors"
	"drover/pkg/metrics"
)

// Archiver is the terminal processor of a dead letter channel: it records
// the failure the enclosing clause caught and completes. Archiving is best
// effort; a store outage must not resurrect the already-handled failure.
type Archiver struct {
	store   Store
	routeID string
	logger  logger.Logger
}

func NewArchiver(store Store, routeID string, log logger.Logger) *Archiver {
	return &Archiver{store: store, routeID: routeID, logger: log}
}

func (a *Archiver) Process(ctx context.Context, ex *exchange.Exchange, done processor.Callback) bool {
	cause := ex.Err()
	if v, ok := ex.Property(exchange.PropFailureCaught); ok {
		if err, ok := v.(error); ok {
			cause = err
		}
	}
	if cause == nil {
		done(true)
		return true
	}

	kind := errors.KindOf(cause)
	entry := Entry{
		ID:       ex.ID(),
		RouteID:  a.routeID,
		Kind:     string(kind),
		Error:    cause.Error(),
		Body:     ex.In().Body(),
		Headers:  ex.In().Headers(),
		FailedAt: time.Now().UTC(),
	}

	if exhausted, ok := errors.AsExhausted(cause); ok {
		entry.Redelivered = exhausted.Attempts - 1
	}

	go func() {
		if err := a.store.Save(ctx, entry); err != nil {
			a.logger.ErrorwCtx(ctx, "Failed to archive dead letter",
				"exchange_id", ex.ID(),
				"kind", string(kind),
				"error", err,
			)
		} else {
			metrics.DeadLettersTotal.WithLabelValues(string(kind)).Inc()
		}
		done(false)
	}()
	return false
}

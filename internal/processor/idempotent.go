package processor

import (
	"context"
	"fmt"

	"drover/internal/exchange"
	"drover/internal/idempotent"
	"drover/pkg/errors"
)

// KeyFunc extracts the idempotency key from an exchange.
type KeyFunc func(ex *exchange.Exchange) (string, error)

// HeaderKey extracts the key from a message header.
func HeaderKey(name string) KeyFunc {
	return func(ex *exchange.Exchange) (string, error) {
		v, ok := ex.In().Header(name)
		if !ok {
			return "", fmt.Errorf("idempotency header %q missing", name)
		}
		return fmt.Sprintf("%v", v), nil
	}
}

// ExchangeIDKey keys on the exchange id itself.
func ExchangeIDKey() KeyFunc {
	return func(ex *exchange.Exchange) (string, error) {
		return ex.ID(), nil
	}
}

// IdempotentConsumer skips exchanges whose key the repository has already
// seen. The key is added eagerly, before the child runs, and removed again
// when the child fails, so a redelivered failure gets another chance.
type IdempotentConsumer struct {
	key   KeyFunc
	repo  idempotent.Repository
	child Processor
}

func NewIdempotentConsumer(key KeyFunc, repo idempotent.Repository, child Processor) *IdempotentConsumer {
	return &IdempotentConsumer{key: key, repo: repo, child: child}
}

func (c *IdempotentConsumer) Process(ctx context.Context, ex *exchange.Exchange, done Callback) bool {
	key, err := c.key(ex)
	if err != nil {
		ex.SetErr(errors.NewProcessingFailure(errors.KindProcessing, err))
		done(true)
		return true
	}

	added, err := c.repo.Add(ctx, key)
	if err != nil {
		ex.SetErr(errors.NewProcessingFailure(errors.KindResourceUnavailable, err))
		done(true)
		return true
	}
	if !added {
		ex.SetProperty(exchange.PropDuplicate, true)
		done(true)
		return true
	}

	sync := c.child.Process(ctx, ex, func(doneSync bool) {
		if doneSync {
			return
		}
		c.confirm(ctx, ex, key)
		done(false)
	})
	if !sync {
		return false
	}
	c.confirm(ctx, ex, key)
	done(true)
	return true
}

// confirm rolls the eager add back when the child failed. The removal is
// best effort: a failed removal leaves the key in place and the exchange
// keeps its original failure.
func (c *IdempotentConsumer) confirm(ctx context.Context, ex *exchange.Exchange, key string) {
	if ex.Failed() {
		_ = c.repo.Remove(ctx, key)
	}
}

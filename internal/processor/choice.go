package processor

import (
	"context"

	"drover/internal/exchange"
	"drover/internal/predicate"
	"drover/pkg/errors"
)

// When pairs a predicate with the branch it guards.
type When struct {
	Predicate predicate.Predicate
	Processor Processor
}

// Choice routes the exchange into the first branch whose predicate
// matches, or the otherwise branch when none does. Predicates are
// evaluated eagerly on the caller's stack; they must not suspend.
type Choice struct {
	branches  []When
	otherwise Processor
}

func NewChoice(branches []When, otherwise Processor) *Choice {
	return &Choice{branches: branches, otherwise: otherwise}
}

func (c *Choice) Process(ctx context.Context, ex *exchange.Exchange, done Callback) bool {
	for _, branch := range c.branches {
		matched, err := branch.Predicate.Matches(ctx, ex)
		if err != nil {
			ex.SetErr(errors.NewProcessingFailure(errors.KindPredicate, err))
			done(true)
			return true
		}
		if matched {
			return branch.Processor.Process(ctx, ex, done)
		}
	}

	if c.otherwise != nil {
		return c.otherwise.Process(ctx, ex, done)
	}

	done(true)
	return true
}

package errorhandler

import (
	"context"
	"sort"

	"drover/internal/exchange"
	"drover/internal/predicate"
	"drover/internal/processor"
	"drover/pkg/errors"
)

type Action int

const (
	// Propagate leaves the exception slot set and lets the failure
	// surface through the root completion callback.
	Propagate Action = iota

	// Handled clears the failure, runs the compensation sub-route, and
	// resumes routing after the scope that declared the clause.
	Handled

	// Continued clears the failure, runs the compensation sub-route, and
	// resumes routing at the step after the one that failed.
	Continued
)

// Clause matches a category of failures inside an exception scope and
// decides what happens to them.
type Clause struct {
	// Kinds are the failure categories this clause catches. A kind
	// catches itself and every dot-separated descendant. Empty catches
	// everything.
	Kinds []errors.Kind

	// When optionally narrows the clause beyond the kind match. A clause
	// whose guard does not match is skipped during selection.
	When predicate.Predicate

	// Policy enables bounded redelivery of the failing step before the
	// action applies. Nil means the action applies on first failure.
	Policy *Policy

	Action Action

	// Handler is the compensation sub-route run for Handled and
	// Continued. It observes the original failure through the
	// failure-caught exchange property.
	Handler processor.Processor
}

// specificity is the strongest kind match this clause has for k, or -1
// when no kind matches.
func (c *Clause) specificity(k errors.Kind) int {
	if len(c.Kinds) == 0 {
		return 0
	}
	best := -1
	for _, kind := range c.Kinds {
		if kind.Matches(k) && kind.Specificity() > best {
			best = kind.Specificity()
		}
	}
	return best
}

// Scope is an ordered set of clauses established by a structural
// processor for the duration of its sub-graph.
type Scope struct {
	Clauses []*Clause
}

func NewScope(clauses ...*Clause) *Scope {
	return &Scope{Clauses: clauses}
}

// scopeFrame is one entry of the per-exchange scope stack. Depth is
// 1-based from the outermost scope and identifies the unwind target for
// handled failures.
type scopeFrame struct {
	scope *Scope
	depth int
}

func scopeStack(ex *exchange.Exchange) []scopeFrame {
	if v, ok := ex.Property(exchange.PropScopeStack); ok {
		if stack, ok := v.([]scopeFrame); ok {
			return stack
		}
	}
	return nil
}

// selectClause walks the active scope stack innermost first and picks the
// clause for err. Within a scope the most specific kind match wins, ties
// broken by declaration order; a clause whose guard does not match is
// skipped. Exhausted redeliveries never match: they always propagate.
func selectClause(ctx context.Context, ex *exchange.Exchange, err error) (*Clause, int) {
	if errors.IsExhausted(err) {
		return nil, 0
	}

	kind := errors.KindOf(err)
	stack := scopeStack(ex)
	for i := len(stack) - 1; i >= 0; i-- {
		frame := stack[i]

		type candidate struct {
			clause *Clause
			spec   int
			index  int
		}
		var candidates []candidate
		for idx, c := range frame.scope.Clauses {
			if spec := c.specificity(kind); spec >= 0 {
				candidates = append(candidates, candidate{clause: c, spec: spec, index: idx})
			}
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].spec > candidates[b].spec
		})

		for _, cand := range candidates {
			if cand.clause.When != nil {
				matched, perr := cand.clause.When.Matches(ctx, ex)
				if perr != nil || !matched {
					continue
				}
			}
			return cand.clause, frame.depth
		}
	}
	return nil, 0
}

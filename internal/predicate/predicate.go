// Package predicate holds the pure, non-suspending functions the engine
// evaluates eagerly: choice branches, exception clause guards, and filter
// conditions. Predicates must not mutate the exchange and must not block;
// anything that needs I/O belongs in a processor.
package predicate

import (
	"context"

	"drover/internal/exchange"
)

type Predicate interface {
	Matches(ctx context.Context, ex *exchange.Exchange) (bool, error)
}

// Func adapts a plain function to the Predicate interface.
type Func func(ex *exchange.Exchange) bool

func (f Func) Matches(_ context.Context, ex *exchange.Exchange) (bool, error) {
	return f(ex), nil
}

// Header matches when the named header equals want. Values are compared
// with ==, so numeric header types must match exactly.
func Header(name string, want interface{}) Predicate {
	return Func(func(ex *exchange.Exchange) bool {
		v, ok := ex.In().Header(name)
		return ok && v == want
	})
}

// HeaderExists matches when the named header is present, whatever its
// value.
func HeaderExists(name string) Predicate {
	return Func(func(ex *exchange.Exchange) bool {
		_, ok := ex.In().Header(name)
		return ok
	})
}

// Property matches when the named exchange property equals want.
func Property(name string, want interface{}) Predicate {
	return Func(func(ex *exchange.Exchange) bool {
		v, ok := ex.Property(name)
		return ok && v == want
	})
}

func Not(p Predicate) Predicate {
	return funcCtx(func(ctx context.Context, ex *exchange.Exchange) (bool, error) {
		ok, err := p.Matches(ctx, ex)
		return !ok, err
	})
}

func And(ps ...Predicate) Predicate {
	return funcCtx(func(ctx context.Context, ex *exchange.Exchange) (bool, error) {
		for _, p := range ps {
			ok, err := p.Matches(ctx, ex)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	})
}

func Or(ps ...Predicate) Predicate {
	return funcCtx(func(ctx context.Context, ex *exchange.Exchange) (bool, error) {
		for _, p := range ps {
			ok, err := p.Matches(ctx, ex)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	})
}

type funcCtx func(ctx context.Context, ex *exchange.Exchange) (bool, error)

func (f funcCtx) Matches(ctx context.Context, ex *exchange.Exchange) (bool, error) {
	return f(ctx, ex)
}

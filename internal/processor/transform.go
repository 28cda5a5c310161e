package processor

import (
	"context"
	"reflect"

	"drover/internal/converter"
	"drover/internal/exchange"
	"drover/internal/predicate"
	"drover/pkg/errors"
)

// SetHeader sets a constant header on the current message.
func SetHeader(name string, value interface{}) Processor {
	return Do(func(_ context.Context, ex *exchange.Exchange) error {
		ex.In().SetHeader(name, value)
		return nil
	})
}

// SetBody replaces the current message body with a constant.
func SetBody(value interface{}) Processor {
	return Do(func(_ context.Context, ex *exchange.Exchange) error {
		ex.In().SetBody(value)
		return nil
	})
}

// Transform evaluates a CEL expression over the exchange and installs the
// result as the new message body.
func Transform(t *predicate.CELTransform) Processor {
	return Do(func(ctx context.Context, ex *exchange.Exchange) error {
		out, err := t.Eval(ctx, ex)
		if err != nil {
			return errors.NewProcessingFailure(errors.KindProcessing, err)
		}
		ex.In().SetBody(out)
		return nil
	})
}

// ConvertBody coerces the current message body to the target type through
// the registry. A failed conversion fails the exchange with kind
// "processing.conversion".
func ConvertBody(reg *converter.Registry, target reflect.Type) Processor {
	return Do(func(_ context.Context, ex *exchange.Exchange) error {
		out, err := reg.Convert(ex.In().Body(), target)
		if err != nil {
			return err
		}
		ex.In().SetBody(out)
		return nil
	})
}

// Filter guards its child with a predicate: matching exchanges flow into
// the child, the rest skip it and continue the enclosing route untouched.
// The outcome is recorded under the filter property so callers can tell a
// drop from a pass.
type Filter struct {
	pred  predicate.Predicate
	child Processor
}

func NewFilter(pred predicate.Predicate, child Processor) *Filter {
	return &Filter{pred: pred, child: child}
}

func (f *Filter) Process(ctx context.Context, ex *exchange.Exchange, done Callback) bool {
	matched, err := f.pred.Matches(ctx, ex)
	if err != nil {
		ex.SetErr(errors.NewProcessingFailure(errors.KindPredicate, err))
		done(true)
		return true
	}

	ex.SetProperty(exchange.PropFilterMatched, matched)
	if !matched || f.child == nil {
		done(true)
		return true
	}
	return f.child.Process(ctx, ex, done)
}

package processor

import (
	"context"

	"drover/internal/exchange"
)

// Enrich obtains a response from a secondary resource processor and merges
// it into the current exchange. The resource runs against its own copy, so
// a failing or mutating resource never corrupts the in-flight message; the
// aggregation function decides what of the response survives.
type Enrich struct {
	resource  Processor
	aggregate AggregationFunc
}

// NewEnrich builds an enricher. A nil aggregate replaces the current
// message with the resource's response outright.
func NewEnrich(resource Processor, aggregate AggregationFunc) *Enrich {
	return &Enrich{resource: resource, aggregate: aggregate}
}

func (e *Enrich) Process(ctx context.Context, ex *exchange.Exchange, done Callback) bool {
	resourceEx := ex.Copy()

	sync := e.resource.Process(ctx, resourceEx, func(doneSync bool) {
		if doneSync {
			return
		}
		e.merge(ex, resourceEx)
		done(false)
	})
	if !sync {
		return false
	}

	e.merge(ex, resourceEx)
	done(true)
	return true
}

func (e *Enrich) merge(ex, resourceEx *exchange.Exchange) {
	if ex.IsCancelled() {
		return
	}
	if resourceEx.Failed() {
		ex.SetErr(resourceEx.Err())
		return
	}

	reply := resourceEx.In()
	if resourceEx.HasOut() {
		reply = resourceEx.Out()
	}

	if e.aggregate == nil {
		ex.SetIn(reply)
		return
	}

	merged := e.aggregate(ex, resourceEx)
	if merged != nil && merged != ex {
		ex.SetIn(merged.In())
	}
}

package processor

import (
	"context"

	"drover/internal/endpoint"
	"drover/internal/exchange"
)

// Send delegates the exchange to an endpoint producer. The producer owns
// the asynchronous contract: it either completes on this stack or invokes
// the continuation from the context its I/O completes on.
type Send struct {
	producer endpoint.Producer
}

func NewSend(producer endpoint.Producer) *Send {
	return &Send{producer: producer}
}

func (s *Send) Process(ctx context.Context, ex *exchange.Exchange, done Callback) bool {
	return s.producer.Send(ctx, ex, endpoint.DoneFunc(done))
}

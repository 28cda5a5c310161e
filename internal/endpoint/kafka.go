package endpoint

import (
	"context"

	"drover/internal/broker"
	"drover/internal/exchange"
	"drover/internal/logger"
	"drover/pkg/errors"
)

// Kafka is a producer endpoint publishing the exchange to a topic as a
// wire envelope. Publishing is real I/O, so the send always suspends: the
// continuation fires from the goroutine the write completes on, and a
// failed write surfaces as a "resource.unavailable" failure on the
// exchange.
type Kafka struct {
	producer broker.Producer
	topic    string
	source   string
	logger   logger.Logger
}

func NewKafka(producer broker.Producer, topic, source string, log logger.Logger) *Kafka {
	return &Kafka{producer: producer, topic: topic, source: source, logger: log}
}

func (k *Kafka) Send(ctx context.Context, ex *exchange.Exchange, done DoneFunc) bool {
	env := broker.FromExchange(ex, k.source)

	go func() {
		if err := k.producer.Publish(ctx, k.topic, env); err != nil {
			k.logger.ErrorwCtx(ctx, "Failed to publish exchange",
				"exchange_id", ex.ID(),
				"topic", k.topic,
				"error", err,
			)
			ex.SetErr(errors.NewProcessingFailure(errors.KindResourceUnavailable, err))
		}
		done(false)
	}()
	return false
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

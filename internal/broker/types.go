package broker

import (
	"context"
	"strings"
	"time"

	"drover/internal/exchange"
)

// Envelope is the wire form of an exchange. Engine-owned properties
// (the "drover." prefix) never cross the wire; they describe in-flight
// routing state, not the message.
type Envelope struct {
	ID         string                 `json:"id"`
	Source     string                 `json:"source,omitempty"`
	TraceID    string                 `json:"trace_id,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Headers    map[string]interface{} `json:"headers,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Body       interface{}            `json:"body"`
}

// FromExchange snapshots an exchange into an envelope for publication.
func FromExchange(ex *exchange.Exchange, source string) Envelope {
	props := make(map[string]interface{})
	for k, v := range ex.Properties() {
		if strings.HasPrefix(k, "drover.") {
			continue
		}
		props[k] = v
	}

	return Envelope{
		ID:         ex.ID(),
		Source:     source,
		Timestamp:  time.Now().UTC(),
		Headers:    ex.In().Headers(),
		Properties: props,
		Body:       ex.In().Body(),
	}
}

// ToExchange materializes a fresh exchange from a consumed envelope. The
// envelope id is preserved under the "message-id" header so idempotent
// consumers can key on it across redeliveries.
func (e Envelope) ToExchange() *exchange.Exchange {
	ex := exchange.New()
	ex.In().SetBody(e.Body)
	for k, v := range e.Headers {
		ex.In().SetHeader(k, v)
	}
	if e.ID != "" {
		ex.In().SetHeader("message-id", e.ID)
	}
	for k, v := range e.Properties {
		ex.SetProperty(k, v)
	}
	return ex
}

type Producer interface {
	Publish(ctx context.Context, topic string, env Envelope) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

type HandlerFunc func(ctx context.Context, env Envelope) error

// Package deadletter archives exchanges whose failures exhausted every
// recovery path, so operators can inspect and replay them.
package deadletter

import (
	"context"
	"time"
)

// Entry is the archived form of a failed exchange.
type Entry struct {
	ID          string                 `bson:"_id" json:"id"`
	RouteID     string                 `bson:"route_id" json:"route_id"`
	Kind        string                 `bson:"kind" json:"kind"`
	Error       string                 `bson:"error" json:"error"`
	Body        interface{}            `bson:"body" json:"body"`
	Headers     map[string]interface{} `bson:"headers,omitempty" json:"headers,omitempty"`
	Properties  map[string]interface{} `bson:"properties,omitempty" json:"properties,omitempty"`
	FailedAt    time.Time              `bson:"failed_at" json:"failed_at"`
	Redelivered int                    `bson:"redelivered" json:"redelivered"`
}

type Store interface {
	Save(ctx context.Context, entry Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
	Delete(ctx context.Context, id string) error
}

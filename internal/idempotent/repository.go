// Package idempotent provides the message-id repositories backing the
// idempotent consumer processor. A repository answers one question — has
// this key been processed before — with an atomic add-if-absent.
package idempotent

import "context"

type Repository interface {
	// Add records the key and reports whether it was newly added. A
	// false result means the key was already present: the exchange is a
	// duplicate.
	Add(ctx context.Context, key string) (bool, error)

	// Contains reports whether the key has been recorded.
	Contains(ctx context.Context, key string) (bool, error)

	// Remove forgets the key, so a failed exchange can be retried on a
	// later delivery.
	Remove(ctx context.Context, key string) error
}

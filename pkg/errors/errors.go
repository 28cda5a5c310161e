package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Kind is a hierarchical failure category. Segments are dot-separated and
// a kind matches any failure whose kind it prefixes: "processing" matches
// "processing.timeout" but not the other way around. Exception clauses use
// kinds instead of error types so that clause selection stays deterministic
// (longest matching prefix wins, then declaration order).
type Kind string

const (
	// KindProcessing is the root category for failed leaf operations.
	KindProcessing Kind = "processing"

	// KindConversion marks a type conversion that exhausted the registry.
	// It sits under "processing" so that clauses catching processing
	// failures also catch conversion failures during typed access.
	KindConversion Kind = "processing.conversion"

	// KindPredicate marks a predicate that could not be evaluated.
	KindPredicate Kind = "processing.predicate"

	// KindTimeout marks an operation that exceeded its deadline.
	KindTimeout Kind = "processing.timeout"

	// KindResource is the root category for unavailable collaborators
	// (brokers, stores, remote services).
	KindResource Kind = "resource"

	// KindResourceUnavailable marks a collaborator that refused or
	// dropped the connection.
	KindResourceUnavailable Kind = "resource.unavailable"

	// KindResourceRejected marks a collaborator that rejected the
	// payload (circuit open, queue full).
	KindResourceRejected Kind = "resource.rejected"
)

// Matches reports whether k catches failures of kind other.
// The empty kind catches everything.
func (k Kind) Matches(other Kind) bool {
	if k == "" {
		return true
	}
	if k == other {
		return true
	}
	return strings.HasPrefix(string(other), string(k)+".")
}

// Specificity is the number of segments in the kind. Deeper kinds win
// clause selection over shallower ones.
func (k Kind) Specificity() int {
	if k == "" {
		return 0
	}
	return strings.Count(string(k), ".") + 1
}

// Kinder is implemented by failures that carry their own category.
type Kinder interface {
	FailureKind() Kind
}

// KindOf extracts the failure category from an error chain. Errors that do
// not declare one are treated as plain processing failures.
func KindOf(err error) Kind {
	var k Kinder
	if errors.As(err, &k) {
		return k.FailureKind()
	}
	return KindProcessing
}

// ProcessingFailure wraps the error a leaf processor produced, tagged with
// the category used for exception clause matching.
type ProcessingFailure struct {
	Kind  Kind
	Cause error
}

func NewProcessingFailure(kind Kind, cause error) *ProcessingFailure {
	if kind == "" {
		kind = KindProcessing
	}
	return &ProcessingFailure{Kind: kind, Cause: cause}
}

func (e *ProcessingFailure) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *ProcessingFailure) Unwrap() error { return e.Cause }

func (e *ProcessingFailure) FailureKind() Kind { return e.Kind }

// ConversionError reports that no converter in the registry could produce
// the target type from the source type. During routing it is matched as a
// processing failure of kind "processing.conversion".
type ConversionError struct {
	Source reflect.Type
	Target reflect.Type
}

func (e *ConversionError) Error() string {
	src := "nil"
	if e.Source != nil {
		src = e.Source.String()
	}
	return fmt.Sprintf("no type converter from %s to %s", src, e.Target)
}

func (e *ConversionError) FailureKind() Kind { return KindConversion }

// RedeliveryExhausted wraps the last failure of a step whose redelivery
// policy ran out of attempts. It always propagates: the policy engine never
// matches it against further clauses.
type RedeliveryExhausted struct {
	Attempts int
	Cause    error
}

func (e *RedeliveryExhausted) Error() string {
	return fmt.Sprintf("redelivery exhausted after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RedeliveryExhausted) Unwrap() error { return e.Cause }

func (e *RedeliveryExhausted) FailureKind() Kind { return KindOf(e.Cause) }

// IsExhausted reports whether err carries a RedeliveryExhausted anywhere in
// its chain.
func IsExhausted(err error) bool {
	var re *RedeliveryExhausted
	return errors.As(err, &re)
}

// AsExhausted extracts the RedeliveryExhausted from err's chain, if any.
func AsExhausted(err error) (*RedeliveryExhausted, bool) {
	var re *RedeliveryExhausted
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

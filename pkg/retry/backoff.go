package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NewExponential builds the wait sequence for a policy. A zero
// MaxElapsedTime means attempts are bounded only by the attempt count.
func NewExponential(policy Policy) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.InitialInterval
	exp.MaxInterval = policy.MaxInterval
	exp.Multiplier = policy.Multiplier
	exp.MaxElapsedTime = policy.MaxElapsedTime
	return exp
}

// CalculateBackoffDuration is the nominal delay before the next attempt,
// ignoring the randomization the backoff applies. Used for reporting.
func CalculateBackoffDuration(attempt int, initialInterval time.Duration, multiplier float64, maxInterval time.Duration) time.Duration {
	duration := float64(initialInterval) * math.Pow(multiplier, float64(attempt))
	if duration > float64(maxInterval) {
		return maxInterval
	}
	return time.Duration(duration)
}

package errorhandler

import (
	"math/rand"
	"time"
)

type BackoffKind int

const (
	// BackoffConstant redelivers at a fixed delay.
	BackoffConstant BackoffKind = iota

	// BackoffLinear adds Increment to the delay on every attempt.
	BackoffLinear

	// BackoffExponential multiplies the delay by Multiplier on every
	// attempt.
	BackoffExponential
)

// Policy bounds how often a failing step may be redelivered and how long
// to wait between attempts. A nil policy on a clause means no redelivery.
type Policy struct {
	// MaxRedeliveries is the number of re-invocations after the initial
	// attempt. Zero disables redelivery for the clause.
	MaxRedeliveries int

	Backoff BackoffKind

	// Delay is the base delay before the first redelivery.
	Delay time.Duration

	// Increment is the per-attempt delay increase for BackoffLinear.
	Increment time.Duration

	// Multiplier is the per-attempt delay factor for BackoffExponential.
	Multiplier float64

	// MaxDelay caps the computed delay when positive.
	MaxDelay time.Duration

	// Jitter adds up to this fraction of the computed delay as random
	// slack, spreading out redeliveries of correlated failures.
	Jitter float64
}

func DefaultPolicy() *Policy {
	return &Policy{
		MaxRedeliveries: 3,
		Backoff:         BackoffExponential,
		Delay:           100 * time.Millisecond,
		Multiplier:      2.0,
		MaxDelay:        10 * time.Second,
	}
}

// NextDelay computes the delay before redelivery attempt number attempt
// (1-based). The delay is realized by deferred scheduling, never by a
// blocking sleep.
func (p *Policy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := p.Delay
	switch p.Backoff {
	case BackoffLinear:
		d += time.Duration(attempt-1) * p.Increment
	case BackoffExponential:
		multiplier := p.Multiplier
		if multiplier <= 0 {
			multiplier = 2.0
		}
		for i := 1; i < attempt; i++ {
			d = time.Duration(float64(d) * multiplier)
			if p.MaxDelay > 0 && d >= p.MaxDelay {
				break
			}
		}
	}

	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter > 0 && d > 0 {
		d += time.Duration(rand.Float64() * p.Jitter * float64(d))
	}
	if d < 0 {
		d = 0
	}
	return d
}

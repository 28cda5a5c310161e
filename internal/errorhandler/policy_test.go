package errorhandler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDelay(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		attempt int
		want    time.Duration
	}{
		{
			name:    "constant",
			policy:  Policy{Backoff: BackoffConstant, Delay: 50 * time.Millisecond},
			attempt: 4,
			want:    50 * time.Millisecond,
		},
		{
			name:    "linear first attempt uses base delay",
			policy:  Policy{Backoff: BackoffLinear, Delay: 100 * time.Millisecond, Increment: 25 * time.Millisecond},
			attempt: 1,
			want:    100 * time.Millisecond,
		},
		{
			name:    "linear grows by increment",
			policy:  Policy{Backoff: BackoffLinear, Delay: 100 * time.Millisecond, Increment: 25 * time.Millisecond},
			attempt: 3,
			want:    150 * time.Millisecond,
		},
		{
			name:    "exponential doubles",
			policy:  Policy{Backoff: BackoffExponential, Delay: 100 * time.Millisecond, Multiplier: 2.0},
			attempt: 3,
			want:    400 * time.Millisecond,
		},
		{
			name:    "exponential capped",
			policy:  Policy{Backoff: BackoffExponential, Delay: 100 * time.Millisecond, Multiplier: 2.0, MaxDelay: 250 * time.Millisecond},
			attempt: 5,
			want:    250 * time.Millisecond,
		},
		{
			name:    "attempt below one clamps",
			policy:  Policy{Backoff: BackoffLinear, Delay: 10 * time.Millisecond, Increment: 10 * time.Millisecond},
			attempt: 0,
			want:    10 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.NextDelay(tt.attempt))
		})
	}
}

func TestNextDelayJitterBounds(t *testing.T) {
	p := Policy{Backoff: BackoffConstant, Delay: 100 * time.Millisecond, Jitter: 0.5}
	for i := 0; i < 50; i++ {
		d := p.NextDelay(1)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

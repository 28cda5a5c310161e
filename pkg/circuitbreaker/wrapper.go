package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker"

	"drover/pkg/metrics"
)

// Config defines circuit breaker configuration
type Config struct {
	Name          string
	MaxRequests   uint32
	Interval      time.Duration
	Timeout       time.Duration
	ReadyToTrip   func(counts gobreaker.Counts) bool
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultConfig returns a default circuit breaker configuration
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.5
		},
	}
}

// Wrapper is a two-step circuit breaker: the caller asks for admission
// before running the guarded step and reports the outcome once the step's
// continuation fires, which may be on a different execution context. The
// one-shot Execute API cannot express that split, hence two-step.
type Wrapper struct {
	cb *gobreaker.TwoStepCircuitBreaker
}

// NewWrapper creates a new circuit breaker wrapper
func NewWrapper(cfg Config) *Wrapper {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
	}

	if cfg.ReadyToTrip != nil {
		settings.ReadyToTrip = cfg.ReadyToTrip
	}

	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		updateCircuitBreakerMetrics(name, to)
		if cfg.OnStateChange != nil {
			cfg.OnStateChange(name, from, to)
		}
	}

	cb := gobreaker.NewTwoStepCircuitBreaker(settings)
	updateCircuitBreakerMetrics(cfg.Name, cb.State())

	return &Wrapper{cb: cb}
}

// Allow asks for admission. The returned report function must be called
// exactly once with the outcome; a non-nil error means the circuit is
// open and the call was rejected.
func (w *Wrapper) Allow() (func(success bool), error) {
	return w.cb.Allow()
}

// State returns the current state of the circuit breaker
func (w *Wrapper) State() gobreaker.State {
	return w.cb.State()
}

// Counts returns the current counts of the circuit breaker
func (w *Wrapper) Counts() gobreaker.Counts {
	return w.cb.Counts()
}

// Name returns the name of the circuit breaker
func (w *Wrapper) Name() string {
	return w.cb.Name()
}

// IsOpen returns true if the circuit breaker is in open state
func (w *Wrapper) IsOpen() bool {
	return w.cb.State() == gobreaker.StateOpen
}

func updateCircuitBreakerMetrics(name string, state gobreaker.State) {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

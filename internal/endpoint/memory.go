package endpoint

import (
	"context"
	"sync"
	"time"

	"drover/internal/exchange"
)

// Scheduler is the deferred-execution slice of the engine the memory
// endpoint uses to simulate asynchronous delivery.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

// Memory is an in-process endpoint that records every exchange sent to
// it. With a zero latency it completes synchronously; with a positive
// latency it suspends and completes through the scheduler, which makes it
// the standard stand-in for an asynchronous transport in tests and local
// wiring.
type Memory struct {
	mu        sync.Mutex
	received  []*exchange.Exchange
	latency   time.Duration
	scheduler Scheduler
	onSend    func(ex *exchange.Exchange) error
}

func NewMemory() *Memory {
	return &Memory{}
}

// NewAsyncMemory returns a memory endpoint completing after the given
// latency on the scheduler's context.
func NewAsyncMemory(scheduler Scheduler, latency time.Duration) *Memory {
	return &Memory{scheduler: scheduler, latency: latency}
}

// OnSend installs a hook run for each exchange before it is recorded; a
// returned error fails the exchange. Used to fault-inject in tests.
func (m *Memory) OnSend(fn func(ex *exchange.Exchange) error) {
	m.onSend = fn
}

func (m *Memory) Send(_ context.Context, ex *exchange.Exchange, done DoneFunc) bool {
	if m.latency > 0 && m.scheduler != nil {
		m.scheduler.Schedule(m.latency, func() {
			m.deliver(ex)
			done(false)
		})
		return false
	}

	m.deliver(ex)
	done(true)
	return true
}

func (m *Memory) deliver(ex *exchange.Exchange) {
	if m.onSend != nil {
		if err := m.onSend(ex); err != nil {
			ex.SetErr(err)
			return
		}
	}
	m.mu.Lock()
	m.received = append(m.received, ex)
	m.mu.Unlock()
}

// Received returns the exchanges delivered so far.
func (m *Memory) Received() []*exchange.Exchange {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*exchange.Exchange, len(m.received))
	copy(out, m.received)
	return out
}

func (m *Memory) Close() error { return nil }

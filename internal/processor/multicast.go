package processor

import (
	"context"
	"sync/atomic"

	"drover/internal/exchange"
)

// AggregationFunc folds a completed fork into the running accumulator.
// acc is nil for the first successful fork; the returned exchange becomes
// the next accumulator. Forks are always folded in declaration order,
// never completion order.
type AggregationFunc func(acc, branch *exchange.Exchange) *exchange.Exchange

// UseLatest keeps the most recently folded fork, so the last declared
// fork's message wins. It is the default strategy.
func UseLatest(acc, branch *exchange.Exchange) *exchange.Exchange {
	return branch
}

// MulticastConfig is the per-instance policy of a multicast.
type MulticastConfig struct {
	// Parallel fans forks out across the scheduler's workers instead of
	// running them one at a time on the caller's thread of control.
	Parallel bool

	// StopOnFailure cancels the remaining forks once one fails. The
	// multicast still waits for every fork to report before completing;
	// there is no short-circuit of the join itself.
	StopOnFailure bool

	// Aggregate folds fork results; nil means UseLatest.
	Aggregate AggregationFunc

	// Scheduler runs parallel forks. Required when Parallel is set.
	Scheduler Scheduler
}

// Multicast sends copies of the exchange to every child. Each fork owns
// its copy exclusively; results are merged back into the original through
// the aggregation strategy once all forks have reported, success or
// failure.
type Multicast struct {
	cfg      MulticastConfig
	children []Processor
}

func NewMulticast(cfg MulticastConfig, children ...Processor) *Multicast {
	if cfg.Aggregate == nil {
		cfg.Aggregate = UseLatest
	}
	return &Multicast{cfg: cfg, children: children}
}

func (m *Multicast) Process(ctx context.Context, ex *exchange.Exchange, done Callback) bool {
	if len(m.children) == 0 {
		done(true)
		return true
	}

	copies := make([]*exchange.Exchange, len(m.children))
	for i := range m.children {
		copies[i] = ex.Copy()
	}

	if m.cfg.Parallel {
		m.fanOut(ctx, ex, copies, done)
		return false
	}
	return m.runSequential(ctx, ex, copies, 0, done, true)
}

func (m *Multicast) runSequential(ctx context.Context, ex *exchange.Exchange, copies []*exchange.Exchange, from int, done Callback, onStack bool) bool {
	for i := from; i < len(copies); i++ {
		if ex.IsCancelled() {
			m.finish(ex, copies, i)
			done(onStack)
			return onStack
		}
		if m.cfg.StopOnFailure && i > 0 && copies[i-1].Failed() {
			m.finish(ex, copies, i)
			done(onStack)
			return onStack
		}
		next := i + 1
		sync := m.children[i].Process(ctx, copies[i], func(doneSync bool) {
			if doneSync {
				return
			}
			m.runSequential(ctx, ex, copies, next, done, false)
		})
		if !sync {
			return false
		}
	}
	m.finish(ex, copies, len(copies))
	done(onStack)
	return onStack
}

// fanOut launches every fork on the scheduler and joins them through a
// countdown; the fork completing last performs the aggregation. Parallel
// multicast always completes asynchronously.
func (m *Multicast) fanOut(ctx context.Context, ex *exchange.Exchange, copies []*exchange.Exchange, done Callback) {
	pending := &atomic.Int32{}
	pending.Store(int32(len(copies)))

	for i := range copies {
		fork := copies[i]
		child := m.children[i]
		m.cfg.Scheduler.Submit(func() {
			child.Process(ctx, fork, func(bool) {
				if m.cfg.StopOnFailure && fork.Failed() {
					for _, c := range copies {
						c.Cancel()
					}
				}
				if pending.Add(-1) == 0 {
					m.finish(ex, copies, len(copies))
					done(false)
				}
			})
		})
	}
}

// finish folds the first ran forks back into the original exchange, in
// declaration order. The first declared failure wins the exception slot;
// failed forks contribute nothing to the aggregate. A cancelled parent
// skips aggregation entirely.
func (m *Multicast) finish(ex *exchange.Exchange, copies []*exchange.Exchange, ran int) {
	if ex.IsCancelled() {
		return
	}

	var firstErr error
	var acc *exchange.Exchange
	for _, fork := range copies[:ran] {
		if fork.Failed() {
			if firstErr == nil {
				firstErr = fork.Err()
			}
			continue
		}
		acc = m.cfg.Aggregate(acc, fork)
	}

	if acc != nil {
		ex.SetIn(acc.In())
	}
	if firstErr != nil {
		ex.SetErr(firstErr)
	}
}

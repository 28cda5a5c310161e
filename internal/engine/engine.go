// Package engine drives processor graphs to completion without dedicating
// a worker to any in-flight exchange. Processors run on the submitting
// goroutine as long as they complete synchronously; once a leaf suspends,
// the rest of the route resumes as continuations on the engine's worker
// pool, migrating across workers at every suspension point while the
// exchange itself stays owned by exactly one thread of control.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"drover/internal/exchange"
	"drover/internal/logger"
	"drover/internal/processor"
	"drover/pkg/logging"
	"drover/pkg/metrics"
)

type Config struct {
	// Workers is the number of pooled execution contexts consuming
	// ready continuations.
	Workers int

	// QueueSize bounds the ready-continuation queue. Submissions beyond
	// the bound spill onto fresh goroutines rather than block a worker.
	QueueSize int
}

func DefaultConfig() Config {
	return Config{Workers: 8, QueueSize: 256}
}

type Engine struct {
	cfg    Config
	log    logger.Logger
	queue  chan func()
	stop   chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool

	inflight  atomic.Int64
	completed atomic.Uint64
	failed    atomic.Uint64
	cancelled atomic.Uint64
}

func New(cfg Config, log logger.Logger) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	return &Engine{
		cfg:   cfg,
		log:   log,
		queue: make(chan func(), cfg.QueueSize),
		stop:  make(chan struct{}),
	}
}

func (e *Engine) Start() {
	for i := 0; i < e.cfg.Workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
	e.log.Debugw("Engine started", "workers", e.cfg.Workers, "queue_size", e.cfg.QueueSize)
}

// Stop drains the workers. Continuations already queued still run;
// exchanges suspended on external I/O complete on the goroutine their
// completion arrives on, as always.
func (e *Engine) Stop() {
	if e.closed.CompareAndSwap(false, true) {
		close(e.stop)
		e.wg.Wait()
		e.log.Debugw("Engine stopped")
	}
}

func (e *Engine) worker() {
	defer e.wg.Done()
	for {
		select {
		case fn := <-e.queue:
			metrics.EngineQueueDepth.Set(float64(len(e.queue)))
			fn()
		case <-e.stop:
			// Drain what is already queued before exiting.
			for {
				select {
				case fn := <-e.queue:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Submit runs fn on a pooled worker. When the pool is stopped or the
// queue is full, fn gets its own goroutine instead; a continuation must
// never be dropped or made to wait on a deadlocked queue.
func (e *Engine) Submit(fn func()) {
	if e.closed.Load() {
		go fn()
		return
	}
	select {
	case e.queue <- fn:
		metrics.EngineQueueDepth.Set(float64(len(e.queue)))
	default:
		go fn()
	}
}

// Schedule defers fn without occupying a worker for the delay.
func (e *Engine) Schedule(delay time.Duration, fn func()) {
	if delay <= 0 {
		e.Submit(fn)
		return
	}
	time.AfterFunc(delay, func() {
		e.Submit(fn)
	})
}

// Run drives the exchange through the processor graph rooted at p. The
// onComplete callback fires exactly once: on this stack when the whole
// graph completed synchronously (Run returns true), or later from
// whatever context the final continuation arrives on. Failures are
// reported on the exchange's exception slot, not returned.
func (e *Engine) Run(ctx context.Context, ex *exchange.Exchange, p processor.Processor, onComplete func(*exchange.Exchange)) bool {
	start := time.Now()
	route := logging.GetRouteID(ctx)
	if route == "" {
		route = "default"
	}

	e.inflight.Add(1)
	metrics.EngineInflightExchanges.Inc()

	var once sync.Once
	finish := func(bool) {
		once.Do(func() {
			e.inflight.Add(-1)
			metrics.EngineInflightExchanges.Dec()

			status := "completed"
			switch {
			case ex.Failed():
				status = "failed"
				e.failed.Add(1)
			case ex.IsCancelled():
				status = "cancelled"
				e.cancelled.Add(1)
			default:
				e.completed.Add(1)
			}
			metrics.ExchangesTotal.WithLabelValues(route, status).Inc()
			metrics.ObserveExchangeDuration(route, status, time.Since(start))

			e.log.DebugwCtx(ctx, "Exchange completed",
				"exchange_id", ex.ID(),
				"status", status,
			)
			if onComplete != nil {
				onComplete(ex)
			}
		})
	}

	return p.Process(ctx, ex, finish)
}

// RunSync drives the exchange and blocks the calling goroutine until the
// graph completes. Convenience for consumers that are themselves blocking
// (request/reply endpoints, tests).
func (e *Engine) RunSync(ctx context.Context, ex *exchange.Exchange, p processor.Processor) *exchange.Exchange {
	done := make(chan struct{})
	e.Run(ctx, ex, p, func(*exchange.Exchange) {
		close(done)
	})
	<-done
	return ex
}

// Stats is a point-in-time snapshot for the management API.
type Stats struct {
	Workers    int    `json:"workers"`
	QueueDepth int    `json:"queue_depth"`
	Inflight   int64  `json:"inflight"`
	Completed  uint64 `json:"completed"`
	Failed     uint64 `json:"failed"`
	Cancelled  uint64 `json:"cancelled"`
}

func (e *Engine) Stats() Stats {
	return Stats{
		Workers:    e.cfg.Workers,
		QueueDepth: len(e.queue),
		Inflight:   e.inflight.Load(),
		Completed:  e.completed.Load(),
		Failed:     e.failed.Load(),
		Cancelled:  e.cancelled.Load(),
	}
}

package processor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drover/internal/exchange"
	"drover/pkg/errors"
)

type goroutineScheduler struct{}

func (goroutineScheduler) Submit(fn func())                    { go fn() }
func (goroutineScheduler) Schedule(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// concatBodies folds fork bodies into one string, exposing aggregation
// order.
func concatBodies(acc, branch *exchange.Exchange) *exchange.Exchange {
	if acc == nil {
		return branch
	}
	acc.In().SetBody(fmt.Sprintf("%v%v", acc.In().Body(), branch.In().Body()))
	return acc
}

func TestMulticastSequentialUseLatest(t *testing.T) {
	m := NewMulticast(MulticastConfig{},
		SetBody("first"),
		SetBody("second"),
		SetBody("third"),
	)

	ex := exchange.New()
	sync := m.Process(context.Background(), ex, func(doneSync bool) {
		assert.True(t, doneSync)
	})

	assert.True(t, sync)
	assert.Equal(t, "third", ex.In().Body(), "default strategy keeps the last declared fork")
}

func TestMulticastForksOwnCopies(t *testing.T) {
	m := NewMulticast(MulticastConfig{Aggregate: func(acc, branch *exchange.Exchange) *exchange.Exchange {
		return nil
	}},
		SetHeader("fork", 1),
		SetHeader("fork", 2),
	)

	ex := exchange.New()
	ex.In().SetHeader("original", true)
	m.Process(context.Background(), ex, func(bool) {})

	_, ok := ex.In().Header("fork")
	assert.False(t, ok, "fork mutations stay on the fork unless aggregated back")
	_, ok = ex.In().Header("original")
	assert.True(t, ok)
}

func TestMulticastAggregatesInDeclarationOrder(t *testing.T) {
	// Completion order is deliberately scrambled by the delays; the
	// aggregate must still fold forks as declared.
	m := NewMulticast(
		MulticastConfig{Parallel: true, Aggregate: concatBodies, Scheduler: goroutineScheduler{}},
		&asyncStep{delay: 30 * time.Millisecond, fn: func(ex *exchange.Exchange) { ex.In().SetBody("a") }},
		&asyncStep{delay: time.Millisecond, fn: func(ex *exchange.Exchange) { ex.In().SetBody("b") }},
		&asyncStep{delay: 10 * time.Millisecond, fn: func(ex *exchange.Exchange) { ex.In().SetBody("c") }},
	)

	ex := exchange.New()
	done := make(chan struct{})
	sync := m.Process(context.Background(), ex, func(doneSync bool) {
		assert.False(t, doneSync)
		close(done)
	})

	assert.False(t, sync, "parallel multicast always completes asynchronously")
	waitDone(t, done)
	assert.Equal(t, "abc", ex.In().Body())
}

func TestMulticastWaitsForAllForksOnFailure(t *testing.T) {
	tr := &trace{}
	m := NewMulticast(
		MulticastConfig{Parallel: true, Scheduler: goroutineScheduler{}},
		failStep("fast-failure", tr, errors.KindResource),
		&asyncStep{id: "slow-fork", tr: tr, delay: 20 * time.Millisecond},
	)

	ex := exchange.New()
	done := make(chan struct{})
	m.Process(context.Background(), ex, func(bool) { close(done) })

	waitDone(t, done)
	steps := tr.get()
	assert.Contains(t, steps, "fast-failure")
	assert.Contains(t, steps, "slow-fork", "the join waits for every fork, failure or not")
	require.True(t, ex.Failed())
	assert.Equal(t, errors.KindResource, errors.KindOf(ex.Err()))
}

func TestMulticastFirstDeclaredFailureWins(t *testing.T) {
	tr := &trace{}
	m := NewMulticast(MulticastConfig{},
		failStep("f1", tr, errors.KindResourceUnavailable),
		failStep("f2", tr, errors.KindTimeout),
	)

	ex := exchange.New()
	m.Process(context.Background(), ex, func(bool) {})

	require.True(t, ex.Failed())
	assert.Equal(t, errors.KindResourceUnavailable, errors.KindOf(ex.Err()))
}

func TestMulticastStopOnFailureSequential(t *testing.T) {
	tr := &trace{}
	m := NewMulticast(MulticastConfig{StopOnFailure: true},
		failStep("first", tr, errors.KindProcessing),
		step("second", tr),
	)

	ex := exchange.New()
	m.Process(context.Background(), ex, func(bool) {})

	assert.Equal(t, []string{"first"}, tr.get(), "remaining forks are skipped after a failure")
	assert.True(t, ex.Failed())
}

func TestMulticastStopOnFailureParallelCancelsForks(t *testing.T) {
	tr := &trace{}
	m := NewMulticast(
		MulticastConfig{Parallel: true, StopOnFailure: true, Scheduler: goroutineScheduler{}},
		failStep("failing", tr, errors.KindProcessing),
		NewPipeline(
			&asyncStep{id: "slow-head", tr: tr, delay: 30 * time.Millisecond},
			step("slow-tail", tr),
		),
	)

	ex := exchange.New()
	done := make(chan struct{})
	m.Process(context.Background(), ex, func(bool) { close(done) })

	waitDone(t, done)
	steps := tr.get()
	assert.Contains(t, steps, "slow-head", "an in-flight leaf runs to completion")
	assert.NotContains(t, steps, "slow-tail", "cancelled forks stop at the next boundary")
	assert.True(t, ex.Failed())
}

func TestMulticastWithoutChildren(t *testing.T) {
	m := NewMulticast(MulticastConfig{})

	ex := exchange.New()
	ex.In().SetBody("unchanged")
	sync := m.Process(context.Background(), ex, func(doneSync bool) {
		assert.True(t, doneSync)
	})

	assert.True(t, sync)
	assert.Equal(t, "unchanged", ex.In().Body())
}

package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drover/internal/exchange"
	"drover/pkg/circuitbreaker"
	"drover/pkg/errors"
)

func TestCircuitBreakerPassesThroughWhileClosed(t *testing.T) {
	breaker := circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("pass-through"))
	cb := NewCircuitBreaker(breaker, SetBody("processed"))

	ex := exchange.New()
	sync := cb.Process(context.Background(), ex, func(doneSync bool) {
		assert.True(t, doneSync)
	})

	assert.True(t, sync)
	assert.Equal(t, "processed", ex.In().Body())
	assert.False(t, breaker.IsOpen())
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	tr := &trace{}
	breaker := circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("opens"))
	cb := NewCircuitBreaker(breaker, failStep("child", tr, errors.KindResourceUnavailable))

	for i := 0; i < 3; i++ {
		cb.Process(context.Background(), exchange.New(), func(bool) {})
	}
	require.True(t, breaker.IsOpen())

	rejected := exchange.New()
	cb.Process(context.Background(), rejected, func(bool) {})

	assert.Len(t, tr.get(), 3, "an open circuit never reaches the child")
	require.True(t, rejected.Failed())
	assert.Equal(t, errors.KindResourceRejected, errors.KindOf(rejected.Err()))
}

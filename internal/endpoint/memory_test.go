package endpoint

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drover/internal/exchange"
)

type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

func TestMemorySendSynchronous(t *testing.T) {
	m := NewMemory()

	ex := exchange.New()
	ex.In().SetBody("hello")
	sync := m.Send(context.Background(), ex, func(doneSync bool) {
		assert.True(t, doneSync)
	})

	assert.True(t, sync)
	require.Len(t, m.Received(), 1)
	assert.Equal(t, "hello", m.Received()[0].In().Body())
}

func TestMemorySendAsynchronous(t *testing.T) {
	m := NewAsyncMemory(timerScheduler{}, 5*time.Millisecond)

	ex := exchange.New()
	done := make(chan struct{})
	sync := m.Send(context.Background(), ex, func(doneSync bool) {
		assert.False(t, doneSync)
		close(done)
	})

	assert.False(t, sync)
	assert.Empty(t, m.Received(), "delivery happens after the latency elapses")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send never completed")
	}
	assert.Len(t, m.Received(), 1)
}

func TestMemorySendFaultInjection(t *testing.T) {
	m := NewMemory()
	m.OnSend(func(*exchange.Exchange) error {
		return fmt.Errorf("transport down")
	})

	ex := exchange.New()
	m.Send(context.Background(), ex, func(bool) {})

	assert.True(t, ex.Failed())
	assert.Empty(t, m.Received(), "a failed send is not recorded as delivered")
}

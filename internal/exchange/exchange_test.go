package exchange

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExchange(t *testing.T) {
	ex := New()

	assert.NotEmpty(t, ex.ID())
	require.NotNil(t, ex.In())
	assert.False(t, ex.HasOut())
	assert.False(t, ex.Failed())
	assert.False(t, ex.IsCancelled())
}

func TestSetInReplacesCurrentMessage(t *testing.T) {
	ex := New()
	old := ex.In()
	old.SetBody("old")

	replacement := NewMessage()
	replacement.SetBody("new")
	ex.SetIn(replacement)

	assert.Equal(t, "new", ex.In().Body())
	assert.Same(t, ex, ex.In().Exchange())
	assert.Nil(t, old.Exchange(), "detached message must not reference the exchange")
}

func TestOutSlotCreatedLazily(t *testing.T) {
	ex := New()
	assert.False(t, ex.HasOut())

	ex.Out().SetBody("response")
	assert.True(t, ex.HasOut())
	assert.Equal(t, "response", ex.Out().Body())
}

func TestProperties(t *testing.T) {
	ex := New()

	_, ok := ex.Property("missing")
	assert.False(t, ok)

	ex.SetProperty("attempt", 3)
	v, ok := ex.Property("attempt")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	ex.RemoveProperty("attempt")
	_, ok = ex.Property("attempt")
	assert.False(t, ok)
}

func TestErrSlot(t *testing.T) {
	ex := New()
	cause := errors.New("boom")

	ex.SetErr(cause)
	assert.True(t, ex.Failed())
	assert.Equal(t, cause, ex.Err())

	ex.ClearErr()
	assert.False(t, ex.Failed())
}

func TestCopyIsIndependentlyOwned(t *testing.T) {
	ex := New()
	ex.In().SetBody("payload")
	ex.In().SetHeader("k", "v")
	ex.SetProperty("p", 1)
	ex.SetErr(errors.New("boom"))

	c := ex.Copy()

	assert.NotEqual(t, ex.ID(), c.ID())
	assert.Equal(t, "payload", c.In().Body())
	assert.False(t, c.Failed(), "copy starts with an empty exception slot")

	c.In().SetHeader("k", "changed")
	c.SetProperty("p", 2)

	v, _ := ex.In().Header("k")
	assert.Equal(t, "v", v)
	p, _ := ex.Property("p")
	assert.Equal(t, 1, p)
}

func TestCopyCarriesCancellation(t *testing.T) {
	ex := New()
	ex.Cancel()

	assert.True(t, ex.Copy().IsCancelled())
}

func TestMessageHeadersCopy(t *testing.T) {
	m := NewMessage()
	m.SetHeader("a", 1)

	h := m.Headers()
	h["a"] = 2
	h["b"] = 3

	v, _ := m.Header("a")
	assert.Equal(t, 1, v)
	_, ok := m.Header("b")
	assert.False(t, ok)
}

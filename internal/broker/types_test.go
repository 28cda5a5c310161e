package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drover/internal/exchange"
)

func TestFromExchangeStripsEngineProperties(t *testing.T) {
	ex := exchange.New()
	ex.In().SetBody(map[string]interface{}{"amount": 10})
	ex.In().SetHeader("tenant", "acme")
	ex.SetProperty("correlation", "c-1")
	ex.SetProperty(exchange.PropRedeliveryCounter, 2)
	ex.SetProperty(exchange.PropFilterMatched, true)

	env := FromExchange(ex, "orders-route")

	assert.Equal(t, ex.ID(), env.ID)
	assert.Equal(t, "orders-route", env.Source)
	assert.Equal(t, "acme", env.Headers["tenant"])
	assert.Equal(t, "c-1", env.Properties["correlation"])
	assert.NotContains(t, env.Properties, exchange.PropRedeliveryCounter)
	assert.NotContains(t, env.Properties, exchange.PropFilterMatched)
}

func TestToExchangeCarriesEnvelopeID(t *testing.T) {
	env := Envelope{
		ID:      "m-17",
		Headers: map[string]interface{}{"tenant": "acme"},
		Body:    "payload",
	}

	ex := env.ToExchange()

	assert.Equal(t, "payload", ex.In().Body())
	id, ok := ex.In().Header("message-id")
	require.True(t, ok)
	assert.Equal(t, "m-17", id)
	assert.NotEqual(t, "m-17", ex.ID(), "a consumed message gets a fresh exchange identity")
}

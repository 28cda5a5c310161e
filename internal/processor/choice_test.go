package processor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drover/internal/exchange"
	"drover/internal/predicate"
	"drover/pkg/errors"
)

func TestChoiceDispatch(t *testing.T) {
	tests := []struct {
		name     string
		header   interface{}
		wantBody string
	}{
		{name: "first branch", header: 1, wantBody: "A"},
		{name: "otherwise on mismatch", header: 2, wantBody: "B"},
		{name: "otherwise on missing header", header: nil, wantBody: "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChoice(
				[]When{{Predicate: predicate.Header("x", 1), Processor: SetBody("A")}},
				SetBody("B"),
			)

			ex := exchange.New()
			if tt.header != nil {
				ex.In().SetHeader("x", tt.header)
			}
			sync := c.Process(context.Background(), ex, func(doneSync bool) {
				assert.True(t, doneSync)
			})

			assert.True(t, sync)
			assert.Equal(t, tt.wantBody, ex.In().Body())
		})
	}
}

func TestChoiceFirstMatchWins(t *testing.T) {
	c := NewChoice(
		[]When{
			{Predicate: predicate.HeaderExists("x"), Processor: SetBody("first")},
			{Predicate: predicate.HeaderExists("x"), Processor: SetBody("second")},
		},
		nil,
	)

	ex := exchange.New()
	ex.In().SetHeader("x", 42)
	c.Process(context.Background(), ex, func(bool) {})

	assert.Equal(t, "first", ex.In().Body())
}

func TestChoiceNoMatchNoOtherwise(t *testing.T) {
	c := NewChoice(
		[]When{{Predicate: predicate.Header("x", 1), Processor: SetBody("A")}},
		nil,
	)

	ex := exchange.New()
	ex.In().SetBody("untouched")
	sync := c.Process(context.Background(), ex, func(bool) {})

	assert.True(t, sync)
	assert.Equal(t, "untouched", ex.In().Body(), "no branch matching is not an error")
	assert.False(t, ex.Failed())
}

func TestChoicePredicateErrorFailsExchange(t *testing.T) {
	broken := predicate.Not(brokenPredicate{})
	c := NewChoice(
		[]When{{Predicate: broken, Processor: SetBody("A")}},
		SetBody("B"),
	)

	ex := exchange.New()
	c.Process(context.Background(), ex, func(bool) {})

	require.True(t, ex.Failed())
	assert.Equal(t, errors.KindPredicate, errors.KindOf(ex.Err()))
	assert.Nil(t, ex.In().Body(), "no branch runs when a predicate cannot be evaluated")
}

type brokenPredicate struct{}

func (brokenPredicate) Matches(context.Context, *exchange.Exchange) (bool, error) {
	return false, fmt.Errorf("expression unavailable")
}

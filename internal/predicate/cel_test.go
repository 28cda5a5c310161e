package predicate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drover/internal/exchange"
)

func TestNewCEL(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name:      "valid header comparison",
			expr:      `headers["region"] == "eu"`,
			wantError: false,
		},
		{
			name:      "valid body access",
			expr:      `body.amount > 100.0`,
			wantError: false,
		},
		{
			name:      "invalid syntax",
			expr:      `invalid syntax here!!!`,
			wantError: true,
		},
		{
			name:      "undefined variable",
			expr:      `undefinedVar == "x"`,
			wantError: true,
		},
		{
			name:      "non-bool result",
			expr:      `headers["region"]`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCEL(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCELMatches(t *testing.T) {
	p, err := NewCEL(`headers["region"] == "eu" && body.amount > 100.0`)
	require.NoError(t, err)

	ex := exchange.New()
	ex.In().SetHeader("region", "eu")
	ex.In().SetBody(map[string]interface{}{"amount": 250.0})

	ok, err := p.Matches(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, ok)

	ex.In().SetHeader("region", "us")
	ok, err = p.Matches(context.Background(), ex)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCELTransform(t *testing.T) {
	tr, err := NewCELTransform(`body.name + "/" + headers["tier"]`)
	require.NoError(t, err)

	ex := exchange.New()
	ex.In().SetBody(map[string]interface{}{"name": "acme"})
	ex.In().SetHeader("tier", "gold")

	out, err := tr.Eval(context.Background(), ex)
	require.NoError(t, err)
	assert.Equal(t, "acme/gold", out)
}

func TestHeaderPredicates(t *testing.T) {
	ex := exchange.New()
	ex.In().SetHeader("x", 1)

	ok, err := Header("x", 1).Matches(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Header("x", 2).Matches(context.Background(), ex)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = HeaderExists("missing").Matches(context.Background(), ex)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCombinators(t *testing.T) {
	ex := exchange.New()
	ex.In().SetHeader("a", 1)
	ex.In().SetHeader("b", 2)

	ctx := context.Background()

	ok, err := And(Header("a", 1), Header("b", 2)).Matches(ctx, ex)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Or(Header("a", 9), Header("b", 2)).Matches(ctx, ex)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Not(Header("a", 1)).Matches(ctx, ex)
	require.NoError(t, err)
	assert.False(t, ok)
}

package converter

import (
	"fmt"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drover/pkg/errors"
)

type celsius float64
type fahrenheit float64

func TestExactConverterWins(t *testing.T) {
	r := NewRegistry()
	r.Register(reflect.TypeOf(celsius(0)), reflect.TypeOf(fahrenheit(0)), func(v interface{}) (interface{}, error) {
		return fahrenheit(float64(v.(celsius))*9/5 + 32), nil
	})

	out, err := r.Convert(celsius(100), reflect.TypeOf(fahrenheit(0)))
	require.NoError(t, err)
	assert.Equal(t, fahrenheit(212), out)
}

func TestWildcardProbedInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	var order []string

	strType := reflect.TypeOf("")
	r.RegisterForTarget(strType, func(v interface{}, target reflect.Type) (interface{}, bool, error) {
		order = append(order, "first")
		return nil, false, nil // declines everything
	})
	r.RegisterForTarget(strType, func(v interface{}, target reflect.Type) (interface{}, bool, error) {
		order = append(order, "second")
		if c, ok := v.(celsius); ok {
			return fmt.Sprintf("%g C", float64(c)), true, nil
		}
		return nil, false, nil
	})

	out, err := r.Convert(celsius(21), strType)
	require.NoError(t, err)
	assert.Equal(t, "21 C", out)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBuiltinFallbacks(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name   string
		value  interface{}
		target reflect.Type
		want   interface{}
	}{
		{"identity", "hello", reflect.TypeOf(""), "hello"},
		{"int to int64", 7, reflect.TypeOf(int64(0)), int64(7)},
		{"float narrowing", 3.5, reflect.TypeOf(float32(0)), float32(3.5)},
		{"string to int", "42", reflect.TypeOf(0), 42},
		{"string to bool", "true", reflect.TypeOf(false), true},
		{"int to string", 42, reflect.TypeOf(""), "42"},
		{"string to bytes", "abc", reflect.TypeOf([]byte(nil)), []byte("abc")},
		{"bytes to string", []byte("abc"), reflect.TypeOf(""), "abc"},
		{"element to slice", "x", reflect.TypeOf([]string(nil)), []string{"x"}},
		{"singleton slice to element", []int{9}, reflect.TypeOf(0), 9},
		{"slice to array", []int{1, 2, 3}, reflect.TypeOf([3]int{}), [3]int{1, 2, 3}},
		{"array to slice", [2]string{"a", "b"}, reflect.TypeOf([]string(nil)), []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Convert(tt.value, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestPointerDereferenceRetriesStructuralTiers(t *testing.T) {
	r := NewRegistry()

	n := 7
	out, err := r.Convert(&n, reflect.TypeOf(int64(0)))
	require.NoError(t, err)
	assert.Equal(t, int64(7), out)

	s := "42"
	out, err = r.Convert(&s, reflect.TypeOf(0))
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestConversionIdempotent(t *testing.T) {
	r := NewRegistry()

	out, err := r.Convert("same", reflect.TypeOf(""))
	require.NoError(t, err)
	assert.Equal(t, "same", out)
}

func TestSymmetricPairRoundTrips(t *testing.T) {
	r := NewRegistry()
	cType := reflect.TypeOf(celsius(0))
	fType := reflect.TypeOf(fahrenheit(0))
	r.Register(cType, fType, func(v interface{}) (interface{}, error) {
		return fahrenheit(float64(v.(celsius))*9/5 + 32), nil
	})
	r.Register(fType, cType, func(v interface{}) (interface{}, error) {
		return celsius((float64(v.(fahrenheit)) - 32) * 5 / 9), nil
	})

	f, err := r.Convert(celsius(40), fType)
	require.NoError(t, err)
	back, err := r.Convert(f, cType)
	require.NoError(t, err)
	assert.Equal(t, celsius(40), back)
}

func TestExhaustedTiersYieldConversionError(t *testing.T) {
	r := NewRegistry()

	_, err := r.Convert(struct{ A int }{1}, reflect.TypeOf(0))
	require.Error(t, err)

	var convErr *errors.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, reflect.TypeOf(0), convErr.Target)
	assert.Equal(t, errors.KindConversion, errors.KindOf(err))
}

func TestNilHandling(t *testing.T) {
	r := NewRegistry()

	out, err := r.Convert(nil, reflect.TypeOf([]string(nil)))
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = r.Convert(nil, reflect.TypeOf(0))
	var convErr *errors.ConversionError
	require.ErrorAs(t, err, &convErr)
}

func TestAllowNilDistinguishesNoValue(t *testing.T) {
	r := NewRegistry()
	srcType := reflect.TypeOf(map[string]string{})
	dstType := reflect.TypeOf("")

	r.Register(srcType, dstType, func(v interface{}) (interface{}, error) {
		return nil, nil
	})
	_, err := r.Convert(map[string]string{}, dstType)
	var convErr *errors.ConversionError
	require.ErrorAs(t, err, &convErr, "nil result without allow-nil is a conversion failure")

	r2 := NewRegistry()
	r2.RegisterAllowNil(srcType, dstType, func(v interface{}) (interface{}, error) {
		return nil, nil
	})
	out, err := r2.Convert(map[string]string{}, dstType)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestMemoizationCachesResolution(t *testing.T) {
	r := NewRegistry()
	calls := 0
	strType := reflect.TypeOf("")
	r.RegisterForTarget(strType, func(v interface{}, target reflect.Type) (interface{}, bool, error) {
		calls++
		if c, ok := v.(celsius); ok {
			return strconv.FormatFloat(float64(c), 'f', -1, 64), true, nil
		}
		return nil, false, nil
	})

	_, err := r.Convert(celsius(1), strType)
	require.NoError(t, err)
	_, err = r.Convert(celsius(2), strType)
	require.NoError(t, err)

	hits, _ := r.Stats()
	assert.Equal(t, uint64(1), hits, "second lookup must hit the memo")
	assert.Equal(t, 2, calls, "memo caches the resolver, not the result")
}

func TestRegistrationInvalidatesMemo(t *testing.T) {
	r := NewRegistry()
	intType := reflect.TypeOf(0)

	out, err := r.Convert("5", intType)
	require.NoError(t, err)
	assert.Equal(t, 5, out)

	// A later exact registration must take precedence over the memoized
	// builtin resolution.
	r.Register(reflect.TypeOf(""), intType, func(v interface{}) (interface{}, error) {
		return 99, nil
	})

	out, err = r.Convert("5", intType)
	require.NoError(t, err)
	assert.Equal(t, 99, out)
}

func TestGenericTo(t *testing.T) {
	r := NewRegistry()

	n, err := To[int64](r, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	s, err := To[string](r, []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "payload", s)

	_, err = To[int](r, struct{}{})
	assert.Error(t, err)
}

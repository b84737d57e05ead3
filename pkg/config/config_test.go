package config

import (
	"net/url"
	"strings"
	"testing"

	"github.com/mikesmitty/covid-charts/pkg/parse"
	"github.com/mikesmitty/covid-charts/pkg/trend"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedShift(t *testing.T) {
	assert.Equal(t, 0, DerivedShift(0))
	assert.Equal(t, 1, DerivedShift(1))
	assert.Equal(t, 1, DerivedShift(2))
	assert.Equal(t, 3, DerivedShift(5))
	assert.Equal(t, 4, DerivedShift(7))
	assert.Equal(t, 7, DerivedShift(14))
}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		window   int
		shift    int
		strategy trend.Strategy
	}{
		{name: "defaults", query: "", window: 5, shift: 3},
		{name: "window only", query: "window=7", window: 7, shift: 4},
		{name: "not a number falls back", query: "window=abc", window: 5, shift: 3},
		{name: "explicit shift", query: "window=7&shift=0", window: 7, shift: 0},
		{name: "weighted", query: "window=4&strategy=weighted", window: 4, shift: 2, strategy: trend.WeightedAverage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			require.NoError(t, err)
			c, err := FromQuery(q)
			require.NoError(t, err)
			assert.Equal(t, tc.window, c.Window)
			assert.Equal(t, tc.shift, c.Shift)
			assert.Equal(t, tc.strategy, c.Strategy)
		})
	}
}

func TestFromQueryErrors(t *testing.T) {
	_, err := FromQuery(url.Values{"window": {"-2"}})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	for _, q := range []url.Values{
		{"window": {"9000000000000000"}},
		{"window": {"65537"}},
		{"shift": {"1000000000000000"}},
		{"shift": {"10000000000"}},
		{"shift": {"-1"}},
		{"window": {strings.Repeat("9", 400)}},
	} {
		_, err = FromQuery(q)
		assert.ErrorIs(t, err, ErrInvalidWindow, q.Encode())
	}

	c, err := FromQuery(url.Values{"window": {"65536"}, "shift": {"65536"}})
	require.NoError(t, err)
	assert.Equal(t, MaxWindow, c.Window)
	assert.Equal(t, MaxWindow, c.Shift)

	v := viper.New()
	v.Set("window", MaxWindow+1)
	_, err = FromViper(v)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = FromQuery(url.Values{"shift": {"x"}})
	assert.ErrorIs(t, err, parse.ErrNotANumber)

	assert.ErrorIs(t, ValidScale("cubic"), ErrInvalidScale)
	assert.NoError(t, ValidScale("Logarithmic"))

	v = viper.New()
	v.Set("daily-scale", "cubic")
	_, err = FromViper(v)
	assert.ErrorIs(t, err, ErrInvalidScale)

	_, err = FromQuery(url.Values{"strategy": {"median"}})
	assert.ErrorIs(t, err, trend.ErrUnknownStrategy)
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	c, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	v.Set("window", 9)
	v.Set("shift", -1)
	v.Set("strategy", "triangular")
	v.Set("cumul-scale", "linear")
	v.Set("average", false)
	c, err = FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 9, c.Window)
	assert.Equal(t, 5, c.Shift)
	assert.Equal(t, trend.WeightedAverage, c.Strategy)
	assert.Equal(t, ScaleLinear, c.CumulScale)
	assert.False(t, c.Average)

	v.Set("shift", 2)
	c, err = FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Shift)
}

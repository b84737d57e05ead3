package parse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{name: "plain", input: "42", expected: 42},
		{name: "negative", input: "-17", expected: -17},
		{name: "explicit plus", input: "+8", expected: 8},
		{name: "leading whitespace", input: "  \t12", expected: 12},
		{name: "trailing garbage", input: "12abc", expected: 12},
		{name: "decimal is truncated", input: "3.7", expected: 3},
		{name: "negative decimal", input: "-3.7", expected: -3},
		{name: "hex prefix", input: "0x1F", expected: 31},
		{name: "zero", input: "0", expected: 0},
		{name: "large", input: "123456789012", expected: 123456789012},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Int(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, v)
		})
	}
}

func TestIntNotANumber(t *testing.T) {
	for _, input := range []string{"", "abc", "-", " ", ".5", "0x", "x12"} {
		v, err := Int(input)
		assert.ErrorIs(t, err, ErrNotANumber, input)
		assert.True(t, math.IsNaN(v), input)
	}
}

func TestValue(t *testing.T) {
	assert.Equal(t, 3.0, Value(3.9))
	assert.Equal(t, -3.0, Value(-3.9))
	assert.True(t, math.IsNaN(Value(math.Inf(1))))
	assert.True(t, math.IsNaN(Value(math.Inf(-1))))
	assert.True(t, math.IsNaN(Value(math.NaN())))
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, Split("1,2,3"))
	assert.Equal(t, []string{""}, Split(""))
	assert.Equal(t, []string{"1", "", "3"}, Split("1,,3"))
}

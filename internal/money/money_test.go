package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "nil yields zero", input: nil, want: "0.00"},
		{name: "plain string", input: "12.34", want: "12.34"},
		{name: "string with whitespace", input: "  99.5 ", want: "99.50"},
		{name: "unparsable string yields zero", input: "twelve", want: "0.00"},
		{name: "empty string yields zero", input: "", want: "0.00"},
		{name: "float64", input: 10.005, want: "10.00"},
		{name: "float64 rounds half to even up", input: 10.015, want: "10.02"},
		{name: "float32", input: float32(2.5), want: "2.50"},
		{name: "int", input: 7, want: "7.00"},
		{name: "int64", input: int64(-3), want: "-3.00"},
		{name: "json.Number", input: json.Number("100.125"), want: "100.12"},
		{name: "invalid json.Number yields zero", input: json.Number("abc"), want: "0.00"},
		{name: "decimal passes through rounded", input: decimal.RequireFromString("1.005"), want: "1.00"},
		{name: "nil decimal pointer yields zero", input: (*decimal.Decimal)(nil), want: "0.00"},
		{name: "unsupported type yields zero", input: struct{}{}, want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDecimal(tt.input)
			assert.Equal(t, tt.want, got.StringFixed(Scale))
		})
	}
}

func TestToDecimal_BankersRounding(t *testing.T) {
	// Half-to-even: .005 rounds toward the even cent in both directions.
	assert.Equal(t, "0.02", ToDecimal("0.025").StringFixed(Scale))
	assert.Equal(t, "0.04", ToDecimal("0.035").StringFixed(Scale))
	assert.Equal(t, "-0.02", ToDecimal("-0.025").StringFixed(Scale))
}

func TestMapOrEmpty(t *testing.T) {
	assert.NotNil(t, MapOrEmpty(nil))
	assert.Empty(t, MapOrEmpty(nil))

	m := map[string]any{"a": 1}
	assert.Equal(t, m, MapOrEmpty(m))
}

func TestSliceOrEmpty(t *testing.T) {
	assert.Empty(t, SliceOrEmpty(nil))
	assert.Empty(t, SliceOrEmpty("not a slice"))
	assert.Empty(t, SliceOrEmpty(42))
	assert.Empty(t, SliceOrEmpty([]any(nil)))

	s := []any{"x", 1}
	assert.Equal(t, s, SliceOrEmpty(s))
}

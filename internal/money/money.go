// Package money provides safe coercion helpers for monetary values and
// loosely structured upstream payloads. All amounts in the system are held at
// a fixed two-decimal scale.
package money

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places every amount is held at.
const Scale = 2

// Zero is the zero amount at the standard scale.
var Zero = decimal.Zero.RoundBank(Scale)

// ToDecimal coerces an arbitrary value to an amount at the standard scale.
// Missing or unparsable input yields 0.00 rather than an error; parsed values
// are rounded half-to-even. Upstream data-quality problems are deliberately
// masked here and must be caught by validation before this point.
func ToDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case nil:
		return Zero
	case decimal.Decimal:
		return val.RoundBank(Scale)
	case *decimal.Decimal:
		if val == nil {
			return Zero
		}
		return val.RoundBank(Scale)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return Zero
		}
		return d.RoundBank(Scale)
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return Zero
		}
		return d.RoundBank(Scale)
	case float64:
		return decimal.NewFromFloat(val).RoundBank(Scale)
	case float32:
		return decimal.NewFromFloat32(val).RoundBank(Scale)
	case int:
		return decimal.NewFromInt(int64(val)).RoundBank(Scale)
	case int32:
		return decimal.NewFromInt32(val).RoundBank(Scale)
	case int64:
		return decimal.NewFromInt(val).RoundBank(Scale)
	default:
		return Zero
	}
}

// MapOrEmpty coerces a possibly-absent mapping to an empty one so callers can
// index it without a nil check.
func MapOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// SliceOrEmpty coerces a possibly-absent or non-sequence value to an empty
// slice. A []any value passes through unchanged.
func SliceOrEmpty(v any) []any {
	if v == nil {
		return []any{}
	}
	if s, ok := v.([]any); ok {
		if s == nil {
			return []any{}
		}
		return s
	}
	return []any{}
}

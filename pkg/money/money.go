// Package money holds the fixed-point helpers used for every currency field.
//
// Inputs arriving from forms, JSON bodies or legacy records are loosely typed.
// Coerce turns anything it cannot read as a finite number into zero instead of
// failing, so the payroll core never has to deal with a parse error.
package money

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts with more integer digits or a finer scale than these are treated as
// non-numeric.
const (
	MaxIntegerDigits = 15
	MaxScale         = 20

	maxInputLen = 64
)

// Coerce converts v to a decimal. Missing, non-numeric, NaN and infinite
// values become zero, and so do amounts outside MaxIntegerDigits and MaxScale.
func Coerce(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case decimal.NullDecimal:
		if !n.Valid {
			return decimal.Zero
		}
		return n.Decimal
	case int:
		return bounded(decimal.NewFromInt(int64(n)))
	case int32:
		return decimal.NewFromInt32(n)
	case int64:
		return bounded(decimal.NewFromInt(n))
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		return fromString(n.String())
	case string:
		return fromString(n)
	case bool:
		// JavaScript-style Number(true) is 1; forms never send this, but
		// legacy records sometimes did.
		if n {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return bounded(decimal.NewFromFloat(f))
}

func fromString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", "")
	if len(s) > maxInputLen {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return bounded(d)
}

// bounded checks digits and exponent only, so "1e50000000" is rejected without
// ever being expanded.
func bounded(d decimal.Decimal) decimal.Decimal {
	exp := int(d.Exponent())
	if exp < -MaxScale || d.NumDigits()+exp > MaxIntegerDigits {
		return decimal.Zero
	}
	return d
}

// NonNegative returns max(0, d).
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Clamp bounds d to [lo, hi]. When hi < lo the result is lo.
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		if hi.LessThan(lo) {
			return lo
		}
		return hi
	}
	return d
}

// Sum adds up the values in ds. An empty slice sums to zero.
func Sum(ds ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}

// Format renders d with two fraction digits, the way amounts are shown on
// receipts and exports.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Package types provides common type aliases and utilities.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Weight is a fixed-point weight in kilograms with 2 decimal places
// (scale = 1e2), matching weighbridge ticket precision.
//
// Rationale:
// - No floating-point drift when summing challan weights
// - Stores as BIGINT (scaled integer)
// - JSON remains a number with up to 2 decimals
type Weight int64

const WeightScale int64 = 100

func NewWeightFromFloat64(v float64) Weight {
	return Weight(math.Round(v * float64(WeightScale)))
}

func NewWeightFromInt64Scaled(v int64) Weight { return Weight(v) }

func (w Weight) Int64Scaled() int64 { return int64(w) }

func (w Weight) Float64() float64 { return float64(w) / float64(WeightScale) }

// Decimal returns the weight as an exact decimal value in kg.
func (w Weight) Decimal() decimal.Decimal {
	return decimal.New(int64(w), -2)
}

func (w Weight) IsZero() bool { return w == 0 }

func (w Weight) IsPositive() bool { return w > 0 }

func (w Weight) IsNegative() bool { return w < 0 }

func (w Weight) Neg() Weight { return -w }

func (w Weight) Abs() Weight {
	if w < 0 {
		return -w
	}
	return w
}

// Sub returns w - other, floored at zero. Gross minus tare never yields a
// negative net weight; the caller decides whether the raw difference being
// negative is worth a warning.
func (w Weight) Sub(other Weight) Weight {
	diff := w - other
	if diff < 0 {
		return 0
	}
	return diff
}

// String returns a decimal string with 2 fractional digits.
func (w Weight) String() string {
	neg := w < 0
	v := w
	if neg {
		v = -v
	}
	intPart := int64(v) / WeightScale
	frac := int64(v) % WeightScale
	if neg {
		return fmt.Sprintf("-%d.%02d", intPart, frac)
	}
	return fmt.Sprintf("%d.%02d", intPart, frac)
}

// MarshalJSON encodes Weight as JSON number (not string), preserving 2 digits.
func (w Weight) MarshalJSON() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalJSON accepts either a JSON number or string and parses to fixed-point (2 digits).
func (w *Weight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*w = 0
		return nil
	}

	// If string, unquote first.
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := parseWeightString(s)
		if err != nil {
			return err
		}
		*w = parsed
		return nil
	}

	parsed, err := parseWeightString(string(data))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

func parseWeightString(s string) (Weight, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty weight")
	}

	// Exponent form is not produced by any of our callers; parse leniently.
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse weight: %w", err)
		}
		return NewWeightFromFloat64(f), nil
	}

	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = strings.TrimPrefix(s, "-")
	} else if strings.HasPrefix(s, "+") {
		s = strings.TrimPrefix(s, "+")
	}

	parts := strings.SplitN(s, ".", 2)
	intPartStr := parts[0]
	fracStr := ""
	if len(parts) == 2 {
		fracStr = parts[1]
	}

	if intPartStr == "" {
		intPartStr = "0"
	}
	intPart, err := strconv.ParseInt(intPartStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse weight integer part: %w", err)
	}

	// Normalize fractional part to 2 digits (pad right, truncate extra digits).
	if len(fracStr) > 2 {
		fracStr = fracStr[:2]
	}
	for len(fracStr) < 2 {
		fracStr += "0"
	}
	frac, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse weight fractional part: %w", err)
	}

	return Weight(sign * (intPart*WeightScale + frac)), nil
}

package types

import (
	"github.com/shopspring/decimal"
)

// Rate represents a price per kilogram with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Rate = decimal.Decimal

// NewRate creates a Rate from a float.
// WARNING: Use NewRateFromString for precise values.
func NewRate(f float64) Rate {
	return decimal.NewFromFloat(f)
}

// NewRateFromString creates a Rate from a string.
// This is the preferred method for monetary values.
func NewRateFromString(s string) (Rate, error) {
	return decimal.NewFromString(s)
}

// MustRate creates a Rate from a string, panics on error.
// Use only for constants and tests.
func MustRate(s string) Rate {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Amount is a monetary value in whole rupees. The trade runs entirely in
// whole-rupee figures; every computed amount is rounded before storage.
type Amount int64

// RoundAmount rounds a decimal value to the nearest whole rupee
// (half away from zero) and returns it as Amount.
func RoundAmount(d decimal.Decimal) Amount {
	return Amount(d.Round(0).IntPart())
}

// Decimal returns the amount as an exact decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(a))
}

func (a Amount) IsZero() bool     { return a == 0 }
func (a Amount) IsPositive() bool { return a > 0 }
func (a Amount) IsNegative() bool { return a < 0 }
func (a Amount) Neg() Amount      { return -a }
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

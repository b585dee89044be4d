// Package calc provides the pure weight-line and document-total calculators.
// Every function here is deterministic and side-effect free: the UI shell
// re-derives lines on each input change, so the same input must always
// produce the same output.
package calc

import (
	"github.com/shopspring/decimal"

	"wireline/internal/core/id"
	"wireline/internal/core/types"
)

var hundred = decimal.NewFromInt(100)

// LineInput is the raw operator entry for a single weight line.
type LineInput struct {
	ItemID   id.ID
	Quantity int    // piece count (bundles, coils)
	Unit     string // "kg", "nos"

	GrossWeight types.Weight
	TareWeight  types.Weight

	// Rate is the agreed price per kg. Nil iff the owning document is
	// rate-pending (Suda): goods move before the price is known.
	Rate *types.Rate

	// DeductionPercent reduces the line amount before aggregation.
	// Used on debit/credit notes for quality claims; zero elsewhere.
	DeductionPercent types.Rate

	RatePending bool
}

// Line is a computed weight line.
type Line struct {
	ItemID   id.ID  `json:"itemId"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`

	GrossWeight types.Weight `json:"grossWeight"`
	TareWeight  types.Weight `json:"tareWeight"`
	NetWeight   types.Weight `json:"netWeight"`

	Rate             *types.Rate `json:"rate,omitempty"`
	DeductionPercent types.Rate  `json:"deductionPercent"`

	Amount types.Amount `json:"amount"`

	// NegativeNet is set when gross < tare. Net weight still floors at
	// zero; the flag lets the caller surface a data-entry warning.
	NegativeNet bool `json:"negativeNet,omitempty"`
}

// ComputeLine derives net weight and amount from raw entry.
//
// Net weight floors at zero when gross < tare. A pending line always
// carries a zero amount, whatever rate value the input happens to hold:
// pending inventory is nil-priced until settlement.
func ComputeLine(in LineInput) Line {
	raw := in.GrossWeight - in.TareWeight
	net := in.GrossWeight.Sub(in.TareWeight)

	line := Line{
		ItemID:           in.ItemID,
		Quantity:         in.Quantity,
		Unit:             in.Unit,
		GrossWeight:      in.GrossWeight,
		TareWeight:       in.TareWeight,
		NetWeight:        net,
		DeductionPercent: in.DeductionPercent,
		NegativeNet:      raw < 0,
	}

	if in.RatePending {
		// Rate is unknown by definition; drop any stray value.
		return line
	}

	if in.Rate != nil {
		rate := *in.Rate
		line.Rate = &rate
		line.Amount = lineAmount(net, rate, in.DeductionPercent)
	}

	return line
}

// lineAmount computes round(net * rate * (1 - deduction/100)) in whole rupees.
func lineAmount(net types.Weight, rate types.Rate, deductionPercent types.Rate) types.Amount {
	base := net.Decimal().Mul(rate)
	if !deductionPercent.IsZero() {
		base = base.Sub(base.Mul(deductionPercent).Div(hundred))
	}
	return types.RoundAmount(base)
}

// Recompute re-derives a line after one of its inputs changed. Identical
// inputs yield an identical line, so the UI may call this per keystroke.
func Recompute(line Line, ratePending bool) Line {
	return ComputeLine(LineInput{
		ItemID:           line.ItemID,
		Quantity:         line.Quantity,
		Unit:             line.Unit,
		GrossWeight:      line.GrossWeight,
		TareWeight:       line.TareWeight,
		Rate:             line.Rate,
		DeductionPercent: line.DeductionPercent,
		RatePending:      ratePending,
	})
}

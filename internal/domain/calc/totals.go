package calc

import (
	"wireline/internal/core/types"
)

// Totals aggregates a document's lines into its derived money fields.
// Always recomputable from (lines, discount, taxRatePercent); stored only
// as an immutable snapshot once the document posts.
type Totals struct {
	Subtotal   types.Amount `json:"subtotal"`
	TaxAmount  types.Amount `json:"taxAmount"`
	FinalTotal types.Amount `json:"finalTotal"`
}

// ComputeTotals aggregates line amounts into subtotal, tax and final total.
//
// Discount is a flat rupee amount applied before tax. It is deliberately
// not validated against the subtotal: returns can legitimately zero out or
// exceed it, so negative final totals are representable, not rejected.
// The tax base floors at zero.
func ComputeTotals(lines []Line, discount types.Amount, taxRatePercent types.Rate) Totals {
	var subtotal types.Amount
	for _, line := range lines {
		subtotal += line.Amount
	}

	taxable := subtotal - discount
	if taxable < 0 {
		taxable = 0
	}

	taxAmount := types.RoundAmount(
		taxable.Decimal().Mul(taxRatePercent).Div(hundred),
	)

	return Totals{
		Subtotal:   subtotal,
		TaxAmount:  taxAmount,
		FinalTotal: subtotal - discount + taxAmount,
	}
}

// SumNetWeight returns the total net weight across lines.
func SumNetWeight(lines []Line) types.Weight {
	var total types.Weight
	for _, line := range lines {
		total += line.NetWeight
	}
	return total
}

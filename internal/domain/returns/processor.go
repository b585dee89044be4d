// Package returns derives the financial and inventory consequences of
// purchase and sales returns (debit and credit notes).
package returns

import (
	"wireline/internal/core/apperror"
	"wireline/internal/core/id"
	"wireline/internal/core/types"
	"wireline/internal/domain/calc"
	"wireline/internal/domain/documents/commercial"
	"wireline/internal/domain/ledger"
)

// Mode selects how a return moves goods and money.
type Mode string

const (
	// ModeStock: purchase return that physically sends material back.
	ModeStock Mode = "stock"

	// ModeFinancial: purchase-side value adjustment only, goods stay put.
	ModeFinancial Mode = "financial"

	// ModeRestock: sales return where the goods re-enter saleable stock.
	ModeRestock Mode = "restock"

	// ModeScrap: sales return where the goods are damaged beyond resale.
	ModeScrap Mode = "scrap"
)

// InventoryEffect tells the stock collaborator what to do. This core
// describes the movement; it does not mutate stock itself.
type InventoryEffect string

const (
	EffectNone          InventoryEffect = "none"
	EffectDecreaseStock InventoryEffect = "decrease stock at original location"
	EffectIncreaseStock InventoryEffect = "increase finished-goods stock"
	EffectIncreaseScrap InventoryEffect = "scrap stock increase"
)

// Result is the computed outcome of a return.
type Result struct {
	// Total is the debit (purchase return) or credit (sales return)
	// amount. Deductions can push individual positions negative; the
	// total is carried signed, never clamped.
	Total types.Amount `json:"total"`

	Lines []calc.Line `json:"lines"`

	InventoryEffect InventoryEffect `json:"inventoryEffect"`

	// Direction of the resulting party-ledger posting
	Direction ledger.Direction `json:"direction"`
}

// modeEffects maps each mode to its stock consequence and document type.
var modeEffects = map[Mode]struct {
	effect  InventoryEffect
	docType commercial.DocumentType
}{
	ModeStock:     {EffectDecreaseStock, commercial.TypeDebitNote},
	ModeFinancial: {EffectNone, commercial.TypeDebitNote},
	ModeRestock:   {EffectIncreaseStock, commercial.TypeCreditNote},
	ModeScrap:     {EffectIncreaseScrap, commercial.TypeCreditNote},
}

// Compute derives the return total and side effects from raw weight
// lines. The deduction percentage applies to every line that does not
// carry its own; pass zero for a full-value return.
func Compute(lines []calc.LineInput, mode Mode, deductionPercent types.Rate) (*Result, error) {
	m, ok := modeEffects[mode]
	if !ok {
		return nil, apperror.NewValidation("invalid return mode").
			WithDetail("field", "mode").
			WithDetail("value", string(mode))
	}

	if len(lines) == 0 {
		return nil, apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	if deductionPercent.IsNegative() {
		return nil, apperror.NewValidation("deduction cannot be negative").
			WithDetail("field", "deductionPercent")
	}

	result := &Result{
		InventoryEffect: m.effect,
		Direction:       m.docType.LedgerDirection(),
		Lines:           make([]calc.Line, 0, len(lines)),
	}

	for i, in := range lines {
		if in.Rate == nil {
			return nil, apperror.NewValidation("rate is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		// The uniform deduction fills lines that carry none; a line with
		// its own deduction keeps it.
		if in.DeductionPercent.IsZero() {
			in.DeductionPercent = deductionPercent
		}
		in.RatePending = false
		line := calc.ComputeLine(in)
		result.Lines = append(result.Lines, line)
		result.Total += line.Amount
	}

	return result, nil
}

// Document builds the draft note matching a computed return, ready for
// submission through the document service.
func Document(partyID id.ID, mode Mode, result *Result) *commercial.Document {
	doc := commercial.New(modeEffects[mode].docType, partyID)
	for _, line := range result.Lines {
		doc.AddLine(calc.LineInput{
			ItemID:           line.ItemID,
			Quantity:         line.Quantity,
			Unit:             line.Unit,
			GrossWeight:      line.GrossWeight,
			TareWeight:       line.TareWeight,
			Rate:             line.Rate,
			DeductionPercent: line.DeductionPercent,
		})
	}
	return doc
}

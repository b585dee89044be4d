// Package commercial provides the weight-based commercial documents:
// purchase/sales invoices and debit/credit notes.
package commercial

import (
	"context"

	"wireline/internal/core/apperror"
	"wireline/internal/core/entity"
	"wireline/internal/core/id"
	"wireline/internal/core/types"
	"wireline/internal/domain/calc"
	"wireline/internal/domain/ledger"
)

// DocumentType discriminates the four commercial document kinds.
type DocumentType string

const (
	TypePurchaseInvoice DocumentType = "PurchaseInvoice"
	TypeSalesInvoice    DocumentType = "SalesInvoice"
	TypeDebitNote       DocumentType = "DebitNote"
	TypeCreditNote      DocumentType = "CreditNote"
)

// IsInvoice reports whether the type is a primary invoice (as opposed to a
// return/adjustment note). Only invoices may defer valuation.
func (t DocumentType) IsInvoice() bool {
	return t == TypePurchaseInvoice || t == TypeSalesInvoice
}

// LedgerDirection returns the party-ledger side this document posts to.
func (t DocumentType) LedgerDirection() ledger.Direction {
	switch t {
	case TypePurchaseInvoice, TypeCreditNote:
		// Supplier liability up / customer receivable down.
		return ledger.Credit
	default:
		// Customer receivable up / supplier liability down.
		return ledger.Debit
	}
}

// Line is a weight line within a document.
type Line struct {
	// Line identification
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	calc.Line
}

// Document represents a commercial document built from weight lines.
type Document struct {
	entity.Document

	Type DocumentType `db:"type" json:"type"`

	// PartyID references the supplier or customer
	PartyID id.ID `db:"party_id" json:"partyId"`

	// Warehouse receiving or issuing the goods (e.g. "WH-01")
	Warehouse string `db:"warehouse" json:"warehouse,omitempty"`

	// RatePending defers valuation (Suda): lines carry no rate and a zero
	// amount until a fixing event settles them.
	RatePending bool `db:"rate_pending" json:"ratePending"`

	// Discount is a flat rupee amount applied before tax
	Discount types.Amount `db:"discount" json:"discount"`

	// TaxRatePercent, e.g. 18 for 18% GST
	TaxRatePercent types.Rate `db:"tax_rate_percent" json:"taxRatePercent"`

	// LaborCost is a header charge on purchase invoices (loading and
	// unloading crew), added after tax and outside the discount base.
	LaborCost types.Amount `db:"labor_cost" json:"laborCost"`

	// Logistics (weighbridge gate data)
	VehicleNo  string `db:"vehicle_no" json:"vehicleNo,omitempty"`
	DriverName string `db:"driver_name" json:"driverName,omitempty"`

	// Table part
	Lines []Line `db:"-" json:"lines"`

	// Totals snapshot, recomputed from inputs while mutable and frozen
	// once the document posts.
	Totals calc.Totals `db:"-" json:"totals"`

	// GrandTotal = FinalTotal + LaborCost
	GrandTotal types.Amount `db:"grand_total" json:"grandTotal"`
}

// New creates a new draft commercial document.
func New(docType DocumentType, partyID id.ID) *Document {
	return &Document{
		Document: entity.NewDocument(),
		Type:     docType,
		PartyID:  partyID,
		Lines:    make([]Line, 0),
	}
}

// AddLine computes a weight line from raw entry and appends it.
// Document totals are re-derived after every change.
func (d *Document) AddLine(in calc.LineInput) *Line {
	in.RatePending = d.RatePending

	line := Line{
		LineID: id.New(),
		LineNo: len(d.Lines) + 1,
		Line:   calc.ComputeLine(in),
	}
	d.Lines = append(d.Lines, line)
	d.Recalculate()
	return &d.Lines[len(d.Lines)-1]
}

// RemoveLine drops a line and renumbers the remainder.
func (d *Document) RemoveLine(lineID id.ID) {
	kept := d.Lines[:0]
	for _, line := range d.Lines {
		if line.LineID != lineID {
			line.LineNo = len(kept) + 1
			kept = append(kept, line)
		}
	}
	d.Lines = kept
	d.Recalculate()
}

// Recalculate re-derives every line and the totals snapshot from current
// inputs. Deterministic: calling it again without input changes is a no-op.
func (d *Document) Recalculate() {
	raw := make([]calc.Line, len(d.Lines))
	for i := range d.Lines {
		d.Lines[i].Line = calc.Recompute(d.Lines[i].Line, d.RatePending)
		raw[i] = d.Lines[i].Line
	}
	d.Totals = calc.ComputeTotals(raw, d.Discount, d.TaxRatePercent)
	d.GrandTotal = d.Totals.FinalTotal + d.LaborCost
}

// PendingWeight is the total net weight awaiting valuation.
func (d *Document) PendingWeight() types.Weight {
	if !d.RatePending {
		return 0
	}
	var total types.Weight
	for _, line := range d.Lines {
		total += line.NetWeight
	}
	return total
}

// Validate implements entity.Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}

	switch d.Type {
	case TypePurchaseInvoice, TypeSalesInvoice, TypeDebitNote, TypeCreditNote:
	default:
		return apperror.NewValidation("invalid document type").
			WithDetail("field", "type").
			WithDetail("value", string(d.Type))
	}

	if id.IsNil(d.PartyID) {
		return apperror.NewValidation("party is required").
			WithDetail("field", "partyId")
	}

	if len(d.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	if d.RatePending && !d.Type.IsInvoice() {
		return apperror.NewValidation("only invoices may defer the rate").
			WithDetail("field", "ratePending")
	}

	if d.TaxRatePercent.IsNegative() {
		return apperror.NewValidation("tax rate cannot be negative").
			WithDetail("field", "taxRatePercent")
	}

	for i, line := range d.Lines {
		if id.IsNil(line.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.GrossWeight.IsNegative() || line.TareWeight.IsNegative() {
			return apperror.NewValidation("weights cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		// Rate is nil iff the document defers valuation.
		if d.RatePending && line.Rate != nil {
			return apperror.NewValidation("rate-pending line cannot carry a rate").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !d.RatePending && line.Rate == nil {
			return apperror.NewValidation("rate is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.DeductionPercent.IsNegative() {
			return apperror.NewValidation("deduction cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

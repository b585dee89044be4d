package commercial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireline/internal/core/apperror"
	"wireline/internal/core/id"
	"wireline/internal/core/types"
	"wireline/internal/domain/calc"
	"wireline/internal/domain/ledger"
)

func ratePtr(s string) *types.Rate {
	r := types.MustRate(s)
	return &r
}

func weightLine(gross, tare float64, rate string) calc.LineInput {
	in := calc.LineInput{
		ItemID:      id.New(),
		Quantity:    1,
		Unit:        "kg",
		GrossWeight: types.NewWeightFromFloat64(gross),
		TareWeight:  types.NewWeightFromFloat64(tare),
	}
	if rate != "" {
		in.Rate = ratePtr(rate)
	}
	return in
}

func TestAddLine_RecalculatesTotals(t *testing.T) {
	doc := New(TypeSalesInvoice, id.New())
	doc.TaxRatePercent = types.MustRate("18")
	doc.Discount = 10_000

	doc.AddLine(weightLine(1000, 50, "2500"))

	require.Len(t, doc.Lines, 1)
	assert.Equal(t, types.Amount(2_375_000), doc.Totals.Subtotal)
	assert.Equal(t, types.Amount(425_700), doc.Totals.TaxAmount)
	assert.Equal(t, types.Amount(2_790_700), doc.Totals.FinalTotal)
	assert.Equal(t, doc.Totals.FinalTotal, doc.GrandTotal)
}

func TestGrandTotal_IncludesLaborCost(t *testing.T) {
	doc := New(TypePurchaseInvoice, id.New())
	doc.LaborCost = 5_000

	doc.AddLine(weightLine(500, 0, "100"))

	assert.Equal(t, types.Amount(50_000), doc.Totals.FinalTotal)
	assert.Equal(t, types.Amount(55_000), doc.GrandTotal)
}

func TestAddLine_RatePendingZeroesAmount(t *testing.T) {
	doc := New(TypePurchaseInvoice, id.New())
	doc.RatePending = true

	// Stray rate on input must not survive: pending inventory is nil-priced.
	line := doc.AddLine(weightLine(3000, 0, "2450"))

	assert.Nil(t, line.Rate)
	assert.True(t, line.Amount.IsZero())
	assert.True(t, doc.GrandTotal.IsZero())
	assert.Equal(t, types.NewWeightFromFloat64(3000), doc.PendingWeight())
}

func TestRemoveLine_Renumbers(t *testing.T) {
	doc := New(TypeSalesInvoice, id.New())
	first := doc.AddLine(weightLine(100, 0, "10"))
	doc.AddLine(weightLine(200, 0, "10"))
	firstID := first.LineID

	doc.RemoveLine(firstID)

	require.Len(t, doc.Lines, 1)
	assert.Equal(t, 1, doc.Lines[0].LineNo)
	assert.Equal(t, types.Amount(2_000), doc.GrandTotal)
}

func TestValidate_RejectsNoteWithDeferredRate(t *testing.T) {
	doc := New(TypeDebitNote, id.New())
	doc.RatePending = true
	doc.AddLine(weightLine(100, 0, ""))

	err := doc.Validate(context.Background())

	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestValidate_RateRequiredUnlessPending(t *testing.T) {
	doc := New(TypeSalesInvoice, id.New())
	doc.AddLine(weightLine(100, 0, ""))

	err := doc.Validate(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate is required")
}

func TestLedgerDirection(t *testing.T) {
	assert.Equal(t, ledger.Credit, TypePurchaseInvoice.LedgerDirection())
	assert.Equal(t, ledger.Debit, TypeSalesInvoice.LedgerDirection())
	assert.Equal(t, ledger.Debit, TypeDebitNote.LedgerDirection())
	assert.Equal(t, ledger.Credit, TypeCreditNote.LedgerDirection())
}

func TestInstruction_NilUntilFinal(t *testing.T) {
	doc := New(TypeSalesInvoice, id.New())
	doc.AddLine(weightLine(100, 0, "10"))

	assert.Nil(t, doc.Instruction())

	doc.MarkPosted()
	instr := doc.Instruction()
	require.NotNil(t, instr)
	assert.Equal(t, types.Amount(1_000), instr.Amount)
	assert.Equal(t, ledger.Debit, instr.Direction)
	assert.Equal(t, ledger.HintPartyLedger, instr.AccountHint)
}

func TestInstruction_NotesCarryNegativeAmounts(t *testing.T) {
	doc := New(TypeCreditNote, id.New())
	doc.AddLine(weightLine(100, 0, "10"))
	doc.MarkPosted()

	instr := doc.Instruction()
	require.NotNil(t, instr)
	assert.Equal(t, types.Amount(-1_000), instr.Amount)
	assert.Equal(t, ledger.Credit, instr.Direction)
}

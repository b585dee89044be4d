package suda_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireline/internal/core/apperror"
	"wireline/internal/core/entity"
	"wireline/internal/core/id"
	"wireline/internal/core/types"
	"wireline/internal/domain/calc"
	"wireline/internal/domain/documents/commercial"
	"wireline/internal/domain/ledger"
	"wireline/internal/domain/suda"
	"wireline/internal/infrastructure/storage/memory"
)

type fixture struct {
	engine  *suda.Engine
	records *memory.SudaRepository
	docs    *memory.DocumentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	records := memory.NewSudaRepository()
	docs := memory.NewDocumentRepository()
	return &fixture{
		engine:  suda.NewEngine(records, docs, memory.NewTxManager()),
		records: records,
		docs:    docs,
	}
}

// pendingInvoice persists a rate-pending purchase invoice and registers
// its valuation records, one weight per line.
func (f *fixture) pendingInvoice(t *testing.T, partyID id.ID, weights ...float64) *commercial.Document {
	t.Helper()
	ctx := context.Background()

	doc := commercial.New(commercial.TypePurchaseInvoice, partyID)
	uid := id.New().String()
	doc.Number = "PUR-2026-" + uid[len(uid)-8:]
	doc.RatePending = true
	for _, w := range weights {
		doc.AddLine(calc.LineInput{
			ItemID:      id.New(),
			Unit:        "kg",
			GrossWeight: types.NewWeightFromFloat64(w),
		})
	}
	doc.MarkPendingRate()

	require.NoError(t, f.docs.Create(ctx, doc))
	require.NoError(t, f.docs.SaveLines(ctx, doc.ID, doc.Lines))
	require.NoError(t, f.engine.Register(ctx, doc))
	return doc
}

func (f *fixture) openRecordIDs(t *testing.T, partyID id.ID) []id.ID {
	t.Helper()
	records, err := f.engine.ListOpen(context.Background(), suda.Filter{PartyID: &partyID})
	require.NoError(t, err)
	ids := make([]id.ID, len(records))
	for i, rec := range records {
		ids[i] = rec.RecordID
	}
	return ids
}

func TestRegister_OneRecordPerLine(t *testing.T) {
	f := newFixture(t)
	partyID := id.New()

	doc := f.pendingInvoice(t, partyID, 3000, 2000)

	records, err := f.engine.ListOpen(context.Background(), suda.Filter{PartyID: &partyID})
	require.NoError(t, err)
	require.Len(t, records, 2)

	var total types.Weight
	for _, rec := range records {
		assert.Equal(t, doc.ID, rec.DocumentID)
		assert.Equal(t, suda.RecordOpen, rec.Status)
		total += rec.NetWeight
	}
	assert.Equal(t, types.NewWeightFromFloat64(5000), total)
}

func TestRegister_RejectsNonPendingDocument(t *testing.T) {
	f := newFixture(t)
	doc := commercial.New(commercial.TypePurchaseInvoice, id.New())

	err := f.engine.Register(context.Background(), doc)
	assert.True(t, apperror.IsInconsistentState(err))
}

func TestFixRate_SettlesAndRevalues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	partyID := id.New()

	// 5000 kg of scrap arrived weeks ago, value unknown until today.
	doc := f.pendingInvoice(t, partyID, 3000, 2000)

	result, err := f.engine.FixRate(ctx, suda.FixRateInput{
		RecordIDs:  f.openRecordIDs(t, partyID),
		AgreedRate: types.MustRate("2450"),
	})
	require.NoError(t, err)

	// Event totals: 5000 kg at 2450/kg.
	assert.Equal(t, types.NewWeightFromFloat64(5000), result.Event.TotalWeight)
	assert.Equal(t, types.Amount(12_250_000), result.Event.TotalLiability)
	assert.Equal(t, partyID, result.Event.PartyID)

	// The document is retroactively valued and settled.
	stored, err := f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSettled, stored.Status)
	assert.False(t, stored.RatePending)
	assert.Equal(t, types.Amount(12_250_000), stored.GrandTotal)

	lines, err := f.docs.GetLines(ctx, doc.ID)
	require.NoError(t, err)
	for _, line := range lines {
		require.NotNil(t, line.Rate)
		assert.True(t, line.Rate.Equal(types.MustRate("2450")))
	}

	// One posting instruction, suda liability, purchase side credits.
	require.Len(t, result.Instructions, 1)
	instr := result.Instructions[0]
	assert.Equal(t, types.Amount(12_250_000), instr.Amount)
	assert.Equal(t, ledger.Credit, instr.Direction)
	assert.Equal(t, ledger.HintSudaLiability, instr.AccountHint)

	assert.Equal(t, []id.ID{doc.ID}, result.SettledDocuments)

	// No open records remain.
	assert.Empty(t, f.openRecordIDs(t, partyID))
}

func TestFixRate_PartialLeavesDocumentPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	partyID := id.New()

	doc := f.pendingInvoice(t, partyID, 3000, 2000)

	records, err := f.engine.ListOpen(ctx, suda.Filter{PartyID: &partyID})
	require.NoError(t, err)
	var heavy, light id.ID
	for _, rec := range records {
		if rec.NetWeight == types.NewWeightFromFloat64(3000) {
			heavy = rec.RecordID
		} else {
			light = rec.RecordID
		}
	}

	// Fix only the 3000 kg record.
	result, err := f.engine.FixRate(ctx, suda.FixRateInput{
		RecordIDs:  []id.ID{heavy},
		AgreedRate: types.MustRate("2450"),
	})
	require.NoError(t, err)
	assert.Empty(t, result.SettledDocuments)

	stored, err := f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingRate, stored.Status)
	assert.True(t, stored.RatePending)
	assert.Equal(t, types.Amount(7_350_000), stored.GrandTotal)

	// Fixing the remainder at a different rate settles the document.
	result, err = f.engine.FixRate(ctx, suda.FixRateInput{
		RecordIDs:  []id.ID{light},
		AgreedRate: types.MustRate("2500"),
	})
	require.NoError(t, err)
	assert.Equal(t, []id.ID{doc.ID}, result.SettledDocuments)

	stored, err = f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSettled, stored.Status)
	assert.Equal(t, types.Amount(7_350_000+5_000_000), stored.GrandTotal)
}

func TestFixRate_SpansDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	partyID := id.New()

	docA := f.pendingInvoice(t, partyID, 1000)
	docB := f.pendingInvoice(t, partyID, 500)

	result, err := f.engine.FixRate(ctx, suda.FixRateInput{
		RecordIDs:  f.openRecordIDs(t, partyID),
		AgreedRate: types.MustRate("2000"),
	})
	require.NoError(t, err)

	assert.Len(t, result.Instructions, 2)
	assert.ElementsMatch(t, []id.ID{docA.ID, docB.ID}, result.SettledDocuments)
	assert.Equal(t, types.Amount(3_000_000), result.Event.TotalLiability)
}

func TestFixRate_LiabilityEqualsPostedInstructions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	partyID := id.New()

	// Two 0.30 kg records at 2455/kg: each line is 736.5, rounded to 737
	// per line. A single rounding of the aggregate (0.60 kg * 2455 =
	// 1473) would undercount what the documents carry.
	f.pendingInvoice(t, partyID, 0.3)
	f.pendingInvoice(t, partyID, 0.3)

	result, err := f.engine.FixRate(ctx, suda.FixRateInput{
		RecordIDs:  f.openRecordIDs(t, partyID),
		AgreedRate: types.MustRate("2455"),
	})
	require.NoError(t, err)

	var posted types.Amount
	for _, instr := range result.Instructions {
		posted += instr.Amount
	}
	assert.Equal(t, types.Amount(1474), result.Event.TotalLiability)
	assert.Equal(t, result.Event.TotalLiability, posted)

	// The documents carry the same figures the instructions posted.
	var documents types.Amount
	for _, docID := range result.SettledDocuments {
		doc, err := f.docs.GetByID(ctx, docID)
		require.NoError(t, err)
		documents += doc.GrandTotal
	}
	assert.Equal(t, result.Event.TotalLiability, documents)
}

func TestFixRate_SecondFixingFailsStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	partyID := id.New()

	f.pendingInvoice(t, partyID, 1000)
	ids := f.openRecordIDs(t, partyID)

	_, err := f.engine.FixRate(ctx, suda.FixRateInput{
		RecordIDs:  ids,
		AgreedRate: types.MustRate("2000"),
	})
	require.NoError(t, err)

	_, err = f.engine.FixRate(ctx, suda.FixRateInput{
		RecordIDs:  ids,
		AgreedRate: types.MustRate("2100"),
	})
	assert.True(t, apperror.IsStaleRecord(err))
}

func TestFixRate_ConcurrentOverlap_ExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	partyID := id.New()

	doc := f.pendingInvoice(t, partyID, 1000)
	ids := f.openRecordIDs(t, partyID)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = f.engine.FixRate(ctx, suda.FixRateInput{
				RecordIDs:  ids,
				AgreedRate: types.MustRate("2450"),
			})
		}(i)
	}
	wg.Wait()

	wins, stale := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperror.IsStaleRecord(err):
			stale++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one fixing must win")
	assert.Equal(t, attempts-1, stale)

	// The winner settled the document exactly once.
	stored, err := f.docs.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSettled, stored.Status)

	events, err := f.engine.Events(ctx, &partyID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestFixRate_ValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.FixRate(ctx, suda.FixRateInput{AgreedRate: types.MustRate("100")})
	assert.Error(t, err, "empty record set")

	_, err = f.engine.FixRate(ctx, suda.FixRateInput{
		RecordIDs:  []id.ID{id.New()},
		AgreedRate: types.MustRate("0"),
	})
	assert.Error(t, err, "zero rate")

	recordID := id.New()
	_, err = f.engine.FixRate(ctx, suda.FixRateInput{
		RecordIDs:  []id.ID{recordID, recordID},
		AgreedRate: types.MustRate("100"),
	})
	assert.Error(t, err, "duplicate records")
}

func TestFixRate_RejectsMixedParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	partyA, partyB := id.New(), id.New()

	f.pendingInvoice(t, partyA, 100)
	f.pendingInvoice(t, partyB, 100)

	ids := append(f.openRecordIDs(t, partyA), f.openRecordIDs(t, partyB)...)
	_, err := f.engine.FixRate(ctx, suda.FixRateInput{
		RecordIDs:  ids,
		AgreedRate: types.MustRate("100"),
	})

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestSummarize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	partyID := id.New()

	f.pendingInvoice(t, partyID, 3000, 2000)

	summary, err := f.engine.Summarize(ctx, partyID)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Records)
	assert.Equal(t, types.NewWeightFromFloat64(5000), summary.TotalWeight)
	assert.False(t, summary.Oldest.IsZero())
}

package suda

import (
	"context"
	"fmt"
	"time"

	"wireline/internal/core/apperror"
	appctx "wireline/internal/core/context"
	"wireline/internal/core/id"
	"wireline/internal/core/tx"
	"wireline/internal/core/types"
	"wireline/internal/domain/calc"
	"wireline/internal/domain/documents/commercial"
	"wireline/internal/domain/ledger"
	"wireline/pkg/logger"
)

// Engine drives the deferred-rate workflow: registration of pending
// records when a rate-pending document posts, and the atomic fixing
// event that retroactively values them.
type Engine struct {
	records   Repository
	docs      commercial.Repository
	txManager tx.Manager
}

// NewEngine creates the deferred-rate engine.
func NewEngine(records Repository, docs commercial.Repository, txManager tx.Manager) *Engine {
	return &Engine{
		records:   records,
		docs:      docs,
		txManager: txManager,
	}
}

// Register creates one open valuation record per document line. Called by
// the document service inside its submission transaction, so records and
// document commit together. Implements commercial.PendingRegistrar.
func (e *Engine) Register(ctx context.Context, doc *commercial.Document) error {
	if !doc.RatePending {
		return apperror.NewInconsistentState(
			fmt.Sprintf("document %s is not rate-pending", doc.Number))
	}

	records := make([]*PendingValuationRecord, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		records = append(records, &PendingValuationRecord{
			RecordID:     id.New(),
			DocumentID:   doc.ID,
			LineID:       line.LineID,
			PartyID:      doc.PartyID,
			ItemID:       line.ItemID,
			NetWeight:    line.NetWeight,
			DateReceived: doc.Date,
			Status:       RecordOpen,
		})
	}

	if err := e.records.CreateRecords(ctx, records); err != nil {
		return fmt.Errorf("create pending records: %w", err)
	}

	logger.Info(ctx, "pending valuation records registered",
		"document_id", doc.ID,
		"number", doc.Number,
		"records", len(records),
		"pending_weight", doc.PendingWeight())

	return nil
}

// FixRateInput names the records to settle and the negotiated rate.
type FixRateInput struct {
	RecordIDs  []id.ID
	AgreedRate types.Rate
}

// FixRateResult is the outcome of one fixing event.
type FixRateResult struct {
	Event *RateFixingEvent

	// Instructions for the accounting collaborator, one per affected
	// document.
	Instructions []ledger.Instruction

	// SettledDocuments lists documents whose last open record was covered
	// by this event. Partially fixed documents stay PendingRate.
	SettledDocuments []id.ID
}

// FixRate applies a negotiated rate to a set of open records in a single
// atomic event: records settle, every tied document is revalued, and the
// event is journaled, or nothing happens at all.
//
// Concurrent fixings over overlapping records race on the settle step;
// exactly one wins, the other fails with StaleRecord and leaves no trace.
func (e *Engine) FixRate(ctx context.Context, in FixRateInput) (*FixRateResult, error) {
	if len(in.RecordIDs) == 0 {
		return nil, apperror.NewValidation("at least one record is required").
			WithDetail("field", "recordIds")
	}
	if !in.AgreedRate.IsPositive() {
		return nil, apperror.NewValidation("agreed rate must be positive").
			WithDetail("field", "agreedRate").
			WithDetail("value", in.AgreedRate.String())
	}
	seen := make(map[id.ID]struct{}, len(in.RecordIDs))
	for _, recordID := range in.RecordIDs {
		if _, dup := seen[recordID]; dup {
			return nil, apperror.NewValidation("duplicate record in fixing set").
				WithDetail("recordId", recordID.String())
		}
		seen[recordID] = struct{}{}
	}

	var result *FixRateResult
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = e.fixRateTx(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "rate fixing event committed",
		"event_id", result.Event.EventID,
		"party_id", result.Event.PartyID,
		"agreed_rate", result.Event.AgreedRate,
		"records", len(in.RecordIDs),
		"total_weight", result.Event.TotalWeight,
		"total_liability", result.Event.TotalLiability,
		"settled_documents", len(result.SettledDocuments))

	return result, nil
}

func (e *Engine) fixRateTx(ctx context.Context, in FixRateInput) (*FixRateResult, error) {
	records, err := e.records.GetByIDs(ctx, in.RecordIDs)
	if err != nil {
		return nil, err
	}

	partyID := records[0].PartyID
	for _, rec := range records {
		if rec.Status != RecordOpen {
			return nil, apperror.NewStaleRecord(rec.RecordID.String())
		}
		if rec.PartyID != partyID {
			return nil, apperror.NewValidation("fixing set spans parties").
				WithDetail("recordId", rec.RecordID.String())
		}
	}

	event := &RateFixingEvent{
		EventID:    id.New(),
		PartyID:    partyID,
		RecordIDs:  in.RecordIDs,
		AgreedRate: in.AgreedRate,
		FixedAt:    time.Now().UTC(),
		ActorID:    appctx.GetActorID(ctx),
	}

	// Settle first: the atomic open-check here is what decides a race
	// between overlapping fixings.
	if err := e.records.SettleRecords(ctx, in.RecordIDs, event.EventID, event.FixedAt); err != nil {
		return nil, err
	}

	byDocument := make(map[id.ID][]*PendingValuationRecord)
	docOrder := make([]id.ID, 0)
	var totalWeight types.Weight
	for _, rec := range records {
		if _, ok := byDocument[rec.DocumentID]; !ok {
			docOrder = append(docOrder, rec.DocumentID)
		}
		byDocument[rec.DocumentID] = append(byDocument[rec.DocumentID], rec)
		totalWeight += rec.NetWeight
	}
	event.TotalWeight = totalWeight

	// TotalLiability accumulates from the per-line amounts actually written
	// into the documents. A single rounding of weight*rate can differ by a
	// rupee from the per-line roundings; the journal must equal what the
	// instructions post.
	result := &FixRateResult{Event: event}
	for _, docID := range docOrder {
		instruction, settled, err := e.revalueDocument(ctx, docID, byDocument[docID], event)
		if err != nil {
			return nil, err
		}
		result.Instructions = append(result.Instructions, *instruction)
		event.TotalLiability += instruction.Amount
		if settled {
			result.SettledDocuments = append(result.SettledDocuments, docID)
		}
	}

	if err := e.records.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("append fixing event: %w", err)
	}

	return result, nil
}

// revalueDocument writes the agreed rate into the document lines covered
// by this event and re-derives its totals. The document leaves
// PendingRate only when no open record remains.
func (e *Engine) revalueDocument(
	ctx context.Context,
	docID id.ID,
	recs []*PendingValuationRecord,
	event *RateFixingEvent,
) (*ledger.Instruction, bool, error) {
	doc, err := e.docs.GetForUpdate(ctx, docID)
	if err != nil {
		return nil, false, err
	}
	lines, err := e.docs.GetLines(ctx, docID)
	if err != nil {
		return nil, false, fmt.Errorf("get lines: %w", err)
	}

	fixedLines := make(map[id.ID]struct{}, len(recs))
	for _, rec := range recs {
		fixedLines[rec.LineID] = struct{}{}
	}

	var eventAmount types.Amount
	found := 0
	for i := range lines {
		if _, ok := fixedLines[lines[i].LineID]; !ok {
			continue
		}
		rate := event.AgreedRate
		lines[i].Rate = &rate
		lines[i].Line = calc.Recompute(lines[i].Line, false)
		eventAmount += lines[i].Amount
		found++
	}
	if found != len(recs) {
		return nil, false, apperror.NewInconsistentState(
			fmt.Sprintf("document %s lines do not match pending records", doc.Number))
	}

	raw := make([]calc.Line, len(lines))
	for i := range lines {
		raw[i] = lines[i].Line
	}
	doc.Totals = calc.ComputeTotals(raw, doc.Discount, doc.TaxRatePercent)
	doc.GrandTotal = doc.Totals.FinalTotal + doc.LaborCost
	doc.Lines = lines

	open, err := e.records.CountOpenByDocument(ctx, docID)
	if err != nil {
		return nil, false, err
	}
	settled := open == 0
	if settled {
		doc.RatePending = false
		doc.MarkSettled()
	} else {
		doc.Touch()
	}

	if err := e.docs.Update(ctx, doc); err != nil {
		return nil, false, fmt.Errorf("update document: %w", err)
	}
	if err := e.docs.SaveLines(ctx, docID, lines); err != nil {
		return nil, false, fmt.Errorf("save lines: %w", err)
	}

	return &ledger.Instruction{
		DocumentID:  docID,
		PartyID:     doc.PartyID,
		Amount:      eventAmount,
		Direction:   doc.Type.LedgerDirection(),
		AccountHint: ledger.HintSudaLiability,
		ActorID:     event.ActorID,
		CreatedAt:   event.FixedAt,
	}, settled, nil
}

// ListOpen returns open records matching the filter, oldest first.
func (e *Engine) ListOpen(ctx context.Context, filter Filter) ([]*PendingValuationRecord, error) {
	return e.records.ListOpen(ctx, filter)
}

// OpenSummary aggregates a party's outstanding deferred-rate exposure.
type OpenSummary struct {
	PartyID     id.ID        `json:"partyId"`
	Records     int          `json:"records"`
	TotalWeight types.Weight `json:"totalWeight"`
	Oldest      time.Time    `json:"oldest,omitempty"`
}

// Summarize rolls up the open records for one party.
func (e *Engine) Summarize(ctx context.Context, partyID id.ID) (*OpenSummary, error) {
	records, err := e.records.ListOpen(ctx, Filter{PartyID: &partyID})
	if err != nil {
		return nil, err
	}

	summary := &OpenSummary{PartyID: partyID}
	for _, rec := range records {
		summary.Records++
		summary.TotalWeight += rec.NetWeight
		if summary.Oldest.IsZero() || rec.DateReceived.Before(summary.Oldest) {
			summary.Oldest = rec.DateReceived
		}
	}
	return summary, nil
}

// Events returns the fixing journal, newest first.
func (e *Engine) Events(ctx context.Context, partyID *id.ID) ([]*RateFixingEvent, error) {
	return e.records.ListEvents(ctx, partyID)
}

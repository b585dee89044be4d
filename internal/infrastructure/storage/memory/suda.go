package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"wireline/internal/core/apperror"
	"wireline/internal/core/id"
	"wireline/internal/domain/suda"
)

// SudaRepository is an in-memory store for pending valuation records and
// the fixing-event journal.
type SudaRepository struct {
	mu      sync.Mutex
	records map[id.ID]*suda.PendingValuationRecord
	events  []*suda.RateFixingEvent
}

// NewSudaRepository creates an empty deferred-rate store.
func NewSudaRepository() *SudaRepository {
	return &SudaRepository{
		records: make(map[id.ID]*suda.PendingValuationRecord),
	}
}

func cloneRecord(rec *suda.PendingValuationRecord) *suda.PendingValuationRecord {
	clone := *rec
	return &clone
}

func (r *SudaRepository) CreateRecords(ctx context.Context, records []*suda.PendingValuationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		if _, exists := r.records[rec.RecordID]; exists {
			return apperror.NewValidation("pending record already exists").
				WithDetail("recordId", rec.RecordID.String())
		}
	}
	for _, rec := range records {
		r.records[rec.RecordID] = cloneRecord(rec)
	}
	return nil
}

func (r *SudaRepository) GetByIDs(ctx context.Context, ids []id.ID) ([]*suda.PendingValuationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*suda.PendingValuationRecord, 0, len(ids))
	for _, recordID := range ids {
		rec, ok := r.records[recordID]
		if !ok {
			return nil, apperror.NewNotFound("pending record", recordID.String())
		}
		out = append(out, cloneRecord(rec))
	}
	return out, nil
}

// SettleRecords transitions every listed record Open -> Settled under one
// lock hold. The check pass runs before any write, so a concurrent fixing
// that lost the race fails without touching a single record.
func (r *SudaRepository) SettleRecords(ctx context.Context, ids []id.ID, eventID id.ID, settledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, recordID := range ids {
		rec, ok := r.records[recordID]
		if !ok {
			return apperror.NewNotFound("pending record", recordID.String())
		}
		if rec.Status != suda.RecordOpen {
			return apperror.NewStaleRecord(recordID.String())
		}
	}

	for _, recordID := range ids {
		rec := r.records[recordID]
		rec.Status = suda.RecordSettled
		rec.SettledBy = eventID
		rec.SettledAt = settledAt
	}
	return nil
}

func (r *SudaRepository) ListOpen(ctx context.Context, filter suda.Filter) ([]*suda.PendingValuationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*suda.PendingValuationRecord, 0)
	for _, rec := range r.records {
		if rec.Status != suda.RecordOpen {
			continue
		}
		if filter.PartyID != nil && rec.PartyID != *filter.PartyID {
			continue
		}
		if filter.ItemID != nil && rec.ItemID != *filter.ItemID {
			continue
		}
		if filter.OlderThan != nil && !rec.DateReceived.Before(*filter.OlderThan) {
			continue
		}
		out = append(out, cloneRecord(rec))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateReceived.Equal(out[j].DateReceived) {
			return out[i].DateReceived.Before(out[j].DateReceived)
		}
		return out[i].RecordID.String() < out[j].RecordID.String()
	})
	return out, nil
}

func (r *SudaRepository) CountOpenByDocument(ctx context.Context, docID id.ID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, rec := range r.records {
		if rec.DocumentID == docID && rec.Status == suda.RecordOpen {
			count++
		}
	}
	return count, nil
}

func (r *SudaRepository) AppendEvent(ctx context.Context, event *suda.RateFixingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *event
	clone.RecordIDs = append([]id.ID(nil), event.RecordIDs...)
	r.events = append(r.events, &clone)
	return nil
}

func (r *SudaRepository) ListEvents(ctx context.Context, partyID *id.ID) ([]*suda.RateFixingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*suda.RateFixingEvent, 0, len(r.events))
	for _, event := range r.events {
		if partyID != nil && event.PartyID != *partyID {
			continue
		}
		clone := *event
		clone.RecordIDs = append([]id.ID(nil), event.RecordIDs...)
		out = append(out, &clone)
	}

	// Newest first
	sort.Slice(out, func(i, j int) bool {
		return out[i].FixedAt.After(out[j].FixedAt)
	})
	return out, nil
}

package suda

import (
	"context"
	"time"

	"wireline/internal/core/id"
)

// Repository defines storage for pending valuation records and fixing
// events.
type Repository interface {
	// CreateRecords persists freshly registered records.
	CreateRecords(ctx context.Context, records []*PendingValuationRecord) error

	// GetByIDs loads records in the given order. Returns NotFound if any
	// ID is unknown.
	GetByIDs(ctx context.Context, ids []id.ID) ([]*PendingValuationRecord, error)

	// SettleRecords atomically transitions every listed record from Open
	// to Settled, stamping the event. All-or-nothing: if any record is no
	// longer Open the call fails with StaleRecord and no record moves.
	SettleRecords(ctx context.Context, ids []id.ID, eventID id.ID, settledAt time.Time) error

	// ListOpen returns open records matching the filter, oldest first.
	ListOpen(ctx context.Context, filter Filter) ([]*PendingValuationRecord, error)

	// CountOpenByDocument reports how many of a document's records still
	// await fixing.
	CountOpenByDocument(ctx context.Context, docID id.ID) (int, error)

	// AppendEvent writes a fixing event to the journal. Events are
	// append-only.
	AppendEvent(ctx context.Context, event *RateFixingEvent) error

	// ListEvents returns the fixing journal, newest first, optionally
	// scoped to a party.
	ListEvents(ctx context.Context, partyID *id.ID) ([]*RateFixingEvent, error)
}

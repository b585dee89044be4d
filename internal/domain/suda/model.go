// Package suda implements the deferred-rate valuation ledger. Copper
// arrives and moves under a "Suda" arrangement: the weight is known at
// the gate, the price is agreed later. Until a fixing event settles
// them, pending records carry weight but no value.
package suda

import (
	"time"

	"wireline/internal/core/id"
	"wireline/internal/core/types"
)

// RecordStatus is the lifecycle state of a pending valuation record.
type RecordStatus string

const (
	// RecordOpen awaits a fixing event.
	RecordOpen RecordStatus = "Open"

	// RecordSettled is terminal. A record settles exactly once.
	RecordSettled RecordStatus = "Settled"
)

// PendingValuationRecord tracks one document line awaiting its rate.
// One record per line: a fixing event may cover any subset of a
// document's lines, so the line is the settlement grain.
type PendingValuationRecord struct {
	RecordID   id.ID `db:"record_id" json:"recordId"`
	DocumentID id.ID `db:"document_id" json:"documentId"`
	LineID     id.ID `db:"line_id" json:"lineId"`

	PartyID id.ID `db:"party_id" json:"partyId"`
	ItemID  id.ID `db:"item_id" json:"itemId"`

	// NetWeight frozen from the line at registration time. The fixing
	// amount is derived from this snapshot, not from a re-read of the
	// document.
	NetWeight types.Weight `db:"net_weight" json:"netWeight"`

	DateReceived time.Time    `db:"date_received" json:"dateReceived"`
	Status       RecordStatus `db:"status" json:"status"`

	// Settlement stamp, zero while open
	SettledBy id.ID     `db:"settled_by" json:"settledBy,omitempty"`
	SettledAt time.Time `db:"settled_at" json:"settledAt,omitempty"`
}

// Age returns how long the record has been awaiting a rate.
func (r *PendingValuationRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.DateReceived)
}

// RateFixingEvent is the immutable journal entry for one settlement.
// The event is the audit anchor: which records, what rate, who, when.
type RateFixingEvent struct {
	EventID id.ID `db:"event_id" json:"eventId"`

	// PartyID is the counterparty the rate was negotiated with. A fixing
	// event never spans parties.
	PartyID id.ID `db:"party_id" json:"partyId"`

	RecordIDs []id.ID `db:"-" json:"recordIds"`

	// AgreedRate per kg applied to every record in the event
	AgreedRate types.Rate `db:"agreed_rate" json:"agreedRate"`

	// TotalWeight is the sum of record net weights
	TotalWeight types.Weight `db:"total_weight" json:"totalWeight"`

	// TotalLiability is the sum of the settled line amounts, each rounded
	// per line. It always equals what the posting instructions carry;
	// rounding the aggregate weight*rate instead can drift by a rupee.
	TotalLiability types.Amount `db:"total_liability" json:"totalLiability"`

	FixedAt time.Time `db:"fixed_at" json:"fixedAt"`
	ActorID string    `db:"actor_id" json:"actorId,omitempty"`
}

// Filter narrows open-record queries.
type Filter struct {
	PartyID *id.ID
	ItemID  *id.ID

	// OlderThan keeps only records received before the given instant.
	// Used by the ageing alerts.
	OlderThan *time.Time
}

package entity

import (
	"context"
	"time"

	"wireline/internal/core/apperror"
)

// Status is the lifecycle state of a commercial document.
type Status string

const (
	// StatusDraft is a document under entry, not yet submitted.
	StatusDraft Status = "Draft"

	// StatusRequiresApproval marks a submitted document whose party exceeds
	// their credit limit. The document exists but needs sign-off before it
	// posts. Soft block: submission is never rejected outright.
	StatusRequiresApproval Status = "RequiresApproval"

	// StatusPendingRate marks a posted document whose lines await rate
	// fixing (Suda). Inventory carries nil value until settlement.
	StatusPendingRate Status = "PendingRate"

	// StatusPosted is a finalized document with known rates.
	StatusPosted Status = "Posted"

	// StatusSettled is a rate-pending document whose rates were fixed.
	// Terminal; only the deferred-rate engine performs this transition.
	StatusSettled Status = "Settled"
)

// Document is the base type for business transactions.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Status is the lifecycle state
	Status Status `db:"status" json:"status"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new draft Document with generated ID.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		Status:       StatusDraft,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// IsFinal reports whether the document snapshot is immutable.
func (d *Document) IsFinal() bool {
	return d.Status == StatusPosted || d.Status == StatusSettled
}

// CanModify checks if document can be modified.
// Posted and settled snapshots are immutable; corrections require a
// compensating document, never a mutation of history.
func (d *Document) CanModify() error {
	if d.IsFinal() {
		return apperror.NewDocumentImmutable(d.ID.String(), string(d.Status))
	}
	return nil
}

// MarkPosted finalizes the document with known rates.
func (d *Document) MarkPosted() {
	d.Status = StatusPosted
	d.Touch()
}

// MarkPendingRate posts the document with valuation deferred.
func (d *Document) MarkPendingRate() {
	d.Status = StatusPendingRate
	d.Touch()
}

// MarkRequiresApproval flags the document for credit sign-off.
func (d *Document) MarkRequiresApproval() {
	d.Status = StatusRequiresApproval
	d.Touch()
}

// MarkSettled records rate settlement. Called only by the deferred-rate
// engine as part of a fixing event.
func (d *Document) MarkSettled() {
	d.Status = StatusSettled
	d.Touch()
}

// IsBackdated checks if document date is in the past.
func (d *Document) IsBackdated() bool {
	return d.Date.Before(time.Now().UTC().Truncate(24 * time.Hour))
}

// Package ledger defines the posting instructions this core hands to the
// external accounting collaborator. The core derives instructions
// deterministically; it never writes a ledger itself and knows no account
// codes beyond a hint.
package ledger

import (
	"time"

	"wireline/internal/core/id"
	"wireline/internal/core/types"
)

// Direction is the side of the party ledger an instruction posts to.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// Account hints understood by the accounting collaborator.
const (
	HintPartyLedger   = "party_ledger"
	HintSudaLiability = "suda_liability"
)

// Instruction tells the accounting collaborator what to post.
type Instruction struct {
	// DocumentID is the commercial document this posting belongs to
	DocumentID id.ID `json:"documentId"`

	// PartyID is the account holder
	PartyID id.ID `json:"partyId"`

	// Amount in whole rupees. Sign follows the document: returns carry
	// negative amounts (liability or receivable reduction).
	Amount types.Amount `json:"amount"`

	Direction Direction `json:"direction"`

	// AccountHint narrows the target account family
	AccountHint string `json:"accountHint"`

	// ActorID is carried for the audit trail
	ActorID string `json:"actorId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Package credit provides the credit policy evaluator.
//
// The evaluator is a pure decision function. It never blocks a submission:
// callers translate an exceeded limit into a RequiresApproval document
// status. Soft block over hard block is a deliberate business rule: the
// sales desk may still book the order, but it needs sign-off.
package credit

import (
	"wireline/internal/core/id"
	"wireline/internal/core/types"
)

// Profile is a party's credit standing. CurrentBalance is owned by the
// accounting collaborator; this core only reads it.
type Profile struct {
	PartyID        id.ID        `json:"partyId"`
	CreditLimit    types.Amount `json:"creditLimit"`
	CurrentBalance types.Amount `json:"currentBalance"`
}

// Decision is the outcome of a credit evaluation.
type Decision struct {
	Exceeds          bool         `json:"exceeds"`
	ProjectedBalance types.Amount `json:"projectedBalance"`
}

// Evaluate projects the party balance after a prospective document and
// reports whether it would exceed the credit limit.
func Evaluate(profile Profile, prospectiveTotal types.Amount) Decision {
	projected := profile.CurrentBalance + prospectiveTotal
	return Decision{
		Exceeds:          projected > profile.CreditLimit,
		ProjectedBalance: projected,
	}
}

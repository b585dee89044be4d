// Package party provides the Party master catalog.
// Parties are the counterparties of the mill: scrap suppliers, cathode
// traders, and wire customers. A single party may act on both sides.
package party

import (
	"context"

	"wireline/internal/core/apperror"
	"wireline/internal/core/entity"
	"wireline/internal/core/types"
	"wireline/internal/domain/credit"
)

// Type defines the commercial role of a party.
type Type string

const (
	TypeCustomer Type = "customer"
	TypeSupplier Type = "supplier"
	TypeBoth     Type = "both"
)

// Party represents a business partner.
type Party struct {
	entity.Catalog

	// Type defines whether this is a customer, supplier, or both
	Type Type `db:"type" json:"type"`

	// CreditLimit is the maximum allowed receivable exposure (whole rupees)
	CreditLimit types.Amount `db:"credit_limit" json:"creditLimit"`

	// CurrentBalance is the running ledger balance. Owned by the external
	// accounting collaborator; this core reads it and never writes it.
	CurrentBalance types.Amount `db:"current_balance" json:"currentBalance"`

	// Contact details
	Phone   *string `db:"phone" json:"phone,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewParty creates a new Party with required fields.
func NewParty(code, name string, partyType Type) *Party {
	return &Party{
		Catalog: entity.NewCatalog(code, name),
		Type:    partyType,
	}
}

// Validate implements entity.Validatable interface.
func (p *Party) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	switch p.Type {
	case TypeCustomer, TypeSupplier, TypeBoth:
	default:
		return apperror.NewValidation("invalid party type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if p.CreditLimit.IsNegative() {
		return apperror.NewValidation("credit limit cannot be negative").
			WithDetail("field", "creditLimit")
	}

	return nil
}

// CreditProfile exposes the party's standing to the credit evaluator.
func (p *Party) CreditProfile() credit.Profile {
	return credit.Profile{
		PartyID:        p.ID,
		CreditLimit:    p.CreditLimit,
		CurrentBalance: p.CurrentBalance,
	}
}

// IsSupplier reports whether the party can appear on purchase documents.
func (p *Party) IsSupplier() bool {
	return p.Type == TypeSupplier || p.Type == TypeBoth
}

// IsCustomer reports whether the party can appear on sales documents.
func (p *Party) IsCustomer() bool {
	return p.Type == TypeCustomer || p.Type == TypeBoth
}

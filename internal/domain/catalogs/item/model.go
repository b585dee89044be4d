// Package item provides the Item master catalog: copper grades, rod,
// scrap, and consumables traded by weight.
package item

import (
	"context"

	"wireline/internal/core/apperror"
	"wireline/internal/core/entity"
	"wireline/internal/core/types"
)

// Category groups items for stock and valuation purposes.
type Category string

const (
	CategoryRawMaterial  Category = "raw_material"  // cathode, scrap
	CategoryFinishedGood Category = "finished_good" // drawn wire, rod
	CategoryConsumable   Category = "consumable"    // PVC resin, enamel
)

// Item represents a weighable stock item.
type Item struct {
	entity.Catalog

	Category Category `db:"category" json:"category"`

	// Unit is the stock-keeping unit; everything here trades in kg.
	Unit string `db:"unit" json:"unit"`

	// DefaultRate pre-fills document lines; nil when the item is always
	// negotiated (e.g. mixed scrap bought on Suda).
	DefaultRate *types.Rate `db:"default_rate" json:"defaultRate,omitempty"`

	// Scrap marks items that land in the scrap yard on returns.
	Scrap bool `db:"scrap" json:"scrap"`
}

// NewItem creates a new Item with required fields.
func NewItem(code, name string, category Category) *Item {
	return &Item{
		Catalog:  entity.NewCatalog(code, name),
		Category: category,
		Unit:     "kg",
	}
}

// Validate implements entity.Validatable interface.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}

	switch i.Category {
	case CategoryRawMaterial, CategoryFinishedGood, CategoryConsumable:
	default:
		return apperror.NewValidation("invalid item category").
			WithDetail("field", "category").
			WithDetail("value", string(i.Category))
	}

	if i.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}

	if i.DefaultRate != nil && i.DefaultRate.IsNegative() {
		return apperror.NewValidation("default rate cannot be negative").
			WithDetail("field", "defaultRate")
	}

	return nil
}

package item

import (
	"context"

	"wireline/internal/core/id"
	"wireline/internal/domain"
)

// Repository defines the interface for Item persistence.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)
	GetByCode(ctx context.Context, code string) (*Item, error)
	Update(ctx context.Context, it *Item) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error)
	Exists(ctx context.Context, itemID id.ID) (bool, error)
}

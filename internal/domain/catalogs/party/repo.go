package party

import (
	"context"

	"wireline/internal/core/id"
	"wireline/internal/domain"
)

// Repository defines the interface for Party persistence.
type Repository interface {
	Create(ctx context.Context, p *Party) error
	GetByID(ctx context.Context, partyID id.ID) (*Party, error)
	GetByCode(ctx context.Context, code string) (*Party, error)
	Update(ctx context.Context, p *Party) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Party], error)
	Exists(ctx context.Context, partyID id.ID) (bool, error)
}

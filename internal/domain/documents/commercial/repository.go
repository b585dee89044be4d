package commercial

import (
	"context"
	"time"

	"wireline/internal/core/entity"
	"wireline/internal/core/id"
	"wireline/internal/domain"
)

// Repository defines operations for commercial documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, docID id.ID) (*Document, error)
	GetByNumber(ctx context.Context, number string) (*Document, error)
	Update(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Document], error)

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Document, error)
}

// ListFilter for filtering commercial documents.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	Type        *DocumentType
	PartyID     *id.ID
	Status      *entity.Status
	RatePending *bool
	DateFrom    *time.Time
	DateTo      *time.Time
}

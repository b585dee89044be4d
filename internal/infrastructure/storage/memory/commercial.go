package memory

import (
	"context"
	"sort"
	"sync"

	"wireline/internal/core/apperror"
	"wireline/internal/core/id"
	"wireline/internal/domain"
	"wireline/internal/domain/documents/commercial"
)

// DocumentRepository is an in-memory commercial document store.
// Documents and their lines are stored separately, mirroring the SQL
// schema (header table plus line table).
type DocumentRepository struct {
	mu          sync.RWMutex
	byID        map[id.ID]*commercial.Document
	idsByNumber map[string]id.ID
	lines       map[id.ID][]commercial.Line
}

// NewDocumentRepository creates an empty document repository.
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		byID:        make(map[id.ID]*commercial.Document),
		idsByNumber: make(map[string]id.ID),
		lines:       make(map[id.ID][]commercial.Line),
	}
}

func cloneDocument(doc *commercial.Document) *commercial.Document {
	clone := *doc
	clone.Lines = nil // lines live in their own table
	return &clone
}

func cloneLines(lines []commercial.Line) []commercial.Line {
	out := make([]commercial.Line, len(lines))
	copy(out, lines)
	for i := range out {
		if out[i].Rate != nil {
			rate := *out[i].Rate
			out[i].Rate = &rate
		}
	}
	return out
}

func (r *DocumentRepository) Create(ctx context.Context, doc *commercial.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[doc.ID]; exists {
		return apperror.NewValidation("document already exists").
			WithDetail("id", doc.ID.String())
	}
	if _, exists := r.idsByNumber[doc.Number]; exists {
		return apperror.NewValidation("document number already in use").
			WithDetail("number", doc.Number)
	}

	r.byID[doc.ID] = cloneDocument(doc)
	r.idsByNumber[doc.Number] = doc.ID
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, docID id.ID) (*commercial.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.byID[docID]
	if !ok {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	return cloneDocument(doc), nil
}

func (r *DocumentRepository) GetByNumber(ctx context.Context, number string) (*commercial.Document, error) {
	r.mu.RLock()
	docID, ok := r.idsByNumber[number]
	r.mu.RUnlock()

	if !ok {
		return nil, apperror.NewNotFound("document", number)
	}
	return r.GetByID(ctx, docID)
}

func (r *DocumentRepository) Update(ctx context.Context, doc *commercial.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[doc.ID]
	if !ok {
		return apperror.NewNotFound("document", doc.ID.String())
	}
	if current.Number != doc.Number {
		delete(r.idsByNumber, current.Number)
		r.idsByNumber[doc.Number] = doc.ID
	}

	r.byID[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, docID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.byID[docID]
	if !ok {
		return apperror.NewNotFound("document", docID.String())
	}

	delete(r.idsByNumber, doc.Number)
	delete(r.byID, docID)
	delete(r.lines, docID)
	return nil
}

func (r *DocumentRepository) GetLines(ctx context.Context, docID id.ID) ([]commercial.Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.byID[docID]; !ok {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	return cloneLines(r.lines[docID]), nil
}

func (r *DocumentRepository) SaveLines(ctx context.Context, docID id.ID, lines []commercial.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[docID]; !ok {
		return apperror.NewNotFound("document", docID.String())
	}
	r.lines[docID] = cloneLines(lines)
	return nil
}

func (r *DocumentRepository) List(ctx context.Context, filter commercial.ListFilter) (domain.ListResult[*commercial.Document], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*commercial.Document, 0, len(r.byID))
	for _, doc := range r.byID {
		if !r.matches(doc, filter) {
			continue
		}
		items = append(items, cloneDocument(doc))
	}

	// Newest first: the register screen shows today's gate entries on top.
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].Number > items[j].Number
	})

	return paginate(items, filter.ListFilter)
}

func (r *DocumentRepository) matches(doc *commercial.Document, filter commercial.ListFilter) bool {
	if doc.DeletionMark && !filter.IncludeDeleted {
		return false
	}
	if filter.Type != nil && doc.Type != *filter.Type {
		return false
	}
	if filter.PartyID != nil && doc.PartyID != *filter.PartyID {
		return false
	}
	if filter.Status != nil && doc.Status != *filter.Status {
		return false
	}
	if filter.RatePending != nil && doc.RatePending != *filter.RatePending {
		return false
	}
	if filter.DateFrom != nil && doc.Date.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && doc.Date.After(*filter.DateTo) {
		return false
	}
	if filter.Search != "" && !matchesSearch(filter.Search, doc.Number, doc.Comment, doc.VehicleNo) {
		return false
	}
	return true
}

// GetForUpdate returns the document for modification. The in-memory
// backend relies on the transaction manager's exclusivity; the SQL
// backend issues SELECT ... FOR UPDATE here.
func (r *DocumentRepository) GetForUpdate(ctx context.Context, docID id.ID) (*commercial.Document, error) {
	return r.GetByID(ctx, docID)
}

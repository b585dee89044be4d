package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"wireline/internal/core/apperror"
	"wireline/internal/core/id"
	"wireline/internal/domain"
	"wireline/internal/domain/catalogs/party"
)

// PartyRepository is an in-memory party store.
type PartyRepository struct {
	mu        sync.RWMutex
	byID      map[id.ID]*party.Party
	idsByCode map[string]id.ID
}

// NewPartyRepository creates an empty party repository.
func NewPartyRepository() *PartyRepository {
	return &PartyRepository{
		byID:      make(map[id.ID]*party.Party),
		idsByCode: make(map[string]id.ID),
	}
}

func (r *PartyRepository) Create(ctx context.Context, p *party.Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; exists {
		return apperror.NewValidation("party already exists").
			WithDetail("id", p.ID.String())
	}
	if _, exists := r.idsByCode[p.Code]; exists {
		return apperror.NewValidation("party code already in use").
			WithDetail("code", p.Code)
	}

	clone := *p
	r.byID[p.ID] = &clone
	r.idsByCode[p.Code] = p.ID
	return nil
}

func (r *PartyRepository) GetByID(ctx context.Context, partyID id.ID) (*party.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[partyID]
	if !ok {
		return nil, apperror.NewNotFound("party", partyID.String())
	}
	clone := *p
	return &clone, nil
}

func (r *PartyRepository) GetByCode(ctx context.Context, code string) (*party.Party, error) {
	r.mu.RLock()
	partyID, ok := r.idsByCode[code]
	r.mu.RUnlock()

	if !ok {
		return nil, apperror.NewNotFound("party", code)
	}
	return r.GetByID(ctx, partyID)
}

func (r *PartyRepository) Update(ctx context.Context, p *party.Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[p.ID]
	if !ok {
		return apperror.NewNotFound("party", p.ID.String())
	}
	if current.Code != p.Code {
		delete(r.idsByCode, current.Code)
		r.idsByCode[p.Code] = p.ID
	}

	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *PartyRepository) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*party.Party], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*party.Party, 0, len(r.byID))
	for _, p := range r.byID {
		if p.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, p.Code, p.Name) {
			continue
		}
		clone := *p
		items = append(items, &clone)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	return paginate(items, filter)
}

func (r *PartyRepository) Exists(ctx context.Context, partyID id.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[partyID]
	return ok, nil
}

// matchesSearch is a case-insensitive substring match over the given
// fields.
func matchesSearch(query string, fields ...string) bool {
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// paginate applies limit/offset to a sorted slice.
func paginate[T any](items []T, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}

	start := filter.Offset
	if start > len(items) {
		start = len(items)
	}
	end := len(items)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	result.Items = items[start:end]
	return result, nil
}

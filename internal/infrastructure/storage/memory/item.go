package memory

import (
	"context"
	"sort"
	"sync"

	"wireline/internal/core/apperror"
	"wireline/internal/core/id"
	"wireline/internal/domain"
	"wireline/internal/domain/catalogs/item"
)

// ItemRepository is an in-memory item store.
type ItemRepository struct {
	mu        sync.RWMutex
	byID      map[id.ID]*item.Item
	idsByCode map[string]id.ID
}

// NewItemRepository creates an empty item repository.
func NewItemRepository() *ItemRepository {
	return &ItemRepository{
		byID:      make(map[id.ID]*item.Item),
		idsByCode: make(map[string]id.ID),
	}
}

func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[it.ID]; exists {
		return apperror.NewValidation("item already exists").
			WithDetail("id", it.ID.String())
	}
	if _, exists := r.idsByCode[it.Code]; exists {
		return apperror.NewValidation("item code already in use").
			WithDetail("code", it.Code)
	}

	clone := *it
	r.byID[it.ID] = &clone
	r.idsByCode[it.Code] = it.ID
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.byID[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID.String())
	}
	clone := *it
	return &clone, nil
}

func (r *ItemRepository) GetByCode(ctx context.Context, code string) (*item.Item, error) {
	r.mu.RLock()
	itemID, ok := r.idsByCode[code]
	r.mu.RUnlock()

	if !ok {
		return nil, apperror.NewNotFound("item", code)
	}
	return r.GetByID(ctx, itemID)
}

func (r *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[it.ID]
	if !ok {
		return apperror.NewNotFound("item", it.ID.String())
	}
	if current.Code != it.Code {
		delete(r.idsByCode, current.Code)
		r.idsByCode[it.Code] = it.ID
	}

	clone := *it
	r.byID[it.ID] = &clone
	return nil
}

func (r *ItemRepository) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*item.Item], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*item.Item, 0, len(r.byID))
	for _, it := range r.byID {
		if it.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, it.Code, it.Name) {
			continue
		}
		clone := *it
		items = append(items, &clone)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	return paginate(items, filter)
}

func (r *ItemRepository) Exists(ctx context.Context, itemID id.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[itemID]
	return ok, nil
}

package item

import (
	"context"
	"fmt"
	"time"

	"wireline/internal/core/id"
	"wireline/internal/domain"
	"wireline/pkg/logger"
	"wireline/pkg/sequence"
)

// Service provides business logic for the Item master.
type Service struct {
	repo      Repository
	allocator *sequence.Service
	hooks     *domain.HookRegistry[*Item]
}

// NewService creates a new Item service.
func NewService(repo Repository, allocator *sequence.Service) *Service {
	return &Service{
		repo:      repo,
		allocator: allocator,
		hooks:     domain.NewHookRegistry[*Item](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Item] {
	return s.hooks
}

// Create validates and stores a new item, generating a code if absent.
func (s *Service) Create(ctx context.Context, it *Item) error {
	if err := s.hooks.RunBeforeCreate(ctx, it); err != nil {
		return err
	}

	if err := it.Validate(ctx); err != nil {
		return err
	}

	if it.Code == "" {
		cfg := sequence.DefaultConfig("ITM")
		code, err := s.allocator.NextID(ctx, cfg, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		it.Code = code
	}

	if err := s.repo.Create(ctx, it); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	if err := s.hooks.RunAfterCreate(ctx, it); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "item created", "id", it.ID, "code", it.Code)
	return nil
}

// GetByID retrieves an item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// Update modifies an existing item.
func (s *Service) Update(ctx context.Context, it *Item) error {
	if err := s.hooks.RunBeforeUpdate(ctx, it); err != nil {
		return err
	}

	if err := it.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	return s.hooks.RunAfterUpdate(ctx, it)
}

// List retrieves items with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error) {
	return s.repo.List(ctx, filter)
}

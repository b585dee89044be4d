package party

import (
	"context"
	"fmt"
	"time"

	"wireline/internal/core/id"
	"wireline/internal/domain"
	"wireline/pkg/logger"
	"wireline/pkg/sequence"
)

// Service provides business logic for the Party master.
type Service struct {
	repo      Repository
	allocator *sequence.Service
	hooks     *domain.HookRegistry[*Party]
}

// NewService creates a new Party service.
func NewService(repo Repository, allocator *sequence.Service) *Service {
	return &Service{
		repo:      repo,
		allocator: allocator,
		hooks:     domain.NewHookRegistry[*Party](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Party] {
	return s.hooks
}

// Create validates and stores a new party, generating a code if absent.
func (s *Service) Create(ctx context.Context, p *Party) error {
	if err := s.hooks.RunBeforeCreate(ctx, p); err != nil {
		return err
	}

	if err := p.Validate(ctx); err != nil {
		return err
	}

	if p.Code == "" {
		cfg := sequence.DefaultConfig("PTY")
		code, err := s.allocator.NextID(ctx, cfg, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create party: %w", err)
	}

	if err := s.hooks.RunAfterCreate(ctx, p); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "party created", "id", p.ID, "code", p.Code)
	return nil
}

// GetByID retrieves a party.
func (s *Service) GetByID(ctx context.Context, partyID id.ID) (*Party, error) {
	return s.repo.GetByID(ctx, partyID)
}

// Update modifies an existing party. Credit limit changes arrive here;
// balance changes never do (the accounting collaborator owns the balance).
func (s *Service) Update(ctx context.Context, p *Party) error {
	if err := s.hooks.RunBeforeUpdate(ctx, p); err != nil {
		return err
	}

	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("update party: %w", err)
	}

	return s.hooks.RunAfterUpdate(ctx, p)
}

// List retrieves parties with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Party], error) {
	return s.repo.List(ctx, filter)
}

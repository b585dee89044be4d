package commercial

import (
	"context"
	"fmt"
	"time"

	appctx "wireline/internal/core/context"
	"wireline/internal/core/entity"
	"wireline/internal/core/id"
	"wireline/internal/core/tx"
	"wireline/internal/domain"
	"wireline/internal/domain/catalogs/party"
	"wireline/internal/domain/credit"
	"wireline/internal/domain/ledger"
	"wireline/pkg/logger"
	"wireline/pkg/sequence"
)

// PendingRegistrar registers a rate-pending document with the
// deferred-rate ledger. Implemented by the suda engine; wired at startup.
// Called inside the document-creation transaction so the document and its
// pending records commit or roll back together.
type PendingRegistrar interface {
	Register(ctx context.Context, doc *Document) error
}

// Service provides business operations for commercial documents.
type Service struct {
	repo      Repository
	parties   party.Repository
	allocator *sequence.Service
	txManager tx.Manager
	registrar PendingRegistrar
	hooks     *domain.HookRegistry[*Document]
}

// NewService creates a new commercial document service.
func NewService(
	repo Repository,
	parties party.Repository,
	allocator *sequence.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		parties:   parties,
		allocator: allocator,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Document](),
	}
}

// SetPendingRegistrar wires the deferred-rate ledger. Must be called
// before any rate-pending document is submitted.
func (s *Service) SetPendingRegistrar(r PendingRegistrar) {
	s.registrar = r
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Document] {
	return s.hooks
}

// Submit validates, numbers and persists a draft document, applying the
// credit gate and, for rate-pending invoices, registering the pending
// valuation records in the same unit of work.
//
// The credit gate is a soft block: a sales invoice that would push the
// customer past their limit is still created, but parked in
// RequiresApproval instead of posting.
func (s *Service) Submit(ctx context.Context, doc *Document) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	doc.Recalculate()

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		number, err := s.allocator.NextID(ctx, SequenceConfig(doc.Type), time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	if actor := appctx.GetActorID(ctx); actor != "" {
		doc.CreatedBy = actor
		doc.UpdatedBy = actor
	}

	decision, err := s.creditDecision(ctx, doc)
	if err != nil {
		return err
	}

	if decision != nil && decision.Exceeds {
		doc.MarkRequiresApproval()
	} else {
		s.markSubmitted(doc)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return s.registerIfPending(ctx, doc)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "commercial document submitted",
		"id", doc.ID,
		"number", doc.Number,
		"type", doc.Type,
		"status", doc.Status,
		"grand_total", doc.GrandTotal)

	return nil
}

// Approve releases a document parked by the credit gate. It proceeds to
// the status it would have had without the gate, registering pending
// records if valuation is deferred.
func (s *Service) Approve(ctx context.Context, docID id.ID) (*Document, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if doc.Status != entity.StatusRequiresApproval {
		return nil, fmt.Errorf("document %s is not awaiting approval (status %s)", doc.Number, doc.Status)
	}

	s.markSubmitted(doc)
	if actor := appctx.GetActorID(ctx); actor != "" {
		doc.UpdatedBy = actor
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.registerIfPending(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "commercial document approved",
		"id", doc.ID, "number", doc.Number, "status", doc.Status)

	return doc, nil
}

// markSubmitted moves a draft to its post-submission status.
func (s *Service) markSubmitted(doc *Document) {
	if doc.RatePending {
		doc.MarkPendingRate()
	} else {
		doc.MarkPosted()
	}
}

// registerIfPending hands a rate-pending document to the deferred-rate
// ledger within the current transaction.
func (s *Service) registerIfPending(ctx context.Context, doc *Document) error {
	if doc.Status != entity.StatusPendingRate {
		return nil
	}
	if s.registrar == nil {
		return fmt.Errorf("rate-pending document %s submitted but no pending registrar is wired", doc.Number)
	}
	if err := s.registrar.Register(ctx, doc); err != nil {
		return fmt.Errorf("register pending records: %w", err)
	}
	return nil
}

// creditDecision evaluates the credit gate. Only sales invoices grow
// customer exposure; everything else passes.
func (s *Service) creditDecision(ctx context.Context, doc *Document) (*credit.Decision, error) {
	if doc.Type != TypeSalesInvoice {
		return nil, nil
	}

	p, err := s.parties.GetByID(ctx, doc.PartyID)
	if err != nil {
		return nil, fmt.Errorf("load party: %w", err)
	}

	decision := credit.Evaluate(p.CreditProfile(), doc.GrandTotal)
	if decision.Exceeds {
		logger.Warn(ctx, "credit limit exceeded, routing to approval",
			"party_id", doc.PartyID,
			"projected_balance", decision.ProjectedBalance,
			"credit_limit", p.CreditLimit)
	}
	return &decision, nil
}

// GetByID retrieves a document with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update modifies a draft or approval-pending document.
func (s *Service) Update(ctx context.Context, doc *Document) error {
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	if err := doc.CanModify(); err != nil {
		return err
	}

	doc.Recalculate()

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// Delete removes an unposted document.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if err := doc.CanModify(); err != nil {
		return err
	}

	return s.repo.Delete(ctx, docID)
}

// List retrieves documents with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Document], error) {
	return s.repo.List(ctx, filter)
}

// Instruction derives the ledger posting for a finalized document.
// Returns nil while the document has not posted: pending-rate documents
// post through the fixing event instead.
func (d *Document) Instruction() *ledger.Instruction {
	if !d.IsFinal() {
		return nil
	}

	amount := d.GrandTotal
	if !d.Type.IsInvoice() {
		// Returns reduce the party's position.
		amount = amount.Neg()
	}

	return &ledger.Instruction{
		DocumentID:  d.ID,
		PartyID:     d.PartyID,
		Amount:      amount,
		Direction:   d.Type.LedgerDirection(),
		AccountHint: ledger.HintPartyLedger,
		ActorID:     d.UpdatedBy,
		CreatedAt:   time.Now().UTC(),
	}
}

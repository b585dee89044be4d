// Package sequence provides collision-free sequential document numbering.
//
// Allocation is an atomic increment-and-read per scope. The earlier
// prototype read a counter, then wrote it back, leaving a window for
// duplicate reads, and fell back to random suffixes in some flows. Both
// are correctness hazards this package exists to remove: every document
// type gets a gapless, monotonically increasing sequence.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"wireline/internal/core/apperror"
)

// Querier is the database contract for the SQL-backed strategy.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CounterStore is the contract for non-SQL backends (in-memory for tests
// and the demo binary). Increment must be atomic per scope key.
type CounterStore interface {
	// Increment advances the counter for scopeKey by one and returns the
	// new value. The first call on a fresh scope returns 1.
	Increment(ctx context.Context, scopeKey string) (int64, error)
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "INV", "PUR", "DN")
	Prefix string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 3: INV-2026-004)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string

	// WidenOnOverflow lets the number outgrow PadWidth instead of failing
	// with SCOPE_EXHAUSTED once the digit width is used up.
	WidenOnOverflow bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    3,
		ResetPeriod: "year",
	}
}

// Service allocates document numbers. Exactly one backend is set.
type Service struct {
	querier Querier
	store   CounterStore
}

// New creates an allocator backed by a SQL querier.
// The increment runs as a single UPSERT ... RETURNING statement, so
// concurrent callers serialize inside the database.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

// NewWithStore creates an allocator backed by a CounterStore.
func NewWithStore(store CounterStore) *Service {
	return &Service{store: store}
}

// NextID allocates the next document number for the scope derived from cfg
// and period. Pattern: PREFIX-YEAR-NNN (e.g., INV-2026-004).
func (s *Service) NextID(ctx context.Context, cfg Config, period time.Time) (string, error) {
	if s == nil || (s.querier == nil && s.store == nil) {
		return "", fmt.Errorf("sequence service is not initialized")
	}

	key := s.buildKey(cfg, period)

	var num int64
	var err error
	if s.querier != nil {
		num, err = s.nextFromDB(ctx, key)
	} else {
		num, err = s.store.Increment(ctx, key)
	}
	if err != nil {
		return "", err
	}

	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 3
	}

	if !cfg.WidenOnOverflow && num > maxForWidth(padWidth) {
		return "", apperror.NewScopeExhausted(key, num)
	}

	return s.formatNumber(cfg, period, num, padWidth), nil
}

// Next allocates a number using default config with prefix and the current
// period.
func (s *Service) Next(ctx context.Context, prefix string) (string, error) {
	return s.NextID(ctx, DefaultConfig(prefix), time.Now())
}

// nextFromDB performs the atomic increment via UPSERT + RETURNING.
func (s *Service) nextFromDB(ctx context.Context, key string) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (scope_key, last_value)
        VALUES ($1, 1)
        ON CONFLICT (scope_key) DO UPDATE SET last_value = sys_sequences.last_value + 1
        RETURNING last_value
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("next sequence value: %w", err)
	}
	return num, nil
}

// SetNext sets the counter so the NEXT allocation returns value
// (for migration purposes).
func (s *Service) SetNext(ctx context.Context, cfg Config, period time.Time, value int64) error {
	if s.querier == nil {
		return fmt.Errorf("SetNext requires a SQL backend")
	}

	key := s.buildKey(cfg, period)
	var result int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (scope_key, last_value)
		VALUES ($1, $2)
		ON CONFLICT (scope_key) DO UPDATE SET last_value = $2
		RETURNING last_value
	`, key, value-1).Scan(&result)
	return err
}

// buildKey creates the sequence scope key based on config and period.
func (s *Service) buildKey(cfg Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

// formatNumber creates the final number string.
func (s *Service) formatNumber(cfg Config, period time.Time, num int64, padWidth int) string {
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

func maxForWidth(width int) int64 {
	max := int64(1)
	for i := 0; i < width; i++ {
		max *= 10
	}
	return max - 1
}

// ParseNumber extracts the numeric part from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	var num int64
	patterns := []string{
		"%*[^-]-%*d-%d",
		"%*[^-]-%d",
	}

	for _, pattern := range patterns {
		if _, err := fmt.Sscanf(formatted, pattern, &num); err == nil {
			return num
		}
	}

	return -1
}

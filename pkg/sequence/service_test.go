package sequence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"wireline/internal/core/apperror"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the UPSERT ... RETURNING counter per scope key.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{values: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, _ := args[0].(string)
	if len(args) == 2 {
		// SetNext path: last_value = $2
		if v, ok := args[1].(int64); ok {
			m.values[key] = v
			return &mockRow{val: v}
		}
	}

	m.values[key]++
	return &mockRow{val: m.values[key]}
}

func TestNextID_Sequential(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("INV")
	period := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	num, err := svc.NextID(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-001" {
		t.Errorf("expected INV-2026-001, got %s", num)
	}

	num, err = svc.NextID(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-002" {
		t.Errorf("expected INV-2026-002, got %s", num)
	}
}

func TestNextID_ScopeIsolation(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	period := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.NextID(ctx, DefaultConfig("PUR"), period); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A different prefix starts its own sequence.
	num, err := svc.NextID(ctx, DefaultConfig("DN"), period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "DN-2026-001" {
		t.Errorf("expected DN-2026-001, got %s", num)
	}

	// A different year does too.
	next := time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC)
	num, err = svc.NextID(ctx, DefaultConfig("PUR"), next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PUR-2027-001" {
		t.Errorf("expected PUR-2027-001, got %s", num)
	}
}

func TestNextID_ScopeExhausted(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("INV")
	period := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	q.values["INV_2026"] = 999

	_, err := svc.NextID(ctx, cfg, period)
	if !apperror.IsScopeExhausted(err) {
		t.Fatalf("expected SCOPE_EXHAUSTED, got %v", err)
	}
}

func TestNextID_WidenOnOverflow(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("INV")
	cfg.WidenOnOverflow = true
	period := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	q.values["INV_2026"] = 999

	num, err := svc.NextID(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-1000" {
		t.Errorf("expected INV-2026-1000, got %s", num)
	}
}

func TestSetNext(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("INV")
	period := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	if err := svc.SetNext(ctx, cfg, period, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	num, err := svc.NextID(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-100" {
		t.Errorf("expected INV-2026-100, got %s", num)
	}
}

func TestParseNumber(t *testing.T) {
	if got := ParseNumber("INV-2026-004"); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
	if got := ParseNumber("DN-017"); got != 17 {
		t.Errorf("expected 17, got %d", got)
	}
	if got := ParseNumber("garbage"); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}

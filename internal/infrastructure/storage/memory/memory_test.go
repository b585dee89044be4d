package memory

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireline/internal/core/id"
	"wireline/internal/core/types"
	"wireline/internal/domain/calc"
	"wireline/internal/domain/catalogs/party"
	"wireline/internal/domain/documents/commercial"
)

func partyFixture(code string) *party.Party {
	return party.NewParty(code, "Fixture Party", party.TypeBoth)
}

func TestCounterStore_ConcurrentIncrementsAreGapless(t *testing.T) {
	store := NewCounterStore()
	ctx := context.Background()

	const n = 100
	values := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, _ := store.Increment(ctx, "INV_2026")
			values[idx] = v
		}(i)
	}
	wg.Wait()

	// Every value 1..n exactly once: no duplicates, no gaps.
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for i, v := range values {
		assert.Equal(t, int64(i+1), v)
	}
	assert.Equal(t, int64(n), store.Peek("INV_2026"))
}

func TestCounterStore_ScopesAreIndependent(t *testing.T) {
	store := NewCounterStore()
	ctx := context.Background()

	v1, _ := store.Increment(ctx, "INV_2026")
	v2, _ := store.Increment(ctx, "PUR_2026")

	assert.Equal(t, int64(1), v1)
	assert.Equal(t, int64(1), v2)
}

func TestTxManager_NestedCallsReuseTransaction(t *testing.T) {
	m := NewTxManager()

	calls := 0
	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		calls++
		// A nested unit of work must not deadlock on the outer lock.
		return m.RunInTransaction(ctx, func(ctx context.Context) error {
			calls++
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDocumentRepository_ClonesOnReadAndWrite(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	rate := types.MustRate("100")
	doc := commercial.New(commercial.TypeSalesInvoice, id.New())
	doc.Number = "INV-2026-001"
	doc.AddLine(calc.LineInput{
		ItemID:      id.New(),
		Unit:        "kg",
		GrossWeight: types.NewWeightFromFloat64(10),
		Rate:        &rate,
	})
	require.NoError(t, repo.Create(ctx, doc))
	require.NoError(t, repo.SaveLines(ctx, doc.ID, doc.Lines))

	// Mutating the caller's copy must not leak into the store.
	doc.Comment = "changed after save"

	stored, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Comment)

	lines, err := repo.GetLines(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	// Rate pointers are deep-copied line by line.
	*lines[0].Rate = types.MustRate("999")
	again, err := repo.GetLines(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, again[0].Rate.Equal(types.MustRate("100")))
}

func TestDocumentRepository_ListFilters(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()
	partyID := id.New()

	rate := types.MustRate("100")
	for i, docType := range []commercial.DocumentType{
		commercial.TypeSalesInvoice,
		commercial.TypePurchaseInvoice,
	} {
		doc := commercial.New(docType, partyID)
		doc.Number = "DOC-00" + string(rune('1'+i))
		doc.AddLine(calc.LineInput{
			ItemID:      id.New(),
			Unit:        "kg",
			GrossWeight: types.NewWeightFromFloat64(10),
			Rate:        &rate,
		})
		require.NoError(t, repo.Create(ctx, doc))
	}

	sales := commercial.TypeSalesInvoice
	result, err := repo.List(ctx, commercial.ListFilter{Type: &sales})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, commercial.TypeSalesInvoice, result.Items[0].Type)

	all, err := repo.List(ctx, commercial.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
}

func TestPartyRepository_CodeUniqueness(t *testing.T) {
	repo := NewPartyRepository()
	ctx := context.Background()

	first := partyFixture("PTY-001")
	require.NoError(t, repo.Create(ctx, first))

	dup := partyFixture("PTY-001")
	assert.Error(t, repo.Create(ctx, dup))

	byCode, err := repo.GetByCode(ctx, "PTY-001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byCode.ID)
}

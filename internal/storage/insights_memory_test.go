package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/finsight/internal/insights"
	"github.com/mselser95/finsight/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memEntry(ticker string, created time.Time, marker string) *insights.CacheEntry {
	return &insights.CacheEntry{
		ID:        uuid.New(),
		Ticker:    ticker,
		Insights:  insights.Document{"overview": map[string]any{"marker": marker}},
		CreatedAt: created,
	}
}

func TestMemoryInsightsStore_LatestPicksNewest(t *testing.T) {
	store := NewMemoryInsightsStore(zap.NewNop())
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	_, err := store.Latest(ctx, "AAPL")
	assert.ErrorIs(t, err, insights.ErrEntryNotFound)

	require.NoError(t, store.Save(ctx, memEntry("AAPL", base.Add(2*time.Hour), "newest")))
	require.NoError(t, store.Save(ctx, memEntry("AAPL", base, "oldest")))
	require.NoError(t, store.Save(ctx, memEntry("MSFT", base.Add(5*time.Hour), "other")))

	latest, err := store.Latest(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "newest", latest.Insights["overview"].(map[string]any)["marker"])
}

func TestMemoryInsightsStore_Deletes(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	seed := func() (*MemoryInsightsStore, *insights.CacheEntry) {
		store := NewMemoryInsightsStore(zap.NewNop())
		keep := memEntry("AAPL", base.Add(time.Hour), "keep")
		require.NoError(t, store.Save(ctx, memEntry("AAPL", base, "old")))
		require.NoError(t, store.Save(ctx, keep))
		require.NoError(t, store.Save(ctx, memEntry("MSFT", base.Add(-48*time.Hour), "stale")))
		return store, keep
	}

	t.Run("delete except", func(t *testing.T) {
		store, keep := seed()
		n, err := store.DeleteExcept(ctx, "AAPL", keep.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		latest, err := store.Latest(ctx, "AAPL")
		require.NoError(t, err)
		assert.Equal(t, keep.ID, latest.ID)
	})

	t.Run("delete ticker", func(t *testing.T) {
		store, _ := seed()
		n, err := store.DeleteByTicker(ctx, "AAPL")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = store.DeleteByTicker(ctx, "AAPL")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("delete all", func(t *testing.T) {
		store, _ := seed()
		n, err := store.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		list, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("purge", func(t *testing.T) {
		store, _ := seed()
		n, err := store.PurgeOlderThan(ctx, base)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n, "the cutoff itself is expired")

		_, err = store.Latest(ctx, "MSFT")
		assert.ErrorIs(t, err, insights.ErrEntryNotFound)
	})
}

func TestMemoryInsightsStore_ListNewestFirst(t *testing.T) {
	store := NewMemoryInsightsStore(zap.NewNop())
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, memEntry("AAPL", base, "a")))
	require.NoError(t, store.Save(ctx, memEntry("MSFT", base.Add(time.Hour), "m")))
	require.NoError(t, store.Save(ctx, memEntry("NVDA", base.Add(-time.Hour), "n")))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "MSFT", list[0].Ticker)
	assert.Equal(t, "AAPL", list[1].Ticker)
	assert.Equal(t, "NVDA", list[2].Ticker)
	assert.NoError(t, store.Close())
}

func TestMemoryInsightsStore_WithManager(t *testing.T) {
	store := NewMemoryInsightsStore(zap.NewNop())
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	gen := &stubGenerator{text: `{"overview":{"a":1},"investment_analysis":{"b":2}}`}

	m, err := insights.New(&insights.Config{
		Store:     store,
		Generator: gen,
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return now },
	})
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err = m.GetInsights(ctx, "aapl", true)
		require.NoError(t, err)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "each refresh replaces the previous entry")
	assert.Equal(t, 3, gen.calls)
}

type stubGenerator struct {
	text  string
	calls int
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	return g.text, nil
}

func TestMemoryInsightsStore_EntriesAreIsolatedFromCallers(t *testing.T) {
	store := NewMemoryInsightsStore(zap.NewNop())
	ctx := context.Background()

	entry := memEntry("AAPL", time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), "original")
	require.NoError(t, store.Save(ctx, entry))

	entry.Insights["overview"].(map[string]any)["marker"] = "changed-after-save"
	entry.Insights["extra"] = true

	first, err := store.Latest(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "original", first.Insights["overview"].(map[string]any)["marker"])
	assert.NotContains(t, first.Insights, "extra")

	first.Insights["overview"].(map[string]any)["marker"] = "changed-after-read"

	second, err := store.Latest(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "original", second.Insights["overview"].(map[string]any)["marker"])
}

func TestMemoryInsightsStore_ManagerResultDoesNotAliasCache(t *testing.T) {
	store := NewMemoryInsightsStore(zap.NewNop())
	m, err := insights.New(&insights.Config{
		Store:     store,
		Generator: testutil.NewMockGenerator(testutil.InsightsJSON),
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)

	fresh, err := m.GetInsights(context.Background(), "AAPL", false)
	require.NoError(t, err)
	require.True(t, fresh.Fresh)
	fresh.Insights["overview"].(map[string]any)["sector"] = "Mutated"

	cached, err := m.GetInsights(context.Background(), "AAPL", false)
	require.NoError(t, err)
	require.True(t, cached.Cached)
	assert.Equal(t, "Technology", cached.Insights["overview"].(map[string]any)["sector"])
}

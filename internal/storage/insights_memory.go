package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/finsight/internal/insights"
	"go.uber.org/zap"
)

// MemoryInsightsStore implements insights.Store in process memory.
// Entries are lost on restart.
type MemoryInsightsStore struct {
	entries map[string][]insights.CacheEntry
	logger  *zap.Logger
	mu      sync.RWMutex
}

// NewMemoryInsightsStore creates an empty in-memory insights store.
func NewMemoryInsightsStore(logger *zap.Logger) *MemoryInsightsStore {
	logger.Info("memory-insights-store-initialized")
	return &MemoryInsightsStore{
		entries: make(map[string][]insights.CacheEntry),
		logger:  logger,
	}
}

// Latest returns the most recent entry for ticker regardless of age.
func (m *MemoryInsightsStore) Latest(ctx context.Context, ticker string) (*insights.CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.entries[ticker]
	if len(list) == 0 {
		return nil, insights.ErrEntryNotFound
	}

	latest := list[0]
	for _, e := range list[1:] {
		if e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}

	doc, err := latest.Insights.Clone()
	if err != nil {
		return nil, fmt.Errorf("copy cached insights for %s: %w", ticker, err)
	}
	latest.Insights = doc
	return &latest, nil
}

// Save stores a copy of entry. Later changes to the caller's document do not
// reach the stored one.
func (m *MemoryInsightsStore) Save(ctx context.Context, entry *insights.CacheEntry) error {
	doc, err := entry.Insights.Clone()
	if err != nil {
		return fmt.Errorf("copy insights for %s: %w", entry.Ticker, err)
	}

	stored := *entry
	stored.Insights = doc

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entry.Ticker] = append(m.entries[entry.Ticker], stored)
	return nil
}

// DeleteExcept removes every entry for ticker other than keepID.
func (m *MemoryInsightsStore) DeleteExcept(ctx context.Context, ticker string, keepID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.filter(ticker, func(e insights.CacheEntry) bool { return e.ID != keepID }), nil
}

// DeleteByTicker removes every entry for ticker.
func (m *MemoryInsightsStore) DeleteByTicker(ctx context.Context, ticker string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := int64(len(m.entries[ticker]))
	delete(m.entries, ticker)
	return deleted, nil
}

// DeleteAll removes every entry.
func (m *MemoryInsightsStore) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for _, list := range m.entries {
		deleted += int64(len(list))
	}
	m.entries = make(map[string][]insights.CacheEntry)
	return deleted, nil
}

// PurgeOlderThan removes entries created at or before cutoff.
func (m *MemoryInsightsStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for ticker := range m.entries {
		deleted += m.filter(ticker, func(e insights.CacheEntry) bool { return !e.CreatedAt.After(cutoff) })
	}
	return deleted, nil
}

// List returns every entry's ticker and creation time, newest first.
func (m *MemoryInsightsStore) List(ctx context.Context) ([]insights.EntrySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []insights.EntrySummary{}
	for _, list := range m.entries {
		for _, e := range list {
			out = append(out, insights.EntrySummary{Ticker: e.Ticker, CreatedAt: e.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Close is a no-op.
func (m *MemoryInsightsStore) Close() error {
	m.logger.Info("closing-memory-insights-store")
	return nil
}

// filter drops the entries of ticker matching remove. Callers hold the write lock.
func (m *MemoryInsightsStore) filter(ticker string, remove func(insights.CacheEntry) bool) int64 {
	list := m.entries[ticker]
	kept := make([]insights.CacheEntry, 0, len(list))
	for _, e := range list {
		if !remove(e) {
			kept = append(kept, e)
		}
	}

	deleted := int64(len(list) - len(kept))
	if len(kept) == 0 {
		delete(m.entries, ticker)
	} else {
		m.entries[ticker] = kept
	}
	return deleted
}

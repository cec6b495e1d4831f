package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mselser95/finsight/internal/holdings"
	"go.uber.org/zap"
)

// MemoryHoldingsStore implements holdings.Store in process memory.
type MemoryHoldingsStore struct {
	byID   map[uuid.UUID]holdings.Holding
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewMemoryHoldingsStore creates an empty in-memory holdings store.
func NewMemoryHoldingsStore(logger *zap.Logger) *MemoryHoldingsStore {
	logger.Info("memory-holdings-store-initialized")
	return &MemoryHoldingsStore{
		byID:   make(map[uuid.UUID]holdings.Holding),
		logger: logger,
	}
}

// Create stores a new holding.
func (m *MemoryHoldingsStore) Create(ctx context.Context, h *holdings.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID[h.ID] = *h
	return nil
}

// ListByUser returns the user's holdings, newest purchase first.
func (m *MemoryHoldingsStore) ListByUser(ctx context.Context, userID string) ([]holdings.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := []holdings.Holding{}
	for _, h := range m.byID {
		if h.UserID == userID {
			list = append(list, h)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].PurchaseDate.Equal(list[j].PurchaseDate) {
			return list[i].PurchaseDate.After(list[j].PurchaseDate)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// Get returns one of the user's holdings.
func (m *MemoryHoldingsStore) Get(ctx context.Context, userID string, id uuid.UUID) (*holdings.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.byID[id]
	if !ok || h.UserID != userID {
		return nil, holdings.ErrNotFound
	}
	return &h, nil
}

// Delete removes one of the user's holdings.
func (m *MemoryHoldingsStore) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.byID[id]
	if !ok || h.UserID != userID {
		return holdings.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// Close is a no-op.
func (m *MemoryHoldingsStore) Close() error {
	m.logger.Info("closing-memory-holdings-store")
	return nil
}

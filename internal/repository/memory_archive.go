package repository

import (
	"context"
	"sync"

	"InlineRank/internal/domain/models"
	domrepo "InlineRank/internal/domain/repository"
)

// MemoryHistoryArchive keeps the last fetched history per product in process.
// Used when ClickHouse is disabled.
type MemoryHistoryArchive struct {
	mu   sync.RWMutex
	data map[int64]models.PriceHistory
}

var _ domrepo.HistoryArchive = (*MemoryHistoryArchive)(nil)

func NewMemoryHistoryArchive() *MemoryHistoryArchive {
	return &MemoryHistoryArchive{data: make(map[int64]models.PriceHistory)}
}

func (m *MemoryHistoryArchive) SaveHistory(_ context.Context, productID int64, h models.PriceHistory) error {
	cp := make(models.PriceHistory, len(h))
	copy(cp, h)
	m.mu.Lock()
	m.data[productID] = cp
	m.mu.Unlock()
	return nil
}

// LoadHistory returns an empty history for unknown products.
func (m *MemoryHistoryArchive) LoadHistory(_ context.Context, productID int64) (models.PriceHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h := m.data[productID]
	out := make(models.PriceHistory, len(h))
	copy(out, h)
	return out, nil
}

func (m *MemoryHistoryArchive) Close() error { return nil }

package batch

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lrchart/chartai/internal/core"
)

// MemoryStore is a bounded in-memory batch store. The oldest batch is
// dropped once maxSize is reached.
type MemoryStore struct {
	batches []core.Batch
	maxSize int
	now     func() time.Time
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 50
	}
	return &MemoryStore{
		batches: make([]core.Batch, 0, maxSize),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Save adds a batch to the store.
func (m *MemoryStore) Save(ctx context.Context, b core.Batch) (core.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b.ID = uuid.NewString()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = m.now()
	}
	b.Signals = slices.Clone(b.Signals)

	m.batches = append(m.batches, b)

	// Trim if over capacity (remove oldest)
	if len(m.batches) > m.maxSize {
		m.batches = slices.Delete(m.batches, 0, len(m.batches)-m.maxSize)
	}

	return clone(b), nil
}

// GetByID retrieves a batch by ID.
func (m *MemoryStore) GetByID(ctx context.Context, id string) (*core.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.batches {
		if m.batches[i].ID == id {
			b := clone(m.batches[i])
			return &b, nil
		}
	}
	return nil, core.ErrNotFound
}

// List returns batches matching the filter, newest first.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]core.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []core.Batch{}
	for i := len(m.batches) - 1; i >= 0; i-- {
		if matches(m.batches[i], filter) {
			result = append(result, clone(m.batches[i]))
		}
	}

	// Apply offset and limit
	if filter.Offset >= len(result) {
		return []core.Batch{}, nil
	}
	if filter.Offset > 0 {
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Count returns the count of matching batches.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, b := range m.batches {
		if matches(b, filter) {
			count++
		}
	}
	return count, nil
}

func matches(b core.Batch, filter ListFilter) bool {
	if filter.Kind != "" && b.Kind != filter.Kind {
		return false
	}
	if filter.Pair != "" && b.Pair != filter.Pair {
		return false
	}
	return true
}

func clone(b core.Batch) core.Batch {
	b.Signals = slices.Clone(b.Signals)
	return b
}

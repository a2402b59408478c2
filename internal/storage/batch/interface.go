// Package batch keeps recently generated signal lists in memory so they can
// be rendered as reports or published after the request that made them.
package batch

import (
	"context"

	"github.com/lrchart/chartai/internal/core"
)

// Store holds recent batches.
type Store interface {
	// Save assigns an ID and creation time and stores the batch.
	Save(ctx context.Context, b core.Batch) (core.Batch, error)

	// GetByID retrieves a batch by its ID.
	GetByID(ctx context.Context, id string) (*core.Batch, error)

	// List returns batches matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]core.Batch, error)

	// Count returns the number of batches matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter defines criteria for listing batches.
type ListFilter struct {
	Kind   core.BatchKind
	Pair   string
	Limit  int
	Offset int
}

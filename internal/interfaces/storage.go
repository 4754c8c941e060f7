package interfaces

import (
	"context"

	"github.com/ternarybob/census/internal/models"
)

// SourceCache caches fetched pipeline source between runs so a re-run
// against an unchanged tree does not repeat hundreds of raw-file fetches.
type SourceCache interface {
	// Get returns the cached content and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, content string) error
}

// RunStorage persists run summaries for reconciliation across runs.
type RunStorage interface {
	SaveRunSummary(ctx context.Context, summary *models.RunSummary) error
	// ListRunSummaries returns summaries ordered newest first.
	ListRunSummaries(ctx context.Context, limit int) ([]*models.RunSummary, error)
}

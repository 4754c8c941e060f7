package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/interfaces"
	"github.com/ternarybob/census/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// RunStorage persists run summaries. Implements interfaces.RunStorage.
type RunStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRunStorage creates a RunStorage instance
func NewRunStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RunStorage {
	return &RunStorage{
		db:     db,
		logger: logger,
	}
}

// SaveRunSummary inserts or updates a run summary
func (s *RunStorage) SaveRunSummary(ctx context.Context, summary *models.RunSummary) error {
	if err := s.db.Store().Upsert(summary.ID, summary); err != nil {
		return fmt.Errorf("failed to save run summary: %w", err)
	}

	s.logger.Debug().
		Str("run_id", summary.ID).
		Int("records", summary.RecordCount).
		Msg("Run summary saved")
	return nil
}

// ListRunSummaries returns up to limit summaries, newest first
func (s *RunStorage) ListRunSummaries(ctx context.Context, limit int) ([]*models.RunSummary, error) {
	var summaries []*models.RunSummary

	query := &badgerhold.Query{}
	query.SortBy("StartedAt").Reverse()
	if limit > 0 {
		query.Limit(limit)
	}

	if err := s.db.Store().Find(&summaries, query); err != nil {
		return nil, fmt.Errorf("failed to list run summaries: %w", err)
	}

	return summaries, nil
}

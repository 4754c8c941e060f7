package models

import "time"

// RunSummary captures the outcome of one consolidation run. Summaries are
// persisted so successive runs can be reconciled against each other.
type RunSummary struct {
	ID         string    `badgerhold:"key" json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// LeafCount and RecordCount must be equal on a healthy run; a mismatch
	// means a leaf was dropped somewhere between the walker and the report.
	LeafCount   int `json:"leaf_count"`
	RecordCount int `json:"record_count"`

	ModularCount      int `json:"modular_count"`
	LegacyCount       int `json:"legacy_count"`
	UndeterminedCount int `json:"undetermined_count"`
	ActiveCount       int `json:"active_count"`
	ErrorCount        int `json:"error_count"`

	OutputPath string `json:"output_path,omitempty"`
}

// Tally folds one record into the summary counters.
func (s *RunSummary) Tally(rec JobRecord) {
	s.RecordCount++
	switch rec.Modularity {
	case ModularityModular:
		s.ModularCount++
	case ModularityLegacy:
		s.LegacyCount++
	default:
		s.UndeterminedCount++
	}
	if rec.IsActive {
		s.ActiveCount++
	}
	if rec.Error != "" {
		s.ErrorCount++
	}
}

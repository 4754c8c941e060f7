package common

import "time"

// ActivityResult is the derived activity status of one job.
type ActivityResult struct {
	// LastRunAt echoes the input timestamp; nil when the job never ran.
	LastRunAt *time.Time
	// IsActive is true when the last build falls inside the staleness window.
	IsActive bool
}

// ResolveActivity derives active/inactive from a last-build timestamp against
// a staleness threshold. A job that never ran is inactive. Absence is a valid
// input, not an error; the function is pure and has no failure modes.
func ResolveActivity(lastRun *time.Time, now time.Time, stalenessDays int) ActivityResult {
	if lastRun == nil {
		return ActivityResult{IsActive: false}
	}

	cutoff := now.AddDate(0, 0, -stalenessDays)
	return ActivityResult{
		LastRunAt: lastRun,
		IsActive:  !lastRun.Before(cutoff),
	}
}

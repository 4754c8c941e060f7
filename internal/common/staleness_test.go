package common

import (
	"testing"
	"time"
)

// Helper to create a time easily
func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return parsed
}

func TestResolveActivity(t *testing.T) {
	now := mustTime(t, "2025-06-15T12:00:00Z")

	tests := []struct {
		name          string
		lastRunDays   int // days before now; -1 means never ran
		stalenessDays int
		wantActive    bool
	}{
		{"ran 5 days ago within 30 day window", 5, 30, true},
		{"ran 400 days ago outside 30 day window", 400, 30, false},
		{"ran exactly at the threshold", 30, 30, true},
		{"ran one day past the threshold", 31, 30, false},
		{"ran today", 0, 30, true},
		{"ran 89 days ago with default window", 89, 90, true},
		{"ran 91 days ago with default window", 91, 90, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lastRun := now.AddDate(0, 0, -tt.lastRunDays)
			got := ResolveActivity(&lastRun, now, tt.stalenessDays)

			if got.IsActive != tt.wantActive {
				t.Errorf("ResolveActivity() IsActive = %v, want %v", got.IsActive, tt.wantActive)
			}
			if got.LastRunAt == nil || !got.LastRunAt.Equal(lastRun) {
				t.Errorf("ResolveActivity() LastRunAt = %v, want %v", got.LastRunAt, lastRun)
			}
		})
	}
}

func TestResolveActivityNeverRan(t *testing.T) {
	now := mustTime(t, "2025-06-15T12:00:00Z")

	got := ResolveActivity(nil, now, 30)

	if got.LastRunAt != nil {
		t.Errorf("ResolveActivity(nil) LastRunAt = %v, want nil", got.LastRunAt)
	}
	if got.IsActive {
		t.Error("ResolveActivity(nil) IsActive = true, want false")
	}
}

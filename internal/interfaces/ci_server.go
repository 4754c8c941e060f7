package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/census/internal/models"
)

// CIServer is the capability the walker and consolidator need from the CI
// server. Implementations must distinguish semantic absence (ErrNotFound)
// from transient failures (TransientError) so the consolidator can tell a
// job with no builds apart from a fetch that should be flagged.
type CIServer interface {
	// ListChildren returns the items directly under a folder path. An empty
	// path lists the server root.
	ListChildren(ctx context.Context, path []string) ([]models.ChildRef, error)

	// GetJobMetadata resolves pipeline type, SCM URL, Jenkinsfile path and
	// branch specifier from the job configuration.
	GetJobMetadata(ctx context.Context, path []string) (*models.JobMetadata, error)

	// GetLastBuildTimestamp returns the timestamp of the job's last build,
	// or (nil, nil) when the job has never run.
	GetLastBuildTimestamp(ctx context.Context, path []string) (*time.Time, error)
}

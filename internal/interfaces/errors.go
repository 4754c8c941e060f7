package interfaces

import (
	"errors"
	"fmt"

	"github.com/ternarybob/census/internal/models"
)

// ErrNotFound marks semantic absence: a job with no builds, a repository or
// file that does not exist. It is not a fault and never aborts a run.
var ErrNotFound = errors.New("not found")

// TransientError wraps a recoverable collaborator failure: network errors,
// auth rejections, rate limiting, server errors. Per-job transient failures
// are captured on the record; a transient failure at the tree root is fatal.
type TransientError struct {
	Op     string // e.g. "jenkins.list_children"
	Status int    // HTTP status when applicable, 0 otherwise
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// CycleError reports a repeated path prefix during tree traversal. The job
// hierarchy is expected to be a tree; a cycle fails that subtree only.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("hierarchy cycle at %s", models.JoinPath(e.Path))
}

// IsNotFound reports whether err represents semantic absence.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient reports whether err is a recoverable collaborator failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

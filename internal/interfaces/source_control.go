package interfaces

import (
	"context"

	"github.com/ternarybob/census/internal/models"
)

// FileFetcher retrieves raw file contents from a source-control host.
// A missing file or repository returns ErrNotFound; transport and auth
// failures return a TransientError.
type FileFetcher interface {
	GetFileContents(ctx context.Context, repo models.RepoRef, filePath, ref string) (string, error)
}

// FetcherRouter selects the fetcher responsible for a repository host.
type FetcherRouter interface {
	ForRepo(repo models.RepoRef) (FileFetcher, error)
}

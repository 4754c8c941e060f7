// -----------------------------------------------------------------------
// GitLab raw-file fetcher
// -----------------------------------------------------------------------

package scm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/interfaces"
	"github.com/ternarybob/census/internal/models"
	gitlab "github.com/xanzy/go-gitlab"
)

// GitLabFetcher retrieves raw file contents from a GitLab instance. It
// implements interfaces.FileFetcher.
type GitLabFetcher struct {
	client *gitlab.Client
	logger arbor.ILogger
}

// NewGitLabFetcher creates a fetcher against the given GitLab base URL.
func NewGitLabFetcher(baseURL, token string, logger arbor.ILogger) (*GitLabFetcher, error) {
	client, err := gitlab.NewClient(token, gitlab.WithBaseURL(strings.TrimRight(baseURL, "/")+"/api/v4"))
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}

	return &GitLabFetcher{
		client: client,
		logger: logger,
	}, nil
}

// GetFileContents fetches one file at one ref. Missing files, refs and
// projects all map to ErrNotFound so the caller can move on to the next
// candidate ref.
func (f *GitLabFetcher) GetFileContents(ctx context.Context, repo models.RepoRef, filePath, ref string) (string, error) {
	raw, resp, err := f.client.RepositoryFiles.GetRawFile(repo.ProjectPath, filePath, &gitlab.GetRawFileOptions{
		Ref: gitlab.String(ref),
	}, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("gitlab: %s@%s:%s: %w", repo.ProjectPath, ref, filePath, interfaces.ErrNotFound)
		}
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return "", &interfaces.TransientError{Op: "gitlab.get_raw_file", Status: status, Err: err}
	}

	f.logger.Debug().
		Str("project", repo.ProjectPath).
		Str("ref", ref).
		Str("path", filePath).
		Msg("Fetched file from GitLab")

	return string(raw), nil
}

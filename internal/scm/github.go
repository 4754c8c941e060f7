// -----------------------------------------------------------------------
// GitHub raw-file fetcher
// -----------------------------------------------------------------------

package scm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v57/github"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/interfaces"
	"github.com/ternarybob/census/internal/models"
	"golang.org/x/oauth2"
)

// GitHubFetcher retrieves file contents from github.com or a GitHub
// Enterprise instance. It implements interfaces.FileFetcher.
type GitHubFetcher struct {
	client *github.Client
	logger arbor.ILogger
}

// NewGitHubFetcher creates a fetcher. An empty baseURL targets github.com;
// otherwise baseURL is treated as a GitHub Enterprise server address.
func NewGitHubFetcher(baseURL, token string, logger arbor.ILogger) (*GitHubFetcher, error) {
	var httpClient *http.Client
	if token != "" {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		))
	}

	client := github.NewClient(httpClient)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create github enterprise client: %w", err)
		}
	}

	return &GitHubFetcher{
		client: client,
		logger: logger,
	}, nil
}

// GetFileContents fetches one file at one ref. Missing files and refs map
// to ErrNotFound.
func (f *GitHubFetcher) GetFileContents(ctx context.Context, repo models.RepoRef, filePath, ref string) (string, error) {
	content, _, resp, err := f.client.Repositories.GetContents(ctx, repo.Owner(), repo.Repo(), filePath, &github.RepositoryContentGetOptions{
		Ref: ref,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("github: %s@%s:%s: %w", repo.ProjectPath, ref, filePath, interfaces.ErrNotFound)
		}
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return "", &interfaces.TransientError{Op: "github.get_contents", Status: status, Err: err}
	}
	if content == nil {
		// Directory listing; a Jenkinsfile path should never be a directory.
		return "", fmt.Errorf("github: %s@%s:%s is not a file: %w", repo.ProjectPath, ref, filePath, interfaces.ErrNotFound)
	}

	text, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode github content for %s: %w", filePath, err)
	}

	f.logger.Debug().
		Str("project", repo.ProjectPath).
		Str("ref", ref).
		Str("path", filePath).
		Msg("Fetched file from GitHub")

	return text, nil
}

package common

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ternarybob/census/internal/models"
	giturls "github.com/whilp/git-urls"
)

// NormalizeSCMURL converts the remote URL formats found in job configurations
// (scp-style git@host:path, git://, ssh://) to a canonical https form. URLs
// already in https form pass through unchanged; a port carried by the remote
// is preserved.
func NormalizeSCMURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty SCM URL")
	}

	u, err := giturls.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unrecognized SCM URL format %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("SCM URL %q has no host", raw)
	}

	return "https://" + u.Host + "/" + strings.TrimPrefix(u.Path, "/"), nil
}

// ParseRepoRef extracts the repository host and project path from a
// normalized https SCM URL. The host keeps its port so fetches go against
// the endpoint the job actually references.
func ParseRepoRef(normalized string) (models.RepoRef, error) {
	u, err := url.Parse(normalized)
	if err != nil {
		return models.RepoRef{}, fmt.Errorf("invalid SCM URL %q: %w", normalized, err)
	}
	if u.Host == "" {
		return models.RepoRef{}, fmt.Errorf("SCM URL %q has no host", normalized)
	}

	project := strings.Trim(u.Path, "/")
	project = strings.TrimSuffix(project, ".git")
	if project == "" {
		return models.RepoRef{}, fmt.Errorf("SCM URL %q has no project path", normalized)
	}

	return models.RepoRef{
		Host:        u.Host,
		ProjectPath: project,
	}, nil
}

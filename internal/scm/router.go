package scm

import (
	"fmt"
	"strings"

	"github.com/ternarybob/census/internal/interfaces"
	"github.com/ternarybob/census/internal/models"
)

// Router picks the fetcher responsible for a repository host. Hosts named
// in the GitHub host list go to the GitHub fetcher; everything else goes to
// GitLab, which is where the bulk of an internal estate usually lives.
type Router struct {
	gitlab      interfaces.FileFetcher
	github      interfaces.FileFetcher
	githubHosts map[string]bool
}

// NewRouter creates a router over the configured fetchers. Either fetcher
// may be nil when that host type is not configured.
func NewRouter(gitlabFetcher, githubFetcher interfaces.FileFetcher, githubHosts []string) *Router {
	hosts := make(map[string]bool, len(githubHosts)+1)
	hosts["github.com"] = true
	for _, h := range githubHosts {
		hosts[strings.ToLower(h)] = true
	}

	return &Router{
		gitlab:      gitlabFetcher,
		github:      githubFetcher,
		githubHosts: hosts,
	}
}

// ForRepo returns the fetcher for the repository's host.
func (r *Router) ForRepo(repo models.RepoRef) (interfaces.FileFetcher, error) {
	if r.githubHosts[strings.ToLower(repo.Host)] {
		if r.github == nil {
			return nil, fmt.Errorf("no github fetcher configured for host %q", repo.Host)
		}
		return r.github, nil
	}

	if r.gitlab == nil {
		return nil, fmt.Errorf("no gitlab fetcher configured for host %q", repo.Host)
	}
	return r.gitlab, nil
}

package scm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/interfaces"
	"github.com/ternarybob/census/internal/models"
)

// CachedFetcher wraps a FileFetcher with a read-through cache. Only
// successful fetches are cached; absences and failures always go back to
// the host so a file added between runs is picked up.
type CachedFetcher struct {
	inner  interfaces.FileFetcher
	cache  interfaces.SourceCache
	logger arbor.ILogger
}

// NewCachedFetcher wraps inner with the given cache.
func NewCachedFetcher(inner interfaces.FileFetcher, cache interfaces.SourceCache, logger arbor.ILogger) *CachedFetcher {
	return &CachedFetcher{
		inner:  inner,
		cache:  cache,
		logger: logger,
	}
}

// GetFileContents serves from the cache when possible, otherwise fetches
// and stores. Cache failures are logged and bypassed, never fatal.
func (f *CachedFetcher) GetFileContents(ctx context.Context, repo models.RepoRef, filePath, ref string) (string, error) {
	key := cacheKey(repo, filePath, ref)

	if content, ok, err := f.cache.Get(ctx, key); err != nil {
		f.logger.Warn().Err(err).Str("key", key).Msg("Source cache read failed")
	} else if ok {
		return content, nil
	}

	content, err := f.inner.GetFileContents(ctx, repo, filePath, ref)
	if err != nil {
		return "", err
	}

	if err := f.cache.Set(ctx, key, content); err != nil {
		f.logger.Warn().Err(err).Str("key", key).Msg("Source cache write failed")
	}
	return content, nil
}

func cacheKey(repo models.RepoRef, filePath, ref string) string {
	return fmt.Sprintf("src|%s|%s|%s|%s", repo.Host, repo.ProjectPath, ref, filePath)
}

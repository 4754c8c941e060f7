package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/interfaces"
)

// SourceCache persists fetched pipeline source with a TTL so expired
// entries disappear on their own between runs. Implements
// interfaces.SourceCache.
type SourceCache struct {
	db     *BadgerDB
	ttl    time.Duration
	logger arbor.ILogger
}

// NewSourceCache creates a SourceCache instance
func NewSourceCache(db *BadgerDB, ttl time.Duration, logger arbor.ILogger) interfaces.SourceCache {
	return &SourceCache{
		db:     db,
		ttl:    ttl,
		logger: logger,
	}
}

// Get retrieves cached content by key. A missing or expired entry is
// (_, false, nil), not an error.
func (s *SourceCache) Get(ctx context.Context, key string) (string, bool, error) {
	var content []byte
	err := s.db.Store().Badger().View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return string(content), true, nil
}

// Set stores content under key with the cache TTL.
func (s *SourceCache) Set(ctx context.Context, key, content string) error {
	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		entry := badgerdb.NewEntry([]byte(key), []byte(content)).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

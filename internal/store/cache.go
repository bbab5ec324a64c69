package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TableCache memoises whole-table reads for a fixed TTL. Entries are keyed by
// table name and carry their fetch time; Invalidate drops them after a write.
// Failed reads are never cached.
type TableCache struct {
	reader Reader
	kv     KVStore
	ttl    time.Duration
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewTableCache wraps reader. prefix separates caches sharing one KVStore.
func NewTableCache(reader Reader, kv KVStore, ttl time.Duration, prefix string, logger *zap.Logger) *TableCache {
	return &TableCache{
		reader: reader,
		kv:     kv,
		ttl:    ttl,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

func (c *TableCache) key(table Table) string {
	return fmt.Sprintf("asthma:%s:table:%s", c.prefix, table)
}

// ReadTable returns the cached table while it is fresh and refetches it otherwise.
func (c *TableCache) ReadTable(ctx context.Context, table Table) (Sheet, error) {
	key := c.key(table)
	raw, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		var s Sheet
		if jerr := json.Unmarshal([]byte(raw), &s); jerr == nil {
			return s, nil
		}
		c.logger.Warn("Dropping undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warn("Table cache unavailable, reading through",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	s, err := c.reader.ReadTable(ctx, table)
	if err != nil {
		return Sheet{}, err
	}
	s.FetchedAt = c.now()

	data, err := json.Marshal(s)
	if err != nil {
		return s, nil
	}
	if err := c.kv.Set(ctx, key, string(data), c.ttl); err != nil {
		c.logger.Warn("Failed to cache table", zap.String("key", key), zap.Error(err))
	} else {
		c.logger.Debug("Cached table",
			zap.String("key", key),
			zap.Int("rows", len(s.Rows)),
			zap.Duration("ttl", c.ttl),
		)
	}
	return s, nil
}

// Invalidate drops the cached copies of tables, or of every table when none are given.
func (c *TableCache) Invalidate(ctx context.Context, tables ...Table) error {
	if len(tables) == 0 {
		tables = Tables
	}
	keys := make([]string, len(tables))
	for i, t := range tables {
		keys[i] = c.key(t)
	}
	return c.kv.Delete(ctx, keys...)
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/suvidhaen/railsathi-be/pkg/core/routing"
)

// DefaultIndexTTL bounds how stale a cached assignment index may be
const DefaultIndexTTL = 2 * time.Minute

// IndexCache stores assignment indexes in a KVStore.
// It implements routing.IndexCache.
type IndexCache struct {
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewIndexCache creates an index cache. A non-positive ttl uses DefaultIndexTTL.
func NewIndexCache(kv KVStore, ttl time.Duration, logger *zap.Logger) *IndexCache {
	if ttl <= 0 {
		ttl = DefaultIndexTTL
	}
	return &IndexCache{kv: kv, ttl: ttl, logger: logger}
}

// GetIndex returns the cached index under key. A miss is not an error.
func (c *IndexCache) GetIndex(ctx context.Context, key string) (*routing.AssignmentIndex, bool, error) {
	value, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached index: %w", err)
	}

	index := routing.NewAssignmentIndex()
	if err := json.Unmarshal([]byte(value), index); err != nil {
		// A corrupt entry is treated as a miss and overwritten by the next build
		c.logger.Warn("Discarding unreadable cached index", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	return index, true, nil
}

// SetIndex caches index under key for the configured ttl
func (c *IndexCache) SetIndex(ctx context.Context, key string, index *routing.AssignmentIndex) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	if err := c.kv.Set(ctx, key, string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to set cached index: %w", err)
	}

	c.logger.Debug("Cached assignment index", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

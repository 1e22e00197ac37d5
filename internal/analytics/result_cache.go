package analytics

import (
	"context"
	"encoding/hex"
	"hash/fnv"
	"strings"
	"time"

	"github.com/omniretail-ai/support-engine/internal/cache"
	"github.com/omniretail-ai/support-engine/internal/observability"
)

// resultKeyPrefix scopes result-cache keys within the shared cache client.
const resultKeyPrefix = "report:"

// ResultCache is a content-addressed, TTL-bounded cache of rendered
// analytical query results.
type ResultCache struct {
	client cache.Client
	logger *observability.Logger
	ttl    time.Duration
}

// NewResultCache creates a result cache over the shared cache client.
func NewResultCache(client cache.Client, logger *observability.Logger, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResultCache{
		client: client,
		logger: logger.WithComponent("result-cache"),
		ttl:    ttl,
	}
}

// Fingerprint returns the cache key for a query: an FNV-1a 64-bit hash of
// the trimmed, lowercased text. Fast and non-cryptographic; collisions are
// accepted as negligible for a dedup cache.
func Fingerprint(sql string) string {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(sql))))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result text for a query, or ok=false on miss.
// Expired entries read as misses.
func (c *ResultCache) Get(ctx context.Context, sql string) (string, bool) {
	key := resultKeyPrefix + Fingerprint(sql)

	data, err := c.client.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			c.logger.Debug().Err(err).Str("key", key).Msg("Cache get error")
		}
		return "", false
	}

	c.logger.Debug().Str("key", key).Msg("Cache hit")
	return string(data), true
}

// Put stores a rendered result keyed by the query text.
func (c *ResultCache) Put(ctx context.Context, sql, result string) {
	key := resultKeyPrefix + Fingerprint(sql)

	if err := c.client.Set(ctx, key, []byte(result), c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache result")
	}
}

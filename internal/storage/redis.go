package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"pricescout/internal/domain"
)

// SearchCache keeps whole search results in Redis for a short TTL so repeated
// identical queries skip the browser entirely.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSearchCache(addr string, ttl time.Duration) *SearchCache {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &SearchCache{client: rdb, ttl: ttl}
}

func (c *SearchCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns cached results for the query, or false on a miss. Decode
// failures count as misses; the entry will simply be rewritten.
func (c *SearchCache) Get(ctx context.Context, query string) ([]domain.ProductResult, bool) {
	raw, err := c.client.Get(ctx, cacheKey(query)).Bytes()
	if err != nil {
		return nil, false
	}
	var results []domain.ProductResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false
	}
	return results, true
}

// Set stores the results under the normalized query with the cache TTL.
func (c *SearchCache) Set(ctx context.Context, query string, results []domain.ProductResult) {
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(query), raw, c.ttl)
}

func cacheKey(query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return fmt.Sprintf("search:%s", normalized)
}

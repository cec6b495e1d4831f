package metadata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mselser95/finsight/pkg/cache"
	"github.com/mselser95/finsight/pkg/types"
)

// DefaultCacheTTL is how long fetched metadata is reused.
const DefaultCacheTTL = 24 * time.Hour

// CachedClient wraps a Provider with an in-process cache.
type CachedClient struct {
	provider Provider
	cache    cache.Cache
	ttl      time.Duration
}

// NewCachedClient creates a new cached metadata provider. A nil cache disables caching.
func NewCachedClient(provider Provider, c cache.Cache, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedClient{
		provider: provider,
		cache:    c,
		ttl:      ttl,
	}
}

func cacheKey(ticker string) string {
	return fmt.Sprintf("metadata:%s", ticker)
}

// Fetch returns cached metadata for ticker, fetching it on a miss.
// Failed fetches are not cached.
func (c *CachedClient) Fetch(ctx context.Context, ticker string) (*types.StockMetadata, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey(ticker)); ok {
			if meta, ok := cached.(*types.StockMetadata); ok {
				CacheHitsTotal.Inc()
				return meta, nil
			}
		}
		CacheMissesTotal.Inc()
	}

	meta, err := c.provider.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(cacheKey(ticker), meta, c.ttl)
	}

	return meta, nil
}

// Invalidate drops the cached metadata for ticker.
func (c *CachedClient) Invalidate(ticker string) {
	if c.cache == nil {
		return
	}
	c.cache.Delete(cacheKey(strings.ToUpper(strings.TrimSpace(ticker))))
}

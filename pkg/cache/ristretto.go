package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

// RistrettoCache is a Cache backed by Ristretto. Every entry costs 1,
// so MaxCost is the item capacity.
type RistrettoCache struct {
	name   string
	cache  *ristretto.Cache
	logger *zap.Logger
}

// RistrettoConfig holds configuration for Ristretto cache.
type RistrettoConfig struct {
	Name        string // metrics label, e.g. "metadata"
	NumCounters int64  // keys tracked for admission, ~10x MaxCost
	MaxCost     int64  // maximum number of items
	BufferItems int64  // keys per Get buffer
	Logger      *zap.Logger
}

// NewRistrettoCache creates a new Ristretto-backed cache.
func NewRistrettoCache(cfg *RistrettoConfig) (Cache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	name := cfg.Name
	if name == "" {
		name = "default"
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s cache: %w", name, err)
	}

	cfg.Logger.Info("cache-initialized",
		zap.String("cache", name),
		zap.Int64("max-items", cfg.MaxCost))

	return &RistrettoCache{
		name:   name,
		cache:  cache,
		logger: cfg.Logger,
	}, nil
}

// Get retrieves a value from the cache.
func (r *RistrettoCache) Get(key string) (interface{}, bool) {
	start := time.Now()
	value, found := r.cache.Get(key)
	OperationDuration.WithLabelValues(r.name, "get").Observe(time.Since(start).Seconds())

	if found {
		HitsTotal.WithLabelValues(r.name).Inc()
		r.logger.Debug("cache-hit", zap.String("cache", r.name), zap.String("key", key))
	} else {
		MissesTotal.WithLabelValues(r.name).Inc()
		r.logger.Debug("cache-miss", zap.String("cache", r.name), zap.String("key", key))
	}
	r.recordHitRatio()

	return value, found
}

// Set stores a value in the cache with a TTL.
func (r *RistrettoCache) Set(key string, value interface{}, ttl time.Duration) bool {
	start := time.Now()
	success := r.cache.SetWithTTL(key, value, 1, ttl)
	OperationDuration.WithLabelValues(r.name, "set").Observe(time.Since(start).Seconds())

	if !success {
		r.logger.Debug("cache-set-dropped", zap.String("cache", r.name), zap.String("key", key))
		return false
	}

	SetsTotal.WithLabelValues(r.name).Inc()
	r.logger.Debug("cache-set",
		zap.String("cache", r.name),
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return true
}

// Delete removes a value from the cache.
func (r *RistrettoCache) Delete(key string) {
	r.cache.Del(key)
	DeletesTotal.WithLabelValues(r.name).Inc()
	r.logger.Debug("cache-delete", zap.String("cache", r.name), zap.String("key", key))
}

// Clear removes all values from the cache.
func (r *RistrettoCache) Clear() {
	r.cache.Clear()
	r.logger.Info("cache-cleared", zap.String("cache", r.name))
}

// Close closes the cache and releases resources.
func (r *RistrettoCache) Close() {
	r.cache.Close()
	r.logger.Info("cache-closed", zap.String("cache", r.name))
}

// Name returns the metrics label of the cache.
func (r *RistrettoCache) Name() string {
	return r.name
}

// Wait blocks until all pending writes have been applied.
func (r *RistrettoCache) Wait() {
	r.cache.Wait()
}

func (r *RistrettoCache) recordHitRatio() {
	if r.cache.Metrics == nil {
		return
	}
	HitRatio.WithLabelValues(r.name).Set(r.cache.Metrics.Ratio())
}

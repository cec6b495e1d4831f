package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClearAllKeyword selects every ticker in ClearCache.
const ClearAllKeyword = "all"

// fallbackLookupTimeout bounds the cache read made after a failed generation.
const fallbackLookupTimeout = 5 * time.Second

// Manager answers insights requests with a cache-aside policy over a Generator.
type Manager struct {
	store     Store
	generator Generator
	logger    *zap.Logger
	ttl       time.Duration
	now       func() time.Time
}

// Config holds manager configuration.
type Config struct {
	Store     Store
	Generator Generator
	Logger    *zap.Logger
	TTL       time.Duration    // defaults to DefaultTTL
	Now       func() time.Time // defaults to time.Now
}

// New creates a new insights manager.
func New(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		store:     cfg.Store,
		generator: cfg.Generator,
		logger:    cfg.Logger,
		ttl:       ttl,
		now:       now,
	}, nil
}

// GetInsights returns the analysis for ticker.
//
// A cache entry younger than the TTL is served without calling the generator
// unless forceRefresh is set. Otherwise fresh analysis is generated, cached and
// returned. When generation fails, the most recent entry is served regardless
// of its age; with nothing cached the error wraps ErrNoFallbackAvailable.
//
// Older entries for a ticker are only removed after a fresh entry has been
// stored, so a failed refresh always leaves the previous analysis available.
func (m *Manager) GetInsights(ctx context.Context, ticker string, forceRefresh bool) (*Result, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrTickerRequired
	}

	if forceRefresh {
		m.logger.Info("insights-force-refresh", zap.String("ticker", ticker))
	} else {
		result, hit := m.lookup(ctx, ticker)
		if hit {
			RequestsTotal.WithLabelValues(OutcomeCacheHit).Inc()
			return result, nil
		}
	}

	doc, err := m.generate(ctx, ticker)
	if err != nil {
		return m.fallback(ctx, ticker, err)
	}

	createdAt := m.now()
	m.persist(ctx, ticker, doc, createdAt)

	RequestsTotal.WithLabelValues(OutcomeFresh).Inc()

	return &Result{
		Ticker:    ticker,
		Insights:  doc,
		Cached:    false,
		Fresh:     true,
		CreatedAt: createdAt,
	}, nil
}

// lookup serves a fresh-enough cache entry. Store errors count as a miss.
func (m *Manager) lookup(ctx context.Context, ticker string) (*Result, bool) {
	entry, err := m.store.Latest(ctx, ticker)
	if errors.Is(err, ErrEntryNotFound) {
		m.logger.Debug("insights-cache-miss", zap.String("ticker", ticker))
		return nil, false
	}
	if err != nil {
		m.logger.Warn("insights-cache-lookup-failed",
			zap.String("ticker", ticker),
			zap.Error(err))
		return nil, false
	}

	now := m.now()
	if entry.Age(now) >= m.ttl {
		m.logger.Info("insights-cache-expired",
			zap.String("ticker", ticker),
			zap.Time("cached-at", entry.CreatedAt))
		return nil, false
	}

	age := entry.AgeMinutes(now)
	m.logger.Info("insights-cache-hit",
		zap.String("ticker", ticker),
		zap.Int("age-minutes", age))

	return &Result{
		Ticker:    ticker,
		Insights:  entry.Insights,
		Cached:    true,
		CacheAge:  &age,
		CreatedAt: entry.CreatedAt,
	}, true
}

// generate calls the generator once and validates its output.
func (m *Manager) generate(ctx context.Context, ticker string) (Document, error) {
	prompt := BuildPrompt(ticker, m.now())

	m.logger.Info("insights-generation-starting", zap.String("ticker", ticker))

	start := time.Now()
	text, err := m.generator.Generate(ctx, prompt)
	GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		switch {
		case errors.Is(err, ErrMalformedResponse):
			GenerationErrorsTotal.WithLabelValues("malformed").Inc()
			return nil, err
		case errors.Is(err, ErrUpstreamUnavailable):
			GenerationErrorsTotal.WithLabelValues("upstream").Inc()
			return nil, err
		default:
			GenerationErrorsTotal.WithLabelValues("upstream").Inc()
			return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
	}

	doc, err := ExtractAndValidate(text)
	if err != nil {
		GenerationErrorsTotal.WithLabelValues("malformed").Inc()
		m.logger.Warn("insights-response-rejected",
			zap.String("ticker", ticker),
			zap.Error(err),
			zap.Int("response-length", len(text)))
		return nil, err
	}

	m.logger.Info("insights-generation-complete",
		zap.String("ticker", ticker),
		zap.Duration("duration", time.Since(start)))

	return doc, nil
}

// persist stores a new entry and prunes older ones. Failures only cost a
// future generation, so they are logged and never surfaced.
func (m *Manager) persist(ctx context.Context, ticker string, doc Document, createdAt time.Time) {
	entry := &CacheEntry{
		ID:        uuid.New(),
		Ticker:    ticker,
		Insights:  doc,
		CreatedAt: createdAt,
	}

	err := m.store.Save(ctx, entry)
	if err != nil {
		CacheWriteErrorsTotal.Inc()
		m.logger.Error("insights-cache-write-failed",
			zap.String("ticker", ticker),
			zap.Error(err))
		return
	}

	deleted, err := m.store.DeleteExcept(ctx, ticker, entry.ID)
	if err != nil {
		m.logger.Warn("insights-cache-prune-failed",
			zap.String("ticker", ticker),
			zap.Error(err))
		return
	}

	m.logger.Info("insights-cached",
		zap.String("ticker", ticker),
		zap.String("entry-id", entry.ID.String()),
		zap.Int64("replaced", deleted))
}

// fallback serves the most recent entry of any age after a failed generation.
func (m *Manager) fallback(ctx context.Context, ticker string, cause error) (*Result, error) {
	m.logger.Warn("insights-generation-failed",
		zap.String("ticker", ticker),
		zap.Error(cause))

	// The request context may be the thing that expired.
	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fallbackLookupTimeout)
	defer cancel()

	entry, err := m.store.Latest(lookupCtx, ticker)
	if err != nil {
		if !errors.Is(err, ErrEntryNotFound) {
			m.logger.Error("insights-fallback-lookup-failed",
				zap.String("ticker", ticker),
				zap.Error(err))
		}
		RequestsTotal.WithLabelValues(OutcomeFailure).Inc()
		return nil, fmt.Errorf("%w: %w", ErrNoFallbackAvailable, cause)
	}

	age := entry.AgeMinutes(m.now())
	m.logger.Info("insights-fallback-served",
		zap.String("ticker", ticker),
		zap.Int("age-minutes", age))

	RequestsTotal.WithLabelValues(OutcomeFallback).Inc()

	return &Result{
		Ticker:    ticker,
		Insights:  entry.Insights,
		Cached:    true,
		Fallback:  true,
		APIError:  FallbackNotice,
		CacheAge:  &age,
		CreatedAt: entry.CreatedAt,
	}, nil
}

// CacheStatus lists every cached entry, newest first.
func (m *Manager) CacheStatus(ctx context.Context) ([]CacheStatusEntry, error) {
	entries, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}

	now := m.now()
	ttlMinutes := int(m.ttl / time.Minute)

	status := make([]CacheStatusEntry, 0, len(entries))
	for _, e := range entries {
		entry := CacheEntry{Ticker: e.Ticker, CreatedAt: e.CreatedAt}
		age := entry.AgeMinutes(now)
		status = append(status, CacheStatusEntry{
			Ticker:       e.Ticker,
			CachedAt:     e.CreatedAt,
			AgeInMinutes: age,
			ExpiresIn:    ttlMinutes - age,
		})
	}

	return status, nil
}

// ClearCache deletes the entries for ticker, or every entry when ticker is
// empty or the lowercase keyword "all". It returns the number of entries removed.
// "ALL" in upper case is a real symbol and only clears that ticker.
func (m *Manager) ClearCache(ctx context.Context, ticker string) (int64, error) {
	ticker = strings.TrimSpace(ticker)

	if ticker == "" || ticker == ClearAllKeyword {
		deleted, err := m.store.DeleteAll(ctx)
		if err != nil {
			return 0, fmt.Errorf("clear all cache entries: %w", err)
		}
		m.logger.Info("insights-cache-cleared", zap.Int64("deleted", deleted))
		return deleted, nil
	}

	ticker = NormalizeTicker(ticker)
	deleted, err := m.store.DeleteByTicker(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("clear cache for %s: %w", ticker, err)
	}

	m.logger.Info("insights-cache-cleared",
		zap.String("ticker", ticker),
		zap.Int64("deleted", deleted))

	return deleted, nil
}

// PurgeExpired physically removes entries past the TTL. Lookups already treat
// them as misses; this only reclaims space. It returns the number of entries removed.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := m.now().Add(-m.ttl)

	deleted, err := m.store.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge expired entries: %w", err)
	}

	if deleted > 0 {
		m.logger.Info("insights-cache-purged",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}

	return deleted, nil
}

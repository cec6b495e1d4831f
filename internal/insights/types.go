package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// DefaultTTL is how long a cache entry is served without asking the generator again.
const DefaultTTL = 24 * time.Hour

// FallbackNotice is reported to callers when stale data is served because generation failed.
const FallbackNotice = "AI service temporarily unavailable, showing cached data"

// Document is the structured analysis produced by the generator.
// Its schema belongs to the generator; the cache passes it through unchanged.
type Document map[string]any

// Clone returns a deep copy of d.
func (d Document) Clone() (Document, error) {
	if d == nil {
		return nil, nil
	}

	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	var out Document
	err = json.Unmarshal(data, &out)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// CacheEntry is one persisted analysis for a ticker.
// Entries are never updated in place: a refresh writes a new entry.
type CacheEntry struct {
	ID        uuid.UUID
	Ticker    string
	Insights  Document
	CreatedAt time.Time
}

// Age returns how old the entry is at now. Clock skew never yields a negative age.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	age := now.Sub(e.CreatedAt)
	if age < 0 {
		return 0
	}
	return age
}

// AgeMinutes returns the entry age in whole minutes, rounded down.
func (e *CacheEntry) AgeMinutes(now time.Time) int {
	return int(e.Age(now) / time.Minute)
}

// EntrySummary is the light view of a cache entry used by the status listing.
type EntrySummary struct {
	Ticker    string    `db:"ticker"`
	CreatedAt time.Time `db:"created_at"`
}

// Store persists cache entries.
type Store interface {
	// Latest returns the most recently created entry for ticker, regardless of age.
	// Returns ErrEntryNotFound if the ticker has no entry.
	Latest(ctx context.Context, ticker string) (*CacheEntry, error)

	// Save persists a new entry.
	Save(ctx context.Context, entry *CacheEntry) error

	// DeleteExcept removes every entry for ticker other than keepID.
	DeleteExcept(ctx context.Context, ticker string, keepID uuid.UUID) (int64, error)

	// DeleteByTicker removes every entry for ticker.
	DeleteByTicker(ctx context.Context, ticker string) (int64, error)

	// DeleteAll removes every entry.
	DeleteAll(ctx context.Context) (int64, error)

	// PurgeOlderThan removes every entry created at or before cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// List returns a summary of all entries, newest first.
	List(ctx context.Context) ([]EntrySummary, error)

	// Close releases the store's resources.
	Close() error
}

// Generator turns a prompt into free-form model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the answer to an insights request.
type Result struct {
	Ticker    string
	Insights  Document
	Cached    bool
	Fresh     bool
	Fallback  bool
	APIError  string
	CacheAge  *int // minutes; nil for fresh results
	CreatedAt time.Time
}

// Payload flattens the result into the response shape: the insight sections
// at the top level alongside the cache flags.
func (r *Result) Payload() map[string]any {
	out := make(map[string]any, len(r.Insights)+5)
	for k, v := range r.Insights {
		out[k] = v
	}

	out["cached"] = r.Cached
	if r.Fresh {
		out["fresh"] = true
	}
	if r.Fallback {
		out["fallback"] = true
		out["apiError"] = r.APIError
	}
	if r.CacheAge != nil {
		out["cacheAge"] = *r.CacheAge
	}

	return out
}

// CacheStatusEntry describes one cached entry for the admin listing.
type CacheStatusEntry struct {
	Ticker       string    `json:"ticker"`
	CachedAt     time.Time `json:"cachedAt"`
	AgeInMinutes int       `json:"ageInMinutes"`
	ExpiresIn    int       `json:"expiresIn"`
}

// NormalizeTicker trims and uppercases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

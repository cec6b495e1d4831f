package insights

import "errors"

var (
	// ErrTickerRequired is returned when no ticker was given.
	ErrTickerRequired = errors.New("ticker symbol is required")

	// ErrEntryNotFound is returned by a Store when a ticker has no cache entry.
	ErrEntryNotFound = errors.New("cache entry not found")

	// ErrUpstreamUnavailable wraps network and HTTP failures calling the generator.
	ErrUpstreamUnavailable = errors.New("AI service unavailable")

	// ErrMalformedResponse wraps generator output that could not be parsed
	// into the minimum required structure.
	ErrMalformedResponse = errors.New("malformed AI response")

	// ErrNoFallbackAvailable is returned when generation failed and nothing was cached.
	ErrNoFallbackAvailable = errors.New("no cached insights available")
)

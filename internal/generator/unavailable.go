package generator

import (
	"context"
	"fmt"

	"github.com/mselser95/finsight/internal/insights"
)

// Unavailable is the generator used when no credentials are configured.
// Every call fails, so requests are answered from the cache alone.
type Unavailable struct {
	Reason string
}

// Generate always fails with insights.ErrUpstreamUnavailable.
func (u Unavailable) Generate(ctx context.Context, prompt string) (string, error) {
	RequestErrorsTotal.WithLabelValues("unconfigured").Inc()
	return "", fmt.Errorf("%w: %s", insights.ErrUpstreamUnavailable, u.Reason)
}

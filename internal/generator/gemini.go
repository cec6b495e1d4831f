package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mselser95/finsight/internal/insights"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 60 * time.Second

// ErrAPIKeyRequired is returned when the Gemini client is built without credentials.
var ErrAPIKeyRequired = errors.New("gemini api key is required")

// Gemini generates text with the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// Config holds Gemini generator configuration.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string        // overrides the public endpoint, used by tests
	Timeout time.Duration // per call, defaults to DefaultTimeout
	Logger  *zap.Logger
}

// NewGemini creates a Gemini-backed generator.
func NewGemini(ctx context.Context, cfg *Config) (*Gemini, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrAPIKeyRequired
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	cfg.Logger.Info("gemini-generator-initialized",
		zap.String("model", cfg.Model),
		zap.Duration("timeout", timeout))

	return &Gemini{
		client:  client,
		model:   cfg.Model,
		timeout: timeout,
		logger:  cfg.Logger,
	}, nil
}

// Generate sends prompt as a single user turn and returns the text of the
// first candidate. It makes exactly one attempt.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	RequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		RequestErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		return "", fmt.Errorf("%w: generate content: %w", insights.ErrUpstreamUnavailable, err)
	}

	text := firstText(resp)
	if text == "" {
		RequestErrorsTotal.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("%w: no text in model response", insights.ErrMalformedResponse)
	}

	RequestsTotal.Inc()
	g.logger.Debug("gemini-response-received",
		zap.String("model", g.model),
		zap.Int("length", len(text)),
		zap.Duration("duration", time.Since(start)))

	return text, nil
}

// firstText joins the text parts of the first candidate.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

func errorReason(err error) string {
	var apiErr genai.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("http_%d", apiErr.Code)
	default:
		return "transport"
	}
}

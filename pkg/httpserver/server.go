package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mselser95/finsight/pkg/healthprobe"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Defaults for the request timeouts. Insights generation can take most of a
// minute, so they are well above typical API values.
const (
	DefaultRequestTimeout = 90 * time.Second
	DefaultWriteTimeout   = 120 * time.Second
)

// Server provides the REST API alongside metrics and health endpoints.
type Server struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
}

// Config holds server configuration.
type Config struct {
	Port           string
	Logger         *zap.Logger
	HealthChecker  *healthprobe.HealthChecker
	Insights       InsightsService  // optional
	Holdings       HoldingsService  // optional
	Sentiment      SentimentService // optional
	JWTSecret      string
	RequestTimeout time.Duration
	WriteTimeout   time.Duration
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}

	return &Server{
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, requestTimeout),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       60 * time.Second,
		},
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
	}
}

// NewRouter builds the route table. Reads of insights and cache status are
// public; every other API route requires a bearer token.
func NewRouter(cfg *Config, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observe)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.HealthChecker.Health())
	r.Get("/ready", cfg.HealthChecker.Ready())

	auth := NewAuthenticator(cfg.JWTSecret, cfg.Logger)

	if cfg.Insights != nil {
		h := NewInsightsHandler(cfg.Insights, cfg.Logger)
		r.Route("/api/stock-insights", func(r chi.Router) {
			r.Get("/cache/status", h.HandleCacheStatus)
			r.With(auth.Middleware).Delete("/cache/clear/{ticker}", h.HandleClearCache)
			r.With(auth.Middleware).Delete("/cache/clear", h.HandleClearCache)
			r.Get("/{ticker}", h.HandleGetInsights)
		})
	}

	if cfg.Holdings != nil {
		h := NewHoldingsHandler(cfg.Holdings, cfg.Logger)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Post("/api/holdings", h.HandleCreate)
			r.Get("/api/holdings", h.HandleList)
			r.Get("/api/holdings/{id}", h.HandleGet)
			r.Delete("/api/holdings/{id}", h.HandleDelete)
			r.Get("/api/portfolio/summary", h.HandleSummary)
		})
	}

	if cfg.Sentiment != nil {
		h := NewSentimentHandler(cfg.Sentiment, cfg.Logger)
		r.Route("/api/sentiment", func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Post("/analyze", h.HandleAnalyzeNews)
			r.Post("/analyze-ticker", h.HandleAnalyzeTicker)
			r.Post("/analyze-article", h.HandleAnalyzeArticle)
		})
	}

	return r
}

// observe records request latency by route pattern once routing has resolved.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server stops or encounters an error.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mselser95/finsight/internal/insights"
	"go.uber.org/zap"
)

// InsightsService is the insights manager as seen by the HTTP layer.
type InsightsService interface {
	GetInsights(ctx context.Context, ticker string, forceRefresh bool) (*insights.Result, error)
	CacheStatus(ctx context.Context) ([]insights.CacheStatusEntry, error)
	ClearCache(ctx context.Context, ticker string) (int64, error)
}

// InsightsHandler serves the stock insights routes.
type InsightsHandler struct {
	service InsightsService
	logger  *zap.Logger
}

// NewInsightsHandler creates a handler backed by service.
func NewInsightsHandler(service InsightsService, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{
		service: service,
		logger:  logger,
	}
}

type cacheStatusData struct {
	TotalEntries int                         `json:"totalEntries"`
	Entries      []insights.CacheStatusEntry `json:"entries"`
}

// HandleGetInsights serves GET /api/stock-insights/{ticker}?refresh=true.
func (h *InsightsHandler) HandleGetInsights(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if strings.TrimSpace(ticker) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Ticker symbol is required", nil)
		return
	}

	forceRefresh := r.URL.Query().Get("refresh") == "true"

	result, err := h.service.GetInsights(r.Context(), ticker, forceRefresh)
	if errors.Is(err, insights.ErrTickerRequired) {
		writeError(w, h.logger, http.StatusBadRequest, "Ticker symbol is required", nil)
		return
	}
	if err != nil {
		h.logger.Error("insights-request-failed",
			zap.String("ticker", ticker),
			zap.Bool("force-refresh", forceRefresh),
			zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to get stock insights", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, result.Payload())
}

// HandleCacheStatus serves GET /api/stock-insights/cache/status.
func (h *InsightsHandler) HandleCacheStatus(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.CacheStatus(r.Context())
	if err != nil {
		h.logger.Error("cache-status-failed", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to get cache status", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, cacheStatusData{
		TotalEntries: len(entries),
		Entries:      entries,
	})
}

// HandleClearCache serves DELETE /api/stock-insights/cache/clear[/{ticker}].
func (h *InsightsHandler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	deleted, err := h.service.ClearCache(r.Context(), ticker)
	if err != nil {
		h.logger.Error("cache-clear-failed",
			zap.String("ticker", ticker),
			zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to clear cache", err)
		return
	}

	message := "Cleared all cache"
	if ticker != "" && ticker != insights.ClearAllKeyword {
		message = fmt.Sprintf("Cleared cache for %s", insights.NormalizeTicker(ticker))
	}

	writeJSON(w, h.logger, http.StatusOK, envelope{
		Success:      true,
		Message:      message,
		DeletedCount: &deleted,
	})
}

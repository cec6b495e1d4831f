package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mselser95/finsight/internal/holdings"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies on write routes.
const maxBodyBytes = 64 << 10

// HoldingsService is the holdings service as seen by the HTTP layer.
type HoldingsService interface {
	Create(ctx context.Context, userID string, req *holdings.CreateRequest) (*holdings.Holding, error)
	List(ctx context.Context, userID string) ([]holdings.Holding, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*holdings.Holding, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	Summary(ctx context.Context, userID string) (*holdings.Summary, error)
}

// HoldingsHandler serves the authenticated holdings and portfolio routes.
type HoldingsHandler struct {
	service HoldingsService
	logger  *zap.Logger
}

// NewHoldingsHandler creates a handler backed by service.
func NewHoldingsHandler(service HoldingsService, logger *zap.Logger) *HoldingsHandler {
	return &HoldingsHandler{
		service: service,
		logger:  logger,
	}
}

type validationBody struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// HandleCreate serves POST /api/holdings.
func (h *HoldingsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req holdings.CreateRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	holding, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.writeServiceError(w, "Failed to create holding", err)
		return
	}

	writeData(w, h.logger, http.StatusCreated, holding)
}

// HandleList serves GET /api/holdings.
func (h *HoldingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	list, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "Failed to list holdings", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, list)
}

// HandleGet serves GET /api/holdings/{id}.
func (h *HoldingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	holding, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, "Failed to get holding", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, holding)
}

// HandleDelete serves DELETE /api/holdings/{id}.
func (h *HoldingsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	err := h.service.Delete(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, "Failed to delete holding", err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, envelope{Success: true, Message: "Holding deleted"})
}

// HandleSummary serves GET /api/portfolio/summary.
func (h *HoldingsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "Failed to build portfolio summary", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, summary)
}

func (h *HoldingsHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid holding id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *HoldingsHandler) writeServiceError(w http.ResponseWriter, message string, err error) {
	var validation *holdings.ValidationError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, h.logger, http.StatusBadRequest, validationBody{
			Success: false,
			Message: "Invalid holding",
			Errors:  validation.Problems,
		})
	case errors.Is(err, holdings.ErrInvalidHolding):
		writeError(w, h.logger, http.StatusBadRequest, "Invalid holding", err)
	case errors.Is(err, holdings.ErrNotFound):
		writeError(w, h.logger, http.StatusNotFound, "Holding not found", nil)
	case errors.Is(err, holdings.ErrUserRequired):
		writeError(w, h.logger, http.StatusUnauthorized, errMissingToken.Error(), nil)
	default:
		h.logger.Error("holdings-request-failed", zap.String("message", message), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, message, err)
	}
}

package httpserver

import (
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// envelope is the response shape shared by every API route.
type envelope struct {
	Success      bool   `json:"success"`
	Data         any    `json:"data,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	DeletedCount *int64 `json:"deletedCount,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		logger.Error("response-encode-failed", zap.Error(err))
	}
}

func writeData(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	writeJSON(w, logger, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, logger *zap.Logger, status int, message string, err error) {
	body := envelope{Success: false, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	writeJSON(w, logger, status, body)
}

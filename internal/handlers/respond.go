package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BerylCAtieno/document-qa-api/internal/utils"
)

type responder struct {
	logger *utils.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes {"error": message}. Only AppError messages reach the
// client; anything else becomes fallback.
func (h responder) respondError(w http.ResponseWriter, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "status", status, "error", err)
	} else {
		h.logger.Warn("Request rejected", "status", status, "error", message)
	}

	h.respondJSON(w, status, map[string]string{"error": message})
}

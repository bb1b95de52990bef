package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/logging"
)

// envelope is the uniform response shape: every success carries status,
// data, and message; Success is derived from the status code.
type envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type errorEnvelope struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeJSON(ctx, w, status, envelope{
		Status:  status,
		Data:    data,
		Message: message,
		Success: status < http.StatusBadRequest,
	})
}

// respondError converts any error into the uniform error envelope, logging
// server errors with their cause and client errors as warnings.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := apierror.Status(err)
	logger := logging.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}

	writeJSON(ctx, w, status, errorEnvelope{
		Status:  status,
		Code:    apierror.Code(err),
		Message: apierror.Message(err),
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "commerce-be/pkg/errors"
	"commerce-be/pkg/logger"
)

// ErrorBody is the JSON error envelope shared by both services
type ErrorBody struct {
	Error struct {
		Type      string                 `json:"type"`
		Message   string                 `json:"message"`
		Details   map[string]interface{} `json:"details,omitempty"`
		Timestamp string                 `json:"timestamp"`
	} `json:"error"`
}

// respondJSON writes v as JSON with the given status
func respondJSON(w http.ResponseWriter, status int, v interface{}, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// respondError maps err onto the error envelope. Unclassified errors become
// opaque 500s so internals never leak to clients.
func respondError(w http.ResponseWriter, err error, log *logger.Logger) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.NewInternalError("Internal server error", err)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	} else {
		log.WithError(err).Warn("Request rejected")
	}

	body := ErrorBody{}
	body.Error.Type = string(appErr.Type)
	body.Error.Message = appErr.Message
	body.Error.Details = appErr.Details
	body.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	respondJSON(w, appErr.StatusCode, body, log)
}

// decodeJSON parses a request body into dest
func decodeJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperrors.NewValidationError("Invalid JSON body", nil)
	}
	return nil
}

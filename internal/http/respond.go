package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hauskasse/internal/core"
	"hauskasse/internal/log"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeServiceError maps ledger errors onto the HTTP status taxonomy:
// missing records are 404, business-rule violations 400, concurrent or
// terminal-state conflicts 409, and malformed input 422.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var conflict *core.StateConflictError

	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, core.ErrNotFound.Error())
	case errors.Is(err, core.ErrApprovalNotAllowed):
		writeError(w, http.StatusBadRequest, "Only Mila's claims require approval.")
	case errors.Is(err, core.ErrRejectionNotAllowed):
		writeError(w, http.StatusBadRequest, "Only Mila's claims can be rejected.")
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, conflict.Error())
	case core.IsInvalidInput(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.FromContext(ctx).Error("Request failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

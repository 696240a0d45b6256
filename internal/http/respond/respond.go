// Package respond writes JSON responses and maps domain errors to
// status codes. Validation failures are 400, lifecycle rule violations
// 409, missing entities 404, everything else 500.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/akozyrev/leadwell/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case domain.IsInvalidValue(err):
		status = http.StatusBadRequest
	case domain.IsRuleViolation(err):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		msg = "internal error"
	}

	JSON(w, status, errorResponse{Error: msg})
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/IlyasAtabaev731/expense-tracker/internal/services/auth"
	"github.com/IlyasAtabaev731/expense-tracker/internal/services/expenses"
)

const (
	categoryConflict         = "conflict"
	categoryUnauthorized     = "unauthorized"
	categoryInvalidID        = "invalid_id"
	categoryNotFound         = "not_found"
	categoryLimitExceeded    = "limit_exceeded"
	categoryValidationFailed = "validation_failed"
	categoryInternal         = "internal"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, status int, category, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: category, Message: message})
}

// writeServiceError maps service sentinel errors onto HTTP statuses.
func (s *APIServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUserExists):
		s.writeError(w, http.StatusConflict, categoryConflict, "Email already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.writeError(w, http.StatusUnauthorized, categoryUnauthorized, "Invalid email or password")
	case errors.Is(err, expenses.ErrInvalidID):
		s.writeError(w, http.StatusBadRequest, categoryInvalidID, "Please enter correct id.")
	case errors.Is(err, expenses.ErrNotFound):
		s.writeError(w, http.StatusNotFound, categoryNotFound, "Expense not found")
	case errors.Is(err, expenses.ErrLimitExceeded):
		s.writeError(w, http.StatusBadRequest, categoryLimitExceeded, "Monthly expense limit exceeded.")
	case errors.Is(err, expenses.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, categoryValidationFailed, "Invalid expense input")
	default:
		s.logger.Error("Request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, categoryInternal, "Internal server error")
	}
}

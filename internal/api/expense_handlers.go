package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/IlyasAtabaev731/expense-tracker/internal/domain/models"
	"github.com/IlyasAtabaev731/expense-tracker/internal/services/expenses"
)

type CreateExpenseRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Amount      *float64 `json:"amount" validate:"required,gt=-1e12,lt=1e12"`
	Date        string   `json:"date" validate:"required,expense_date"`
	Type        string   `json:"type" validate:"required,expense_type"`

	// Owner always comes from the token.
	User json.RawMessage `json:"user"`
}

type UpdateExpenseRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1"`
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Amount      *float64 `json:"amount" validate:"omitempty,gt=-1e12,lt=1e12"`
	Date        *string  `json:"date" validate:"omitempty,expense_date"`
	Type        *string  `json:"type" validate:"omitempty,expense_type"`

	User json.RawMessage `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TotalResponse struct {
	Total float64 `json:"total"`
}

func (s *APIServer) listExpensesHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())

		list, err := s.expenses.FindAll(r.Context(), userID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, list)
	}
}

func (s *APIServer) createExpenseHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())

		var req CreateExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, categoryValidationFailed, "Invalid request body")
			return
		}
		if req.User != nil {
			s.writeError(w, http.StatusBadRequest, categoryValidationFailed, "You cannot pass user Id")
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, http.StatusBadRequest, categoryValidationFailed, validationMessage(err))
			return
		}

		date, _ := parseDate(req.Date)

		e, err := s.expenses.Create(r.Context(), expenses.CreateInput{
			Title:       req.Title,
			Description: req.Description,
			Amount:      *req.Amount,
			Date:        date,
			Type:        models.ExpenseType(req.Type),
		}, userID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		s.writeJSON(w, http.StatusCreated, e)
	}
}

func (s *APIServer) updateExpenseHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		id := mux.Vars(r)["id"]

		var req UpdateExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, categoryValidationFailed, "Invalid request body")
			return
		}
		if req.User != nil {
			s.writeError(w, http.StatusBadRequest, categoryValidationFailed, "You cannot pass user Id")
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, http.StatusBadRequest, categoryValidationFailed, validationMessage(err))
			return
		}

		patch := models.ExpensePatch{
			Title:       req.Title,
			Description: req.Description,
			Amount:      req.Amount,
		}
		if req.Date != nil {
			date, _ := parseDate(*req.Date)
			patch.Date = &date
		}
		if req.Type != nil {
			t := models.ExpenseType(*req.Type)
			patch.Type = &t
		}

		e, err := s.expenses.Update(r.Context(), id, patch, userID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, e)
	}
}

func (s *APIServer) deleteExpenseHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())

		msg, err := s.expenses.Remove(r.Context(), mux.Vars(r)["id"], userID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
	}
}

func (s *APIServer) expensesByTypeHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())

		totals, err := s.expenses.TotalsByType(r.Context(), userID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, totals)
	}
}

func (s *APIServer) totalCurrentMonthHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())

		total, err := s.expenses.TotalForCurrentMonth(r.Context(), userID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, TotalResponse{Total: total})
	}
}

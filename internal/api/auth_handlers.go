package api

import (
	"encoding/json"
	"net/http"

	"github.com/IlyasAtabaev731/expense-tracker/internal/services/auth"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserDetails struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResponse struct {
	Token       string      `json:"token"`
	UserDetails UserDetails `json:"userDetails"`
}

func newAuthResponse(res auth.Result) AuthResponse {
	return AuthResponse{
		Token: res.Token,
		UserDetails: UserDetails{
			ID:    res.User.ID,
			Name:  res.User.Name,
			Email: res.User.Email,
		},
	}
}

func (s *APIServer) signupHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, categoryValidationFailed, "Invalid request body")
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, http.StatusBadRequest, categoryValidationFailed, validationMessage(err))
			return
		}

		res, err := s.identity.Register(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		s.writeJSON(w, http.StatusCreated, newAuthResponse(res))
	}
}

func (s *APIServer) loginHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, categoryValidationFailed, "Invalid request body")
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, http.StatusBadRequest, categoryValidationFailed, validationMessage(err))
			return
		}

		res, err := s.identity.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, newAuthResponse(res))
	}
}

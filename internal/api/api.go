package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/IlyasAtabaev731/expense-tracker/internal/config"
	"github.com/IlyasAtabaev731/expense-tracker/internal/domain/models"
	"github.com/IlyasAtabaev731/expense-tracker/internal/services/auth"
	"github.com/IlyasAtabaev731/expense-tracker/internal/services/expenses"
)

type Identity interface {
	Register(ctx context.Context, name, email, password string) (auth.Result, error)
	Login(ctx context.Context, email, password string) (auth.Result, error)
}

type ExpenseService interface {
	FindAll(ctx context.Context, userID string) ([]models.Expense, error)
	Create(ctx context.Context, in expenses.CreateInput, userID string) (models.Expense, error)
	Update(ctx context.Context, id string, patch models.ExpensePatch, userID string) (models.Expense, error)
	Remove(ctx context.Context, id, userID string) (string, error)
	TotalsByType(ctx context.Context, userID string) ([]models.TypeTotal, error)
	TotalForCurrentMonth(ctx context.Context, userID string) (float64, error)
}

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type APIServer struct {
	config   *config.Config
	logger   *slog.Logger
	server   *http.Server
	identity Identity
	expenses ExpenseService
	tokens   TokenVerifier
	health   HealthChecker
	validate *validator.Validate
}

func New(
	config *config.Config,
	logger *slog.Logger,
	identity Identity,
	expenses ExpenseService,
	tokens TokenVerifier,
	health HealthChecker,
) *APIServer {
	s := &APIServer{
		config: config,
		logger: logger,
		server: &http.Server{
			Addr:         config.ApiHost + ":" + strconv.Itoa(config.ApiPort),
			ReadTimeout:  config.HTTPServer.Timeout,
			WriteTimeout: config.HTTPServer.Timeout,
			IdleTimeout:  config.HTTPServer.IdleTimeout,
		},
		identity: identity,
		expenses: expenses,
		tokens:   tokens,
		health:   health,
		validate: newValidator(),
	}

	s.configureRouter()

	return s
}

func (s *APIServer) Start() error {
	s.logger.Info("Starting server", slog.String("addr", s.server.Addr))

	return s.server.ListenAndServe()
}

func (s *APIServer) Stop(ctx context.Context) error {
	defer s.logger.Info("Server successfully stopped")
	return s.server.Shutdown(ctx)
}

// Handler exposes the configured router.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *APIServer) configureRouter() {
	router := mux.NewRouter()

	router.HandleFunc("/auth/signup", s.signupHandler()).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", s.loginHandler()).Methods(http.MethodPost)

	router.HandleFunc("/expenses", s.authenticate(s.listExpensesHandler())).Methods(http.MethodGet)
	router.HandleFunc("/expenses", s.authenticate(s.createExpenseHandler())).Methods(http.MethodPost)
	router.HandleFunc("/expenses/stats/by-type", s.authenticate(s.expensesByTypeHandler())).Methods(http.MethodGet)
	router.HandleFunc("/expenses/total-current-month", s.authenticate(s.totalCurrentMonthHandler())).Methods(http.MethodGet)
	router.HandleFunc("/expenses/{id}", s.authenticate(s.updateExpenseHandler())).Methods(http.MethodPatch)
	router.HandleFunc("/expenses/{id}", s.authenticate(s.deleteExpenseHandler())).Methods(http.MethodDelete)

	router.HandleFunc("/health", s.healthHandler()).Methods(http.MethodGet)

	s.server.Handler = s.logRequests(router)
}

func (s *APIServer) healthHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.health != nil {
			if err := s.health.Ping(r.Context()); err != nil {
				s.logger.Error("Health check failed", "error", err)
				s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

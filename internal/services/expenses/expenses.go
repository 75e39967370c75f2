package expenses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/IlyasAtabaev731/expense-tracker/internal/domain/models"
	"github.com/IlyasAtabaev731/expense-tracker/internal/lib/keymutex"
	"github.com/IlyasAtabaev731/expense-tracker/internal/lib/logger/sl"
	"github.com/IlyasAtabaev731/expense-tracker/internal/storage"
)

const (
	DefaultMonthlyLimit = 10000

	// MaxAmount is the exclusive magnitude bound of a single expense amount,
	// matching the NUMERIC(14,2) column.
	MaxAmount = 1e12
)

var (
	ErrInvalidID     = errors.New("invalid expense id")
	ErrNotFound      = errors.New("expense not found")
	ErrLimitExceeded = errors.New("monthly expense limit exceeded")
	ErrInvalidInput  = errors.New("invalid expense input")
)

// Storage is the owner-scoped expense store. Every lookup by id filters on
// both id and owner in a single query.
type Storage interface {
	SaveExpense(ctx context.Context, e models.Expense) (models.Expense, error)
	Expenses(ctx context.Context, userID string) ([]models.Expense, error)
	Expense(ctx context.Context, id, userID string) (models.Expense, error)
	UpdateExpense(ctx context.Context, id, userID string, patch models.ExpensePatch) (models.Expense, error)
	DeleteExpense(ctx context.Context, id, userID string) error
	SumAmount(ctx context.Context, userID string, from, to time.Time) (float64, error)
	TotalsByType(ctx context.Context, userID string) ([]models.TypeTotal, error)
}

type Service struct {
	log     *slog.Logger
	storage Storage
	limit   float64
	locks   *keymutex.KeyMutex
	now     func() time.Time
	loc     *time.Location
}

type Option func(*Service)

// WithClock overrides the source of "now" for current-month totals.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone in which month boundaries are computed.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func New(log *slog.Logger, storage Storage, monthlyLimit float64, opts ...Option) *Service {
	s := &Service{
		log:     log,
		storage: storage,
		limit:   monthlyLimit,
		locks:   keymutex.New(),
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	Title       string
	Description string
	Amount      float64
	Date        time.Time
	Type        models.ExpenseType
}

func (s *Service) FindAll(ctx context.Context, userID string) ([]models.Expense, error) {
	const op = "expenses.FindAll"

	list, err := s.storage.Expenses(ctx, userID)
	if err != nil {
		s.log.Error("failed to list expenses", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput, userID string) (models.Expense, error) {
	const op = "expenses.Create"

	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	if !in.Type.Valid() {
		return models.Expense{}, fmt.Errorf("%s: %w: unknown type %q", op, ErrInvalidInput, in.Type)
	}
	amount, err := normalizeAmount(in.Amount)
	if err != nil {
		return models.Expense{}, fmt.Errorf("%s: %w", op, err)
	}
	in.Amount = amount

	unlock := s.locks.Lock(userID)
	defer unlock()

	exceeded, err := s.IsMonthlyLimitExceeded(ctx, in.Amount, in.Date, userID)
	if err != nil {
		log.Error("failed to check monthly limit", sl.Err(err))
		return models.Expense{}, fmt.Errorf("%s: %w", op, err)
	}
	if exceeded {
		log.Info("monthly limit exceeded", slog.Float64("amount", in.Amount))
		return models.Expense{}, fmt.Errorf("%s: %w", op, ErrLimitExceeded)
	}

	e, err := s.storage.SaveExpense(ctx, models.Expense{
		Title:       in.Title,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		Type:        in.Type,
		UserID:      userID,
	})
	if err != nil {
		log.Error("failed to save expense", sl.Err(err))
		return models.Expense{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("expense created", slog.String("expense_id", e.ID))

	return e, nil
}

// Update applies patch to the caller's expense. The cap is re-checked with
// the amount delta against the month of the resulting date.
func (s *Service) Update(ctx context.Context, id string, patch models.ExpensePatch, userID string) (models.Expense, error) {
	const op = "expenses.Update"

	log := s.log.With(slog.String("op", op), slog.String("user_id", userID), slog.String("expense_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return models.Expense{}, fmt.Errorf("%s: %w", op, ErrInvalidID)
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return models.Expense{}, fmt.Errorf("%s: %w: unknown type %q", op, ErrInvalidInput, *patch.Type)
	}
	if patch.Amount != nil {
		amount, err := normalizeAmount(*patch.Amount)
		if err != nil {
			return models.Expense{}, fmt.Errorf("%s: %w", op, err)
		}
		patch.Amount = &amount
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	existing, err := s.storage.Expense(ctx, id, userID)
	if err != nil {
		return models.Expense{}, fmt.Errorf("%s: %w", op, s.mapStorageErr(log, err))
	}

	newAmount := existing.Amount
	if patch.Amount != nil {
		newAmount = *patch.Amount
	}
	newDate := existing.Date
	if patch.Date != nil {
		newDate = *patch.Date
	}

	exceeded, err := s.IsMonthlyLimitExceeded(ctx, newAmount-existing.Amount, newDate, userID)
	if err != nil {
		log.Error("failed to check monthly limit", sl.Err(err))
		return models.Expense{}, fmt.Errorf("%s: %w", op, err)
	}
	if exceeded {
		log.Info("monthly limit exceeded", slog.Float64("amount", newAmount))
		return models.Expense{}, fmt.Errorf("%s: %w", op, ErrLimitExceeded)
	}

	updated, err := s.storage.UpdateExpense(ctx, id, userID, patch)
	if err != nil {
		return models.Expense{}, fmt.Errorf("%s: %w", op, s.mapStorageErr(log, err))
	}

	log.Info("expense updated")

	return updated, nil
}

// Remove deletes the caller's expense. A malformed id cannot match any
// record and is reported as ErrNotFound.
func (s *Service) Remove(ctx context.Context, id, userID string) (string, error) {
	const op = "expenses.Remove"

	log := s.log.With(slog.String("op", op), slog.String("user_id", userID), slog.String("expense_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if err := s.storage.DeleteExpense(ctx, id, userID); err != nil {
		return "", fmt.Errorf("%s: %w", op, s.mapStorageErr(log, err))
	}

	log.Info("expense deleted")

	return "Expense deleted successfully", nil
}

func (s *Service) TotalsByType(ctx context.Context, userID string) ([]models.TypeTotal, error) {
	const op = "expenses.TotalsByType"

	totals, err := s.storage.TotalsByType(ctx, userID)
	if err != nil {
		s.log.Error("failed to aggregate by type", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return totals, nil
}

// TotalForCurrentMonth sums the caller's expenses in the month containing now.
func (s *Service) TotalForCurrentMonth(ctx context.Context, userID string) (float64, error) {
	const op = "expenses.TotalForCurrentMonth"

	from, to := s.monthBounds(s.now())

	total, err := s.storage.SumAmount(ctx, userID, from, to)
	if err != nil {
		s.log.Error("failed to sum current month", slog.String("op", op), sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

// normalizeAmount rounds to cents so the cap check sees the value storage
// keeps.
func normalizeAmount(a float64) (float64, error) {
	if math.IsNaN(a) || math.Abs(a) >= MaxAmount {
		return 0, fmt.Errorf("%w: amount %v out of range", ErrInvalidInput, a)
	}
	return math.Round(a*100) / 100, nil
}

func (s *Service) mapStorageErr(log *slog.Logger, err error) error {
	if errors.Is(err, storage.ErrExpenseNotFound) {
		return ErrNotFound
	}
	log.Error("storage failure", sl.Err(err))
	return err
}

// Package memory is a process-local Storage used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IlyasAtabaev731/expense-tracker/internal/domain/models"
	"github.com/IlyasAtabaev731/expense-tracker/internal/storage"
)

type Storage struct {
	mu       sync.RWMutex
	users    map[string]models.User
	byEmail  map[string]string
	expenses map[string]models.Expense
	// insertion order of expense ids
	order []string
	now   func() time.Time
}

func New() *Storage {
	return &Storage{
		users:    make(map[string]models.User),
		byEmail:  make(map[string]string),
		expenses: make(map[string]models.Expense),
		now:      time.Now,
	}
}

func (s *Storage) Ping(context.Context) error { return nil }

func (s *Storage) Stop() error { return nil }

func (s *Storage) SaveUser(_ context.Context, name, email string, passHash []byte) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return models.User{}, storage.ErrUserExists
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: append([]byte(nil), passHash...),
		CreatedAt:    s.now(),
	}
	s.users[user.ID] = user
	s.byEmail[email] = user.ID

	return user, nil
}

func (s *Storage) UserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *Storage) SaveExpense(_ context.Context, e models.Expense) (models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[e.UserID]; !ok {
		return models.Expense{}, storage.ErrUserNotFound
	}

	now := s.now()
	e.ID = uuid.NewString()
	e.CreatedAt = now
	e.UpdatedAt = now

	s.expenses[e.ID] = e
	s.order = append(s.order, e.ID)

	return e, nil
}

func (s *Storage) Expenses(_ context.Context, userID string) ([]models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]models.Expense, 0)
	for _, id := range s.order {
		if e := s.expenses[id]; e.UserID == userID {
			res = append(res, e)
		}
	}
	return res, nil
}

func (s *Storage) Expense(_ context.Context, id, userID string) (models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return models.Expense{}, storage.ErrExpenseNotFound
	}
	return e, nil
}

func (s *Storage) UpdateExpense(_ context.Context, id, userID string, patch models.ExpensePatch) (models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return models.Expense{}, storage.ErrExpenseNotFound
	}

	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Amount != nil {
		e.Amount = *patch.Amount
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Type != nil {
		e.Type = *patch.Type
	}
	e.UpdatedAt = s.now()

	s.expenses[id] = e
	return e, nil
}

func (s *Storage) DeleteExpense(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return storage.ErrExpenseNotFound
	}

	delete(s.expenses, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SumAmount totals the user's expenses dated within [from, to).
func (s *Storage) SumAmount(_ context.Context, userID string, from, to time.Time) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, e := range s.expenses {
		if e.UserID != userID || e.Date.Before(from) || !e.Date.Before(to) {
			continue
		}
		total += e.Amount
	}
	return total, nil
}

func (s *Storage) TotalsByType(_ context.Context, userID string) ([]models.TypeTotal, error) {
	s.mu.RLock()
	sums := make(map[models.ExpenseType]float64)
	for _, e := range s.expenses {
		if e.UserID == userID {
			sums[e.Type] += e.Amount
		}
	}
	s.mu.RUnlock()

	res := make([]models.TypeTotal, 0, len(sums))
	for t, total := range sums {
		res = append(res, models.TypeTotal{Type: t, TotalAmount: total})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].TotalAmount != res[j].TotalAmount {
			return res[i].TotalAmount > res[j].TotalAmount
		}
		return res[i].Type < res[j].Type
	})
	return res, nil
}

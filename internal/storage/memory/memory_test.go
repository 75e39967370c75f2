package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/IlyasAtabaev731/expense-tracker/internal/domain/models"
	"github.com/IlyasAtabaev731/expense-tracker/internal/storage"
)

type StorageTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Storage
	alice models.User
	bob   models.User
}

func (s *StorageTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New()

	var err error
	s.alice, err = s.store.SaveUser(s.ctx, "Alice", "alice@example.com", []byte("hash"))
	require.NoError(s.T(), err)
	s.bob, err = s.store.SaveUser(s.ctx, "Bob", "bob@example.com", []byte("hash"))
	require.NoError(s.T(), err)
}

func (s *StorageTestSuite) addExpense(userID string, amount float64, typ models.ExpenseType, date time.Time) models.Expense {
	e, err := s.store.SaveExpense(s.ctx, models.Expense{
		Title:       "t",
		Description: "d",
		Amount:      amount,
		Date:        date,
		Type:        typ,
		UserID:      userID,
	})
	require.NoError(s.T(), err)
	return e
}

func (s *StorageTestSuite) TestSaveUserDuplicateEmail() {
	_, err := s.store.SaveUser(s.ctx, "Other", "alice@example.com", []byte("x"))
	assert.ErrorIs(s.T(), err, storage.ErrUserExists)
}

func (s *StorageTestSuite) TestUserByEmail() {
	u, err := s.store.UserByEmail(s.ctx, "alice@example.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.alice.ID, u.ID)

	_, err = s.store.UserByEmail(s.ctx, "nobody@example.com")
	assert.ErrorIs(s.T(), err, storage.ErrUserNotFound)
}

func (s *StorageTestSuite) TestSaveExpenseRequiresOwner() {
	_, err := s.store.SaveExpense(s.ctx, models.Expense{UserID: "ghost", Type: models.ExpenseTypeFood})
	assert.ErrorIs(s.T(), err, storage.ErrUserNotFound)
}

func (s *StorageTestSuite) TestExpensesScopedAndOrdered() {
	now := time.Now()
	first := s.addExpense(s.alice.ID, 1, models.ExpenseTypeFood, now)
	s.addExpense(s.bob.ID, 2, models.ExpenseTypeFood, now)
	second := s.addExpense(s.alice.ID, 3, models.ExpenseTypeRent, now)

	list, err := s.store.Expenses(s.ctx, s.alice.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), first.ID, list[0].ID)
	assert.Equal(s.T(), second.ID, list[1].ID)
}

func (s *StorageTestSuite) TestCrossUserAccessIsNotFound() {
	e := s.addExpense(s.alice.ID, 10, models.ExpenseTypeFood, time.Now())

	_, err := s.store.Expense(s.ctx, e.ID, s.bob.ID)
	assert.ErrorIs(s.T(), err, storage.ErrExpenseNotFound)

	amount := 99.0
	_, err = s.store.UpdateExpense(s.ctx, e.ID, s.bob.ID, models.ExpensePatch{Amount: &amount})
	assert.ErrorIs(s.T(), err, storage.ErrExpenseNotFound)

	err = s.store.DeleteExpense(s.ctx, e.ID, s.bob.ID)
	assert.ErrorIs(s.T(), err, storage.ErrExpenseNotFound)

	got, err := s.store.Expense(s.ctx, e.ID, s.alice.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 10.0, got.Amount)
}

func (s *StorageTestSuite) TestUpdateExpensePartial() {
	e := s.addExpense(s.alice.ID, 10, models.ExpenseTypeFood, time.Now())

	title := "Dinner"
	typ := models.ExpenseTypeEntertainment
	got, err := s.store.UpdateExpense(s.ctx, e.ID, s.alice.ID, models.ExpensePatch{Title: &title, Type: &typ})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "Dinner", got.Title)
	assert.Equal(s.T(), "d", got.Description)
	assert.Equal(s.T(), 10.0, got.Amount)
	assert.Equal(s.T(), models.ExpenseTypeEntertainment, got.Type)
}

func (s *StorageTestSuite) TestDeleteExpense() {
	e := s.addExpense(s.alice.ID, 10, models.ExpenseTypeFood, time.Now())

	require.NoError(s.T(), s.store.DeleteExpense(s.ctx, e.ID, s.alice.ID))

	_, err := s.store.Expense(s.ctx, e.ID, s.alice.ID)
	assert.ErrorIs(s.T(), err, storage.ErrExpenseNotFound)

	list, err := s.store.Expenses(s.ctx, s.alice.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), list)
}

func (s *StorageTestSuite) TestSumAmountHalfOpenRange() {
	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	s.addExpense(s.alice.ID, 100, models.ExpenseTypeFood, from)
	s.addExpense(s.alice.ID, 200, models.ExpenseTypeFood, to.Add(-time.Nanosecond))
	s.addExpense(s.alice.ID, 400, models.ExpenseTypeFood, to)
	s.addExpense(s.alice.ID, 800, models.ExpenseTypeFood, from.Add(-time.Millisecond))
	s.addExpense(s.bob.ID, 1600, models.ExpenseTypeFood, from)

	total, err := s.store.SumAmount(s.ctx, s.alice.ID, from, to)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 300.0, total)
}

func (s *StorageTestSuite) TestTotalsByType() {
	now := time.Now()
	s.addExpense(s.alice.ID, 100, models.ExpenseTypeFood, now)
	s.addExpense(s.alice.ID, 50, models.ExpenseTypeFood, now)
	s.addExpense(s.alice.ID, 200, models.ExpenseTypeRent, now)
	s.addExpense(s.bob.ID, 1000, models.ExpenseTypeOther, now)

	totals, err := s.store.TotalsByType(s.ctx, s.alice.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []models.TypeTotal{
		{Type: models.ExpenseTypeRent, TotalAmount: 200},
		{Type: models.ExpenseTypeFood, TotalAmount: 150},
	}, totals)
}

func TestStorageTestSuite(t *testing.T) {
	suite.Run(t, new(StorageTestSuite))
}

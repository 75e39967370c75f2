package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/IlyasAtabaev731/expense-tracker/internal/domain/models"
	"github.com/IlyasAtabaev731/expense-tracker/internal/storage"
)

const (
	codeUniqueViolation   = "23505"
	codeInvalidTextRepr   = "22P02"
	codeForeignKeyViolate = "23503"
)

const expenseColumns = "id, title, description, amount, date, type, user_id, created_at, updated_at"

type Storage struct {
	db *sql.DB
}

func New(dbUrl string) (*Storage, error) {
	db, err := sql.Open("postgres", dbUrl)
	if err != nil {
		return nil, fmt.Errorf("database connection error %s", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect database error %s", err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Stop() error {
	return s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) SaveUser(ctx context.Context, name, email string, passHash []byte) (models.User, error) {
	const op = "storage.postgres.SaveUser"

	var user models.User

	err := s.db.QueryRowContext(ctx,
		"INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, name, email, password_hash, created_at",
		name, email, passHash,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.UserByEmail"

	stmt, err := s.db.PrepareContext(ctx, "SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1")
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	var user models.User
	err = stmt.QueryRowContext(ctx, email).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) SaveExpense(ctx context.Context, e models.Expense) (models.Expense, error) {
	const op = "storage.postgres.SaveExpense"

	row := s.db.QueryRowContext(ctx,
		"INSERT INTO expenses (title, description, amount, date, type, user_id) VALUES ($1, $2, $3, $4, $5, $6) RETURNING "+expenseColumns,
		e.Title, e.Description, e.Amount, e.Date, string(e.Type), e.UserID,
	)

	saved, err := scanExpense(row)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolate {
			return models.Expense{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.Expense{}, fmt.Errorf("%s: %w", op, err)
	}

	return saved, nil
}

func (s *Storage) Expenses(ctx context.Context, userID string) ([]models.Expense, error) {
	const op = "storage.postgres.Expenses"

	rows, err := s.db.QueryContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return expenses, nil
}

func (s *Storage) Expense(ctx context.Context, id, userID string) (models.Expense, error) {
	const op = "storage.postgres.Expense"

	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = $1 AND user_id = $2",
		id, userID,
	)

	e, err := scanExpense(row)
	if err != nil {
		return models.Expense{}, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return e, nil
}

func (s *Storage) UpdateExpense(ctx context.Context, id, userID string, patch models.ExpensePatch) (models.Expense, error) {
	const op = "storage.postgres.UpdateExpense"

	var typ *string
	if patch.Type != nil {
		t := string(*patch.Type)
		typ = &t
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE expenses SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			amount = COALESCE($5, amount),
			date = COALESCE($6, date),
			type = COALESCE($7, type),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+expenseColumns,
		id, userID, patch.Title, patch.Description, patch.Amount, patch.Date, typ,
	)

	e, err := scanExpense(row)
	if err != nil {
		return models.Expense{}, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return e, nil
}

func (s *Storage) DeleteExpense(ctx context.Context, id, userID string) error {
	const op = "storage.postgres.DeleteExpense"

	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, notFound(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrExpenseNotFound)
	}

	return nil
}

// SumAmount totals the user's expenses dated within [from, to).
func (s *Storage) SumAmount(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	const op = "storage.postgres.SumAmount"

	var total float64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = $1 AND date >= $2 AND date < $3",
		userID, from, to,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

func (s *Storage) TotalsByType(ctx context.Context, userID string) ([]models.TypeTotal, error) {
	const op = "storage.postgres.TotalsByType"

	rows, err := s.db.QueryContext(ctx, `
		SELECT type, SUM(amount) AS total
		FROM expenses
		WHERE user_id = $1
		GROUP BY type
		ORDER BY total DESC, type`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	totals := make([]models.TypeTotal, 0)
	for rows.Next() {
		var t models.TypeTotal
		if err := rows.Scan(&t.Type, &t.TotalAmount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return totals, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (models.Expense, error) {
	var e models.Expense
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Amount, &e.Date, &e.Type, &e.UserID, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// notFound maps "no row" and malformed-uuid errors to ErrExpenseNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) || pgCode(err) == codeInvalidTextRepr {
		return storage.ErrExpenseNotFound
	}
	return err
}

func pgCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/IlyasAtabaev731/expense-tracker/internal/domain/models"
	"github.com/IlyasAtabaev731/expense-tracker/internal/lib/jwt"
	"github.com/IlyasAtabaev731/expense-tracker/internal/storage/memory"
)

const testSecret = "secret"

func newTestAuth(t *testing.T) (*Auth, *memory.Storage) {
	t.Helper()

	store := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := New(log, store, store, jwt.NewManager(testSecret, 0))
	a.hashCost = bcrypt.MinCost

	return a, store
}

func TestRegisterIssuesTokenForNewUser(t *testing.T) {
	a, store := newTestAuth(t)
	ctx := context.Background()

	res, err := a.Register(ctx, "Alice", "Alice@Example.com ", "pa55word")
	require.NoError(t, err)

	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "Alice", res.User.Name)
	assert.Equal(t, "alice@example.com", res.User.Email)

	userID, err := jwt.NewManager(testSecret, 0).Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)

	stored, err := store.UserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("pa55word"), stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("pa55word")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := a.Register(ctx, "Alice", "alice@example.com", "first")
	require.NoError(t, err)

	_, err = a.Register(ctx, "Impostor", "alice@example.com", "completely-different")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = a.Register(ctx, "Impostor", "ALICE@example.com", "first")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	reg, err := a.Register(ctx, "Alice", "alice@example.com", "pa55word")
	require.NoError(t, err)

	res, err := a.Login(ctx, "alice@example.com", "pa55word")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)

	userID, err := jwt.NewManager(testSecret, 0).Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, userID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := a.Register(ctx, "Alice", "alice@example.com", "pa55word")
	require.NoError(t, err)

	_, wrongPass := a.Login(ctx, "alice@example.com", "nope")
	_, unknown := a.Login(ctx, "bob@example.com", "pa55word")

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

type failingIssuer struct{}

func (failingIssuer) Issue(string) (string, error) { return "", errors.New("signer down") }

type failingProvider struct{}

func (failingProvider) UserByEmail(context.Context, string) (models.User, error) {
	return models.User{}, errors.New("connection reset")
}

func TestPropagatesInfrastructureErrors(t *testing.T) {
	store := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	a := New(log, store, failingProvider{}, failingIssuer{})
	a.hashCost = bcrypt.MinCost

	_, err := a.Register(context.Background(), "Alice", "alice@example.com", "pw")
	assert.ErrorContains(t, err, "signer down")

	_, err = a.Login(context.Background(), "alice@example.com", "pw")
	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/IlyasAtabaev731/expense-tracker/internal/domain/models"
	"github.com/IlyasAtabaev731/expense-tracker/internal/lib/logger/sl"
	"github.com/IlyasAtabaev731/expense-tracker/internal/storage"
)

var (
	ErrUserExists         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type UserSaver interface {
	SaveUser(ctx context.Context, name, email string, passHash []byte) (models.User, error)
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

// TokenIssuer mints a bearer credential carrying only the user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Auth struct {
	log          *slog.Logger
	userSaver    UserSaver
	userProvider UserProvider
	tokens       TokenIssuer
	hashCost     int
}

type Result struct {
	Token string
	User  models.User
}

func New(log *slog.Logger, userSaver UserSaver, userProvider UserProvider, tokens TokenIssuer) *Auth {
	return &Auth{
		log:          log,
		userSaver:    userSaver,
		userProvider: userProvider,
		tokens:       tokens,
		hashCost:     bcrypt.DefaultCost,
	}
}

// Register creates a user and issues a token for it.
// Returns ErrUserExists when the email is taken.
func (a *Auth) Register(ctx context.Context, name, email, password string) (Result, error) {
	const op = "auth.Register"

	email = normalizeEmail(email)
	log := a.log.With(slog.String("op", op))

	log.Info("registering user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), a.hashCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.userSaver.SaveUser(ctx, name, email, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return Result{}, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		log.Error("failed to save user", sl.Err(err))
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		log.Error("failed to issue token", sl.Err(err))
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("user_id", user.ID))

	return Result{Token: token, User: user}, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password both return ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, email, password string) (Result, error) {
	const op = "auth.Login"

	email = normalizeEmail(email)
	log := a.log.With(slog.String("op", op))

	user, err := a.userProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return Result{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		log.Info("invalid credentials", slog.String("user_id", user.ID))
		return Result{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		log.Error("failed to issue token", sl.Err(err))
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.String("user_id", user.ID))

	return Result{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

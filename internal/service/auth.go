package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sadman/hostelreview/internal/apperror"
	"github.com/sadman/hostelreview/internal/auth"
	"github.com/sadman/hostelreview/internal/model"
	"github.com/sadman/hostelreview/internal/repository"
)

const MinPasswordLength = 4

// AuthService handles signup and login.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// AuthResult is a successful signup or login: the account plus a signed
// session token for the cookie.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup registers a new account and signs the user in.
func (s *AuthService) Signup(ctx context.Context, name, email, password, confirm string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "email address is not valid")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if password != confirm {
		return nil, apperror.ValidationFailed("confirm_password", "passwords do not match")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if _, err := s.users.Append(ctx, user); err != nil {
		// Duplicate email surfaces as a conflict from the repository.
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing session token: %w", err)
	}

	s.logger.Info("user signed up", slog.String("id", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a session token.
//
// Wrong email and wrong password produce the same error so the endpoint
// can't be used to probe which addresses have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("credentials", "invalid email or password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("credentials", "invalid email or password")
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.ValidationFailed("credentials", "invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing session token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

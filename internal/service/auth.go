// Package service contains the business logic, between the HTTP handlers
// and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/sakif/friendcircle/internal/apperror"
	"github.com/sakif/friendcircle/internal/auth"
	"github.com/sakif/friendcircle/internal/model"
	"github.com/sakif/friendcircle/internal/repository"
)

const maxBioLength = 300

// AuthService is the identity verifier: it owns registration, credential
// checking, and token issuance. Handlers never touch the password service or
// token service directly.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput carries the signup fields. The password arrives in plaintext
// exactly once, here, and leaves this method only as a bcrypt hash.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DateOfBirth time.Time
	Gender      model.Gender
	Location    string
	Bio         string
	Hobbies     []string
	Profession  string
	AvatarURL   string
}

// AuthResult bundles the authenticated identity ID with the issued token.
type AuthResult struct {
	UserID string
	Token  string
}

// Register validates the input, hashes the password, and creates the
// identity. A taken username or email surfaces as apperror.ErrConflict from
// the store's uniqueness constraints.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
		Location:     strings.TrimSpace(in.Location),
		Bio:          in.Bio,
		Hobbies:      in.Hobbies,
		Profession:   strings.TrimSpace(in.Profession),
		AvatarURL:    strings.TrimSpace(in.AvatarURL),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %q: %w", user.Username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login checks the credentials and, on success, issues a signed token bound
// to the identity.
//
// Unknown username and wrong password both return the same
// apperror.ErrUnauthorized with the same message, and the unknown-username
// path still pays for one bcrypt comparison (against a dummy hash), so the
// two failures are indistinguishable in kind and timing. That closes the
// username-enumeration channel at login.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.VerifyDummy(password)
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("service/auth: looking up user %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{UserID: user.ID, Token: token}, nil
}

// GetUserByID returns the identity for the given internal ID. Used by
// handlers that need the acting user's full profile after the gate resolved
// the token.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID must not be empty")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

func validateRegisterInput(in RegisterInput) error {
	if strings.TrimSpace(in.Username) == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperror.ValidationFailed("email", "email is not a valid address")
	}
	if len(in.Password) < 6 {
		return apperror.ValidationFailed("password", "password must be at least 6 characters")
	}
	if in.DateOfBirth.IsZero() {
		return apperror.ValidationFailed("dateOfBirth", "date of birth is required")
	}
	if in.Gender == "" {
		return apperror.ValidationFailed("gender", "gender is required")
	}
	if len(in.Bio) > maxBioLength {
		return apperror.ValidationFailed("bio", fmt.Sprintf("bio must be at most %d characters", maxBioLength))
	}
	return nil
}

// Package identity implements user registration, login and token validation.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/pkg/httputil"
	"github.com/taskhive/taskhive/internal/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
)

// Repository defines the interface for user data operations.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Authenticator issues and validates session tokens.
type Authenticator interface {
	GenerateToken(ctx context.Context, user *domain.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*httputil.Identity, error)
}

// Service implements identity business logic.
type Service struct {
	repo Repository
	auth Authenticator
}

// NewService creates a new identity service.
func NewService(repo Repository, auth Authenticator) *Service {
	return &Service{repo: repo, auth: auth}
}

// RegisterInput holds data for registering a user.
type RegisterInput struct {
	Username string
	Password string
}

// LoginInput holds data for logging in.
type LoginInput struct {
	Username string
	Password string
}

// Register creates a user with the default role and returns it together with
// a signed session token.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	existing, err := s.repo.GetUserByUsername(ctx, input.Username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, "", fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
		return nil, "", ErrUsernameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		// The unique constraint still applies under concurrent registration.
		if errors.Is(err, ErrUsernameExists) {
			metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
			return nil, "", ErrUsernameExists
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.auth.GenerateToken(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh session token.
// Unknown usernames and wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.User, string, error) {
	user, err := s.repo.GetUserByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.auth.GenerateToken(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	return user, token, nil
}

// GetUserByID returns a user by id.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ValidateToken implements httputil.TokenValidator.
func (s *Service) ValidateToken(ctx context.Context, token string) (*httputil.Identity, error) {
	return s.auth.ValidateToken(ctx, token)
}

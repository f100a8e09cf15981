package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/pkg/httputil"
	"golang.org/x/crypto/bcrypt"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	users         map[string]*domain.User
	createUserErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockRepository) CreateUser(_ context.Context, user *domain.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	user.ID = "test-user-id"
	m.users[user.Username] = user
	return nil
}

func (m *mockRepository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

// mockAuthenticator implements Authenticator for testing.
type mockAuthenticator struct {
	generateErr error
}

func (m *mockAuthenticator) GenerateToken(_ context.Context, _ *domain.User) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return "test-token", nil
}

func (m *mockAuthenticator) ValidateToken(_ context.Context, _ string) (*httputil.Identity, error) {
	return nil, nil
}

func TestRegister_CreatesUserWithDefaultRole(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	// Act
	user, token, err := service.Register(context.Background(), RegisterInput{
		Username: "newcomer",
		Password: "password123",
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "newcomer", user.Username)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "test-token", token)

	// Stored hash must verify against the original password.
	stored := repo.users["newcomer"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestRegister_UsernameAlreadyExists(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	repo.users["taken"] = &domain.User{ID: "existing-id", Username: "taken"}
	service := NewService(repo, &mockAuthenticator{})

	// Act
	user, token, err := service.Register(context.Background(), RegisterInput{
		Username: "taken",
		Password: "password123",
	})

	// Assert
	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestRegister_ConcurrentDuplicateFromRepo(t *testing.T) {
	// Arrange — the unique constraint can still fire after the pre-check
	repo := newMockRepository()
	repo.createUserErr = ErrUsernameExists
	service := NewService(repo, &mockAuthenticator{})

	// Act
	user, _, err := service.Register(context.Background(), RegisterInput{
		Username: "racer",
		Password: "password123",
	})

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestRegister_CreateUserFails(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	repo.createUserErr = errors.New("database error")
	service := NewService(repo, &mockAuthenticator{})

	// Act
	user, _, err := service.Register(context.Background(), RegisterInput{
		Username: "unlucky",
		Password: "password123",
	})

	// Assert
	assert.Nil(t, user)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUsernameExists)
}

func registerTestUser(t *testing.T, service *Service, username, password string) *domain.User {
	t.Helper()
	user, _, err := service.Register(context.Background(), RegisterInput{
		Username: username,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})
	registerTestUser(t, service, "resident", "password123")

	// Act
	user, token, err := service.Login(context.Background(), LoginInput{
		Username: "resident",
		Password: "password123",
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "resident", user.Username)
	assert.Equal(t, "test-token", token)
}

func TestLogin_WrongPassword(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})
	registerTestUser(t, service, "resident", "password123")

	// Act
	user, _, err := service.Login(context.Background(), LoginInput{
		Username: "resident",
		Password: "wrong-password",
	})

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUsername_SameError(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	// Act
	user, _, err := service.Login(context.Background(), LoginInput{
		Username: "nobody",
		Password: "password123",
	})

	// Assert — indistinguishable from a wrong password
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_TokenGenerationFails(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})
	registerTestUser(t, service, "resident", "password123")

	failing := NewService(repo, &mockAuthenticator{generateErr: errors.New("signing error")})

	// Act
	user, _, err := failing.Login(context.Background(), LoginInput{
		Username: "resident",
		Password: "password123",
	})

	// Assert
	assert.Nil(t, user)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserByID(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})
	created := registerTestUser(t, service, "lookup", "password123")

	// Act
	user, err := service.GetUserByID(context.Background(), created.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "lookup", user.Username)

	_, err = service.GetUserByID(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trovehq/trove/internal/models"
	"github.com/trovehq/trove/internal/repository"
)

// MockUsersRepository is a mock implementation of UsersRepo
type MockUsersRepository struct {
	mock.Mock
}

func (m *MockUsersRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsersRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a bcrypt hash, never the password", func(t *testing.T) {
		mockRepo := &MockUsersRepository{}
		svc := NewAuthService(mockRepo, []byte("test-secret"), "trove")

		var stored *models.User
		mockRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.User)
		}).Return(&models.User{ID: uuid.New(), Username: "ada", Email: "ada@example.com"}, nil)

		user, err := svc.Register(ctx, &models.RegisterRequest{
			Username: "ada",
			Email:    "ada@example.com",
			Password: "correct horse battery",
		})
		require.NoError(t, err)
		assert.Equal(t, "ada", user.Username)

		require.NotNil(t, stored)
		assert.NotEqual(t, "correct horse battery", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse battery")))
	})

	t.Run("surfaces duplicate email", func(t *testing.T) {
		mockRepo := &MockUsersRepository{}
		svc := NewAuthService(mockRepo, []byte("test-secret"), "trove")

		mockRepo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrEmailTaken)

		_, err := svc.Register(ctx, &models.RegisterRequest{
			Username: "ada",
			Email:    "ada@example.com",
			Password: "correct horse battery",
		})
		assert.ErrorIs(t, err, repository.ErrEmailTaken)
	})
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: string(hash),
	}

	t.Run("issues a token that validates back to the user id", func(t *testing.T) {
		mockRepo := &MockUsersRepository{}
		svc := NewAuthService(mockRepo, []byte("test-secret"), "trove")

		mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)

		token, got, err := svc.Login(ctx, &models.LoginRequest{Email: user.Email, Password: "hunter2hunter2"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		require.NotEmpty(t, token)

		userID, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
	})

	t.Run("wrong password is invalid credentials", func(t *testing.T) {
		mockRepo := &MockUsersRepository{}
		svc := NewAuthService(mockRepo, []byte("test-secret"), "trove")

		mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)

		_, _, err := svc.Login(ctx, &models.LoginRequest{Email: user.Email, Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email is invalid credentials, not a lookup error", func(t *testing.T) {
		mockRepo := &MockUsersRepository{}
		svc := NewAuthService(mockRepo, []byte("test-secret"), "trove")

		mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrUserNotFound)

		_, _, err := svc.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		mockRepo := &MockUsersRepository{}
		issuing := NewAuthService(mockRepo, []byte("other-secret"), "trove")
		validating := NewAuthService(mockRepo, []byte("test-secret"), "trove")

		mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)

		token, _, err := issuing.Login(ctx, &models.LoginRequest{Email: user.Email, Password: "hunter2hunter2"})
		require.NoError(t, err)

		_, err = validating.ValidateToken(token)
		assert.Error(t, err)
	})
}

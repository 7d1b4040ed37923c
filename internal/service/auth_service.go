package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/trovehq/trove/internal/models"
	"github.com/trovehq/trove/internal/repository"
)

// ErrInvalidCredentials is returned on login with an unknown email or wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

const tokenTTL = 24 * time.Hour

// UsersRepo is the repository surface used by AuthService.
type UsersRepo interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Claims are the JWT claims issued on login.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// AuthService handles account registration, login, and token validation.
type AuthService struct {
	users     UsersRepo
	secretKey []byte
	issuer    string
}

// NewAuthService creates an AuthService signing tokens with secretKey.
func NewAuthService(users UsersRepo, secretKey []byte, issuer string) *AuthService {
	return &AuthService{users: users, secretKey: secretKey, issuer: issuer}
}

// Register creates a new account with a bcrypt password hash.
// Returns repository.ErrEmailTaken when the email is already registered.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, repository.ErrEmailTaken
		}

		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		UserID: user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return token, user, nil
}

// ValidateToken parses and validates an access token, returning the user id.
func (s *AuthService) ValidateToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return s.secretKey, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token claims")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token: %w", err)
	}

	return userID, nil
}

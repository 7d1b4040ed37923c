package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trovehq/trove/internal/models"
)

// Sentinel errors for user lookups and creation.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const (
	uniqueViolation   = "23505"
	userColumnsClause = `id, username, email, password_hash, created_at`
)

// UsersRepository handles data access for user accounts.
type UsersRepository struct {
	db *pgxpool.Pool
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *pgxpool.Pool) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create inserts a new user. Returns ErrEmailTaken when the email is already registered.
func (r *UsersRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumnsClause,
		user.Username, user.Email, user.PasswordHash)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}

		return nil, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

// GetByEmail returns the user with the given email, or ErrUserNotFound.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumnsClause+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}

// GetByID returns the user with the given id, or ErrUserNotFound.
func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumnsClause+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User

	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

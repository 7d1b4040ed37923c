// Package repository provides data access for lost and found item records.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trovehq/trove/internal/models"
)

// ErrLostItemNotFound is returned when no lost item exists for the given id.
var ErrLostItemNotFound = errors.New("lost item not found")

// LostItemsRepository handles data access for lost item records.
type LostItemsRepository struct {
	db *pgxpool.Pool
}

// NewLostItemsRepository creates a new lost items repository.
func NewLostItemsRepository(db *pgxpool.Pool) *LostItemsRepository {
	return &LostItemsRepository{db: db}
}

const lostItemColumns = `
	id, category, name, description, color, brand, serial,
	date_lost, time_lost, location, landmark,
	owner_name, email, phone, images, user_id, status, created_at`

// Create inserts a new lost item record and returns it with generated fields populated.
func (r *LostItemsRepository) Create(ctx context.Context, item *models.LostItem) (*models.LostItem, error) {
	query := `
		INSERT INTO lost_items (
			category, name, description, color, brand, serial,
			date_lost, time_lost, location, landmark,
			owner_name, email, phone, images, user_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING` + lostItemColumns

	row := r.db.QueryRow(ctx, query,
		item.Category, item.Name, item.Description, item.Color, item.Brand, item.Serial,
		item.DateLost, item.TimeLost, item.Location, item.Landmark,
		item.OwnerName, item.Email, item.Phone, item.Images, item.UserID,
	)

	created, err := scanLostItem(row)
	if err != nil {
		return nil, fmt.Errorf("create lost item: %w", err)
	}

	return created, nil
}

// GetByID returns the lost item with the given id, or ErrLostItemNotFound.
func (r *LostItemsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LostItem, error) {
	row := r.db.QueryRow(ctx,
		`SELECT`+lostItemColumns+` FROM lost_items WHERE id = $1`, id)

	item, err := scanLostItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLostItemNotFound
		}

		return nil, fmt.Errorf("get lost item: %w", err)
	}

	return item, nil
}

// ListByUser returns all lost items reported by the given user, newest first.
func (r *LostItemsRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.LostItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT`+lostItemColumns+` FROM lost_items WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list lost items by user: %w", err)
	}
	defer rows.Close()

	return collectLostItems(rows)
}

// List returns all lost item records, newest first.
func (r *LostItemsRepository) List(ctx context.Context) ([]*models.LostItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT`+lostItemColumns+` FROM lost_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list lost items: %w", err)
	}
	defer rows.Close()

	return collectLostItems(rows)
}

// UpdateStatus sets the status of a lost item (e.g. when it is returned to its owner).
func (r *LostItemsRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE lost_items SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update lost item status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrLostItemNotFound
	}

	return nil
}

func collectLostItems(rows pgx.Rows) ([]*models.LostItem, error) {
	var items []*models.LostItem

	for rows.Next() {
		item, err := scanLostItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lost item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lost items: %w", err)
	}

	return items, nil
}

func scanLostItem(row pgx.Row) (*models.LostItem, error) {
	var item models.LostItem

	err := row.Scan(
		&item.ID, &item.Category, &item.Name, &item.Description, &item.Color, &item.Brand, &item.Serial,
		&item.DateLost, &item.TimeLost, &item.Location, &item.Landmark,
		&item.OwnerName, &item.Email, &item.Phone, &item.Images, &item.UserID, &item.Status, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

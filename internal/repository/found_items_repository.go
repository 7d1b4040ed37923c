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

// ErrFoundItemNotFound is returned when no found item exists for the given id
// (e.g. a record referenced by the vector index was since deleted).
var ErrFoundItemNotFound = errors.New("found item not found")

// FoundItemsRepository handles data access for found item records.
type FoundItemsRepository struct {
	db *pgxpool.Pool
}

// NewFoundItemsRepository creates a new found items repository.
func NewFoundItemsRepository(db *pgxpool.Pool) *FoundItemsRepository {
	return &FoundItemsRepository{db: db}
}

const foundItemColumns = `
	id, category, description, color, date_found, location_found,
	custody, finder_name, contact, consent, images, user_id, status, created_at`

// Create inserts a new found item record and returns it with generated fields populated.
func (r *FoundItemsRepository) Create(ctx context.Context, item *models.FoundItem) (*models.FoundItem, error) {
	query := `
		INSERT INTO found_items (
			category, description, color, date_found, location_found,
			custody, finder_name, contact, consent, images, user_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING` + foundItemColumns

	row := r.db.QueryRow(ctx, query,
		item.Category, item.Description, item.Color, item.DateFound, item.LocationFound,
		item.Custody, item.FinderName, item.Contact, item.Consent, item.Images, item.UserID,
	)

	created, err := scanFoundItem(row)
	if err != nil {
		return nil, fmt.Errorf("create found item: %w", err)
	}

	return created, nil
}

// GetByID returns the found item with the given id, or ErrFoundItemNotFound.
func (r *FoundItemsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FoundItem, error) {
	row := r.db.QueryRow(ctx,
		`SELECT`+foundItemColumns+` FROM found_items WHERE id = $1`, id)

	item, err := scanFoundItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFoundItemNotFound
		}

		return nil, fmt.Errorf("get found item: %w", err)
	}

	return item, nil
}

// List returns all found item records, newest first.
func (r *FoundItemsRepository) List(ctx context.Context) ([]*models.FoundItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT`+foundItemColumns+` FROM found_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list found items: %w", err)
	}
	defer rows.Close()

	return collectFoundItems(rows)
}

// ListCandidates returns found items passing the attribute-matching hard
// filters: same category and not found before the loss date.
func (r *FoundItemsRepository) ListCandidates(ctx context.Context, filter models.FoundItemFilter) ([]*models.FoundItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT`+foundItemColumns+` FROM found_items
		 WHERE category = $1 AND date_found >= $2
		 ORDER BY created_at DESC`,
		filter.Category, filter.MinDateFound)
	if err != nil {
		return nil, fmt.Errorf("list candidate found items: %w", err)
	}
	defer rows.Close()

	return collectFoundItems(rows)
}

func collectFoundItems(rows pgx.Rows) ([]*models.FoundItem, error) {
	var items []*models.FoundItem

	for rows.Next() {
		item, err := scanFoundItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan found item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating found items: %w", err)
	}

	return items, nil
}

func scanFoundItem(row pgx.Row) (*models.FoundItem, error) {
	var item models.FoundItem

	err := row.Scan(
		&item.ID, &item.Category, &item.Description, &item.Color, &item.DateFound, &item.LocationFound,
		&item.Custody, &item.FinderName, &item.Contact, &item.Consent, &item.Images, &item.UserID,
		&item.Status, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

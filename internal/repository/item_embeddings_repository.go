package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/trovehq/trove/internal/models"
)

// EmbeddingKind names the logical vector collection an embedding belongs to.
type EmbeddingKind string

// One collection per item kind.
const (
	EmbeddingKindLost  EmbeddingKind = "lost"
	EmbeddingKindFound EmbeddingKind = "found"
)

// ErrEmbeddingNotFound is returned when no embedding row exists for the given item and kind.
var ErrEmbeddingNotFound = errors.New("embedding not found for item")

// ItemEmbeddingsRepository is the vector index: one row per (item, kind) with
// the item's image embedding and its category as filterable metadata.
// Distance space is cosine; similarity = 1 - distance.
type ItemEmbeddingsRepository struct {
	db *pgxpool.Pool
}

// NewItemEmbeddingsRepository creates a new item embeddings repository.
func NewItemEmbeddingsRepository(db *pgxpool.Pool) *ItemEmbeddingsRepository {
	return &ItemEmbeddingsRepository{db: db}
}

// Upsert inserts or replaces the embedding for (item, kind), storing the
// item's category alongside it for filtered nearest-neighbor search.
func (r *ItemEmbeddingsRepository) Upsert(
	ctx context.Context, kind EmbeddingKind, itemID uuid.UUID, embedding []float32, category string,
) error {
	vec := pgvector.NewVector(embedding)
	now := time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO item_embeddings (item_id, kind, embedding, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (item_id, kind)
		DO UPDATE SET embedding = EXCLUDED.embedding, category = EXCLUDED.category, updated_at = $5`,
		itemID, string(kind), vec, category, now,
	)
	if err != nil {
		return fmt.Errorf("item embeddings upsert: %w", err)
	}

	return nil
}

// GetByItem returns the stored embedding for (item, kind).
// Returns ErrEmbeddingNotFound when no row exists (item not embedded yet).
func (r *ItemEmbeddingsRepository) GetByItem(
	ctx context.Context, kind EmbeddingKind, itemID uuid.UUID,
) ([]float32, error) {
	var vec pgvector.Vector

	err := r.db.QueryRow(ctx,
		`SELECT embedding FROM item_embeddings WHERE item_id = $1 AND kind = $2`,
		itemID, string(kind),
	).Scan(&vec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmbeddingNotFound
		}

		return nil, fmt.Errorf("get item embedding: %w", err)
	}

	return vec.Slice(), nil
}

// Nearest returns the k nearest neighbors to queryEmbedding within the given
// kind collection, restricted to the given category, ordered by ascending
// cosine distance. Each result carries similarity = 1 - distance; the
// similarity threshold is applied by the caller, not here, so the caller
// decides how strict a visual match must be.
func (r *ItemEmbeddingsRepository) Nearest(
	ctx context.Context, kind EmbeddingKind, queryEmbedding []float32, category string, k int,
) ([]models.NeighborMatch, error) {
	queryVec := pgvector.NewVector(queryEmbedding)

	rows, err := r.db.Query(ctx, `
		SELECT item_id, (1 - (embedding <=> $1)) AS similarity, category
		FROM item_embeddings
		WHERE kind = $2 AND category = $3
		ORDER BY embedding <=> $1
		LIMIT $4`,
		queryVec, string(kind), category, k)
	if err != nil {
		return nil, fmt.Errorf("nearest item embeddings: %w", err)
	}
	defer rows.Close()

	var results []models.NeighborMatch

	for rows.Next() {
		var m models.NeighborMatch

		if err := rows.Scan(&m.ItemID, &m.Similarity, &m.Category); err != nil {
			return nil, fmt.Errorf("scan neighbor match: %w", err)
		}

		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating neighbors: %w", err)
	}

	return results, nil
}

// Delete removes the embedding row for (item, kind). Missing rows are not an error.
func (r *ItemEmbeddingsRepository) Delete(ctx context.Context, kind EmbeddingKind, itemID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM item_embeddings WHERE item_id = $1 AND kind = $2`,
		itemID, string(kind))
	if err != nil {
		return fmt.Errorf("item embeddings delete: %w", err)
	}

	return nil
}

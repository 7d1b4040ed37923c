// Package workers provides River job workers (e.g. item image embedding).
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"golang.org/x/time/rate"

	"github.com/trovehq/trove/internal/embeddings"
	"github.com/trovehq/trove/internal/models"
	"github.com/trovehq/trove/internal/repository"
	"github.com/trovehq/trove/internal/service"
)

// ItemEmbeddingWorkerDeps holds the dependencies for the item embedding worker.
type ItemEmbeddingWorkerDeps struct {
	LostItems       service.LostItemsRepo
	FoundItems      service.FoundItemsRepo
	EmbeddingClient embeddings.Client
	Index           service.VectorIndexWriter
	RateLimiter     *rate.Limiter
}

// ItemEmbeddingWorker computes and stores the first-image embedding for
// reported items, making them visually matchable.
type ItemEmbeddingWorker struct {
	river.WorkerDefaults[service.ItemEmbeddingArgs]

	deps ItemEmbeddingWorkerDeps
}

// NewItemEmbeddingWorker creates a worker that loads the item, computes the
// embedding for its first image, and upserts it into the vector index.
func NewItemEmbeddingWorker(deps ItemEmbeddingWorkerDeps) *ItemEmbeddingWorker {
	return &ItemEmbeddingWorker{deps: deps}
}

const itemEmbeddingTimeout = 60 * time.Second

// Timeout limits how long a single embedding job can run.
func (w *ItemEmbeddingWorker) Timeout(*river.Job[service.ItemEmbeddingArgs]) time.Duration {
	return itemEmbeddingTimeout
}

// Work loads the item, generates the embedding, and persists it to the index.
// Missing records and items without images complete without retry; provider
// failures are retried until the final attempt.
func (w *ItemEmbeddingWorker) Work(ctx context.Context, job *river.Job[service.ItemEmbeddingArgs]) error {
	args := job.Args

	kind := repository.EmbeddingKind(args.ItemKind)

	category, firstImage, err := w.loadItem(ctx, kind, args.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrLostItemNotFound) || errors.Is(err, repository.ErrFoundItemNotFound) {
			slog.Info("embedding: item deleted before job ran",
				"item_id", args.ItemID, "item_kind", args.ItemKind)

			return nil
		}

		return fmt.Errorf("load item: %w", err)
	}

	if firstImage == "" {
		slog.Debug("embedding: item has no image, skipping",
			"item_id", args.ItemID, "item_kind", args.ItemKind)

		return nil
	}

	if w.deps.RateLimiter != nil {
		if err := w.deps.RateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("embedding rate limit: %w", err)
		}
	}

	vec, err := w.deps.EmbeddingClient.EmbedImage(ctx, embeddings.RefFromString(firstImage))
	if err != nil {
		if job.Attempt >= job.MaxAttempts {
			slog.Error("embedding: compute failed (final attempt)",
				"item_id", args.ItemID, "item_kind", args.ItemKind, "error", err)

			return nil
		}

		return fmt.Errorf("compute embedding: %w", err)
	}

	if err := w.deps.Index.Upsert(ctx, kind, args.ItemID, vec, category); err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}

	slog.Info("embedding: stored",
		"item_id", args.ItemID, "item_kind", args.ItemKind, "dimensions", len(vec))

	return nil
}

// loadItem fetches the item from the table matching its kind.
func (w *ItemEmbeddingWorker) loadItem(
	ctx context.Context, kind repository.EmbeddingKind, id uuid.UUID,
) (category, firstImage string, err error) {
	switch kind {
	case repository.EmbeddingKindLost:
		var item *models.LostItem

		item, err = w.deps.LostItems.GetByID(ctx, id)
		if err != nil {
			return "", "", err
		}

		return item.Category, item.FirstImage(), nil

	case repository.EmbeddingKindFound:
		var item *models.FoundItem

		item, err = w.deps.FoundItems.GetByID(ctx, id)
		if err != nil {
			return "", "", err
		}

		return item.Category, item.FirstImage(), nil

	default:
		return "", "", fmt.Errorf("unknown item kind %q", kind)
	}
}

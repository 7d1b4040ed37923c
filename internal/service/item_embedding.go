package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/trovehq/trove/internal/embeddings"
	"github.com/trovehq/trove/internal/repository"
)

// embedItemParams carries what embedItemFirstImage needs to schedule or run
// the embedding of one item's first image.
type embedItemParams struct {
	Jobs   ItemEmbeddingInserter
	Client embeddings.Client
	Index  VectorIndexWriter
	Logger *slog.Logger

	ItemID     uuid.UUID
	Kind       repository.EmbeddingKind
	Category   string
	FirstImage string
}

// embedItemFirstImage makes the item visually matchable, best effort: when a
// job inserter is configured the work is enqueued for the embedding worker;
// otherwise the embedding is computed and upserted inline. Failures are
// logged and swallowed so reporting an item never fails on embedding trouble.
func embedItemFirstImage(ctx context.Context, p embedItemParams) {
	if p.FirstImage == "" {
		return
	}

	if p.Jobs != nil {
		err := p.Jobs.InsertItemEmbeddingJob(ctx, ItemEmbeddingArgs{
			ItemID:   p.ItemID,
			ItemKind: string(p.Kind),
		})
		if err != nil {
			p.Logger.Error("embedding: enqueue failed",
				"item_id", p.ItemID, "item_kind", p.Kind, "error", err)
		}

		return
	}

	if p.Client == nil || p.Index == nil {
		return
	}

	vec, err := p.Client.EmbedImage(ctx, embeddings.RefFromString(p.FirstImage))
	if err != nil {
		p.Logger.Error("embedding: compute failed",
			"item_id", p.ItemID, "item_kind", p.Kind, "error", err)

		return
	}

	if err := p.Index.Upsert(ctx, p.Kind, p.ItemID, vec, p.Category); err != nil {
		p.Logger.Error("embedding: upsert failed",
			"item_id", p.ItemID, "item_kind", p.Kind, "error", err)
	}
}

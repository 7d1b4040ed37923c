package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

const itemEmbeddingKind = "item_embedding"

// EmbeddingsQueueName is the River queue used for item embedding jobs.
const EmbeddingsQueueName = "embeddings"

// ItemEmbeddingInserter enqueues item embedding jobs (e.g. the River client).
type ItemEmbeddingInserter interface {
	InsertItemEmbeddingJob(ctx context.Context, args ItemEmbeddingArgs) error
}

// ItemEmbeddingArgs is the job payload for computing and storing the image
// embedding of one item. The worker reloads the item, so the payload stays
// small even when images are stored inline as base64. Uniqueness is by args,
// so duplicate enqueues for the same item collapse into one pending job.
type ItemEmbeddingArgs struct {
	ItemID uuid.UUID `json:"item_id"`
	// ItemKind is "lost" or "found"; it selects the record store table and
	// the vector index collection.
	ItemKind string `json:"item_kind"`
}

// Kind returns the River job kind.
func (ItemEmbeddingArgs) Kind() string { return itemEmbeddingKind }

var _ river.JobArgs = ItemEmbeddingArgs{}

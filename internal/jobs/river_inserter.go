// Package jobs provides the River job queue glue: inserters and error handling.
package jobs

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/trovehq/trove/internal/observability"
	"github.com/trovehq/trove/internal/service"
)

// RiverJobInserter implements service.ItemEmbeddingInserter using the River client.
type RiverJobInserter struct {
	client  *river.Client[pgx.Tx]
	metrics observability.EmbeddingMetrics
}

// NewRiverJobInserter creates a new River-based job inserter.
// metrics is optional; when non-nil, enqueued jobs are counted.
func NewRiverJobInserter(client *river.Client[pgx.Tx], metrics observability.EmbeddingMetrics) *RiverJobInserter {
	return &RiverJobInserter{client: client, metrics: metrics}
}

// InsertItemEmbeddingJob enqueues an item embedding job with uniqueness by args,
// so duplicate reports of the same item do not create duplicate jobs.
func (r *RiverJobInserter) InsertItemEmbeddingJob(ctx context.Context, args service.ItemEmbeddingArgs) error {
	res, err := r.client.Insert(ctx, args, &river.InsertOpts{
		Queue: service.EmbeddingsQueueName,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			// JobStatePending is required by River when using ByState.
			ByState: []rivertype.JobState{
				rivertype.JobStatePending,
				rivertype.JobStateAvailable,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("insert item embedding job: %w", err)
	}

	if r.metrics != nil && !res.UniqueSkippedAsDuplicate {
		r.metrics.RecordJobsEnqueued(ctx, 1)
	}

	return nil
}

package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/concertlog/concertlog/internal/enrich"
)

// EnrichPendingTask sweeps every show still missing a setlist and
// retries the catalog lookup. Queued by the scheduler.
type EnrichPendingTask struct {
	// UserID optionally limits the sweep to one user (0 = all users).
	UserID uint `json:"user_id,omitempty"`
}

func (t EnrichPendingTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_pending",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute, // catalog pacing makes big sweeps slow
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichPendingProcessor creates the processor for EnrichPendingTask.
func EnrichPendingProcessor(enricher *enrich.Enricher) backlite.QueueProcessor[EnrichPendingTask] {
	return func(ctx context.Context, task EnrichPendingTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichAllMissing(ctx, task.UserID)
		if err != nil {
			return fmt.Errorf("enrich pending shows: %w", err)
		}

		log.Printf("[TASK] Setlist sweep complete: %d pending, %d enriched, %d without match, %d failed",
			result.Total, result.Enriched, result.NoMatch, result.Failed)
		return nil
	}
}

// NewEnrichPendingQueue creates the backlite queue for the periodic
// sweep.
func NewEnrichPendingQueue(enricher *enrich.Enricher) backlite.Queue {
	return backlite.NewQueue(EnrichPendingProcessor(enricher))
}

package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/concertlog/concertlog/internal/enrich"
)

// EnrichShowTask fetches and attaches the catalogued setlist for one
// show, typically right after a manual add.
type EnrichShowTask struct {
	ShowID uint `json:"show_id"`
}

func (t EnrichShowTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_show",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichShowProcessor creates the processor for EnrichShowTask.
func EnrichShowProcessor(enricher *enrich.Enricher) backlite.QueueProcessor[EnrichShowTask] {
	return func(ctx context.Context, task EnrichShowTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichShow(ctx, task.ShowID)
		if err != nil {
			return fmt.Errorf("enrich show %d: %w", task.ShowID, err)
		}

		if result.Found {
			log.Printf("[TASK] Enriched show %d (%s): attached %d songs",
				task.ShowID, result.Show.Artist, result.Songs)
		} else {
			log.Printf("[TASK] Show %d (%s): no setlist in catalog",
				task.ShowID, result.Show.Artist)
		}
		return nil
	}
}

// NewEnrichShowQueue creates the backlite queue for single-show
// enrichment.
func NewEnrichShowQueue(enricher *enrich.Enricher) backlite.Queue {
	return backlite.NewQueue(EnrichShowProcessor(enricher))
}

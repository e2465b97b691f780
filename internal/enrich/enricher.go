package enrich

import (
	"context"
	"fmt"
	"log"

	"github.com/concertlog/concertlog/internal/entities"
	"github.com/concertlog/concertlog/internal/setlist"
)

// ShowSource is the slice of show persistence the enricher needs.
type ShowSource interface {
	GetByID(id uint) (*entities.Show, error)
	MissingSetlists(userID uint) ([]entities.Show, error)
	AttachSetlist(id uint, songs []entities.Song, catalogID, tour string) error
}

// Matcher finds the catalogued setlist for a show.
type Matcher interface {
	Match(ctx context.Context, artist, date string) (*setlist.Match, error)
}

// Result reports one show's enrichment outcome.
type Result struct {
	Show  *entities.Show
	Found bool
	Songs int
}

// SweepResult summarizes a pass over all shows missing setlists.
type SweepResult struct {
	Total    int
	Enriched int
	NoMatch  int
	Failed   int
}

// Enricher attaches catalogued setlists to shows that lack them.
type Enricher struct {
	shows   ShowSource
	matcher Matcher
}

func NewEnricher(shows ShowSource, matcher Matcher) *Enricher {
	return &Enricher{shows: shows, matcher: matcher}
}

// EnrichShow looks up and attaches the setlist for a single show.
// A show the catalog does not know is a normal outcome, not an error.
func (e *Enricher) EnrichShow(ctx context.Context, showID uint) (*Result, error) {
	show, err := e.shows.GetByID(showID)
	if err != nil {
		return nil, fmt.Errorf("loading show %d: %w", showID, err)
	}

	match, err := e.matcher.Match(ctx, show.Artist, show.Date)
	if err != nil {
		return nil, fmt.Errorf("matching show %d: %w", showID, err)
	}
	if match == nil {
		setlist.LogNoMatch(show.Artist, show.Date, nil)
		return &Result{Show: show}, nil
	}

	if err := e.shows.AttachSetlist(show.ID, match.Songs, match.CatalogID, match.Tour); err != nil {
		return nil, fmt.Errorf("attaching setlist to show %d: %w", showID, err)
	}

	return &Result{Show: show, Found: true, Songs: len(match.Songs)}, nil
}

// EnrichAllMissing sweeps every show without a setlist. userID 0
// spans all users. Per-show failures are counted and the sweep
// continues; ctx cancellation stops it between shows.
func (e *Enricher) EnrichAllMissing(ctx context.Context, userID uint) (*SweepResult, error) {
	shows, err := e.shows.MissingSetlists(userID)
	if err != nil {
		return nil, fmt.Errorf("listing shows without setlists: %w", err)
	}

	result := &SweepResult{Total: len(shows)}
	for _, show := range shows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res, err := e.EnrichShow(ctx, show.ID)
		switch {
		case err != nil:
			log.Printf("enriching show %d (%s) failed: %v", show.ID, show.Artist, err)
			result.Failed++
		case res.Found:
			result.Enriched++
		default:
			result.NoMatch++
		}
	}
	return result, nil
}

package setlist

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/concertlog/concertlog/internal/entities"
)

// Match is the flattened result of a successful catalog lookup.
type Match struct {
	Songs     []entities.Song
	CatalogID string
	Tour      string
}

// Searcher is the slice of the catalog client the matcher needs.
type Searcher interface {
	SearchSetlists(ctx context.Context, artist string, year, page int) (*SetlistPage, error)
}

// Matcher finds the catalogued setlist for an artist on a given date.
type Matcher struct {
	client    Searcher
	pageLimit int
	pageSize  int
}

// NewMatcher creates a matcher scanning up to pageLimit catalog pages
// per artist-name variant.
func NewMatcher(client Searcher, pageLimit int) *Matcher {
	if pageLimit < 1 {
		pageLimit = 3
	}
	return &Matcher{
		client:    client,
		pageLimit: pageLimit,
		pageSize:  DefaultPageSize,
	}
}

// Match looks up the setlist for artist on date (canonical YYYY-MM-DD).
// It tries the artist name as given, then an ampersand/"and" variant,
// then a "The " prefix toggle. A nil, nil return means no match, which
// is a normal outcome. Errors are returned for the caller to log and
// treat as no-match; they must never abort a batch.
func (m *Matcher) Match(ctx context.Context, artist, date string) (*Match, error) {
	year, err := yearOf(date)
	if err != nil {
		return nil, err
	}
	target := catalogDate(date)

	for _, name := range nameVariants(artist) {
		found, err := m.searchVariant(ctx, name, year, target)
		if err != nil {
			return nil, err
		}
		if found != nil {
			match := flatten(found)
			if len(match.Songs) == 0 {
				// A catalogued show with no songs is useless; keep trying
				// the remaining variants.
				continue
			}
			return match, nil
		}
	}

	return nil, nil
}

// searchVariant pages through the catalog for one artist-name variant,
// looking for an entry on the target date.
func (m *Matcher) searchVariant(ctx context.Context, name string, year int, target string) (*Setlist, error) {
	for page := 1; page <= m.pageLimit; page++ {
		result, err := m.client.SearchSetlists(ctx, name, year, page)
		if err != nil {
			return nil, err
		}

		for i := range result.Setlists {
			if result.Setlists[i].EventDate == target {
				return &result.Setlists[i], nil
			}
		}

		// A short page is the last page.
		if len(result.Setlists) < m.pageSize {
			break
		}
	}
	return nil, nil
}

// nameVariants returns the search attempts in order: the name as given,
// "&" replaced with "and" when present, then a "The " prefix toggle.
func nameVariants(artist string) []string {
	variants := []string{artist}

	if strings.Contains(artist, "&") {
		variants = append(variants, strings.ReplaceAll(artist, "&", "and"))
	}

	lower := strings.ToLower(artist)
	if strings.HasPrefix(lower, "the ") {
		variants = append(variants, strings.TrimSpace(artist[4:]))
	} else {
		variants = append(variants, "The "+artist)
	}

	return variants
}

// flatten walks the nested set structure in order, labeling the first
// song of each block: "Main Set" for the first set, "Set N" for later
// non-encore sets, "Encore"/"Encore N" for encores (numbered only among
// encores, with the first left unsuffixed).
func flatten(sl *Setlist) *Match {
	match := &Match{CatalogID: sl.ID}
	if sl.Tour != nil {
		match.Tour = sl.Tour.Name
	}

	position := 0
	encores := 0
	for setIdx, set := range sl.Sets.Set {
		label := ""
		if set.Encore > 0 {
			encores++
			if encores == 1 {
				label = "Encore"
			} else {
				label = fmt.Sprintf("Encore %d", encores)
			}
		} else if setIdx == 0 {
			label = "Main Set"
		} else {
			label = fmt.Sprintf("Set %d", setIdx+1)
		}

		labeled := false
		for _, song := range set.Songs {
			if song.Name == "" {
				continue
			}
			position++
			entry := entities.Song{
				Position: position,
				Name:     song.Name,
			}
			if !labeled {
				entry.SetBreak = label
				labeled = true
			}
			if song.Cover != nil && song.Cover.Name != "" {
				entry.CoverOf = song.Cover.Name
			}
			match.Songs = append(match.Songs, entry)
		}
	}

	return match
}

// yearOf extracts the year from a canonical YYYY-MM-DD date.
func yearOf(date string) (int, error) {
	if len(date) < 4 {
		return 0, fmt.Errorf("invalid date %q", date)
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, fmt.Errorf("invalid date %q", date)
	}
	return year, nil
}

// catalogDate reformats YYYY-MM-DD to the catalog's DD-MM-YYYY.
func catalogDate(date string) string {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

// LogNoMatch is a small helper so callers report misses uniformly.
func LogNoMatch(artist, date string, err error) {
	if err != nil {
		log.Printf("setlist lookup failed for %s on %s: %v", artist, date, err)
		return
	}
	log.Printf("no setlist found for %s on %s", artist, date)
}

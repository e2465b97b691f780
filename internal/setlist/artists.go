package setlist

import (
	"context"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// RankedArtist is an artist search hit with its similarity to the query.
type RankedArtist struct {
	Artist
	Score float64 `json:"score"`
}

// ArtistSearcher is the slice of the catalog client used for artist lookup.
type ArtistSearcher interface {
	SearchArtists(ctx context.Context, name string) ([]Artist, error)
}

// RankArtists searches the catalog for an artist name and orders the
// hits by Jaro-Winkler similarity to the query, best first. The live
// search path uses this to suggest the catalogued spelling before a
// setlist lookup.
func RankArtists(ctx context.Context, client ArtistSearcher, query string) ([]RankedArtist, error) {
	artists, err := client.SearchArtists(ctx, query)
	if err != nil {
		return nil, err
	}

	jw := metrics.NewJaroWinkler()
	q := strings.ToLower(strings.TrimSpace(query))

	ranked := make([]RankedArtist, 0, len(artists))
	for _, a := range artists {
		ranked = append(ranked, RankedArtist{
			Artist: a,
			Score:  strutil.Similarity(q, strings.ToLower(a.Name), jw),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}

package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concertlog/concertlog/internal/entities"
	"github.com/concertlog/concertlog/internal/setlist"
)

type fakeSource struct {
	shows    map[uint]*entities.Show
	missing  []entities.Show
	attached map[uint]string
}

func (f *fakeSource) GetByID(id uint) (*entities.Show, error) {
	show, ok := f.shows[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return show, nil
}

func (f *fakeSource) MissingSetlists(userID uint) ([]entities.Show, error) {
	return f.missing, nil
}

func (f *fakeSource) AttachSetlist(id uint, songs []entities.Song, catalogID, tour string) error {
	if f.attached == nil {
		f.attached = map[uint]string{}
	}
	f.attached[id] = catalogID
	return nil
}

type fakeMatcher struct {
	matches map[string]*setlist.Match
	err     error
}

func (f *fakeMatcher) Match(_ context.Context, artist, date string) (*setlist.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matches[artist], nil
}

func TestEnrichShow_AttachesMatch(t *testing.T) {
	source := &fakeSource{shows: map[uint]*entities.Show{
		7: {ID: 7, Artist: "Phish", Date: "2023-07-15"},
	}}
	matcher := &fakeMatcher{matches: map[string]*setlist.Match{
		"Phish": {CatalogID: "cat-1", Songs: []entities.Song{{Position: 1, Name: "Tweezer"}}},
	}}
	enricher := NewEnricher(source, matcher)

	result, err := enricher.EnrichShow(context.Background(), 7)

	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, 1, result.Songs)
	assert.Equal(t, "cat-1", source.attached[7])
}

func TestEnrichShow_NoMatchIsNotError(t *testing.T) {
	source := &fakeSource{shows: map[uint]*entities.Show{
		7: {ID: 7, Artist: "Obscure Band", Date: "2023-07-15"},
	}}
	enricher := NewEnricher(source, &fakeMatcher{})

	result, err := enricher.EnrichShow(context.Background(), 7)

	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Empty(t, source.attached)
}

func TestEnrichShow_UnknownShow(t *testing.T) {
	enricher := NewEnricher(&fakeSource{}, &fakeMatcher{})

	_, err := enricher.EnrichShow(context.Background(), 99)
	assert.Error(t, err)
}

func TestEnrichAllMissing_CountsOutcomes(t *testing.T) {
	source := &fakeSource{
		shows: map[uint]*entities.Show{
			1: {ID: 1, Artist: "Phish", Date: "2023-07-15"},
			2: {ID: 2, Artist: "Obscure Band", Date: "2023-08-01"},
		},
		missing: []entities.Show{{ID: 1}, {ID: 2}, {ID: 3}},
	}
	matcher := &fakeMatcher{matches: map[string]*setlist.Match{
		"Phish": {CatalogID: "cat-1"},
	}}
	enricher := NewEnricher(source, matcher)

	result, err := enricher.EnrichAllMissing(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Enriched)
	assert.Equal(t, 1, result.NoMatch)
	assert.Equal(t, 1, result.Failed)
}

func TestEnrichAllMissing_Cancelled(t *testing.T) {
	source := &fakeSource{missing: []entities.Show{{ID: 1}}}
	enricher := NewEnricher(source, &fakeMatcher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := enricher.EnrichAllMissing(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concertlog/concertlog/internal/entities"
	"github.com/concertlog/concertlog/internal/setlist"
)

// mockStore implements ShowStore without update support.
type mockStore struct {
	existing  []entities.Show
	created   []entities.Show
	failOn    map[string]bool
	nextID    uint
	listError error
}

func (m *mockStore) Create(show *entities.Show) (uint, error) {
	if m.failOn[show.Artist] {
		return 0, errors.New("write failed")
	}
	m.nextID++
	show.ID = m.nextID
	m.created = append(m.created, *show)
	return show.ID, nil
}

func (m *mockStore) List(userID uint) ([]entities.Show, error) {
	return m.existing, m.listError
}

// mockUpdatingStore adds setlist update support.
type mockUpdatingStore struct {
	mockStore
	attached map[uint]string
}

func (m *mockUpdatingStore) AttachSetlist(id uint, songs []entities.Song, catalogID, tour string) error {
	if m.attached == nil {
		m.attached = map[uint]string{}
	}
	m.attached[id] = catalogID
	return nil
}

type mockMatcher struct {
	matches map[string]*setlist.Match
	calls   []string
	err     error
}

func (m *mockMatcher) Match(_ context.Context, artist, date string) (*setlist.Match, error) {
	m.calls = append(m.calls, artist+"|"+date)
	if m.err != nil {
		return nil, m.err
	}
	return m.matches[artist], nil
}

const sampleCSV = "Band,Where,When,Rating\n" +
	"Phish,MSG,2023-07-15,9\n" +
	"Wilco,Ryman,not a date,\n" +
	"The National,Red Rocks,2023-09-20,8\n"

func newTestOrchestrator(store ShowStore, matcher SetlistMatcher) *Orchestrator {
	return NewOrchestrator(store, matcher, 1, WithCommitDelay(0))
}

func TestLoadFile_BuildsPreview(t *testing.T) {
	o := newTestOrchestrator(&mockStore{}, nil)

	require.NoError(t, o.LoadFile(sampleCSV))

	assert.Equal(t, StatePreviewing, o.State())
	records := o.Records()
	require.Len(t, records, 3)
	assert.True(t, records[0].Ready())
	assert.Contains(t, records[1].Errors, ErrInvalidDate)
	assert.True(t, records[2].Ready())
}

func TestLoadFile_EmptyIsFatal(t *testing.T) {
	o := newTestOrchestrator(&mockStore{}, nil)

	err := o.LoadFile("")
	assert.ErrorIs(t, err, ErrNoDataRows)
	assert.Equal(t, StateIdle, o.State())
}

func TestLoadFile_HeaderOnlyIsFatal(t *testing.T) {
	o := newTestOrchestrator(&mockStore{}, nil)

	err := o.LoadFile("Band,Where,When\n")
	assert.ErrorIs(t, err, ErrNoDataRows)
	assert.Equal(t, StateIdle, o.State())
}

func TestLoadFile_BlankDataRowIsFatal(t *testing.T) {
	// The parser drops the all-blank row, leaving a header-only file.
	o := newTestOrchestrator(&mockStore{}, nil)

	err := o.LoadFile("Band,Where,When\n,,\n")
	assert.ErrorIs(t, err, ErrNoDataRows)
}

func TestPreview_CountsReadyAndSkipped(t *testing.T) {
	o := newTestOrchestrator(&mockStore{}, nil)
	require.NoError(t, o.LoadFile(sampleCSV))

	result := o.Preview()

	assert.Equal(t, Result{Imported: 2, Failed: 0, Skipped: 1}, result)
}

func TestCommit_PersistsOnlyReadyRows(t *testing.T) {
	store := &mockStore{}
	o := newTestOrchestrator(store, nil)
	require.NoError(t, o.LoadFile(sampleCSV))

	result, err := o.Commit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	// Exactly two persistence calls, in input order.
	require.Len(t, store.created, 2)
	assert.Equal(t, "Phish", store.created[0].Artist)
	assert.Equal(t, "The National", store.created[1].Artist)
	assert.True(t, store.created[0].Manual)
	assert.Equal(t, StateComplete, o.State())
}

func TestCommit_PerRowFailureDoesNotStopBatch(t *testing.T) {
	store := &mockStore{failOn: map[string]bool{"Phish": true}}
	o := newTestOrchestrator(store, nil)
	require.NoError(t, o.LoadFile(sampleCSV))

	result, err := o.Commit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped)
}

func TestCommit_SkipFlagExcludesRow(t *testing.T) {
	store := &mockStore{}
	o := newTestOrchestrator(store, nil)
	require.NoError(t, o.LoadFile(sampleCSV))

	o.SetSkip(0, true)
	result, err := o.Commit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, store.created, 1)
	assert.Equal(t, "The National", store.created[0].Artist)
}

func TestCommit_EnrichmentAttachesSetlists(t *testing.T) {
	store := &mockUpdatingStore{}
	matcher := &mockMatcher{matches: map[string]*setlist.Match{
		"Phish": {
			CatalogID: "cat-1",
			Songs:     []entities.Song{{Position: 1, Name: "Tweezer", SetBreak: "Main Set"}},
		},
	}}
	o := newTestOrchestrator(store, matcher)
	require.NoError(t, o.LoadFile(sampleCSV))

	result, err := o.Commit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.SetlistsFound)
	assert.Equal(t, "cat-1", store.attached[store.created[0].ID])
	// Matcher invoked per committed show, in commit order.
	require.Len(t, matcher.calls, 2)
	assert.Equal(t, "Phish|2023-07-15", matcher.calls[0])
	assert.Equal(t, "The National|2023-09-20", matcher.calls[1])
}

func TestCommit_MatcherFailureIsNoMatch(t *testing.T) {
	store := &mockUpdatingStore{}
	matcher := &mockMatcher{err: errors.New("catalog down")}
	o := newTestOrchestrator(store, matcher)
	require.NoError(t, o.LoadFile(sampleCSV))

	result, err := o.Commit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.SetlistsFound)
	assert.Empty(t, store.attached)
	assert.Equal(t, StateComplete, o.State())
}

func TestCommit_EnrichmentSkippedWithoutUpdateSupport(t *testing.T) {
	store := &mockStore{}
	matcher := &mockMatcher{}
	o := newTestOrchestrator(store, matcher)
	require.NoError(t, o.LoadFile(sampleCSV))

	result, err := o.Commit(context.Background())

	require.NoError(t, err)
	assert.Empty(t, matcher.calls)
	assert.Equal(t, 2, result.Imported)
}

func TestCommit_CancelledBetweenRows(t *testing.T) {
	store := &mockStore{}
	o := newTestOrchestrator(store, nil)
	require.NoError(t, o.LoadFile(sampleCSV))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Commit(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.created)
}

func TestCommit_DuplicatesAreAdvisoryOnly(t *testing.T) {
	store := &mockStore{existing: []entities.Show{
		{Artist: "Phish", Venue: "MSG", Date: "2023-07-15"},
	}}
	o := newTestOrchestrator(store, nil)
	require.NoError(t, o.LoadFile(sampleCSV))

	records := o.Records()
	assert.True(t, records[0].Duplicate)

	result, err := o.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
}

func TestLoadRows_PreTabulatedInput(t *testing.T) {
	o := newTestOrchestrator(&mockStore{}, nil)

	err := o.LoadRows([][]string{
		{"Band", "Where", "When"},
		{"Phish", "MSG", "44927"},
	})

	require.NoError(t, err)
	records := o.Records()
	require.Len(t, records, 1)
	// Spreadsheet serials survive the tabulation path.
	assert.Equal(t, "2023-01-01", records[0].Date)
	assert.True(t, records[0].Ready())
}

func TestLoadRecords_SkipsParsingAndMapping(t *testing.T) {
	store := &mockStore{}
	o := newTestOrchestrator(store, nil)

	err := o.LoadRecords("screenshot", []CandidateRecord{
		{Artist: "Phish", Venue: "MSG", RawDate: "7/15/2023", City: "New York"},
		{Artist: "", Venue: "Somewhere", RawDate: "2023-01-01"},
	})

	require.NoError(t, err)
	assert.Equal(t, StatePreviewing, o.State())
	records := o.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "2023-07-15", records[0].Date)
	assert.Contains(t, records[1].Errors, ErrMissingArtist)
}

func TestLoadRecords_EmptyIsFatal(t *testing.T) {
	o := newTestOrchestrator(&mockStore{}, nil)

	err := o.LoadRecords("screenshot", nil)
	assert.ErrorIs(t, err, ErrNoDataRows)
}

func TestRemap_RebuildsPreview(t *testing.T) {
	o := newTestOrchestrator(&mockStore{}, nil)
	// Venue and date headers swapped relative to detection.
	require.NoError(t, o.LoadFile("Band,Gig Spot,When\nPhish,MSG,2023-07-15\n"))

	records := o.Records()
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Errors, ErrMissingVenue)

	mapping := o.Mapping()
	mapping.Set(FieldVenue, 1)
	require.NoError(t, o.Remap(mapping))

	records = o.Records()
	assert.True(t, records[0].Ready())
	assert.Equal(t, "MSG", records[0].Venue)
}

func TestCommit_RequiresMappedRequiredFields(t *testing.T) {
	o := newTestOrchestrator(&mockStore{}, nil)
	require.NoError(t, o.LoadFile("Band,Gig Spot,Calendar\nPhish,MSG,2023-07-15\n"))

	_, err := o.Commit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not mapped")
	// Still previewing: the user can fix the mapping and retry.
	assert.Equal(t, StatePreviewing, o.State())
}

func TestCommit_OnlyFromPreviewing(t *testing.T) {
	o := newTestOrchestrator(&mockStore{}, nil)

	_, err := o.Commit(context.Background())
	assert.Error(t, err)
}

func TestReset_ReturnsToIdle(t *testing.T) {
	o := newTestOrchestrator(&mockStore{}, nil)
	require.NoError(t, o.LoadFile(sampleCSV))

	o.Reset()

	assert.Equal(t, StateIdle, o.State())
	assert.Empty(t, o.Records())
}

func TestProgress_TracksCommit(t *testing.T) {
	store := &mockStore{}
	o := newTestOrchestrator(store, nil)
	require.NoError(t, o.LoadFile(sampleCSV))

	_, err := o.Commit(context.Background())
	require.NoError(t, err)

	p := o.Progress()
	assert.Equal(t, 2, p.Current)
	assert.Equal(t, 2, p.Total)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StateIdle, StateParsing))
	assert.True(t, CanTransition(StatePreviewing, StateMapping))
	assert.True(t, CanTransition(StateComplete, StateIdle))
	assert.False(t, CanTransition(StateComplete, StateCommitting))
	assert.False(t, CanTransition(StateParsing, StateCommitting))
	assert.False(t, CanTransition(StateEnriching, StatePreviewing))
}

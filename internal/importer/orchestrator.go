package importer

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/concertlog/concertlog/internal/entities"
	"github.com/concertlog/concertlog/internal/setlist"
	"github.com/concertlog/concertlog/internal/tabular"
)

// ErrNoDataRows is the fatal condition for an empty file or a file with
// only a header row. It halts the batch before any row processing.
var ErrNoDataRows = errors.New("no data rows")

// ShowStore is the persistence collaborator. Transactional per record
// only; no cross-record atomicity is assumed.
type ShowStore interface {
	Create(show *entities.Show) (uint, error)
	List(userID uint) ([]entities.Show, error)
}

// SetlistUpdater is implemented by stores that support post-commit
// setlist enrichment. A store without it skips phase 2 entirely.
type SetlistUpdater interface {
	AttachSetlist(id uint, songs []entities.Song, catalogID, tour string) error
}

// SetlistMatcher finds the catalogued setlist for a show.
type SetlistMatcher interface {
	Match(ctx context.Context, artist, date string) (*setlist.Match, error)
}

// SessionStore optionally records batch outcomes.
type SessionStore interface {
	SaveSession(session *entities.ImportSession) error
}

// Result is the batch's only return contract. Row-level errors are not
// surfaced beyond the preview stage.
type Result struct {
	Imported      int `json:"imported"`
	Failed        int `json:"failed"`
	Skipped       int `json:"skipped"`
	SetlistsFound int `json:"setlists_found"`
}

// Progress is a snapshot of the batch position, updated after every
// row in both phases.
type Progress struct {
	State   State `json:"state"`
	Current int   `json:"current"`
	Total   int   `json:"total"`
	Matches int   `json:"matches"`
}

// Orchestrator drives one import batch through parse, map, preview and
// the two-phase commit. One orchestrator per batch; not safe for
// concurrent Commit calls, which matches the single-writer-per-user
// assumption.
type Orchestrator struct {
	store       ShowStore
	matcher     SetlistMatcher
	sessions    SessionStore
	userID      uint
	source      string
	batchID     string
	commitDelay time.Duration

	mu       sync.Mutex
	state    State
	mapping  FieldMapping
	rows     [][]string
	records  []CandidateRecord
	progress Progress
}

// Option tweaks orchestrator construction.
type Option func(*Orchestrator)

// WithCommitDelay sets the pause between successive show writes.
func WithCommitDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.commitDelay = d }
}

// WithSessionStore records the batch outcome after commit.
func WithSessionStore(s SessionStore) Option {
	return func(o *Orchestrator) { o.sessions = s }
}

// NewOrchestrator creates an idle orchestrator for one user's batch.
// matcher may be nil, disabling the enrichment phase.
func NewOrchestrator(store ShowStore, matcher SetlistMatcher, userID uint, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		matcher:     matcher,
		userID:      userID,
		source:      "file",
		batchID:     uuid.NewString(),
		commitDelay: 100 * time.Millisecond,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// BatchID identifies this batch across preview and commit calls.
func (o *Orchestrator) BatchID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.batchID
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Progress returns the latest progress snapshot.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.progress
	p.State = o.state
	return p
}

// Mapping returns the active field mapping for user review.
func (o *Orchestrator) Mapping() FieldMapping {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mapping
}

// Records returns the preview set with per-row status.
func (o *Orchestrator) Records() []CandidateRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]CandidateRecord, len(o.records))
	copy(out, o.records)
	return out
}

// SetSkip toggles a row's skip flag during preview.
func (o *Orchestrator) SetSkip(index int, skip bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if index >= 0 && index < len(o.records) {
		o.records[index].Skip = skip
	}
}

// LoadFile parses raw delimited text, auto-detects the column mapping
// and builds the preview. The first row is the header row. An empty
// file or a header-only file is fatal before any row processing.
func (o *Orchestrator) LoadFile(text string) error {
	if err := o.transition(StateParsing); err != nil {
		return err
	}

	rows := tabular.Parse(text)
	if len(rows) < 2 {
		o.reset()
		return ErrNoDataRows
	}

	if err := o.transition(StateMapping); err != nil {
		return err
	}

	mapping := DetectMapping(rows[0])

	o.mu.Lock()
	o.source = "file"
	o.rows = rows[1:]
	o.mapping = mapping
	o.mu.Unlock()

	return o.buildPreview()
}

// LoadRows accepts pre-tabulated rows (header first), as produced from
// binary spreadsheet exports.
func (o *Orchestrator) LoadRows(rows [][]string) error {
	if err := o.transition(StateParsing); err != nil {
		return err
	}
	if len(rows) < 2 {
		o.reset()
		return ErrNoDataRows
	}
	if err := o.transition(StateMapping); err != nil {
		return err
	}

	mapping := DetectMapping(rows[0])

	o.mu.Lock()
	o.source = "file"
	o.rows = rows[1:]
	o.mapping = mapping
	o.mu.Unlock()

	return o.buildPreview()
}

// LoadRecords accepts pre-structured records (screenshot or live search
// imports); parsing and mapping are skipped.
func (o *Orchestrator) LoadRecords(source string, records []CandidateRecord) error {
	if err := o.transition(StatePreviewing); err != nil {
		return err
	}
	if len(records) == 0 {
		o.reset()
		return ErrNoDataRows
	}

	existing := o.listExisting()

	o.mu.Lock()
	o.source = source
	o.records = make([]CandidateRecord, len(records))
	for i, r := range records {
		o.records[i] = Validate(r, existing)
	}
	o.mu.Unlock()
	return nil
}

// Remap applies a corrected field mapping and rebuilds the preview.
// Only legal from the previewing state.
func (o *Orchestrator) Remap(mapping FieldMapping) error {
	if err := o.transition(StateMapping); err != nil {
		return err
	}
	o.mu.Lock()
	o.mapping = mapping
	o.mu.Unlock()
	return o.buildPreview()
}

// buildPreview validates every stored row against the existing
// collection and moves to previewing.
func (o *Orchestrator) buildPreview() error {
	existing := o.listExisting()

	o.mu.Lock()
	records := make([]CandidateRecord, len(o.rows))
	for i, row := range o.rows {
		records[i] = Validate(BuildCandidate(row, o.mapping), existing)
	}
	o.records = records
	o.mu.Unlock()

	return o.transition(StatePreviewing)
}

func (o *Orchestrator) listExisting() []entities.Show {
	existing, err := o.store.List(o.userID)
	if err != nil {
		// Preview still works without the collection; duplicates just
		// go undetected.
		log.Printf("listing existing shows failed: %v", err)
		return nil
	}
	return existing
}

// Preview summarizes the current records as a pre-commit result.
func (o *Orchestrator) Preview() Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	var result Result
	for _, r := range o.records {
		if r.Ready() {
			result.Imported++
		} else {
			result.Skipped++
		}
	}
	return result
}

// Commit runs the two-phase batch: persist every ready record in input
// order, then best-effort setlist enrichment in commit order. Row-level
// failures are counted, never propagated; ctx cancellation is honored
// between rows.
func (o *Orchestrator) Commit(ctx context.Context) (Result, error) {
	if err := o.mappingOK(); err != nil {
		return Result{}, err
	}
	if err := o.transition(StateCommitting); err != nil {
		return Result{}, err
	}

	o.mu.Lock()
	records := make([]CandidateRecord, len(o.records))
	copy(records, o.records)
	o.mu.Unlock()

	var result Result
	var committed []entities.Show

	ready := 0
	for _, r := range records {
		if r.Ready() {
			ready++
		} else {
			result.Skipped++
		}
	}
	o.setProgress(0, ready, 0)

	// Phase 1: persist in input order.
	for _, record := range records {
		if !record.Ready() {
			continue
		}
		if err := ctx.Err(); err != nil {
			o.finishSession(result, entities.ImportStatusFailed)
			return result, err
		}

		show := recordToShow(record, o.userID)
		if _, err := o.store.Create(&show); err != nil {
			log.Printf("saving show %s at %s failed: %v", show.Artist, show.Venue, err)
			result.Failed++
		} else {
			result.Imported++
			committed = append(committed, show)
		}
		o.setProgress(result.Imported+result.Failed, ready, 0)

		if o.commitDelay > 0 {
			time.Sleep(o.commitDelay)
		}
	}

	// Phase 2: enrichment, in commit order. Skipped when the store
	// cannot update or no matcher is configured.
	updater, ok := o.store.(SetlistUpdater)
	if ok && o.matcher != nil && len(committed) > 0 {
		if err := o.transition(StateEnriching); err != nil {
			return result, err
		}
		o.setProgress(0, len(committed), 0)

		for i, show := range committed {
			if err := ctx.Err(); err != nil {
				o.finishSession(result, entities.ImportStatusFailed)
				return result, err
			}

			match, err := o.matcher.Match(ctx, show.Artist, show.Date)
			if err != nil || match == nil {
				setlist.LogNoMatch(show.Artist, show.Date, err)
			} else if err := updater.AttachSetlist(show.ID, match.Songs, match.CatalogID, match.Tour); err != nil {
				log.Printf("attaching setlist to show %d failed: %v", show.ID, err)
			} else {
				result.SetlistsFound++
			}
			o.setProgress(i+1, len(committed), result.SetlistsFound)
		}
	}

	if err := o.transition(StateComplete); err != nil {
		return result, err
	}
	o.finishSession(result, entities.ImportStatusCompleted)
	return result, nil
}

// Reset returns the orchestrator to idle for a fresh batch.
func (o *Orchestrator) Reset() {
	o.reset()
}

func (o *Orchestrator) reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateIdle
	o.rows = nil
	o.records = nil
	o.mapping = nil
	o.progress = Progress{}
	o.batchID = uuid.NewString()
}

func (o *Orchestrator) mappingOK() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	// Pre-structured records carry no mapping; nothing to validate.
	if o.mapping == nil {
		return nil
	}
	return o.mapping.Validate()
}

func (o *Orchestrator) setProgress(current, total, matches int) {
	o.mu.Lock()
	o.progress.Current = current
	o.progress.Total = total
	o.progress.Matches = matches
	o.mu.Unlock()
}

func (o *Orchestrator) finishSession(result Result, status entities.ImportStatus) {
	if o.sessions == nil {
		return
	}
	now := time.Now()
	session := &entities.ImportSession{
		UserID:        o.userID,
		BatchID:       o.batchID,
		Source:        o.source,
		Status:        status,
		RowsProcessed: result.Imported + result.Failed + result.Skipped,
		Imported:      result.Imported,
		Failed:        result.Failed,
		Skipped:       result.Skipped,
		SetlistsFound: result.SetlistsFound,
		StartedAt:     now,
		CompletedAt:   &now,
	}
	if err := o.sessions.SaveSession(session); err != nil {
		log.Printf("saving import session failed: %v", err)
	}
}

// recordToShow builds the persisted entity from a ready record.
func recordToShow(record CandidateRecord, userID uint) entities.Show {
	return entities.Show{
		UserID:  userID,
		Artist:  record.Artist,
		Venue:   record.Venue,
		Date:    record.Date,
		City:    record.City,
		Country: record.Country,
		Tour:    record.Tour,
		Rating:  record.Rating,
		Comment: record.Comment,
		Manual:  true,
	}
}

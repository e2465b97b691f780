package importer

import (
	"strconv"
	"strings"

	"github.com/concertlog/concertlog/internal/entities"
)

// ErrorCode identifies a structural problem with a candidate record.
// Structural errors block commit for that row only; they are surfaced
// in the preview and never thrown.
type ErrorCode string

const (
	ErrMissingArtist ErrorCode = "missing_artist"
	ErrMissingVenue  ErrorCode = "missing_venue"
	ErrInvalidDate   ErrorCode = "invalid_date"
	ErrInvalidRating ErrorCode = "invalid_rating"
)

// CandidateRecord is one reconciled, not-yet-committed import row.
type CandidateRecord struct {
	Artist  string `json:"artist"`
	Venue   string `json:"venue"`
	RawDate string `json:"raw_date"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	Tour    string `json:"tour,omitempty"`
	Comment string `json:"comment,omitempty"`

	// Date is the normalized YYYY-MM-DD form, "" when RawDate is unparseable.
	Date      string      `json:"date"`
	RawRating string      `json:"raw_rating,omitempty"`
	Rating    *int        `json:"rating,omitempty"`
	Errors    []ErrorCode `json:"errors,omitempty"`
	Duplicate bool        `json:"duplicate"`
	Skip      bool        `json:"skip"`
}

// Ready reports whether the record can be committed. Duplicate is
// advisory and does not affect readiness; Skip does.
func (r CandidateRecord) Ready() bool {
	return len(r.Errors) == 0 && !r.Skip
}

// BuildCandidate maps one raw row into a candidate record using the
// field mapping. No validation happens here.
func BuildCandidate(row []string, mapping FieldMapping) CandidateRecord {
	return CandidateRecord{
		Artist:    mapping.Value(row, FieldArtist),
		Venue:     mapping.Value(row, FieldVenue),
		RawDate:   mapping.Value(row, FieldDate),
		City:      mapping.Value(row, FieldCity),
		Country:   mapping.Value(row, FieldCountry),
		Tour:      mapping.Value(row, FieldTour),
		Comment:   mapping.Value(row, FieldComment),
		RawRating: mapping.Value(row, FieldRating),
	}
}

// Validate normalizes the date, parses the rating, applies required-field
// checks and flags duplicates against the existing show collection.
func Validate(record CandidateRecord, existing []entities.Show) CandidateRecord {
	record.Date = NormalizeDate(record.RawDate)
	record.Errors = nil

	if record.Artist == "" {
		record.Errors = append(record.Errors, ErrMissingArtist)
	}
	if record.Venue == "" {
		record.Errors = append(record.Errors, ErrMissingVenue)
	}
	if record.Date == "" {
		record.Errors = append(record.Errors, ErrInvalidDate)
	}

	record.Rating = nil
	if record.RawRating != "" {
		rating, err := strconv.Atoi(strings.TrimSpace(record.RawRating))
		if err != nil || rating < 1 || rating > 10 {
			record.Errors = append(record.Errors, ErrInvalidRating)
		} else {
			record.Rating = &rating
		}
	}

	record.Duplicate = record.Date != "" && isDuplicate(record, existing)

	return record
}

// isDuplicate matches by case-insensitive artist+venue and identical
// normalized date. Venue name variants ("MSG" vs "Madison Square
// Garden") are not reconciled; that is a known limitation.
func isDuplicate(record CandidateRecord, existing []entities.Show) bool {
	for _, show := range existing {
		if strings.EqualFold(show.Artist, record.Artist) &&
			strings.EqualFold(show.Venue, record.Venue) &&
			show.Date == record.Date {
			return true
		}
	}
	return false
}

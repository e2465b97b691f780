package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concertlog/concertlog/internal/entities"
)

func TestValidate_ValidRecord(t *testing.T) {
	record := Validate(CandidateRecord{
		Artist:    "Phish",
		Venue:     "MSG",
		RawDate:   "2023-07-15",
		RawRating: "8",
	}, nil)

	assert.Empty(t, record.Errors)
	assert.Equal(t, "2023-07-15", record.Date)
	require.NotNil(t, record.Rating)
	assert.Equal(t, 8, *record.Rating)
	assert.True(t, record.Ready())
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	record := Validate(CandidateRecord{RawDate: "garbage"}, nil)

	assert.ElementsMatch(t,
		[]ErrorCode{ErrMissingArtist, ErrMissingVenue, ErrInvalidDate},
		record.Errors)
	assert.False(t, record.Ready())
}

func TestValidate_RatingOutOfRange(t *testing.T) {
	for _, raw := range []string{"0", "11", "-3", "ten"} {
		record := Validate(CandidateRecord{
			Artist:    "Phish",
			Venue:     "MSG",
			RawDate:   "2023-07-15",
			RawRating: raw,
		}, nil)

		assert.Contains(t, record.Errors, ErrInvalidRating, "rating %q", raw)
		assert.Nil(t, record.Rating, "rating %q", raw)
	}
}

func TestValidate_MissingRatingIsFine(t *testing.T) {
	record := Validate(CandidateRecord{
		Artist:  "Phish",
		Venue:   "MSG",
		RawDate: "2023-07-15",
	}, nil)

	assert.Empty(t, record.Errors)
	assert.Nil(t, record.Rating)
}

func TestValidate_DuplicateCaseInsensitive(t *testing.T) {
	existing := []entities.Show{
		{Artist: "Phish", Venue: "MSG", Date: "2023-07-15"},
	}

	record := Validate(CandidateRecord{
		Artist:  "phish",
		Venue:   "msg",
		RawDate: "2023-07-15",
	}, existing)

	assert.True(t, record.Duplicate)
	// Advisory only: the row is still ready to commit.
	assert.True(t, record.Ready())
}

func TestValidate_DifferentDateNotDuplicate(t *testing.T) {
	existing := []entities.Show{
		{Artist: "Phish", Venue: "MSG", Date: "2023-07-15"},
	}

	record := Validate(CandidateRecord{
		Artist:  "Phish",
		Venue:   "MSG",
		RawDate: "2023-07-16",
	}, existing)

	assert.False(t, record.Duplicate)
}

func TestValidate_InvalidDateNeverDuplicate(t *testing.T) {
	existing := []entities.Show{
		{Artist: "Phish", Venue: "MSG", Date: "2023-07-15"},
	}

	record := Validate(CandidateRecord{
		Artist:  "Phish",
		Venue:   "MSG",
		RawDate: "not a date",
	}, existing)

	assert.False(t, record.Duplicate)
}

func TestValidate_SkipExcludesFromCommit(t *testing.T) {
	record := Validate(CandidateRecord{
		Artist:  "Phish",
		Venue:   "MSG",
		RawDate: "2023-07-15",
	}, nil)
	record.Skip = true

	assert.False(t, record.Ready())
}

func TestBuildCandidate(t *testing.T) {
	mapping := FieldMapping{
		FieldArtist: 0,
		FieldVenue:  1,
		FieldDate:   2,
		FieldRating: 3,
	}

	record := BuildCandidate([]string{" Phish ", "MSG", "2023-07-15", "9"}, mapping)

	assert.Equal(t, "Phish", record.Artist)
	assert.Equal(t, "MSG", record.Venue)
	assert.Equal(t, "2023-07-15", record.RawDate)
	assert.Equal(t, "9", record.RawRating)
	assert.Empty(t, record.City)
}

func TestBuildCandidate_ShortRow(t *testing.T) {
	mapping := FieldMapping{
		FieldArtist: 0,
		FieldVenue:  1,
		FieldDate:   5,
	}

	record := BuildCandidate([]string{"Phish", "MSG"}, mapping)

	assert.Equal(t, "Phish", record.Artist)
	assert.Equal(t, "", record.RawDate)
}

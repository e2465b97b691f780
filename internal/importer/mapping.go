package importer

import (
	"fmt"
	"regexp"
	"strings"
)

// Field is a semantic column in an imported spreadsheet.
type Field string

const (
	FieldArtist  Field = "artist"
	FieldVenue   Field = "venue"
	FieldDate    Field = "date"
	FieldCity    Field = "city"
	FieldCountry Field = "country"
	FieldRating  Field = "rating"
	FieldComment Field = "comment"
	FieldTour    Field = "tour"
)

// RequiredFields must all be mapped before a commit can proceed.
var RequiredFields = []Field{FieldArtist, FieldVenue, FieldDate}

// fieldOrder is the detection precedence. It matters: "Event Date" must
// win the date field before the tour field can claim "event".
var fieldOrder = []Field{
	FieldArtist,
	FieldVenue,
	FieldDate,
	FieldCity,
	FieldCountry,
	FieldRating,
	FieldComment,
	FieldTour,
}

// Header patterns are case-insensitive and anchored to the full header.
var fieldPatterns = map[Field]*regexp.Regexp{
	FieldArtist:  regexp.MustCompile(`(?i)^(artist|band|performer|act|group|musicians?)$`),
	FieldVenue:   regexp.MustCompile(`(?i)^(venue|location|place|where|hall|theater|theatre|arena|club)$`),
	FieldDate:    regexp.MustCompile(`(?i)^(date|show date|event date|when|day)$`),
	FieldCity:    regexp.MustCompile(`(?i)^(city|town|metro)$`),
	FieldCountry: regexp.MustCompile(`(?i)^(country|nation)$`),
	FieldRating:  regexp.MustCompile(`(?i)^(rating|score|stars|rank)$`),
	FieldComment: regexp.MustCompile(`(?i)^(comments?|notes|review|thoughts|memo)$`),
	FieldTour:    regexp.MustCompile(`(?i)^(tour|tour name|event|event name)$`),
}

// FieldMapping maps semantic fields to zero-based column indexes.
// A field absent from the map is unmapped.
type FieldMapping map[Field]int

// DetectMapping infers a FieldMapping from spreadsheet headers.
//
// Headers are scanned in order; the first header matching a field's
// pattern wins that field and a field is never reassigned. The result
// is a best-effort default the user can override per field.
func DetectMapping(headers []string) FieldMapping {
	mapping := make(FieldMapping)

	for idx, header := range headers {
		header = strings.TrimSpace(header)
		for _, field := range fieldOrder {
			if _, taken := mapping[field]; taken {
				continue
			}
			if fieldPatterns[field].MatchString(header) {
				mapping[field] = idx
				break
			}
		}
	}

	return mapping
}

// Set overrides the column for a field. A negative index unmaps it.
func (m FieldMapping) Set(field Field, index int) {
	if index < 0 {
		delete(m, field)
		return
	}
	m[field] = index
}

// Column returns the mapped column index for a field, or -1.
func (m FieldMapping) Column(field Field) int {
	idx, ok := m[field]
	if !ok {
		return -1
	}
	return idx
}

// Value extracts a field's trimmed cell value from a row, or "".
func (m FieldMapping) Value(row []string, field Field) string {
	idx, ok := m[field]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Validate checks that every required field is mapped.
func (m FieldMapping) Validate() error {
	var missing []string
	for _, field := range RequiredFields {
		if _, ok := m[field]; !ok {
			missing = append(missing, string(field))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required columns not mapped: %s", strings.Join(missing, ", "))
	}
	return nil
}

package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serial dates count days from the 1899-12-30 epoch used by
// Excel and Google Sheets; 25569 days separate it from the Unix epoch.
const (
	serialEpochOffsetDays = 25569
	millisPerDay          = 86400000
	serialMin             = 1000
	serialMax             = 100000
)

var (
	serialPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
	isoPattern    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	usPattern     = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2}|\d{4})$`)
)

// Free-text layouts tried as a last resort, most specific first.
var freeTextLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2006/01/02",
	"02 Jan 2006",
	"Monday, January 2, 2006",
}

// NormalizeDate converts a raw date cell to the canonical YYYY-MM-DD
// string. It tries, in order: spreadsheet serial numbers, strict ISO,
// US slash/dash/dot formats with a 2-digit-year pivot, then free-text
// layouts. It returns "" when nothing parses; that empty string is the
// terminal "Invalid date" state, never an error.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if d := normalizeSerial(raw); d != "" {
		return d
	}
	if d := normalizeISO(raw); d != "" {
		return d
	}
	if d := normalizeUS(raw); d != "" {
		return d
	}
	return normalizeFreeText(raw)
}

func normalizeSerial(raw string) string {
	if !serialPattern.MatchString(raw) {
		return ""
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial < serialMin || serial >= serialMax {
		return ""
	}
	ms := int64((serial - serialEpochOffsetDays) * millisPerDay)
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

func normalizeISO(raw string) string {
	m := isoPattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return formatIfValid(year, month, day)
}

func normalizeUS(raw string) string {
	m := usPattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	// Two-digit years below 50 are 2000s, the rest 1900s.
	if len(m[3]) == 2 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	return formatIfValid(year, month, day)
}

func normalizeFreeText(raw string) string {
	for _, layout := range freeTextLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Year() <= 1900 {
			return ""
		}
		return t.Format("2006-01-02")
	}
	return ""
}

func formatIfValid(year, month, day int) string {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// Package tabular converts raw delimited text into rows of string cells.
//
// The parser intentionally differs from encoding/csv: spreadsheet exports
// found in the wild are full of stray quotes and ragged rows, and a failed
// import over one bad cell helps nobody. Malformed quoting degrades to a
// best-effort result instead of an error.
package tabular

import "strings"

// Parse splits raw delimited text into rows of cells.
//
// Double-quoted fields may contain commas and newlines; a doubled quote
// inside a quoted field is a literal quote. CRLF, LF and CR line endings
// are treated uniformly. Rows whose cells are all blank after trimming
// are dropped. The first row is the header row by the caller's
// convention, not the parser's.
func Parse(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
	)

	endCell := func() {
		row = append(row, cell.String())
		cell.Reset()
	}
	endRow := func() {
		endCell()
		if !allBlank(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					cell.WriteRune('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			cell.WriteRune(ch)
			continue
		}

		switch ch {
		case '"':
			// A quote only opens a quoted field at the start of a cell;
			// mid-cell it is a literal character.
			if cell.Len() == 0 {
				inQuotes = true
			} else {
				cell.WriteRune('"')
			}
		case ',':
			endCell()
		case '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			endRow()
		case '\n':
			endRow()
		default:
			cell.WriteRune(ch)
		}
	}

	// Flush the final row unless the text ended exactly at a row boundary.
	if cell.Len() > 0 || len(row) > 0 {
		endRow()
	}

	return rows
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

package extract

import (
	"strings"
	"time"
)

// dateFormats are tried in order when parsing a captured date substring.
// Day-first formats come before month-first: UAE invoices print DD/MM/YYYY.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"01/02/2006",
	"02/01/06",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate parses a date substring against the known format list.
// Parses that land before the year floor are rejected; OCR noise is
// frequently misread as an ancient date. The statement ingestor shares
// this parser so invoice and bank dates behave identically.
func ParseDate(s string, yearFloor int) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		t, err := time.Parse(format, s)
		if err != nil {
			continue
		}
		if t.Year() < yearFloor {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

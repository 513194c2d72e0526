// Package dates parses the free-form deadline strings found in NATO
// procurement documents ("15 November 2025 at 14:00 CET", "2025-11-15", …).
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timezoneToken = regexp.MustCompile(`(?i)\b(CET|CEST|UTC|GMT|EST|EDT|PST|PDT)\b`)
	clockToken    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	atToken       = regexp.MustCompile(`(?i)\s+at\s+`)
	spaceRun      = regexp.MustCompile(`\s+`)
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
)

// layouts tried in order. Day-first formats come before month-first: NATO
// documents write "15 November 2025", not "November 15 2025", and numeric
// dates follow the European convention.
var layouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2 January, 2006",
}

// Parse turns a deadline string into a timestamp. It returns nil instead of
// an error when the string cannot be parsed: an unparseable deadline means
// "never auto-retire", never a failed run.
func Parse(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	// Pull out and remember the clock time, then strip it together with
	// timezone tokens and ordinal suffixes so the date layouts match.
	hour, minute := -1, -1
	if m := clockToken.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h < 24 && min < 60 {
			hour, minute = h, min
		}
		s = clockToken.ReplaceAllString(s, "")
	}
	s = timezoneToken.ReplaceAllString(s, "")
	s = atToken.ReplaceAllString(s, " ")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = strings.Trim(s, " ,.-")
	s = spaceRun.ReplaceAllString(s, " ")
	if s == "" {
		return nil
	}

	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if hour >= 0 {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), hour, minute, 0, 0, parsed.Location())
		}
		return &parsed
	}

	return nil
}

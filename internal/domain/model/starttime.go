package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Matches e.g. "12 Jun 2024 Wed 20:00"; the weekday token is ignored.
	customDateRe = regexp.MustCompile(`^(\d{1,2}) ([A-Za-z]{3}) (\d{4}) \w+ (\d{2}):(\d{2})$`)
)

var monthsByAbbrev = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// Layouts the generic fallback accepts, covering what the adapters actually
// emit: RFC3339 from codeforces, the locale shape from leetcode, and a few
// common spellings.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
	"1/2/2006, 3:04:05 PM",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04",
}

// ParseStartTime normalizes a platform's raw start-time text into a UTC
// instant. It first tries the fixed "D MMM YYYY Www HH:MM" pattern, then the
// fallback layouts. It reports ok=false for anything it cannot read and never
// returns an error.
func ParseStartTime(raw string) (time.Time, bool) {
	cleaned := strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " "))
	if cleaned == "" {
		return time.Time{}, false
	}

	if m := customDateRe.FindStringSubmatch(cleaned); m != nil {
		month, ok := monthsByAbbrev[m[2]]
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

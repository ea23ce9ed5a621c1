package model

import (
	"regexp"
	"time"
)

type Platform string

const (
	PlatformCodechef   Platform = "codechef"
	PlatformCodeforces Platform = "codeforces"
	PlatformLeetcode   Platform = "leetcode"
)

// Platforms lists every supported source, in the order ingestion and
// solution-matching runs iterate them.
var Platforms = []Platform{PlatformCodechef, PlatformCodeforces, PlatformLeetcode}

// Contest is the canonical record for one contest occurrence on one platform.
// StartTime keeps the platform-native text verbatim; the parsed instant is
// computed on demand via ParseStartTime, never stored.
type Contest struct {
	ID           string    `json:"id"`
	Platform     Platform  `json:"platform"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	StartTime    string    `json:"startTime"`
	Duration     string    `json:"duration"`
	URL          string    `json:"url"`
	SolutionLink *string   `json:"solutionLink,omitempty"`
	IdentityKey  string    `json:"identityKey"`
	AddedAt      time.Time `json:"addedAt"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

var identityKeyCleaner = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// DeriveKey builds the unique identity for a contest from its platform, title
// and raw start-time text. Every byte outside [A-Za-z0-9-] maps to a hyphen,
// so the key is stable across cycles as long as the adapter returns the same
// title and start-time strings. Distinct titles differing only in punctuation
// collapse to the same key; the store's unique index turns that into a
// conflict that falls through to the update path.
func DeriveKey(platform Platform, title, startTime string) string {
	return identityKeyCleaner.ReplaceAllString(string(platform)+"-"+title+"-"+startTime, "-")
}

package adapter

import (
	"context"
	"net/http"
	"time"
)

// RawContest is one contest as a platform reports it, before any
// normalization. StartTime and Duration are whatever text the platform uses.
type RawContest struct {
	Title     string
	StartTime string
	Duration  string
	URL       string
}

// Source is implemented by each upstream contest list. Fetch returns the
// platform's upcoming contests; sources are unreliable and callers must
// tolerate errors and empty batches.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawContest, error)
}

// Shared HTTP client for the REST/GraphQL sources. Adapters own their own
// timeout policy; the schedulers impose none.
var httpClient = &http.Client{Timeout: 60 * time.Second}

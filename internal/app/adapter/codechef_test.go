package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contest_tracker/internal/domain/model"
)

const ccFixture = `{
  "status": "success",
  "future_contests": [
    {"contest_code": "START137", "contest_name": "Starters 137", "contest_start_date_iso": "2024-06-12T20:00:00+05:30", "contest_duration": "120"},
    {"contest_code": "START138", "contest_name": "Starters 138", "contest_start_date_iso": "not-a-date", "contest_duration": "90"}
  ]
}`

func TestCodechefFetchMapsContests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(ccFixture))
	}))
	defer server.Close()

	source := &codechefSource{baseURL: server.URL}
	contests, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(contests) != 2 {
		t.Fatalf("got %d contests, want 2", len(contests))
	}
	c := contests[0]
	if c.Title != "Starters 137" {
		t.Errorf("title = %q", c.Title)
	}
	if c.StartTime != "12 Jun 2024 Wed 20:00" {
		t.Errorf("startTime = %q", c.StartTime)
	}
	if c.Duration != "2 hours" {
		t.Errorf("duration = %q", c.Duration)
	}
	if c.URL != "https://www.codechef.com/START137" {
		t.Errorf("url = %q", c.URL)
	}

	// Unreadable values pass through untouched; ingestion's strict-date
	// policy decides what to do with them.
	if contests[1].StartTime != "not-a-date" {
		t.Errorf("startTime = %q, want pass-through", contests[1].StartTime)
	}
	if contests[1].Duration != "1.5 hours" {
		t.Errorf("duration = %q", contests[1].Duration)
	}
}

// The rendered start time must stay readable by the strict date pattern, or
// every codechef contest would be dropped at creation.
func TestCodechefDisplayTimeRoundTrips(t *testing.T) {
	rendered := ccDisplayTime("2024-06-12T20:00:00+05:30")
	startAt, ok := model.ParseStartTime(rendered)
	if !ok {
		t.Fatalf("ParseStartTime(%q) failed", rendered)
	}
	want := time.Date(2024, time.June, 12, 20, 0, 0, 0, time.UTC)
	if !startAt.Equal(want) {
		t.Fatalf("ParseStartTime(%q) = %v, want %v", rendered, startAt, want)
	}

	if _, ok := model.ParseStartTime(ccDisplayTime("TBD")); ok {
		t.Fatal("pass-through value unexpectedly parsed")
	}
}

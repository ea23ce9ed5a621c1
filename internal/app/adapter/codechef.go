package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const codechefAPIURL = "https://www.codechef.com/api/list/contests/all?sort_by=START&sorting_order=asc"

type codechefSource struct {
	baseURL string
}

func NewCodechefSource() Source {
	return &codechefSource{baseURL: codechefAPIURL}
}

func (s *codechefSource) Name() string { return "codechef" }

type ccContestList struct {
	Status         string          `json:"status"`
	FutureContests []ccContestItem `json:"future_contests"`
}

type ccContestItem struct {
	ContestCode     string `json:"contest_code"`
	ContestName     string `json:"contest_name"`
	StartDateISO    string `json:"contest_start_date_iso"`
	DurationMinutes string `json:"contest_duration"`
}

func (s *codechefSource) Fetch(ctx context.Context) ([]RawContest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("codechef: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("codechef: fetch contest list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("codechef: unexpected status %d", resp.StatusCode)
	}

	var list ccContestList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("codechef: decode contest list: %w", err)
	}

	var contests []RawContest
	for _, c := range list.FutureContests {
		contests = append(contests, RawContest{
			Title:     c.ContestName,
			StartTime: ccDisplayTime(c.StartDateISO),
			Duration:  ccDisplayDuration(c.DurationMinutes),
			URL:       "https://www.codechef.com/" + c.ContestCode,
		})
	}
	return contests, nil
}

// ccDisplayTime renders the start time the way the contests page shows it,
// e.g. "12 Jun 2024 Wed 20:00". Ingestion stores this text verbatim, so the
// format has to stay stable. An unreadable ISO value is passed through as-is
// and left to the strict-date creation policy downstream.
func ccDisplayTime(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Format("2 Jan 2006 Mon 15:04")
}

func ccDisplayDuration(minutes string) string {
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return minutes
	}
	return fmt.Sprintf("%g hours", float64(m)/60)
}

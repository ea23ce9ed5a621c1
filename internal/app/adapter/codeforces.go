package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const codeforcesAPIURL = "https://codeforces.com/api/contest.list"

type codeforcesSource struct {
	baseURL string
}

func NewCodeforcesSource() Source {
	return &codeforcesSource{baseURL: codeforcesAPIURL}
}

func (s *codeforcesSource) Name() string { return "codeforces" }

type cfContestList struct {
	Status string `json:"status"`
	Result []struct {
		ID               int    `json:"id"`
		Name             string `json:"name"`
		Phase            string `json:"phase"`
		StartTimeSeconds int64  `json:"startTimeSeconds"`
		DurationSeconds  int64  `json:"durationSeconds"`
	} `json:"result"`
}

func (s *codeforcesSource) Fetch(ctx context.Context) ([]RawContest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("codeforces: build request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("codeforces: fetch contest list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("codeforces: unexpected status %d", resp.StatusCode)
	}

	var list cfContestList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("codeforces: decode contest list: %w", err)
	}
	if list.Status != "OK" {
		return nil, fmt.Errorf("codeforces: API status %q", list.Status)
	}

	var contests []RawContest
	for _, c := range list.Result {
		if c.Phase != "BEFORE" {
			continue
		}
		contests = append(contests, RawContest{
			Title:     c.Name,
			StartTime: time.Unix(c.StartTimeSeconds, 0).UTC().Format(time.RFC3339),
			Duration:  fmt.Sprintf("%g hours", float64(c.DurationSeconds)/3600),
			URL:       fmt.Sprintf("https://codeforces.com/contest/%d", c.ID),
		})
	}
	return contests, nil
}

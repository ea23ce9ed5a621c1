package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	leetcodeGraphQLURL = "https://leetcode.com/graphql"
	leetcodeMaxResults = 10
)

type leetcodeSource struct {
	baseURL string
}

func NewLeetcodeSource() Source {
	return &leetcodeSource{baseURL: leetcodeGraphQLURL}
}

func (s *leetcodeSource) Name() string { return "leetcode" }

type lcResponse struct {
	Data struct {
		AllContests []struct {
			Title     string  `json:"title"`
			TitleSlug string  `json:"titleSlug"`
			StartTime int64   `json:"startTime"`
			Duration  float64 `json:"duration"`
		} `json:"allContests"`
	} `json:"data"`
}

func (s *leetcodeSource) Fetch(ctx context.Context) ([]RawContest, error) {
	body, err := json.Marshal(map[string]string{
		"query": `{ allContests { title titleSlug startTime duration } }`,
	})
	if err != nil {
		return nil, fmt.Errorf("leetcode: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("leetcode: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://leetcode.com/contest/")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leetcode: fetch contests: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leetcode: unexpected status %d", resp.StatusCode)
	}

	var parsed lcResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("leetcode: decode response: %w", err)
	}

	var contests []RawContest
	for _, c := range parsed.Data.AllContests {
		if len(contests) == leetcodeMaxResults {
			break
		}
		contests = append(contests, RawContest{
			Title:     c.Title,
			StartTime: time.Unix(c.StartTime, 0).UTC().Format("1/2/2006, 3:04:05 PM"),
			Duration:  fmt.Sprintf("%g hours", c.Duration/3600),
			URL:       "https://leetcode.com/contest/" + c.TitleSlug,
		})
	}
	return contests, nil
}

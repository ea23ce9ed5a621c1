package adapter

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	youtubev3 "google.golang.org/api/youtube/v3"
)

// Video is one entry of a solution playlist.
type Video struct {
	Title string
	ID    string
}

// VideoFeed fetches the videos of a curated playlist, in playlist order.
type VideoFeed interface {
	PlaylistVideos(ctx context.Context, playlistID string) ([]Video, error)
}

type youtubeFeed struct {
	svc *youtubev3.Service
}

func NewYouTubeFeed(ctx context.Context, apiKey string) (VideoFeed, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube: API key is required")
	}
	svc, err := youtubev3.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}
	return &youtubeFeed{svc: svc}, nil
}

func (f *youtubeFeed) PlaylistVideos(ctx context.Context, playlistID string) ([]Video, error) {
	var videos []Video
	call := f.svc.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(playlistID).
		MaxResults(50)
	err := call.Pages(ctx, func(resp *youtubev3.PlaylistItemListResponse) error {
		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil {
				continue
			}
			videos = append(videos, Video{
				Title: item.Snippet.Title,
				ID:    item.Snippet.ResourceId.VideoId,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("youtube: list playlist %s: %w", playlistID, err)
	}
	return videos, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"contest_tracker/internal/app/adapter"
	"contest_tracker/internal/common"
	"contest_tracker/internal/domain/model"
	"contest_tracker/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

type SolutionService struct {
	contestRepo repository.ContestRepository
	feed        adapter.VideoFeed
	playlists   map[model.Platform]string
	log         *logrus.Logger
}

func NewSolutionService(
	contestRepo repository.ContestRepository,
	feed adapter.VideoFeed,
	playlists map[model.Platform]string,
	log *logrus.Logger,
) *SolutionService {
	return &SolutionService{
		contestRepo: contestRepo,
		feed:        feed,
		playlists:   playlists,
		log:         log,
	}
}

// UpdateAll scans every platform's curated playlist and attaches solution
// links to contests that still lack one. Matching is case-insensitive
// containment of the contest title in the video title: crude, but tolerant of
// decoration like "Editorial: <title>". The first video to contain a pending
// contest's title wins, and a contest is written at most once, ever.
func (s *SolutionService) UpdateAll(ctx context.Context) int {
	totalAdded := 0

	for _, platform := range model.Platforms {
		playlistID, ok := s.playlists[platform]
		if !ok || playlistID == "" {
			continue
		}
		added, err := s.updatePlatform(ctx, platform, playlistID)
		totalAdded += added
		if err != nil {
			s.log.WithField("platform", platform).WithError(err).Error("Solution update failed, will retry next cycle")
		}
	}

	return totalAdded
}

func (s *SolutionService) updatePlatform(ctx context.Context, platform model.Platform, playlistID string) (int, error) {
	pending, err := s.contestRepo.ListWithoutSolution(ctx, platform)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		s.log.WithField("platform", platform).Info("No contests without solutions")
		return 0, nil
	}

	videos, err := s.feed.PlaylistVideos(ctx, playlistID)
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{
		"platform": platform,
		"pending":  len(pending),
		"videos":   len(videos),
	}).Info("Matching solution videos")

	added := 0
	matched := make(map[string]bool)
	for _, video := range videos {
		videoTitle := strings.ToLower(video.Title)
		for i := range pending {
			contest := &pending[i]
			if matched[contest.ID] || contest.SolutionLink != nil {
				continue
			}
			if !strings.Contains(videoTitle, strings.ToLower(contest.Title)) {
				continue
			}

			err := s.contestRepo.SetSolutionLink(ctx, contest.ID, watchURLPrefix+video.ID)
			if err != nil {
				// Someone else (the manual admin path, or an overlapping
				// run) got there first; the first write stands.
				if errors.Is(err, common.ErrConflict) {
					matched[contest.ID] = true
					break
				}
				return added, err
			}
			matched[contest.ID] = true
			added++
			s.log.WithFields(logrus.Fields{
				"platform": platform,
				"contest":  contest.Title,
				"video":    video.Title,
			}).Info("Attached solution video")
			break // this video is spent, move to the next one
		}
	}
	return added, nil
}

package service

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"time"

	"contest_tracker/internal/common"
	"contest_tracker/internal/domain/model"
	"contest_tracker/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const upcomingCacheKey = "contests:upcoming"

var youtubeURLRe = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/(watch\?v=|shorts/)|youtu\.be/)[\w-]{11}(\S+)?$`)

// ContestService serves the read side of the store plus the manual
// solution-link path. rdb may be nil, in which case the upcoming list is
// computed on every request.
type ContestService struct {
	contestRepo repository.ContestRepository
	rdb         *redis.Client
	cacheTTL    time.Duration
	log         *logrus.Logger
	now         func() time.Time
}

func NewContestService(
	contestRepo repository.ContestRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
	log *logrus.Logger,
) *ContestService {
	return &ContestService{
		contestRepo: contestRepo,
		rdb:         rdb,
		cacheTTL:    cacheTTL,
		log:         log,
		now:         time.Now,
	}
}

// ListUpcoming returns contests whose start time parses to a future instant,
// soonest first. Records whose start time cannot be parsed are left out; they
// cannot be ordered against the rest.
func (s *ContestService) ListUpcoming(ctx context.Context) ([]model.Contest, error) {
	if cached, ok := s.cacheGet(ctx); ok {
		return cached, nil
	}

	all, err := s.contestRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	type upcoming struct {
		contest model.Contest
		startAt time.Time
	}
	var future []upcoming
	for _, c := range all {
		startAt, ok := model.ParseStartTime(c.StartTime)
		if !ok || !startAt.After(now) {
			continue
		}
		future = append(future, upcoming{contest: c, startAt: startAt})
	}
	sort.SliceStable(future, func(i, j int) bool {
		return future[i].startAt.Before(future[j].startAt)
	})

	contests := make([]model.Contest, 0, len(future))
	for _, u := range future {
		contests = append(contests, u.contest)
	}

	s.cacheSet(ctx, contests)
	return contests, nil
}

func (s *ContestService) ListWithoutSolution(ctx context.Context) ([]model.Contest, error) {
	var contests []model.Contest
	for _, platform := range model.Platforms {
		batch, err := s.contestRepo.ListWithoutSolution(ctx, platform)
		if err != nil {
			return nil, err
		}
		contests = append(contests, batch...)
	}
	return contests, nil
}

// SetSolutionLink is the manual admin path. It shares the at-most-once write
// guard with the automatic matcher: a link that is already set stays set.
func (s *ContestService) SetSolutionLink(ctx context.Context, contestID, link string) (*model.Contest, error) {
	if contestID == "" || link == "" {
		return nil, common.Errorf("contest id and solution link are required: %w", common.ErrBadRequest)
	}
	if !youtubeURLRe.MatchString(link) {
		return nil, common.Errorf("invalid YouTube URL format: %w", common.ErrValidation)
	}

	if err := s.contestRepo.SetSolutionLink(ctx, contestID, link); err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx)
	return s.contestRepo.FindByID(ctx, contestID)
}

func (s *ContestService) cacheGet(ctx context.Context) ([]model.Contest, bool) {
	if s.rdb == nil {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, upcomingCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var contests []model.Contest
	if err := json.Unmarshal(raw, &contests); err != nil {
		return nil, false
	}
	return contests, true
}

// cacheSet stores the computed list for cacheTTL. Ingestion does not
// invalidate this key, so a freshly ingested contest can stay hidden for up
// to the TTL. Keep the TTL small relative to the ingestion interval.
func (s *ContestService) cacheSet(ctx context.Context, contests []model.Contest) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(contests)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, upcomingCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.log.WithError(err).Warn("Failed to cache upcoming contests")
	}
}

func (s *ContestService) cacheInvalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, upcomingCacheKey).Err(); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate contest cache")
	}
}

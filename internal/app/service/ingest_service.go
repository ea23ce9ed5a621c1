package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"contest_tracker/internal/app/adapter"
	"contest_tracker/internal/common"
	"contest_tracker/internal/domain/model"
	"contest_tracker/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
)

// ReconcileResult summarizes one platform's reconciliation pass.
type ReconcileResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

type IngestService struct {
	contestRepo repository.ContestRepository
	sources     map[model.Platform]adapter.Source
	log         *logrus.Logger
	now         func() time.Time
}

func NewIngestService(
	contestRepo repository.ContestRepository,
	sources map[model.Platform]adapter.Source,
	log *logrus.Logger,
) *IngestService {
	return &IngestService{
		contestRepo: contestRepo,
		sources:     sources,
		log:         log,
		now:         time.Now,
	}
}

// SyncAll reconciles every platform concurrently and waits for all of them.
// One platform's slow or failing source never blocks or aborts the others.
func (s *IngestService) SyncAll(ctx context.Context) map[model.Platform]ReconcileResult {
	results := make(map[model.Platform]ReconcileResult, len(model.Platforms))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, platform := range model.Platforms {
		wg.Add(1)
		go func(platform model.Platform) {
			defer wg.Done()
			res := s.SyncPlatform(ctx, platform)
			mu.Lock()
			results[platform] = res
			mu.Unlock()
		}(platform)
	}
	wg.Wait()
	return results
}

// SyncPlatform fetches one platform's contest list and reconciles it into the
// store. Fetch failures and persistence failures are logged and reported as an
// empty or partial result; they never propagate.
func (s *IngestService) SyncPlatform(ctx context.Context, platform model.Platform) ReconcileResult {
	source, ok := s.sources[platform]
	if !ok {
		s.log.WithField("platform", platform).Warn("No source registered for platform")
		return ReconcileResult{}
	}

	s.log.WithField("platform", platform).Info("Fetching contests")
	batch, err := source.Fetch(ctx)
	if err != nil {
		s.log.WithField("platform", platform).WithError(err).Error("Failed to fetch contests, skipping platform this cycle")
		return ReconcileResult{}
	}
	s.log.WithFields(logrus.Fields{"platform": platform, "count": len(batch)}).Info("Retrieved contests")

	result, err := s.reconcile(ctx, platform, batch)
	if err != nil {
		s.log.WithField("platform", platform).WithError(err).Error("Reconciliation aborted, will retry next cycle")
	}
	return result
}

func (s *IngestService) reconcile(ctx context.Context, platform model.Platform, batch []adapter.RawContest) (ReconcileResult, error) {
	result := ReconcileResult{Total: len(batch)}

	for _, raw := range batch {
		key := model.DeriveKey(platform, raw.Title, raw.StartTime)

		existing, err := s.contestRepo.FindByKey(ctx, key)
		switch {
		case err == nil:
			if err := s.refresh(ctx, existing.IdentityKey, raw.Duration); err != nil {
				return result, err
			}
			result.Updated++

		case errors.Is(err, common.ErrNotFound):
			// CodeChef rows with a start time we cannot read are display
			// noise (e.g. "TBD") and are not worth a new record. Other
			// platforms store the raw text regardless.
			if platform == model.PlatformCodechef {
				if _, ok := model.ParseStartTime(raw.StartTime); !ok {
					continue
				}
			}
			now := s.now()
			contest := &model.Contest{
				ID:          uuid.NewString(),
				Platform:    platform,
				Title:       raw.Title,
				Slug:        slug.Make(raw.Title),
				StartTime:   raw.StartTime,
				Duration:    raw.Duration,
				URL:         raw.URL,
				IdentityKey: key,
				AddedAt:     now,
				LastUpdated: now,
			}
			if err := s.contestRepo.Create(ctx, contest); err != nil {
				// A concurrent insert of the same key lost the race on the
				// unique index; treat as already exists.
				if errors.Is(err, common.ErrConflict) {
					if err := s.refresh(ctx, key, raw.Duration); err != nil {
						return result, err
					}
					result.Updated++
					continue
				}
				return result, err
			}
			result.Added++

		default:
			return result, err
		}
	}

	return result, nil
}

func (s *IngestService) refresh(ctx context.Context, identityKey, duration string) error {
	return s.contestRepo.UpdateDuration(ctx, identityKey, duration, s.now())
}

// Package testsupport provides in-memory stand-ins for the persistence and
// external-feed collaborators so service and worker tests can run without
// Postgres, Redis or the network.
package testsupport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contest_tracker/internal/app/adapter"
	"contest_tracker/internal/common"
	"contest_tracker/internal/domain/model"
	"contest_tracker/internal/domain/repository"
)

// MemStore implements repository.ContestRepository with the same observable
// semantics as the Postgres implementation, including the unique identity-key
// constraint and the guarded solution-link write. Insertion order is preserved
// so "store order" is deterministic in tests.
type MemStore struct {
	mu       sync.Mutex
	order    []string // identity keys, insertion order
	byKey    map[string]*model.Contest
	byID     map[string]*model.Contest
	FailNext error // when set, the next Create/Update returns it once
}

var _ repository.ContestRepository = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		byKey: make(map[string]*model.Contest),
		byID:  make(map[string]*model.Contest),
	}
}

func (s *MemStore) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func (s *MemStore) Create(ctx context.Context, c *model.Contest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, exists := s.byKey[c.IdentityKey]; exists {
		return fmt.Errorf("contest with this identity key already exists: %w", common.ErrConflict)
	}
	stored := *c
	s.order = append(s.order, stored.IdentityKey)
	s.byKey[stored.IdentityKey] = &stored
	s.byID[stored.ID] = &stored
	return nil
}

func (s *MemStore) FindByKey(ctx context.Context, identityKey string) (*model.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byKey[identityKey]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *MemStore) FindByID(ctx context.Context, id string) (*model.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *MemStore) List(ctx context.Context) ([]model.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contests := make([]model.Contest, 0, len(s.order))
	for _, key := range s.order {
		contests = append(contests, *s.byKey[key])
	}
	return contests, nil
}

func (s *MemStore) ListWithoutSolution(ctx context.Context, platform model.Platform) ([]model.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var contests []model.Contest
	for _, key := range s.order {
		c := s.byKey[key]
		if c.Platform == platform && c.SolutionLink == nil {
			contests = append(contests, *c)
		}
	}
	return contests, nil
}

func (s *MemStore) UpdateDuration(ctx context.Context, identityKey, duration string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	c, ok := s.byKey[identityKey]
	if !ok {
		return common.ErrNotFound
	}
	c.Duration = duration
	c.LastUpdated = updatedAt
	return nil
}

func (s *MemStore) SetSolutionLink(ctx context.Context, id, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	if c.SolutionLink != nil {
		return fmt.Errorf("solution link already set: %w", common.ErrConflict)
	}
	c.SolutionLink = &link
	c.LastUpdated = time.Now()
	return nil
}

// Len reports the number of stored contests.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// StubSource returns a fixed batch or error from Fetch.
type StubSource struct {
	SourceName string
	Batch      []adapter.RawContest
	Err        error
}

var _ adapter.Source = (*StubSource)(nil)

func (s *StubSource) Name() string { return s.SourceName }

func (s *StubSource) Fetch(ctx context.Context) ([]adapter.RawContest, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Batch, nil
}

// StubFeed returns fixed playlist contents keyed by playlist ID.
type StubFeed struct {
	Playlists map[string][]adapter.Video
	Err       error
}

var _ adapter.VideoFeed = (*StubFeed)(nil)

func (f *StubFeed) PlaylistVideos(ctx context.Context, playlistID string) ([]adapter.Video, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Playlists[playlistID], nil
}

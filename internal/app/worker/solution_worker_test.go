package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"contest_tracker/internal/app/adapter"
	"contest_tracker/internal/app/service"
	"contest_tracker/internal/domain/model"
	"contest_tracker/internal/testsupport"
)

// countingFeed counts playlist fetches.
type countingFeed struct {
	calls int64
}

func (f *countingFeed) PlaylistVideos(ctx context.Context, playlistID string) ([]adapter.Video, error) {
	atomic.AddInt64(&f.calls, 1)
	return nil, nil
}

func (f *countingFeed) Calls() int64 { return atomic.LoadInt64(&f.calls) }

// blockingFeed parks in PlaylistVideos until released, signalling entry.
type blockingFeed struct {
	entered chan struct{}
	release chan struct{}
	videos  []adapter.Video
}

func (f *blockingFeed) PlaylistVideos(ctx context.Context, playlistID string) ([]adapter.Video, error) {
	close(f.entered)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.release:
		return f.videos, nil
	}
}

func TestSolutionWorkerCancellationDoesNotInterruptTick(t *testing.T) {
	store := testsupport.NewMemStore()
	now := time.Now()
	c := &model.Contest{
		ID: "c1", Platform: model.PlatformLeetcode, Title: "Weekly Round 10",
		StartTime: "2024-06-12T20:00:00Z", Duration: "2 hours", URL: "https://example.com/c1",
		IdentityKey: model.DeriveKey(model.PlatformLeetcode, "Weekly Round 10", "2024-06-12T20:00:00Z"),
		AddedAt:     now, LastUpdated: now,
	}
	if err := store.Create(context.Background(), c); err != nil {
		t.Fatalf("seed: %v", err)
	}

	feed := &blockingFeed{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		videos:  []adapter.Video{{Title: "Editorial: Weekly Round 10", ID: "dQw4w9WgXcQ"}},
	}
	svc := service.NewSolutionService(store, feed, map[model.Platform]string{
		model.PlatformLeetcode: "PL-leetcode",
	}, testLogger())

	w := NewSolutionWorker(svc, time.Hour, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	<-feed.entered
	cancel() // mid-tick; the playlist fetch and the link write must finish
	close(feed.release)

	waitFor(t, 2*time.Second, func() bool {
		stored, err := store.FindByID(context.Background(), "c1")
		return err == nil && stored.SolutionLink != nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop once the in-flight tick finished")
	}
}

func TestSolutionWorkerRunsIndependently(t *testing.T) {
	store := testsupport.NewMemStore()
	now := time.Now()
	c := &model.Contest{
		ID: "c1", Platform: model.PlatformLeetcode, Title: "Weekly Round 10",
		StartTime: "2024-06-12T20:00:00Z", Duration: "2 hours", URL: "https://example.com/c1",
		IdentityKey: model.DeriveKey(model.PlatformLeetcode, "Weekly Round 10", "2024-06-12T20:00:00Z"),
		AddedAt:     now, LastUpdated: now,
	}
	if err := store.Create(context.Background(), c); err != nil {
		t.Fatalf("seed: %v", err)
	}

	feed := &countingFeed{}
	svc := service.NewSolutionService(store, feed, map[model.Platform]string{
		model.PlatformLeetcode: "PL-leetcode",
	}, testLogger())

	w := NewSolutionWorker(svc, time.Hour, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	// Immediate run fires once for the one platform with pending contests.
	waitFor(t, 2*time.Second, func() bool { return feed.Calls() == 1 })

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

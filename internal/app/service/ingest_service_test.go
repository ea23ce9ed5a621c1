package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"contest_tracker/internal/app/adapter"
	"contest_tracker/internal/common"
	"contest_tracker/internal/domain/model"
	"contest_tracker/internal/domain/repository"
	"contest_tracker/internal/testsupport"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func codeforcesBatch() []adapter.RawContest {
	return []adapter.RawContest{
		{Title: "Round 900 (Div. 3)", StartTime: "2024-06-12T20:00:00Z", Duration: "2 hours", URL: "https://codeforces.com/contest/900"},
		{Title: "Round 901 (Div. 2)", StartTime: "2024-06-14T20:00:00Z", Duration: "2.5 hours", URL: "https://codeforces.com/contest/901"},
		{Title: "Round 902 (Div. 1)", StartTime: "2024-06-16T20:00:00Z", Duration: "3 hours", URL: "https://codeforces.com/contest/902"},
	}
}

func newIngestService(store repository.ContestRepository, sources map[model.Platform]adapter.Source) *IngestService {
	return NewIngestService(store, sources, testLogger())
}

func TestSyncPlatformIdempotent(t *testing.T) {
	store := testsupport.NewMemStore()
	svc := newIngestService(store, map[model.Platform]adapter.Source{
		model.PlatformCodeforces: &testsupport.StubSource{SourceName: "codeforces", Batch: codeforcesBatch()},
	})

	first := svc.SyncPlatform(context.Background(), model.PlatformCodeforces)
	if first.Added != 3 || first.Updated != 0 || first.Total != 3 {
		t.Fatalf("first run = %+v, want {3 0 3}", first)
	}

	second := svc.SyncPlatform(context.Background(), model.PlatformCodeforces)
	if second.Added != 0 || second.Updated != 3 || second.Total != 3 {
		t.Fatalf("second run = %+v, want {0 3 3}", second)
	}
	if store.Len() != 3 {
		t.Fatalf("store holds %d records, want 3", store.Len())
	}
}

func TestSyncPlatformRefreshesOnlyDuration(t *testing.T) {
	store := testsupport.NewMemStore()
	batch := []adapter.RawContest{
		{Title: "Weekly Round. 10", StartTime: "2024-06-12T20:00:00Z", Duration: "2 hours", URL: "https://example.com/a"},
	}
	svc := newIngestService(store, map[model.Platform]adapter.Source{
		model.PlatformCodeforces: &testsupport.StubSource{SourceName: "codeforces", Batch: batch},
	})
	svc.SyncPlatform(context.Background(), model.PlatformCodeforces)

	// Same identity key (punctuation-only title change), new duration and URL.
	refetched := []adapter.RawContest{
		{Title: "Weekly Round, 10", StartTime: "2024-06-12T20:00:00Z", Duration: "3 hours", URL: "https://example.com/b"},
	}
	svc.sources[model.PlatformCodeforces] = &testsupport.StubSource{SourceName: "codeforces", Batch: refetched}
	res := svc.SyncPlatform(context.Background(), model.PlatformCodeforces)
	if res.Added != 0 || res.Updated != 1 {
		t.Fatalf("refetch = %+v, want {0 1 1}", res)
	}

	key := model.DeriveKey(model.PlatformCodeforces, "Weekly Round. 10", "2024-06-12T20:00:00Z")
	stored, err := store.FindByKey(context.Background(), key)
	if err != nil {
		t.Fatalf("FindByKey: %v", err)
	}
	if stored.Title != "Weekly Round. 10" {
		t.Errorf("title was overwritten: %q", stored.Title)
	}
	if stored.URL != "https://example.com/a" {
		t.Errorf("url was overwritten: %q", stored.URL)
	}
	if stored.Duration != "3 hours" {
		t.Errorf("duration not refreshed: %q", stored.Duration)
	}
}

func TestCodechefUnparseableDatePolicy(t *testing.T) {
	store := testsupport.NewMemStore()
	batch := []adapter.RawContest{
		{Title: "Starters 137", StartTime: "TBD", Duration: "2 hours", URL: "https://www.codechef.com/START137"},
		{Title: "Starters 138", StartTime: "12 Jun 2024 Wed 20:00", Duration: "2 hours", URL: "https://www.codechef.com/START138"},
	}
	svc := newIngestService(store, map[model.Platform]adapter.Source{
		model.PlatformCodechef: &testsupport.StubSource{SourceName: "codechef", Batch: batch},
	})

	res := svc.SyncPlatform(context.Background(), model.PlatformCodechef)
	if res.Added != 1 || res.Total != 2 {
		t.Fatalf("result = %+v, want {1 0 2}", res)
	}
	key := model.DeriveKey(model.PlatformCodechef, "Starters 137", "TBD")
	if _, err := store.FindByKey(context.Background(), key); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("unparseable-date contest was created, err = %v", err)
	}

	// A record that already exists under that key is still refreshed.
	now := time.Now()
	pre := &model.Contest{
		ID: "pre", Platform: model.PlatformCodechef, Title: "Starters 137",
		StartTime: "TBD", Duration: "1 hour", URL: "https://www.codechef.com/START137",
		IdentityKey: key, AddedAt: now, LastUpdated: now,
	}
	if err := store.Create(context.Background(), pre); err != nil {
		t.Fatalf("seed: %v", err)
	}
	res = svc.SyncPlatform(context.Background(), model.PlatformCodechef)
	if res.Updated != 2 { // both Starters 137 and 138 now exist
		t.Fatalf("result = %+v, want 2 updates", res)
	}
	stored, _ := store.FindByKey(context.Background(), key)
	if stored.Duration != "2 hours" {
		t.Fatalf("existing unparseable-date contest not refreshed: %q", stored.Duration)
	}
}

func TestSyncPlatformAdapterFailureYieldsZero(t *testing.T) {
	store := testsupport.NewMemStore()
	svc := newIngestService(store, map[model.Platform]adapter.Source{
		model.PlatformLeetcode: &testsupport.StubSource{SourceName: "leetcode", Err: errors.New("upstream down")},
	})
	res := svc.SyncPlatform(context.Background(), model.PlatformLeetcode)
	if res != (ReconcileResult{}) {
		t.Fatalf("result = %+v, want zero", res)
	}
}

func TestSyncAllIsolatesFailingPlatform(t *testing.T) {
	store := testsupport.NewMemStore()
	svc := newIngestService(store, map[model.Platform]adapter.Source{
		model.PlatformCodechef: &testsupport.StubSource{SourceName: "codechef", Err: errors.New("scrape failed")},
		model.PlatformCodeforces: &testsupport.StubSource{SourceName: "codeforces", Batch: codeforcesBatch()},
		model.PlatformLeetcode: &testsupport.StubSource{SourceName: "leetcode", Batch: []adapter.RawContest{
			{Title: "Weekly Contest 400", StartTime: "6/12/2024, 8:00:00 PM", Duration: "1.5 hours", URL: "https://leetcode.com/contest/weekly-contest-400"},
		}},
	})

	results := svc.SyncAll(context.Background())
	if got := results[model.PlatformCodechef]; got != (ReconcileResult{}) {
		t.Errorf("codechef = %+v, want zero", got)
	}
	if got := results[model.PlatformCodeforces]; got.Added != 3 {
		t.Errorf("codeforces = %+v, want 3 added", got)
	}
	if got := results[model.PlatformLeetcode]; got.Added != 1 {
		t.Errorf("leetcode = %+v, want 1 added", got)
	}
}

func TestSyncPlatformPersistenceFailureAbortsBatch(t *testing.T) {
	store := testsupport.NewMemStore()
	svc := newIngestService(store, map[model.Platform]adapter.Source{
		model.PlatformCodeforces: &testsupport.StubSource{SourceName: "codeforces", Batch: codeforcesBatch()},
	})

	store.FailNext = errors.New("db down")
	res := svc.SyncPlatform(context.Background(), model.PlatformCodeforces)
	if res.Added != 0 || res.Updated != 0 {
		t.Fatalf("result = %+v, want nothing persisted", res)
	}
	if store.Len() != 0 {
		t.Fatalf("store holds %d records after aborted batch, want 0", store.Len())
	}

	// The next cycle picks the batch up again.
	res = svc.SyncPlatform(context.Background(), model.PlatformCodeforces)
	if res.Added != 3 {
		t.Fatalf("retry result = %+v, want 3 added", res)
	}
}

// missOnce makes the first lookup of a key miss, simulating the window where
// two goroutines race to insert the same contest.
type missOnce struct {
	*testsupport.MemStore
	missed map[string]bool
}

func (m *missOnce) FindByKey(ctx context.Context, key string) (*model.Contest, error) {
	if !m.missed[key] {
		m.missed[key] = true
		return nil, common.ErrNotFound
	}
	return m.MemStore.FindByKey(ctx, key)
}

func TestInsertConflictFallsThroughToUpdate(t *testing.T) {
	store := &missOnce{MemStore: testsupport.NewMemStore(), missed: make(map[string]bool)}
	batch := []adapter.RawContest{
		{Title: "Round 900", StartTime: "2024-06-12T20:00:00Z", Duration: "2 hours", URL: "https://codeforces.com/contest/900"},
	}
	key := model.DeriveKey(model.PlatformCodeforces, "Round 900", "2024-06-12T20:00:00Z")
	now := time.Now()
	seed := &model.Contest{
		ID: "seed", Platform: model.PlatformCodeforces, Title: "Round 900",
		StartTime: "2024-06-12T20:00:00Z", Duration: "1 hour", URL: "https://codeforces.com/contest/900",
		IdentityKey: key, AddedAt: now, LastUpdated: now,
	}
	if err := store.MemStore.Create(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := newIngestService(store, map[model.Platform]adapter.Source{
		model.PlatformCodeforces: &testsupport.StubSource{SourceName: "codeforces", Batch: batch},
	})
	res := svc.SyncPlatform(context.Background(), model.PlatformCodeforces)
	if res.Added != 0 || res.Updated != 1 {
		t.Fatalf("result = %+v, want conflict resolved as update", res)
	}
	stored, _ := store.MemStore.FindByKey(context.Background(), key)
	if stored.Duration != "2 hours" {
		t.Fatalf("duration not refreshed after conflict: %q", stored.Duration)
	}
	if store.MemStore.Len() != 1 {
		t.Fatalf("store holds %d records, want 1", store.MemStore.Len())
	}
}

package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/levilina/marine-data-backend/internal/repos/testutil"
	"github.com/levilina/marine-data-backend/internal/types"
)

func TestAnalysisRunRepoClaim(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAnalysisRunRepo(db, testutil.Logger(t))

	run := &types.AnalysisRun{
		ID:     uuid.New(),
		Source: "claim-test",
		Year:   2023,
		Status: "queued",
		Stage:  "queued",
	}
	if _, err := repo.Create(ctx, tx, []*types.AnalysisRun{run}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, tx, 5, 30*time.Second, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != run.ID {
		t.Fatalf("expected to claim run %s, got %v", run.ID, claimed)
	}

	// After the claim the run is running with attempts bumped; nothing else
	// is claimable.
	rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{run.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows[0].Status != "running" || rows[0].Attempts != 1 || rows[0].LockedAt == nil {
		t.Fatalf("claim did not mark run running: %+v", rows[0])
	}

	again, err := repo.ClaimNextRunnable(ctx, tx, 5, 30*time.Second, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable again: %v", err)
	}
	if again != nil {
		t.Fatalf("claimed a freshly running run: %+v", again)
	}
}

func TestAnalysisRunRepoRetryAndStale(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAnalysisRunRepo(db, testutil.Logger(t))

	// A failed run whose last error is old enough is retried.
	old := time.Now().Add(-time.Hour)
	failed := &types.AnalysisRun{
		ID:          uuid.New(),
		Source:      "retry-test",
		Year:        2023,
		Status:      "failed",
		Stage:       "match",
		Attempts:    1,
		LastErrorAt: &old,
	}
	if _, err := repo.Create(ctx, tx, []*types.AnalysisRun{failed}); err != nil {
		t.Fatalf("Create failed run: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, tx, 5, 30*time.Second, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != failed.ID {
		t.Fatalf("expected failed run to be retried, got %v", claimed)
	}

	// A running run with a stale heartbeat is reclaimed (crash recovery).
	stale := time.Now().Add(-10 * time.Minute)
	crashed := &types.AnalysisRun{
		ID:          uuid.New(),
		Source:      "stale-test",
		Year:        2023,
		Status:      "running",
		Stage:       "enrich",
		Attempts:    1,
		HeartbeatAt: &stale,
	}
	if _, err := repo.Create(ctx, tx, []*types.AnalysisRun{crashed}); err != nil {
		t.Fatalf("Create crashed run: %v", err)
	}

	reclaimed, err := repo.ClaimNextRunnable(ctx, tx, 5, 30*time.Second, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable stale: %v", err)
	}
	if reclaimed == nil || reclaimed.ID != crashed.ID {
		t.Fatalf("expected stale run to be reclaimed, got %v", reclaimed)
	}

	// Exhausted runs stay failed.
	exhausted := &types.AnalysisRun{
		ID:          uuid.New(),
		Source:      "exhausted-test",
		Year:        2023,
		Status:      "failed",
		Stage:       "match",
		Attempts:    5,
		LastErrorAt: &old,
	}
	if _, err := repo.Create(ctx, tx, []*types.AnalysisRun{exhausted}); err != nil {
		t.Fatalf("Create exhausted run: %v", err)
	}
	got, err := repo.ClaimNextRunnable(ctx, tx, 5, 30*time.Second, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable exhausted: %v", err)
	}
	if got != nil {
		t.Fatalf("claimed an exhausted run: %+v", got)
	}
}

func TestAnalysisRunRepoHeartbeatAndLatest(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAnalysisRunRepo(db, testutil.Logger(t))

	run := testutil.SeedAnalysisRun(t, ctx, tx, "hb-test", "running")
	if err := repo.Heartbeat(ctx, tx, run.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{run.ID})
	if err != nil || len(rows) != 1 || rows[0].HeartbeatAt == nil {
		t.Fatalf("heartbeat not recorded: err=%v rows=%v", err, rows)
	}

	latest, err := repo.GetLatestBySource(ctx, tx, "hb-test")
	if err != nil || latest == nil || latest.ID != run.ID {
		t.Fatalf("GetLatestBySource: err=%v latest=%v", err, latest)
	}
	if none, err := repo.GetLatestBySource(ctx, tx, "no-such-source"); err != nil || none != nil {
		t.Fatalf("GetLatestBySource absent: err=%v got=%v", err, none)
	}
}

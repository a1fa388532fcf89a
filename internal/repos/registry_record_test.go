package repos

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/levilina/marine-data-backend/internal/repos/testutil"
	"github.com/levilina/marine-data-backend/internal/types"
)

func TestRegistryRecordRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewRegistryRecordRepo(db, testutil.Logger(t))

	rec := &types.RegistryRecord{
		ID:             uuid.New(),
		Source:         "senegal-2023",
		IMO:            "9000002",
		Name:           "NDAR",
		NormalizedName: "NDAR",
		Flag:           "SEN",
	}
	if _, err := repo.Upsert(ctx, tx, []*types.RegistryRecord{rec}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Re-importing the same row must not duplicate it.
	again := &types.RegistryRecord{
		Source:         "senegal-2023",
		IMO:            "9000002",
		Name:           "NDAR",
		NormalizedName: "NDAR",
		Flag:           "SEN",
		CallSign:       "6VAB",
	}
	if _, err := repo.Upsert(ctx, tx, []*types.RegistryRecord{again}); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if n, err := repo.CountBySource(ctx, tx, "senegal-2023"); err != nil || n != 1 {
		t.Fatalf("CountBySource: err=%v n=%d", err, n)
	}

	rows, err := repo.GetBySource(ctx, tx, "senegal-2023", 10, 0)
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetBySource: err=%v len=%d", err, len(rows))
	}
	if rows[0].CallSign != "6VAB" {
		t.Fatalf("Upsert did not refresh call sign: %q", rows[0].CallSign)
	}

	if unmatched, err := repo.GetUnmatchedBySource(ctx, tx, "senegal-2023"); err != nil || len(unmatched) != 1 {
		t.Fatalf("GetUnmatchedBySource: err=%v len=%d", err, len(unmatched))
	}

	v := testutil.SeedVessel(t, ctx, tx, "gfw-ndar", "9000002", "NDAR", "SEN")
	if err := repo.LinkVessel(ctx, tx, rows[0].ID, v.ID); err != nil {
		t.Fatalf("LinkVessel: %v", err)
	}
	if unmatched, err := repo.GetUnmatchedBySource(ctx, tx, "senegal-2023"); err != nil || len(unmatched) != 0 {
		t.Fatalf("GetUnmatchedBySource after link: err=%v len=%d", err, len(unmatched))
	}
}

func TestRegistryRecordRepoGetAllBySource(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewRegistryRecordRepo(db, testutil.Logger(t))

	// More rows than one page so the loop has to cross a page boundary.
	const n = 620
	records := make([]*types.RegistryRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, &types.RegistryRecord{
			Source:         "senegal-large",
			IMO:            fmt.Sprintf("91%05d", i),
			Name:           fmt.Sprintf("VESSEL %04d", i),
			NormalizedName: fmt.Sprintf("VESSEL %04d", i),
			Flag:           "SEN",
		})
	}
	if _, err := repo.Upsert(ctx, tx, records); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	all, err := repo.GetAllBySource(ctx, tx, "senegal-large")
	if err != nil {
		t.Fatalf("GetAllBySource: %v", err)
	}
	if len(all) != n {
		t.Fatalf("GetAllBySource returned %d records, want %d", len(all), n)
	}
	seen := make(map[uuid.UUID]bool, n)
	for _, rec := range all {
		if seen[rec.ID] {
			t.Fatalf("record %s returned twice across pages", rec.ID)
		}
		seen[rec.ID] = true
	}
}

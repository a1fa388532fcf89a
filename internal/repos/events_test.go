package repos

import (
	"context"
	"testing"
	"time"

	"github.com/levilina/marine-data-backend/internal/repos/testutil"
	"github.com/levilina/marine-data-backend/internal/types"
)

func TestFishingEventRepoUpsertIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewFishingEventRepo(db, testutil.Logger(t))
	v := testutil.SeedVessel(t, ctx, tx, "gfw-fe", "9000003", "DAKAR I", "SEN")

	start := time.Date(2023, 3, 1, 6, 0, 0, 0, time.UTC)
	events := []*types.FishingEvent{
		{VesselID: v.ID, EventID: "ev-1", Start: start, End: start.Add(4 * time.Hour)},
		{VesselID: v.ID, EventID: "ev-2", Start: start.Add(6 * time.Hour), End: start.Add(9 * time.Hour)},
	}
	if err := repo.Upsert(ctx, tx, events); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Same event ids again with a longer window: replaces, does not duplicate.
	update := []*types.FishingEvent{
		{VesselID: v.ID, EventID: "ev-1", Start: start, End: start.Add(5 * time.Hour)},
	}
	if err := repo.Upsert(ctx, tx, update); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}

	rows, err := repo.GetByVesselID(ctx, tx, v.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("GetByVesselID: err=%v len=%d", err, len(rows))
	}
	if got := rows[0].DurationHours(); got != 5 {
		t.Fatalf("ev-1 window not replaced: %.1f hours", got)
	}

	if err := repo.DeleteByVesselID(ctx, tx, v.ID); err != nil {
		t.Fatalf("DeleteByVesselID: %v", err)
	}
	if rows, err := repo.GetByVesselID(ctx, tx, v.ID); err != nil || len(rows) != 0 {
		t.Fatalf("after delete: err=%v len=%d", err, len(rows))
	}
}

func TestFlagChangeRepoReplace(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewFlagChangeRepo(db, testutil.Logger(t))
	v := testutil.SeedVessel(t, ctx, tx, "gfw-fc", "9000004", "JOOLA", "SEN")

	first := []*types.FlagChange{
		{VesselID: v.ID, Seq: 0, Flag: "CHN"},
		{VesselID: v.ID, Seq: 1, Flag: "SEN"},
	}
	if err := repo.Replace(ctx, tx, v.ID, first); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	second := []*types.FlagChange{
		{VesselID: v.ID, Seq: 0, Flag: "CHN"},
		{VesselID: v.ID, Seq: 1, Flag: "PAN"},
		{VesselID: v.ID, Seq: 2, Flag: "SEN"},
	}
	if err := repo.Replace(ctx, tx, v.ID, second); err != nil {
		t.Fatalf("Replace again: %v", err)
	}

	rows, err := repo.GetByVesselID(ctx, tx, v.ID)
	if err != nil || len(rows) != 3 {
		t.Fatalf("GetByVesselID: err=%v len=%d", err, len(rows))
	}
	if rows[1].Flag != "PAN" {
		t.Fatalf("history not replaced wholesale: %+v", rows[1])
	}
}

func TestPortVisitAndGapAndEncounterRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	log := testutil.Logger(t)
	v := testutil.SeedVessel(t, ctx, tx, "gfw-pv", "9000005", "CASAMANCE", "SEN")
	start := time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)

	pvRepo := NewPortVisitRepo(db, log)
	if err := pvRepo.Upsert(ctx, tx, []*types.PortVisit{
		{VesselID: v.ID, EventID: "pv-1", Start: start, End: start.Add(24 * time.Hour), AnchorageName: "Las Palmas", AnchorageFlag: "ESP"},
	}); err != nil {
		t.Fatalf("port visit Upsert: %v", err)
	}
	if rows, err := pvRepo.GetByVesselID(ctx, tx, v.ID); err != nil || len(rows) != 1 || rows[0].AnchorageFlag != "ESP" {
		t.Fatalf("port visit GetByVesselID: err=%v rows=%v", err, rows)
	}

	gapRepo := NewAISGapRepo(db, log)
	if err := gapRepo.Upsert(ctx, tx, []*types.AISGap{
		{VesselID: v.ID, EventID: "gap-1", Start: start, End: start.Add(72 * time.Hour)},
	}); err != nil {
		t.Fatalf("gap Upsert: %v", err)
	}
	gaps, err := gapRepo.GetByVesselID(ctx, tx, v.ID)
	if err != nil || len(gaps) != 1 {
		t.Fatalf("gap GetByVesselID: err=%v len=%d", err, len(gaps))
	}
	if gaps[0].DurationHours() != 72 {
		t.Fatalf("gap duration: %.1f", gaps[0].DurationHours())
	}

	encRepo := NewEncounterRepo(db, log)
	if err := encRepo.Upsert(ctx, tx, []*types.Encounter{
		{VesselID: v.ID, EventID: "enc-1", Start: start, End: start.Add(3 * time.Hour), OtherVesselName: "REEFER ONE", OtherVesselFlag: "PAN"},
	}); err != nil {
		t.Fatalf("encounter Upsert: %v", err)
	}
	if rows, err := encRepo.GetByVesselID(ctx, tx, v.ID); err != nil || len(rows) != 1 || rows[0].OtherVesselFlag != "PAN" {
		t.Fatalf("encounter GetByVesselID: err=%v rows=%v", err, rows)
	}
}

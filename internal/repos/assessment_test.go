package repos

import (
	"context"
	"testing"

	"github.com/levilina/marine-data-backend/internal/repos/testutil"
	"github.com/levilina/marine-data-backend/internal/types"
)

func TestAssessmentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAssessmentRepo(db, testutil.Logger(t))

	run := testutil.SeedAnalysisRun(t, ctx, tx, "assess-test", "running")
	v1 := testutil.SeedVessel(t, ctx, tx, "gfw-a1", "9000010", "VESSEL ONE", "CHN")
	v2 := testutil.SeedVessel(t, ctx, tx, "gfw-a2", "9000011", "VESSEL TWO", "SEN")

	assessments := []*types.Assessment{
		{
			RunID:          run.ID,
			VesselID:       &v1.ID,
			Name:           "VESSEL ONE",
			Flag:           "CHN",
			OwnerCountry:   "CHN",
			Classification: types.ClassificationForeign,
			FishingHours:   testutil.PtrFloat(1200),
			IsSupertrawler: true,
		},
		{
			RunID:          run.ID,
			VesselID:       &v2.ID,
			Name:           "VESSEL TWO",
			Flag:           "SEN",
			OwnerCountry:   "SEN",
			Classification: types.ClassificationGenuine,
			FishingHours:   testutil.PtrFloat(400),
		},
	}
	if err := repo.Upsert(ctx, tx, assessments); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Re-assessing the same vessel in the same run updates in place.
	redo := []*types.Assessment{{
		RunID:          run.ID,
		VesselID:       &v1.ID,
		Name:           "VESSEL ONE",
		Flag:           "CHN",
		OwnerCountry:   "CHN",
		Classification: types.ClassificationSuspect,
		FishingHours:   testutil.PtrFloat(100),
	}}
	if err := repo.Upsert(ctx, tx, redo); err != nil {
		t.Fatalf("Upsert redo: %v", err)
	}

	rows, err := repo.GetByRunID(ctx, tx, run.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("GetByRunID: err=%v len=%d", err, len(rows))
	}

	counts, err := repo.CountByClassification(ctx, tx, run.ID)
	if err != nil {
		t.Fatalf("CountByClassification: %v", err)
	}
	if counts[types.ClassificationSuspect] != 1 || counts[types.ClassificationGenuine] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	latest, err := repo.GetLatestByVesselID(ctx, tx, v1.ID)
	if err != nil || latest == nil || latest.Classification != types.ClassificationSuspect {
		t.Fatalf("GetLatestByVesselID: err=%v latest=%v", err, latest)
	}

	byFlag, err := repo.AggregateByFlag(ctx, tx, run.ID)
	if err != nil || len(byFlag) != 2 {
		t.Fatalf("AggregateByFlag: err=%v rows=%v", err, byFlag)
	}
	// Ordered by fishing hours descending.
	if byFlag[0].Flag != "SEN" || byFlag[0].FishingHours != 400 {
		t.Fatalf("AggregateByFlag order: %+v", byFlag)
	}

	byOwner, err := repo.AggregateByOwnerCountry(ctx, tx, run.ID)
	if err != nil || len(byOwner) != 2 {
		t.Fatalf("AggregateByOwnerCountry: err=%v rows=%v", err, byOwner)
	}
}

func TestAssessmentRepoDeleteUnmatched(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAssessmentRepo(db, testutil.Logger(t))

	run := testutil.SeedAnalysisRun(t, ctx, tx, "unmatched-test", "running")
	v := testutil.SeedVessel(t, ctx, tx, "gfw-u1", "9000020", "MATCHED ONE", "SEN")

	unknowns := func() []*types.Assessment {
		return []*types.Assessment{
			{RunID: run.ID, Name: "GHOST ONE", Classification: types.ClassificationUnknown},
			{RunID: run.ID, Name: "GHOST TWO", Classification: types.ClassificationUnknown},
		}
	}
	matched := []*types.Assessment{{
		RunID:          run.ID,
		VesselID:       &v.ID,
		Name:           "MATCHED ONE",
		Flag:           "SEN",
		Classification: types.ClassificationGenuine,
	}}

	if err := repo.Upsert(ctx, tx, append(unknowns(), matched...)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// NULL vessel ids never conflict, so without the delete a second pass
	// over the same run would double every unknown row.
	if err := repo.DeleteUnmatched(ctx, tx, run.ID); err != nil {
		t.Fatalf("DeleteUnmatched: %v", err)
	}
	if err := repo.Upsert(ctx, tx, append(unknowns(), matched...)); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}

	counts, err := repo.CountByClassification(ctx, tx, run.ID)
	if err != nil {
		t.Fatalf("CountByClassification: %v", err)
	}
	if counts[types.ClassificationUnknown] != 2 {
		t.Fatalf("unknown count inflated: %v", counts)
	}
	if counts[types.ClassificationGenuine] != 1 {
		t.Fatalf("matched count wrong: %v", counts)
	}
}

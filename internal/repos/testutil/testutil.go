package testutil

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/types"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			dbErr = errMissingDSN
			return
		}

		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			dbErr = err
			return
		}

		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			dbErr = err
			return
		}

		if err := autoMigrateAll(db); err != nil {
			dbErr = err
			return
		}
	})

	if errors.Is(dbErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run repo integration tests")
	}
	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func autoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Vessel{},
		&types.RegistryRecord{},
		&types.FishingEvent{},
		&types.PortVisit{},
		&types.AISGap{},
		&types.Encounter{},
		&types.FlagChange{},
		&types.AnalysisRun{},
		&types.Assessment{},
	)
}

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }

func PtrFloat(f float64) *float64 { return &f }

func SeedVessel(tb testing.TB, ctx context.Context, tx *gorm.DB, gfwID, imo, name, flag string) *types.Vessel {
	tb.Helper()
	v := &types.Vessel{
		ID:             uuid.New(),
		IMO:            imo,
		Name:           name,
		NormalizedName: name,
		Flag:           flag,
	}
	if gfwID != "" {
		v.GFWVesselID = &gfwID
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed vessel: %v", err)
	}
	return v
}

func SeedRegistryRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, source, imo, name string) *types.RegistryRecord {
	tb.Helper()
	r := &types.RegistryRecord{
		ID:             uuid.New(),
		Source:         source,
		IMO:            imo,
		Name:           name,
		NormalizedName: name,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed registry record: %v", err)
	}
	return r
}

func SeedAnalysisRun(tb testing.TB, ctx context.Context, tx *gorm.DB, source, status string) *types.AnalysisRun {
	tb.Helper()
	run := &types.AnalysisRun{
		ID:     uuid.New(),
		Source: source,
		Year:   2023,
		Status: status,
		Stage:  "queued",
	}
	if err := tx.WithContext(ctx).Create(run).Error; err != nil {
		tb.Fatalf("seed analysis run: %v", err)
	}
	return run
}

func SeedFishingEvent(tb testing.TB, ctx context.Context, tx *gorm.DB, vesselID uuid.UUID, eventID string, start time.Time, hours float64) *types.FishingEvent {
	tb.Helper()
	e := &types.FishingEvent{
		ID:       uuid.New(),
		VesselID: vesselID,
		EventID:  eventID,
		Start:    start,
		End:      start.Add(time.Duration(hours * float64(time.Hour))),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed fishing event: %v", err)
	}
	return e
}

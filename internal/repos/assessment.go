package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/types"
)

// FlagEffort is one row of the effort-by-flag aggregation.
type FlagEffort struct {
	Flag          string  `json:"flag"`
	Vessels       int64   `json:"vessels"`
	FishingHours  float64 `json:"fishing_hours"`
	Supertrawlers int64   `json:"supertrawlers"`
}

// OwnerEffort is one row of the effort-by-owner-country aggregation.
type OwnerEffort struct {
	OwnerCountry  string  `json:"owner_country"`
	Vessels       int64   `json:"vessels"`
	FishingHours  float64 `json:"fishing_hours"`
	Supertrawlers int64   `json:"supertrawlers"`
}

type AssessmentRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, assessments []*types.Assessment) error
	DeleteUnmatched(ctx context.Context, tx *gorm.DB, runID uuid.UUID) error
	GetByRunID(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*types.Assessment, error)
	GetLatestByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) (*types.Assessment, error)
	CountByClassification(ctx context.Context, tx *gorm.DB, runID uuid.UUID) (map[string]int64, error)
	AggregateByFlag(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]FlagEffort, error)
	AggregateByOwnerCountry(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]OwnerEffort, error)
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	repoLog := baseLog.With("repo", "AssessmentRepo")
	return &assessmentRepo{db: db, log: repoLog}
}

func (r *assessmentRepo) Upsert(ctx context.Context, tx *gorm.DB, assessments []*types.Assessment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(assessments) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}, {Name: "vessel_id"}},
			UpdateAll: true,
		}).
		Create(&assessments).Error
}

// DeleteUnmatched removes a run's assessments with no resolved vessel. The
// unique index never conflicts on NULL vessel ids, so a re-run must clear the
// previous attempt's unknown rows before inserting its own.
func (r *assessmentRepo) DeleteUnmatched(ctx context.Context, tx *gorm.DB, runID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("run_id = ? AND vessel_id IS NULL", runID).
		Delete(&types.Assessment{}).Error
}

func (r *assessmentRepo) GetByRunID(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Assessment
	if err := transaction.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentRepo) GetLatestByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) (*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if vesselID == uuid.Nil {
		return nil, nil
	}
	var a types.Assessment
	err := transaction.WithContext(ctx).
		Where("vessel_id = ?", vesselID).
		Order("created_at DESC").
		Limit(1).
		Find(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == uuid.Nil {
		return nil, nil
	}
	return &a, nil
}

func (r *assessmentRepo) CountByClassification(ctx context.Context, tx *gorm.DB, runID uuid.UUID) (map[string]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	type row struct {
		Classification string
		N              int64
	}
	var rows []row
	if err := transaction.WithContext(ctx).
		Model(&types.Assessment{}).
		Select("classification, COUNT(*) AS n").
		Where("run_id = ?", runID).
		Group("classification").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Classification] = rw.N
	}
	return counts, nil
}

func (r *assessmentRepo) AggregateByFlag(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]FlagEffort, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []FlagEffort
	q := transaction.WithContext(ctx).
		Model(&types.Assessment{}).
		Select(`flag,
			COUNT(*) AS vessels,
			COALESCE(SUM(fishing_hours), 0) AS fishing_hours,
			COUNT(*) FILTER (WHERE is_supertrawler) AS supertrawlers`).
		Where("flag <> ''").
		Group("flag").
		Order("fishing_hours DESC")
	if runID != uuid.Nil {
		q = q.Where("run_id = ?", runID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assessmentRepo) AggregateByOwnerCountry(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]OwnerEffort, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []OwnerEffort
	q := transaction.WithContext(ctx).
		Model(&types.Assessment{}).
		Select(`owner_country,
			COUNT(*) AS vessels,
			COALESCE(SUM(fishing_hours), 0) AS fishing_hours,
			COUNT(*) FILTER (WHERE is_supertrawler) AS supertrawlers`).
		Where("owner_country <> ''").
		Group("owner_country").
		Order("fishing_hours DESC")
	if runID != uuid.Nil {
		q = q.Where("run_id = ?", runID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

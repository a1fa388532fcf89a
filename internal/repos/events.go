package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/types"
)

// Event repos share a shape: replace-on-conflict upsert keyed by
// (vessel_id, event_id) plus per-vessel reads. Enrichment re-runs are
// idempotent because of it.

type FishingEventRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, events []*types.FishingEvent) error
	GetByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) ([]*types.FishingEvent, error)
	DeleteByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) error
}

type PortVisitRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, visits []*types.PortVisit) error
	GetByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) ([]*types.PortVisit, error)
}

type AISGapRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, gaps []*types.AISGap) error
	GetByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) ([]*types.AISGap, error)
}

type EncounterRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, encounters []*types.Encounter) error
	GetByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) ([]*types.Encounter, error)
}

type FlagChangeRepo interface {
	Replace(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID, changes []*types.FlagChange) error
	GetByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) ([]*types.FlagChange, error)
}

func eventConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "vessel_id"}, {Name: "event_id"}},
		UpdateAll: true,
	}
}

type fishingEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFishingEventRepo(db *gorm.DB, baseLog *logger.Logger) FishingEventRepo {
	return &fishingEventRepo{db: db, log: baseLog.With("repo", "FishingEventRepo")}
}

func (r *fishingEventRepo) Upsert(ctx context.Context, tx *gorm.DB, events []*types.FishingEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(events) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Clauses(eventConflict()).Create(&events).Error
}

func (r *fishingEventRepo) GetByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) ([]*types.FishingEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.FishingEvent
	if err := transaction.WithContext(ctx).
		Where("vessel_id = ?", vesselID).
		Order("start ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *fishingEventRepo) DeleteByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("vessel_id = ?", vesselID).
		Delete(&types.FishingEvent{}).Error
}

type portVisitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPortVisitRepo(db *gorm.DB, baseLog *logger.Logger) PortVisitRepo {
	return &portVisitRepo{db: db, log: baseLog.With("repo", "PortVisitRepo")}
}

func (r *portVisitRepo) Upsert(ctx context.Context, tx *gorm.DB, visits []*types.PortVisit) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(visits) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Clauses(eventConflict()).Create(&visits).Error
}

func (r *portVisitRepo) GetByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) ([]*types.PortVisit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PortVisit
	if err := transaction.WithContext(ctx).
		Where("vessel_id = ?", vesselID).
		Order("start ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type aisGapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAISGapRepo(db *gorm.DB, baseLog *logger.Logger) AISGapRepo {
	return &aisGapRepo{db: db, log: baseLog.With("repo", "AISGapRepo")}
}

func (r *aisGapRepo) Upsert(ctx context.Context, tx *gorm.DB, gaps []*types.AISGap) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(gaps) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Clauses(eventConflict()).Create(&gaps).Error
}

func (r *aisGapRepo) GetByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) ([]*types.AISGap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AISGap
	if err := transaction.WithContext(ctx).
		Where("vessel_id = ?", vesselID).
		Order("start ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type encounterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEncounterRepo(db *gorm.DB, baseLog *logger.Logger) EncounterRepo {
	return &encounterRepo{db: db, log: baseLog.With("repo", "EncounterRepo")}
}

func (r *encounterRepo) Upsert(ctx context.Context, tx *gorm.DB, encounters []*types.Encounter) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(encounters) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Clauses(eventConflict()).Create(&encounters).Error
}

func (r *encounterRepo) GetByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) ([]*types.Encounter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Encounter
	if err := transaction.WithContext(ctx).
		Where("vessel_id = ?", vesselID).
		Order("start ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type flagChangeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlagChangeRepo(db *gorm.DB, baseLog *logger.Logger) FlagChangeRepo {
	return &flagChangeRepo{db: db, log: baseLog.With("repo", "FlagChangeRepo")}
}

// Replace swaps the stored history wholesale; GFW returns it complete.
func (r *flagChangeRepo) Replace(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID, changes []*types.FlagChange) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Where("vessel_id = ?", vesselID).Delete(&types.FlagChange{}).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		return txx.Create(&changes).Error
	})
}

func (r *flagChangeRepo) GetByVesselID(ctx context.Context, tx *gorm.DB, vesselID uuid.UUID) ([]*types.FlagChange, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.FlagChange
	if err := transaction.WithContext(ctx).
		Where("vessel_id = ?", vesselID).
		Order("seq ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

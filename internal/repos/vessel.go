package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/types"
)

type VesselRepo interface {
	Create(ctx context.Context, tx *gorm.DB, vessels []*types.Vessel) ([]*types.Vessel, error)
	Upsert(ctx context.Context, tx *gorm.DB, vessel *types.Vessel) (*types.Vessel, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Vessel, error)
	GetByGFWVesselID(ctx context.Context, tx *gorm.DB, gfwID string) (*types.Vessel, error)
	GetByIMO(ctx context.Context, tx *gorm.DB, imo string) (*types.Vessel, error)
	List(ctx context.Context, tx *gorm.DB, flag string, limit, offset int) ([]*types.Vessel, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type vesselRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVesselRepo(db *gorm.DB, baseLog *logger.Logger) VesselRepo {
	repoLog := baseLog.With("repo", "VesselRepo")
	return &vesselRepo{db: db, log: repoLog}
}

func (r *vesselRepo) Create(ctx context.Context, tx *gorm.DB, vessels []*types.Vessel) ([]*types.Vessel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(vessels) == 0 {
		return []*types.Vessel{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&vessels).Error; err != nil {
		return nil, err
	}
	return vessels, nil
}

// Upsert inserts the vessel or, when a row with the same gfw_vessel_id already
// exists, refreshes its merged identity fields.
func (r *vesselRepo) Upsert(ctx context.Context, tx *gorm.DB, vessel *types.Vessel) (*types.Vessel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if vessel == nil {
		return nil, nil
	}
	if vessel.GFWVesselID == nil || *vessel.GFWVesselID == "" {
		if err := transaction.WithContext(ctx).Create(vessel).Error; err != nil {
			return nil, err
		}
		return vessel, nil
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "gfw_vessel_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"imo", "name", "normalized_name", "call_sign", "flag",
				"ship_type", "gear_types", "length_m", "engine_power_kw",
				"gross_tonnage", "ownership", "owner_country",
				"match_strategy", "updated_at",
			}),
		}).
		Create(vessel).Error; err != nil {
		return nil, err
	}
	// The conflict path keeps the existing primary key; reload it.
	existing, err := r.GetByGFWVesselID(ctx, transaction, *vessel.GFWVesselID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return vessel, nil
}

func (r *vesselRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Vessel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Vessel
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *vesselRepo) GetByGFWVesselID(ctx context.Context, tx *gorm.DB, gfwID string) (*types.Vessel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if gfwID == "" {
		return nil, nil
	}
	var v types.Vessel
	err := transaction.WithContext(ctx).
		Where("gfw_vessel_id = ?", gfwID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vesselRepo) GetByIMO(ctx context.Context, tx *gorm.DB, imo string) (*types.Vessel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if imo == "" {
		return nil, nil
	}
	var v types.Vessel
	err := transaction.WithContext(ctx).
		Where("imo = ?", imo).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vesselRepo) List(ctx context.Context, tx *gorm.DB, flag string, limit, offset int) ([]*types.Vessel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := transaction.WithContext(ctx).Order("name ASC").Limit(limit).Offset(offset)
	if flag != "" {
		q = q.Where("flag = ?", flag)
	}
	var results []*types.Vessel
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *vesselRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Vessel{}).
		Where("id = ?", id).
		Updates(updates).Error
}

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/types"
)

type RegistryRecordRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, records []*types.RegistryRecord) ([]*types.RegistryRecord, error)
	GetBySource(ctx context.Context, tx *gorm.DB, source string, limit, offset int) ([]*types.RegistryRecord, error)
	GetAllBySource(ctx context.Context, tx *gorm.DB, source string) ([]*types.RegistryRecord, error)
	GetUnmatchedBySource(ctx context.Context, tx *gorm.DB, source string) ([]*types.RegistryRecord, error)
	CountBySource(ctx context.Context, tx *gorm.DB, source string) (int64, error)
	LinkVessel(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, vesselID uuid.UUID) error
}

type registryRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRegistryRecordRepo(db *gorm.DB, baseLog *logger.Logger) RegistryRecordRepo {
	repoLog := baseLog.With("repo", "RegistryRecordRepo")
	return &registryRecordRepo{db: db, log: repoLog}
}

// Upsert makes CSV re-imports idempotent on (source, imo, name).
func (r *registryRecordRepo) Upsert(ctx context.Context, tx *gorm.DB, records []*types.RegistryRecord) ([]*types.RegistryRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(records) == 0 {
		return []*types.RegistryRecord{}, nil
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "source"}, {Name: "imo"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"normalized_name", "call_sign", "flag", "external_id", "updated_at",
			}),
		}).
		Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *registryRecordRepo) GetBySource(ctx context.Context, tx *gorm.DB, source string, limit, offset int) ([]*types.RegistryRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	var results []*types.RegistryRecord
	if err := transaction.WithContext(ctx).
		Where("source = ?", source).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetAllBySource pages through every record of a source. Callers that treat
// the result as the complete universe for a source must use this, not a
// single GetBySource page.
func (r *registryRecordRepo) GetAllBySource(ctx context.Context, tx *gorm.DB, source string) ([]*types.RegistryRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	const pageSize = 500
	var all []*types.RegistryRecord
	for offset := 0; ; offset += pageSize {
		var page []*types.RegistryRecord
		if err := transaction.WithContext(ctx).
			Where("source = ?", source).
			Order("name ASC, id ASC").
			Limit(pageSize).
			Offset(offset).
			Find(&page).Error; err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

func (r *registryRecordRepo) GetUnmatchedBySource(ctx context.Context, tx *gorm.DB, source string) ([]*types.RegistryRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.RegistryRecord
	if err := transaction.WithContext(ctx).
		Where("source = ? AND vessel_id IS NULL", source).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *registryRecordRepo) CountBySource(ctx context.Context, tx *gorm.DB, source string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.RegistryRecord{}).
		Where("source = ?", source).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *registryRecordRepo) LinkVessel(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, vesselID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if recordID == uuid.Nil || vesselID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.RegistryRecord{}).
		Where("id = ?", recordID).
		Update("vessel_id", vesselID).Error
}

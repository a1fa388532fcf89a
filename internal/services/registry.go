package services

import (
	"context"
	"io"

	"gorm.io/gorm"

	"github.com/levilina/marine-data-backend/internal/ingestion"
	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/repos"
	"github.com/levilina/marine-data-backend/internal/types"
)

// ImportResult is returned to the caller of a registry import.
type ImportResult struct {
	Source  string                  `json:"source"`
	Rows    int                     `json:"rows"`
	Kept    int                     `json:"kept"`
	Dropped int                     `json:"dropped"`
	Total   int64                   `json:"total_records"`
	Records []*types.RegistryRecord `json:"-"`
}

type RegistryService interface {
	ImportCSV(ctx context.Context, source string, r io.Reader) (*ImportResult, error)
	ListRecords(ctx context.Context, source string, limit, offset int) ([]*types.RegistryRecord, int64, error)
}

type registryService struct {
	db           *gorm.DB
	log          *logger.Logger
	registryRepo repos.RegistryRecordRepo
}

func NewRegistryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	registryRepo repos.RegistryRecordRepo,
) RegistryService {
	return &registryService{
		db:           db,
		log:          baseLog.With("service", "RegistryService"),
		registryRepo: registryRepo,
	}
}

func (s *registryService) ImportCSV(ctx context.Context, source string, r io.Reader) (*ImportResult, error) {
	records, stats, err := ingestion.ParseRegistryCSV(source, r)
	if err != nil {
		return nil, err
	}

	if _, err := s.registryRepo.Upsert(ctx, nil, records); err != nil {
		s.log.Error("Failed to upsert registry records", "source", source, "error", err)
		return nil, err
	}

	total, err := s.registryRepo.CountBySource(ctx, nil, source)
	if err != nil {
		return nil, err
	}

	s.log.Info("Registry import complete",
		"source", source, "rows", stats.Rows, "kept", stats.Kept, "dropped", stats.Dropped, "total", total)

	return &ImportResult{
		Source:  source,
		Rows:    stats.Rows,
		Kept:    stats.Kept,
		Dropped: stats.Dropped,
		Total:   total,
		Records: records,
	}, nil
}

func (s *registryService) ListRecords(ctx context.Context, source string, limit, offset int) ([]*types.RegistryRecord, int64, error) {
	records, err := s.registryRepo.GetBySource(ctx, nil, source, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.registryRepo.CountBySource(ctx, nil, source)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/repos"
	"github.com/levilina/marine-data-backend/internal/types"
)

// RunSummary is the full readout of one completed run.
type RunSummary struct {
	Run         *types.AnalysisRun  `json:"run"`
	Totals      map[string]int64    `json:"totals"`
	ByFlag      []repos.FlagEffort  `json:"by_flag"`
	ByOwner     []repos.OwnerEffort `json:"by_owner"`
	Assessments []*types.Assessment `json:"assessments"`
}

type SummaryService interface {
	EffortByFlag(ctx context.Context, runID uuid.UUID) ([]repos.FlagEffort, error)
	EffortByOwnerCountry(ctx context.Context, runID uuid.UUID) ([]repos.OwnerEffort, error)
	RunSummary(ctx context.Context, runID uuid.UUID) (*RunSummary, error)
}

type summaryService struct {
	db             *gorm.DB
	log            *logger.Logger
	runRepo        repos.AnalysisRunRepo
	assessmentRepo repos.AssessmentRepo
}

func NewSummaryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	runRepo repos.AnalysisRunRepo,
	assessmentRepo repos.AssessmentRepo,
) SummaryService {
	return &summaryService{
		db:             db,
		log:            baseLog.With("service", "SummaryService"),
		runRepo:        runRepo,
		assessmentRepo: assessmentRepo,
	}
}

func (s *summaryService) EffortByFlag(ctx context.Context, runID uuid.UUID) ([]repos.FlagEffort, error) {
	return s.assessmentRepo.AggregateByFlag(ctx, nil, runID)
}

func (s *summaryService) EffortByOwnerCountry(ctx context.Context, runID uuid.UUID) ([]repos.OwnerEffort, error) {
	return s.assessmentRepo.AggregateByOwnerCountry(ctx, nil, runID)
}

func (s *summaryService) RunSummary(ctx context.Context, runID uuid.UUID) (*RunSummary, error) {
	runs, err := s.runRepo.GetByIDs(ctx, nil, []uuid.UUID{runID})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	run := runs[0]

	totals := map[string]int64{}
	if len(run.Totals) > 0 {
		if err := json.Unmarshal(run.Totals, &totals); err != nil {
			// Recompute when the stored blob is unreadable.
			totals, err = s.assessmentRepo.CountByClassification(ctx, nil, runID)
			if err != nil {
				return nil, err
			}
		}
	}

	byFlag, err := s.assessmentRepo.AggregateByFlag(ctx, nil, runID)
	if err != nil {
		return nil, err
	}
	byOwner, err := s.assessmentRepo.AggregateByOwnerCountry(ctx, nil, runID)
	if err != nil {
		return nil, err
	}
	assessments, err := s.assessmentRepo.GetByRunID(ctx, nil, runID)
	if err != nil {
		return nil, err
	}

	return &RunSummary{
		Run:         run,
		Totals:      totals,
		ByFlag:      byFlag,
		ByOwner:     byOwner,
		Assessments: assessments,
	}, nil
}

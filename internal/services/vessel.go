package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/repos"
	"github.com/levilina/marine-data-backend/internal/types"
)

// VesselDetail bundles a vessel with its stored activity and latest
// assessment for the detail endpoint.
type VesselDetail struct {
	Vessel        *types.Vessel         `json:"vessel"`
	Assessment    *types.Assessment     `json:"assessment,omitempty"`
	FishingEvents []*types.FishingEvent `json:"fishing_events"`
	PortVisits    []*types.PortVisit    `json:"port_visits"`
	AISGaps       []*types.AISGap       `json:"ais_gaps"`
	Encounters    []*types.Encounter    `json:"encounters"`
	FlagHistory   []*types.FlagChange   `json:"flag_history"`
}

type VesselService interface {
	List(ctx context.Context, flag string, limit, offset int) ([]*types.Vessel, error)
	Get(ctx context.Context, id uuid.UUID) (*VesselDetail, error)
}

type vesselService struct {
	db  *gorm.DB
	log *logger.Logger

	vesselRepo     repos.VesselRepo
	assessmentRepo repos.AssessmentRepo
	fishingRepo    repos.FishingEventRepo
	portVisitRepo  repos.PortVisitRepo
	gapRepo        repos.AISGapRepo
	encounterRepo  repos.EncounterRepo
	flagChangeRepo repos.FlagChangeRepo
}

func NewVesselService(
	db *gorm.DB,
	baseLog *logger.Logger,
	vesselRepo repos.VesselRepo,
	assessmentRepo repos.AssessmentRepo,
	fishingRepo repos.FishingEventRepo,
	portVisitRepo repos.PortVisitRepo,
	gapRepo repos.AISGapRepo,
	encounterRepo repos.EncounterRepo,
	flagChangeRepo repos.FlagChangeRepo,
) VesselService {
	return &vesselService{
		db:             db,
		log:            baseLog.With("service", "VesselService"),
		vesselRepo:     vesselRepo,
		assessmentRepo: assessmentRepo,
		fishingRepo:    fishingRepo,
		portVisitRepo:  portVisitRepo,
		gapRepo:        gapRepo,
		encounterRepo:  encounterRepo,
		flagChangeRepo: flagChangeRepo,
	}
}

func (s *vesselService) List(ctx context.Context, flag string, limit, offset int) ([]*types.Vessel, error) {
	return s.vesselRepo.List(ctx, nil, flag, limit, offset)
}

func (s *vesselService) Get(ctx context.Context, id uuid.UUID) (*VesselDetail, error) {
	vessels, err := s.vesselRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(vessels) == 0 {
		return nil, nil
	}
	detail := &VesselDetail{Vessel: vessels[0]}

	if detail.Assessment, err = s.assessmentRepo.GetLatestByVesselID(ctx, nil, id); err != nil {
		return nil, err
	}
	if detail.FishingEvents, err = s.fishingRepo.GetByVesselID(ctx, nil, id); err != nil {
		return nil, err
	}
	if detail.PortVisits, err = s.portVisitRepo.GetByVesselID(ctx, nil, id); err != nil {
		return nil, err
	}
	if detail.AISGaps, err = s.gapRepo.GetByVesselID(ctx, nil, id); err != nil {
		return nil, err
	}
	if detail.Encounters, err = s.encounterRepo.GetByVesselID(ctx, nil, id); err != nil {
		return nil, err
	}
	if detail.FlagHistory, err = s.flagChangeRepo.GetByVesselID(ctx, nil, id); err != nil {
		return nil, err
	}
	return detail, nil
}

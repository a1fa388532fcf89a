package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/levilina/marine-data-backend/internal/clients/gfw"
	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/normalization"
	"github.com/levilina/marine-data-backend/internal/repos"
	"github.com/levilina/marine-data-backend/internal/types"
)

// EnrichmentService pulls the activity datasets for a resolved vessel and
// persists them for the classifier.
type EnrichmentService interface {
	EnrichVessel(ctx context.Context, vessel *types.Vessel, start, end time.Time) error
}

type enrichmentService struct {
	db        *gorm.DB
	log       *logger.Logger
	gfwClient gfw.Client

	fishingRepo    repos.FishingEventRepo
	portVisitRepo  repos.PortVisitRepo
	gapRepo        repos.AISGapRepo
	encounterRepo  repos.EncounterRepo
	flagChangeRepo repos.FlagChangeRepo
}

func NewEnrichmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	gfwClient gfw.Client,
	fishingRepo repos.FishingEventRepo,
	portVisitRepo repos.PortVisitRepo,
	gapRepo repos.AISGapRepo,
	encounterRepo repos.EncounterRepo,
	flagChangeRepo repos.FlagChangeRepo,
) EnrichmentService {
	return &enrichmentService{
		db:             db,
		log:            baseLog.With("service", "EnrichmentService"),
		gfwClient:      gfwClient,
		fishingRepo:    fishingRepo,
		portVisitRepo:  portVisitRepo,
		gapRepo:        gapRepo,
		encounterRepo:  encounterRepo,
		flagChangeRepo: flagChangeRepo,
	}
}

func (s *enrichmentService) EnrichVessel(ctx context.Context, vessel *types.Vessel, start, end time.Time) error {
	if vessel == nil || vessel.GFWVesselID == nil || *vessel.GFWVesselID == "" {
		return nil
	}
	gfwID := *vessel.GFWVesselID
	log := s.log.With("vesselID", vessel.ID, "gfwVesselID", gfwID)

	if err := s.enrichFishing(ctx, vessel, gfwID, start, end); err != nil {
		return err
	}
	if err := s.enrichPortVisits(ctx, vessel, gfwID, start, end); err != nil {
		return err
	}
	if err := s.enrichGaps(ctx, vessel, gfwID, start, end); err != nil {
		return err
	}
	if err := s.enrichEncounters(ctx, vessel, gfwID, start, end); err != nil {
		return err
	}
	if err := s.enrichFlagHistory(ctx, vessel, gfwID); err != nil {
		// Flag history is not available for every vessel; a 404 here is
		// absence of history, not failure.
		if gfw.StatusCode(err) == 404 {
			log.Debug("No flag history available")
		} else {
			return err
		}
	}

	log.Debug("Vessel enrichment complete")
	return nil
}

func (s *enrichmentService) enrichFishing(ctx context.Context, vessel *types.Vessel, gfwID string, start, end time.Time) error {
	events, err := s.gfwClient.ListEvents(ctx, gfwID, gfw.DatasetFishingEvents, start, end)
	if err != nil {
		return err
	}
	rows := make([]*types.FishingEvent, 0, len(events))
	for _, e := range events {
		st, en, ok := eventWindow(e)
		if !ok {
			continue
		}
		row := &types.FishingEvent{
			VesselID: vessel.ID,
			EventID:  e.ID,
			Start:    st,
			End:      en,
		}
		if e.Position != nil {
			row.Lat = e.Position.Lat
			row.Lon = e.Position.Lon
		}
		if e.Distances != nil {
			row.DistanceFromShoreKM = e.Distances.StartDistanceFromShoreKM
		}
		rows = append(rows, row)
	}
	return s.fishingRepo.Upsert(ctx, nil, rows)
}

func (s *enrichmentService) enrichPortVisits(ctx context.Context, vessel *types.Vessel, gfwID string, start, end time.Time) error {
	events, err := s.gfwClient.ListEvents(ctx, gfwID, gfw.DatasetPortVisits, start, end)
	if err != nil {
		return err
	}
	rows := make([]*types.PortVisit, 0, len(events))
	for _, e := range events {
		st, en, ok := eventWindow(e)
		if !ok {
			continue
		}
		row := &types.PortVisit{
			VesselID: vessel.ID,
			EventID:  e.ID,
			Start:    st,
			End:      en,
		}
		if a := e.AnchorageInfo(); a != nil {
			row.AnchorageName = a.Name
			row.AnchorageFlag = normalization.NormalizeFlag(a.Flag)
		}
		rows = append(rows, row)
	}
	return s.portVisitRepo.Upsert(ctx, nil, rows)
}

func (s *enrichmentService) enrichGaps(ctx context.Context, vessel *types.Vessel, gfwID string, start, end time.Time) error {
	events, err := s.gfwClient.ListEvents(ctx, gfwID, gfw.DatasetAISGaps, start, end)
	if err != nil {
		return err
	}
	rows := make([]*types.AISGap, 0, len(events))
	for _, e := range events {
		st, en, ok := eventWindow(e)
		if !ok {
			continue
		}
		rows = append(rows, &types.AISGap{
			VesselID: vessel.ID,
			EventID:  e.ID,
			Start:    st,
			End:      en,
		})
	}
	return s.gapRepo.Upsert(ctx, nil, rows)
}

func (s *enrichmentService) enrichEncounters(ctx context.Context, vessel *types.Vessel, gfwID string, start, end time.Time) error {
	events, err := s.gfwClient.ListEvents(ctx, gfwID, gfw.DatasetEncounters, start, end)
	if err != nil {
		return err
	}
	rows := make([]*types.Encounter, 0, len(events))
	for _, e := range events {
		st, en, ok := eventWindow(e)
		if !ok {
			continue
		}
		row := &types.Encounter{
			VesselID: vessel.ID,
			EventID:  e.ID,
			Start:    st,
			End:      en,
		}
		if e.Vessel2 != nil {
			row.OtherVesselName = e.Vessel2.Name
			row.OtherVesselFlag = normalization.NormalizeFlag(e.Vessel2.Flag)
		}
		rows = append(rows, row)
	}
	return s.encounterRepo.Upsert(ctx, nil, rows)
}

func (s *enrichmentService) enrichFlagHistory(ctx context.Context, vessel *types.Vessel, gfwID string) error {
	history, err := s.gfwClient.FlagHistory(ctx, gfwID)
	if err != nil {
		return err
	}
	rows := make([]*types.FlagChange, 0, len(history))
	for i, h := range history {
		if h.Flag == "" {
			continue
		}
		row := &types.FlagChange{
			VesselID: vessel.ID,
			Seq:      i,
			Flag:     normalization.NormalizeFlag(h.Flag),
		}
		if t, err := gfw.ParseEventTime(h.FirstSeen); err == nil {
			row.FirstSeen = &t
		}
		if t, err := gfw.ParseEventTime(h.LastSeen); err == nil {
			row.LastSeen = &t
		}
		rows = append(rows, row)
	}
	return s.flagChangeRepo.Replace(ctx, nil, vessel.ID, rows)
}

// eventWindow parses the event timestamps, skipping entries the API returned
// with a missing or unparseable window.
func eventWindow(e gfw.Event) (time.Time, time.Time, bool) {
	st, err := gfw.ParseEventTime(e.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	en, err := gfw.ParseEventTime(e.End)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if e.ID == "" || en.Before(st) {
		return time.Time{}, time.Time{}, false
	}
	return st, en, true
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/levilina/marine-data-backend/internal/analysis"
	"github.com/levilina/marine-data-backend/internal/clients/redis"
	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/repos"
	"github.com/levilina/marine-data-backend/internal/sse"
	"github.com/levilina/marine-data-backend/internal/types"
)

// SSEChannelAnalysis is the channel all run lifecycle events go out on.
const SSEChannelAnalysis = "analysis"

// AnalysisService owns the run queue: enqueueing runs and the background
// worker that claims and processes them. One run walks every registry record
// of its source through match, enrich and classify, then writes the
// per-classification totals.
type AnalysisService interface {
	Enqueue(ctx context.Context, source string, year int) (*types.AnalysisRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*types.AnalysisRun, error)
	StartWorker(ctx context.Context)
}

type analysisService struct {
	db  *gorm.DB
	log *logger.Logger

	sseHub *sse.SSEHub
	bus    redis.EventBus

	registryRepo   repos.RegistryRecordRepo
	vesselRepo     repos.VesselRepo
	fishingRepo    repos.FishingEventRepo
	portVisitRepo  repos.PortVisitRepo
	gapRepo        repos.AISGapRepo
	encounterRepo  repos.EncounterRepo
	flagChangeRepo repos.FlagChangeRepo
	runRepo        repos.AnalysisRunRepo
	assessmentRepo repos.AssessmentRepo

	matcher    MatcherService
	enrichment EnrichmentService
	thresholds analysis.Thresholds

	vesselWorkers int
}

func NewAnalysisService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sseHub *sse.SSEHub,
	bus redis.EventBus,
	registryRepo repos.RegistryRecordRepo,
	vesselRepo repos.VesselRepo,
	fishingRepo repos.FishingEventRepo,
	portVisitRepo repos.PortVisitRepo,
	gapRepo repos.AISGapRepo,
	encounterRepo repos.EncounterRepo,
	flagChangeRepo repos.FlagChangeRepo,
	runRepo repos.AnalysisRunRepo,
	assessmentRepo repos.AssessmentRepo,
	matcher MatcherService,
	enrichment EnrichmentService,
	thresholds analysis.Thresholds,
) AnalysisService {
	return &analysisService{
		db:             db,
		log:            baseLog.With("service", "AnalysisService"),
		sseHub:         sseHub,
		bus:            bus,
		registryRepo:   registryRepo,
		vesselRepo:     vesselRepo,
		fishingRepo:    fishingRepo,
		portVisitRepo:  portVisitRepo,
		gapRepo:        gapRepo,
		encounterRepo:  encounterRepo,
		flagChangeRepo: flagChangeRepo,
		runRepo:        runRepo,
		assessmentRepo: assessmentRepo,
		matcher:        matcher,
		enrichment:     enrichment,
		thresholds:     thresholds,
		vesselWorkers:  10,
	}
}

func (s *analysisService) Enqueue(ctx context.Context, source string, year int) (*types.AnalysisRun, error) {
	if source == "" {
		return nil, fmt.Errorf("empty source")
	}
	if year == 0 {
		year = time.Now().Year()
	}

	n, err := s.registryRepo.CountBySource(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("no registry records imported for source %q", source)
	}

	now := time.Now()
	run := &types.AnalysisRun{
		ID:        uuid.New(),
		Source:    source,
		Year:      year,
		Status:    "queued",
		Stage:     "queued",
		Progress:  0,
		Attempts:  0,
		Totals:    datatypes.JSON([]byte(`{}`)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.runRepo.Create(ctx, nil, []*types.AnalysisRun{run}); err != nil {
		return nil, err
	}

	s.broadcast(sse.SSEEventAnalysisQueued, map[string]any{
		"run_id": run.ID,
		"source": source,
		"year":   year,
	})
	return run, nil
}

func (s *analysisService) GetRun(ctx context.Context, id uuid.UUID) (*types.AnalysisRun, error) {
	runs, err := s.runRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

func (s *analysisService) StartWorker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		// Worker policy
		const maxAttempts = 5
		retryDelay := 30 * time.Second
		staleRunning := 2 * time.Minute

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run, err := s.runRepo.ClaimNextRunnable(ctx, s.db, maxAttempts, retryDelay, staleRunning)
				if err != nil {
					s.log.Warn("ClaimNextRunnable failed", "error", err)
					continue
				}
				if run == nil {
					continue
				}
				s.processRun(ctx, run)
			}
		}
	}()
}

func (s *analysisService) processRun(ctx context.Context, run *types.AnalysisRun) {
	runID := run.ID
	log := s.log.With("runID", runID, "source", run.Source, "year", run.Year)

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go func() {
		t := time.NewTicker(30 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-hbCtx.Done():
				return
			case <-t.C:
				_ = s.runRepo.Heartbeat(hbCtx, nil, runID)
			}
		}
	}()

	fail := func(stage string, err error) {
		now := time.Now()
		_ = s.runRepo.UpdateFields(ctx, nil, runID, map[string]any{
			"status":        "failed",
			"stage":         stage,
			"error":         err.Error(),
			"last_error_at": now,
			"locked_at":     nil,
			"updated_at":    now,
		})
		log.Error("Analysis run failed", "stage", stage, "error", err)
		s.broadcast(sse.SSEEventAnalysisFailed, map[string]any{
			"run_id": runID,
			"stage":  stage,
			"error":  err.Error(),
		})
	}

	progress := func(stage string, pct int, msg string) {
		now := time.Now()
		_ = s.runRepo.UpdateFields(ctx, nil, runID, map[string]any{
			"stage":        stage,
			"progress":     pct,
			"heartbeat_at": now,
			"updated_at":   now,
		})
		s.broadcast(sse.SSEEventAnalysisProgress, map[string]any{
			"run_id":   runID,
			"stage":    stage,
			"progress": pct,
			"message":  msg,
		})
	}

	if run.StartedAt == nil {
		now := time.Now()
		_ = s.runRepo.UpdateFields(ctx, nil, runID, map[string]any{"started_at": now})
	}

	records, err := s.registryRepo.GetAllBySource(ctx, nil, run.Source)
	if err != nil {
		fail("match", fmt.Errorf("load registry records: %w", err))
		return
	}
	if len(records) == 0 {
		fail("match", fmt.Errorf("no registry records for source %q", run.Source))
		return
	}

	// 1) MATCH: resolve each record against the identity dataset. Matching
	// is idempotent; already linked records just reload their vessel.
	progress("match", 5, fmt.Sprintf("Resolving %d registry records", len(records)))

	vessels := make([]*types.Vessel, len(records))
	tally := &progressTally{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.vesselWorkers)
	for i := range records {
		i := i
		g.Go(func() error {
			v, err := s.resolveRecord(gctx, records[i])
			if err != nil {
				log.Warn("Record resolution failed", "recordID", records[i].ID, "error", err)
			}
			vessels[i] = v
			if n := tally.inc(); n%10 == 0 {
				pct := 5 + int(float64(n)/float64(len(records))*30.0)
				progress("match", pct, fmt.Sprintf("Resolved %d/%d records", n, len(records)))
			}
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		fail("match", ctx.Err())
		return
	}

	// 2) ENRICH: pull the year's activity for every matched vessel.
	progress("enrich", 40, "Fetching vessel activity")
	start := time.Date(run.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(run.Year, time.December, 31, 23, 59, 59, 0, time.UTC)

	enrichErrs := make([]error, len(records))
	tally = &progressTally{}
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.vesselWorkers)
	for i := range records {
		i := i
		if vessels[i] == nil {
			continue
		}
		g.Go(func() error {
			if err := s.enrichment.EnrichVessel(gctx, vessels[i], start, end); err != nil {
				enrichErrs[i] = err
				log.Warn("Vessel enrichment failed", "vesselID", vessels[i].ID, "error", err)
			}
			if n := tally.inc(); n%10 == 0 {
				pct := 40 + int(float64(n)/float64(len(records))*35.0)
				progress("enrich", pct, fmt.Sprintf("Enriched %d vessels", n))
			}
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		fail("enrich", ctx.Err())
		return
	}

	// 3) CLASSIFY: score every record, matched or not.
	progress("classify", 75, "Classifying vessels")
	assessments := make([]*types.Assessment, 0, len(records))
	for i, rec := range records {
		a, err := s.assess(ctx, runID, rec, vessels[i], enrichErrs[i])
		if err != nil {
			fail("classify", fmt.Errorf("assess %s: %w", rec.Name, err))
			return
		}
		assessments = append(assessments, a)
	}
	assessments = dedupeByVessel(assessments)
	if err := s.assessmentRepo.DeleteUnmatched(ctx, nil, runID); err != nil {
		fail("classify", fmt.Errorf("clear unmatched assessments: %w", err))
		return
	}
	if err := s.assessmentRepo.Upsert(ctx, nil, assessments); err != nil {
		fail("classify", fmt.Errorf("save assessments: %w", err))
		return
	}

	// 4) SUMMARIZE: totals by classification onto the run row.
	progress("summarize", 95, "Writing totals")
	counts, err := s.assessmentRepo.CountByClassification(ctx, nil, runID)
	if err != nil {
		fail("summarize", fmt.Errorf("count classifications: %w", err))
		return
	}

	now := time.Now()
	err = s.runRepo.UpdateFields(ctx, nil, runID, map[string]any{
		"status":      "completed",
		"stage":       "summarize",
		"progress":    100,
		"error":       "",
		"totals":      datatypes.JSON(mustJSON(counts)),
		"finished_at": now,
		"locked_at":   nil,
		"updated_at":  now,
	})
	if err != nil {
		fail("summarize", fmt.Errorf("finalize run: %w", err))
		return
	}

	log.Info("Analysis run completed", "records", len(records), "totals", counts)
	s.broadcast(sse.SSEEventAnalysisCompleted, map[string]any{
		"run_id": runID,
		"totals": counts,
	})
}

// resolveRecord reuses an existing link when the record was matched by a
// previous run.
func (s *analysisService) resolveRecord(ctx context.Context, record *types.RegistryRecord) (*types.Vessel, error) {
	if record.VesselID != nil {
		existing, err := s.vesselRepo.GetByIDs(ctx, nil, []uuid.UUID{*record.VesselID})
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return existing[0], nil
		}
	}
	return s.matcher.ResolveRecord(ctx, record)
}

func (s *analysisService) assess(
	ctx context.Context,
	runID uuid.UUID,
	record *types.RegistryRecord,
	vessel *types.Vessel,
	enrichErr error,
) (*types.Assessment, error) {
	a := &types.Assessment{
		RunID: runID,
		IMO:   record.IMO,
		Name:  record.Name,
		Flag:  record.Flag,
	}

	if vessel == nil {
		res := analysis.Classify(analysis.VesselFacts{Matched: false}, s.thresholds)
		a.Classification = res.Classification
		a.Reasons = joinReasons(res.Reasons)
		a.Details = datatypes.JSON([]byte(`{}`))
		return a, nil
	}

	a.VesselID = &vessel.ID
	a.Name = vessel.Name
	a.Flag = vessel.Flag
	a.OwnerCountry = vessel.OwnerCountry
	if vessel.IMO != "" {
		a.IMO = vessel.IMO
	}

	if enrichErr != nil {
		a.Classification = types.ClassificationError
		a.Reasons = "Activity lookup failed: " + enrichErr.Error()
		a.Details = datatypes.JSON([]byte(`{}`))
		return a, nil
	}

	facts, err := s.loadFacts(ctx, vessel)
	if err != nil {
		return nil, err
	}

	res := analysis.Classify(facts, s.thresholds)
	a.Classification = res.Classification
	a.Reasons = joinReasons(res.Reasons)
	a.FishingHours = &res.Fishing.TotalHours
	a.FishingEvents = res.Fishing.EventsCount
	a.PortVisits = res.Ports.TotalVisits
	a.ForeignPortPct = res.Ports.ForeignVisitPct
	a.AISGaps = res.Gaps.TotalGaps
	a.SuspiciousGaps = res.Gaps.SuspiciousGaps
	a.Encounters = res.Encounters.Total
	a.ForeignEncounters = res.Encounters.Foreign
	a.FlagChanges = res.Flags.Changes
	a.PreviousFlags = joinReasons(res.Flags.PreviousFlags)
	a.SupertrawlerScore = res.SupertrawlerScore
	a.IsSupertrawler = res.IsSupertrawler
	a.Details = datatypes.JSON(mustJSON(map[string]any{
		"fishing":    res.Fishing,
		"ports":      res.Ports,
		"gaps":       res.Gaps,
		"encounters": res.Encounters,
		"flags":      res.Flags,
	}))
	return a, nil
}

func (s *analysisService) loadFacts(ctx context.Context, vessel *types.Vessel) (analysis.VesselFacts, error) {
	facts := analysis.VesselFacts{
		Matched:       true,
		Flag:          vessel.Flag,
		LengthM:       vessel.LengthM,
		EnginePowerKW: vessel.EnginePowerKW,
		GrossTonnage:  vessel.GrossTonnage,
		OwnerCountry:  vessel.OwnerCountry,
	}
	if vessel.GearTypes != "" {
		facts.GearTypes = splitCSV(vessel.GearTypes)
	}

	fishing, err := s.fishingRepo.GetByVesselID(ctx, nil, vessel.ID)
	if err != nil {
		return facts, err
	}
	visits, err := s.portVisitRepo.GetByVesselID(ctx, nil, vessel.ID)
	if err != nil {
		return facts, err
	}
	gaps, err := s.gapRepo.GetByVesselID(ctx, nil, vessel.ID)
	if err != nil {
		return facts, err
	}
	encounters, err := s.encounterRepo.GetByVesselID(ctx, nil, vessel.ID)
	if err != nil {
		return facts, err
	}
	history, err := s.flagChangeRepo.GetByVesselID(ctx, nil, vessel.ID)
	if err != nil {
		return facts, err
	}

	for _, e := range fishing {
		facts.FishingEvents = append(facts.FishingEvents, *e)
	}
	for _, v := range visits {
		facts.PortVisits = append(facts.PortVisits, *v)
	}
	for _, g := range gaps {
		facts.AISGaps = append(facts.AISGaps, *g)
	}
	for _, e := range encounters {
		facts.Encounters = append(facts.Encounters, *e)
	}
	for _, h := range history {
		facts.FlagHistory = append(facts.FlagHistory, *h)
	}
	return facts, nil
}

// broadcast routes events through the bus when one is configured so every
// instance's forwarder re-delivers into its local hub; otherwise it goes
// straight to the local hub.
func (s *analysisService) broadcast(event sse.SSEEvent, data map[string]any) {
	msg := sse.SSEMessage{
		Channel: SSEChannelAnalysis,
		Event:   event,
		Data:    data,
	}
	if s.bus != nil {
		if err := s.bus.Publish(context.Background(), msg); err == nil {
			return
		}
		s.log.Warn("Event bus publish failed, broadcasting locally", "event", event)
	}
	if s.sseHub != nil {
		s.sseHub.Broadcast(msg)
	}
}

// progressTally serializes the completion count the vessel workers share.
// The post-increment value is taken while holding the lock so progress
// reports never see a stale count.
type progressTally struct {
	mu   sync.Mutex
	done int
}

func (p *progressTally) inc() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	return p.done
}

// dedupeByVessel keeps the first assessment per resolved vessel. Two registry
// rows can resolve to the same canonical vessel, and a second row with the
// same (run_id, vessel_id) key in one batch makes Postgres reject the whole
// insert. Unmatched rows carry no vessel id and all pass through.
func dedupeByVessel(assessments []*types.Assessment) []*types.Assessment {
	seen := make(map[uuid.UUID]bool, len(assessments))
	out := make([]*types.Assessment, 0, len(assessments))
	for _, a := range assessments {
		if a.VesselID != nil {
			if seen[*a.VesselID] {
				continue
			}
			seen[*a.VesselID] = true
		}
		out = append(out, a)
	}
	return out
}

func joinReasons(reasons []string) string {
	return strings.Join(reasons, "; ")
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func mustJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return []byte(`{}`)
	}
	return raw
}

package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/levilina/marine-data-backend/internal/clients/gfw"
	"github.com/levilina/marine-data-backend/internal/clients/redis"
	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/normalization"
	"github.com/levilina/marine-data-backend/internal/repos"
	"github.com/levilina/marine-data-backend/internal/types"
)

const (
	MatchStrategyIMO  = "imo"
	MatchStrategyName = "name"
	MatchStrategySSID = "ssid"
)

// MatcherService resolves registry records to canonical vessels via the GFW
// vessel identity dataset. Strategies run in confidence order: IMO search,
// name search verified against registry IMO, then direct SSID lookup.
type MatcherService interface {
	ResolveRecord(ctx context.Context, record *types.RegistryRecord) (*types.Vessel, error)
}

type matcherService struct {
	db           *gorm.DB
	log          *logger.Logger
	gfwClient    gfw.Client
	cache        redis.LookupCache
	vesselRepo   repos.VesselRepo
	registryRepo repos.RegistryRecordRepo
}

func NewMatcherService(
	db *gorm.DB,
	baseLog *logger.Logger,
	gfwClient gfw.Client,
	cache redis.LookupCache,
	vesselRepo repos.VesselRepo,
	registryRepo repos.RegistryRecordRepo,
) MatcherService {
	return &matcherService{
		db:           db,
		log:          baseLog.With("service", "MatcherService"),
		gfwClient:    gfwClient,
		cache:        cache,
		vesselRepo:   vesselRepo,
		registryRepo: registryRepo,
	}
}

func (s *matcherService) ResolveRecord(ctx context.Context, record *types.RegistryRecord) (*types.Vessel, error) {
	if record == nil {
		return nil, nil
	}
	log := s.log.With("source", record.Source, "imo", record.IMO, "name", record.Name)

	entry, strategy, err := s.findEntry(ctx, record)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		log.Debug("No GFW match for registry record")
		return nil, nil
	}

	vessel := mergeEntry(entry, record, strategy)
	saved, err := s.vesselRepo.Upsert(ctx, nil, vessel)
	if err != nil {
		return nil, err
	}
	if err := s.registryRepo.LinkVessel(ctx, nil, record.ID, saved.ID); err != nil {
		return nil, err
	}
	log.Debug("Resolved registry record", "strategy", strategy, "gfwVesselID", entry.GFWID())
	return saved, nil
}

func (s *matcherService) findEntry(ctx context.Context, record *types.RegistryRecord) (*gfw.VesselEntry, string, error) {
	// 1. IMO search. An IMO number is globally unique, so the first entry
	// that echoes it back wins.
	if record.IMO != "" {
		entries, err := s.search(ctx, record.IMO)
		if err != nil {
			return nil, "", err
		}
		if e := pickByIMO(entries, record.IMO); e != nil {
			return e, MatchStrategyIMO, nil
		}
	}

	// 2. Name search. Names collide, so a hit only counts when the entry's
	// registry IMO agrees with ours, or we have no IMO and the normalized
	// names match exactly.
	if record.Name != "" {
		entries, err := s.search(ctx, record.Name)
		if err != nil {
			return nil, "", err
		}
		if e := pickByName(entries, record); e != nil {
			return e, MatchStrategyName, nil
		}
	}

	// 3. Direct SSID lookup when the registry export carried one.
	if record.ExternalID != "" {
		entry, err := s.gfwClient.GetVessel(ctx, record.ExternalID)
		if err != nil {
			if gfw.StatusCode(err) == 404 {
				return nil, "", nil
			}
			return nil, "", err
		}
		if entry != nil && entry.GFWID() != "" {
			return entry, MatchStrategySSID, nil
		}
	}

	return nil, "", nil
}

// search consults the lookup cache before the API. Cache failures degrade to
// a direct call.
func (s *matcherService) search(ctx context.Context, query string) ([]gfw.VesselEntry, error) {
	if s.cache != nil {
		if entries, hit, err := s.cache.GetSearch(ctx, query); err == nil && hit {
			return entries, nil
		} else if err != nil {
			s.log.Warn("Lookup cache read failed", "query", query, "error", err)
		}
	}
	entries, err := s.gfwClient.SearchVessels(ctx, query)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, query, entries); err != nil {
			s.log.Warn("Lookup cache write failed", "query", query, "error", err)
		}
	}
	return entries, nil
}

func pickByIMO(entries []gfw.VesselEntry, imo string) *gfw.VesselEntry {
	for i := range entries {
		e := &entries[i]
		for _, reg := range e.RegistryInfo {
			if normalization.NormalizeIMO(reg.IMO) == imo {
				return e
			}
		}
		for _, sr := range e.SelfReportedInfo {
			if normalization.NormalizeIMO(sr.IMO) == imo {
				return e
			}
		}
	}
	return nil
}

func pickByName(entries []gfw.VesselEntry, record *types.RegistryRecord) *gfw.VesselEntry {
	wantName := record.NormalizedName
	if wantName == "" {
		wantName = normalization.NormalizeName(record.Name)
	}
	for i := range entries {
		e := &entries[i]
		if record.IMO != "" {
			for _, reg := range e.RegistryInfo {
				if normalization.NormalizeIMO(reg.IMO) == record.IMO {
					return e
				}
			}
			// Record has an IMO and this entry does not confirm it.
			continue
		}
		for _, reg := range e.RegistryInfo {
			if normalization.NormalizeName(reg.VesselName) == wantName {
				return e
			}
		}
		for _, sr := range e.SelfReportedInfo {
			if normalization.NormalizeName(sr.ShipName) == wantName {
				return e
			}
		}
	}
	return nil
}

// mergeEntry builds the canonical vessel from a GFW entry, preferring
// registry-sourced values over self-reported ones and falling back to the
// imported record for anything the API omits.
func mergeEntry(entry *gfw.VesselEntry, record *types.RegistryRecord, strategy string) *types.Vessel {
	gfwID := entry.GFWID()
	v := &types.Vessel{
		IMO:           record.IMO,
		Name:          record.Name,
		CallSign:      record.CallSign,
		Flag:          record.Flag,
		MatchStrategy: strategy,
	}
	if gfwID != "" {
		v.GFWVesselID = &gfwID
	}

	for _, sr := range entry.SelfReportedInfo {
		if v.Name == "" && sr.ShipName != "" {
			v.Name = sr.ShipName
		}
		if v.Flag == "" && sr.Flag != "" {
			v.Flag = normalization.NormalizeFlag(sr.Flag)
		}
		if v.IMO == "" && sr.IMO != "" {
			v.IMO = normalization.NormalizeIMO(sr.IMO)
		}
		if v.CallSign == "" && sr.CallSign != "" {
			v.CallSign = normalization.NormalizeCallSign(sr.CallSign)
		}
		if v.ShipType == "" && sr.ShipType != "" {
			v.ShipType = sr.ShipType
		}
	}

	for _, reg := range entry.RegistryInfo {
		if reg.VesselName != "" {
			v.Name = reg.VesselName
		}
		if reg.Flag != "" {
			v.Flag = normalization.NormalizeFlag(reg.Flag)
		}
		if reg.IMO != "" {
			v.IMO = normalization.NormalizeIMO(reg.IMO)
		}
		if reg.CallSign != "" {
			v.CallSign = normalization.NormalizeCallSign(reg.CallSign)
		}
		if reg.LengthMeters != nil {
			v.LengthM = reg.LengthMeters
		}
		if reg.EnginePowerKW != nil {
			v.EnginePowerKW = reg.EnginePowerKW
		}
		if reg.GrossTonnage != nil {
			v.GrossTonnage = reg.GrossTonnage
		}
		break
	}

	var gears []string
	seen := map[string]bool{}
	for _, cs := range entry.CombinedSourcesInfo {
		for _, g := range cs.GearTypes {
			name := strings.ToUpper(strings.TrimSpace(g.Name))
			if name != "" && !seen[name] {
				seen[name] = true
				gears = append(gears, name)
			}
		}
		if v.EnginePowerKW == nil && cs.EnginePowerKW != nil {
			v.EnginePowerKW = cs.EnginePowerKW
		}
		if v.GrossTonnage == nil && cs.GrossTonnage != nil {
			v.GrossTonnage = cs.GrossTonnage
		}
		if v.LengthM == nil && cs.LengthMeters != nil {
			v.LengthM = cs.LengthMeters
		}
	}
	v.GearTypes = strings.Join(gears, ",")

	for _, oo := range entry.OwnerOperatorInfo {
		if oo.Owner == nil {
			continue
		}
		if v.Ownership == "" && oo.Owner.Name != "" {
			v.Ownership = oo.Owner.Name
		}
		if v.OwnerCountry == "" && oo.Owner.Country != "" {
			v.OwnerCountry = normalization.NormalizeFlag(oo.Owner.Country)
		}
	}

	v.NormalizedName = normalization.NormalizeName(v.Name)
	return v
}

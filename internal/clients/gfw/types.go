package gfw

// Wire types for the Global Fishing Watch API v3
// (gateway.api.globalfishingwatch.org). Only the fields the pipeline reads
// are mapped; the API returns far more.

const (
	DatasetVesselIdentity = "public-global-vessel-identity:latest"
	DatasetFishingEvents  = "public-global-fishing-events:latest"
	DatasetPortVisits     = "public-global-port-visits-events:latest"
	DatasetAISGaps        = "public-global-gaps-events:latest"
	DatasetEncounters     = "public-global-encounters-events:latest"
)

type SelfReportedInfo struct {
	ID       string `json:"id,omitempty"`
	ShipName string `json:"shipname,omitempty"`
	Flag     string `json:"flag,omitempty"`
	IMO      string `json:"imo,omitempty"`
	CallSign string `json:"callsign,omitempty"`
	ShipType string `json:"shiptype,omitempty"`
}

type RegistryInfo struct {
	IMO           string   `json:"imo,omitempty"`
	VesselName    string   `json:"vesselName,omitempty"`
	Flag          string   `json:"flag,omitempty"`
	CallSign      string   `json:"callsign,omitempty"`
	LengthMeters  *float64 `json:"lengthMeters,omitempty"`
	EnginePowerKW *float64 `json:"enginePowerKw,omitempty"`
	GrossTonnage  *float64 `json:"grossTonnage,omitempty"`
	GearType      string   `json:"gearType,omitempty"`
}

type GearType struct {
	Name string `json:"name,omitempty"`
}

type CombinedSourceInfo struct {
	GearTypes     []GearType `json:"geartypes,omitempty"`
	EnginePowerKW *float64   `json:"enginePowerKw,omitempty"`
	GrossTonnage  *float64   `json:"grossTonnage,omitempty"`
	LengthMeters  *float64   `json:"lengthMeters,omitempty"`
}

type Owner struct {
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
}

type OwnerOperatorInfo struct {
	Owner *Owner `json:"owner,omitempty"`
}

type AuthorizationInfo struct {
	Country        string `json:"country,omitempty"`
	AuthorizedFrom string `json:"authorizedFrom,omitempty"`
	AuthorizedTo   string `json:"authorizedTo,omitempty"`
}

// VesselEntry is one entry of a vessel search, or the body of a direct
// vessel lookup.
type VesselEntry struct {
	ID                  string               `json:"id,omitempty"`
	Dataset             string               `json:"dataset,omitempty"`
	SelfReportedInfo    []SelfReportedInfo   `json:"selfReportedInfo,omitempty"`
	RegistryInfo        []RegistryInfo       `json:"registryInfo,omitempty"`
	CombinedSourcesInfo []CombinedSourceInfo `json:"combinedSourcesInfo,omitempty"`
	OwnerOperatorInfo   []OwnerOperatorInfo  `json:"ownerOperatorInfo,omitempty"`
	AuthorizationInfo   []AuthorizationInfo  `json:"authorizationInfo,omitempty"`
}

// GFWID returns the vessel id usable for events lookups, falling back to the
// self-reported record id when the entry-level id is absent (search responses
// only carry it there).
func (v *VesselEntry) GFWID() string {
	if v == nil {
		return ""
	}
	if v.ID != "" {
		return v.ID
	}
	for _, s := range v.SelfReportedInfo {
		if s.ID != "" {
			return s.ID
		}
	}
	return ""
}

type searchResponse struct {
	Total      int           `json:"total,omitempty"`
	NextOffset *int          `json:"nextOffset,omitempty"`
	Entries    []VesselEntry `json:"entries,omitempty"`
}

type Position struct {
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

type Distances struct {
	StartDistanceFromShoreKM *float64 `json:"startDistanceFromShoreKm,omitempty"`
}

type Anchorage struct {
	Name string `json:"name,omitempty"`
	Flag string `json:"flag,omitempty"`
}

type EventVessel struct {
	Name string `json:"name,omitempty"`
	Flag string `json:"flag,omitempty"`
}

type PortVisitDetail struct {
	Anchorage *Anchorage `json:"anchorage,omitempty"`
}

// Event is one entry of the events endpoint, across all event datasets.
// Dataset-specific blocks are pointers and nil when absent.
type Event struct {
	ID        string           `json:"id,omitempty"`
	Type      string           `json:"type,omitempty"`
	Start     string           `json:"start,omitempty"`
	End       string           `json:"end,omitempty"`
	Position  *Position        `json:"position,omitempty"`
	Distances *Distances       `json:"distances,omitempty"`
	PortVisit *PortVisitDetail `json:"port_visit,omitempty"`
	Anchorage *Anchorage       `json:"anchorage,omitempty"`
	Vessel2   *EventVessel     `json:"vessel2,omitempty"`
}

// AnchorageInfo resolves the anchorage block whether the API nested it under
// port_visit or inlined it.
func (e *Event) AnchorageInfo() *Anchorage {
	if e == nil {
		return nil
	}
	if e.Anchorage != nil {
		return e.Anchorage
	}
	if e.PortVisit != nil {
		return e.PortVisit.Anchorage
	}
	return nil
}

type eventsResponse struct {
	Total      int     `json:"total,omitempty"`
	NextOffset *int    `json:"nextOffset,omitempty"`
	Entries    []Event `json:"entries,omitempty"`
}

type FlagHistoryEntry struct {
	Flag      string `json:"flag,omitempty"`
	FirstSeen string `json:"firstSeen,omitempty"`
	LastSeen  string `json:"lastSeen,omitempty"`
}

type flagHistoryResponse struct {
	FlagHistory []FlagHistoryEntry `json:"flagHistory,omitempty"`
}

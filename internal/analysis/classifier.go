package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/levilina/marine-data-backend/internal/types"
)

// VesselFacts is everything the classifier looks at for one vessel,
// assembled from the stored enrichment data.
type VesselFacts struct {
	Matched bool

	Flag          string
	LengthM       *float64
	EnginePowerKW *float64
	GrossTonnage  *float64
	GearTypes     []string
	OwnerCountry  string

	FishingEvents []types.FishingEvent
	PortVisits    []types.PortVisit
	AISGaps       []types.AISGap
	Encounters    []types.Encounter
	FlagHistory   []types.FlagChange
}

// FishingStats summarizes fishing activity.
type FishingStats struct {
	TotalHours  float64 `json:"total_hours"`
	EventsCount int     `json:"events_count"`
	AvgHours    float64 `json:"avg_duration_hours"`
}

// PortStats summarizes port visit patterns relative to the home flag.
type PortStats struct {
	TotalVisits      int      `json:"total_visits"`
	ForeignVisits    int      `json:"foreign_visits"`
	ForeignVisitPct  float64  `json:"foreign_visit_pct"`
	CountriesVisited []string `json:"countries_visited"`
}

// GapStats summarizes AIS dark periods.
type GapStats struct {
	TotalGaps      int     `json:"total_gaps"`
	TotalGapHours  float64 `json:"total_gap_hours"`
	MaxGapHours    float64 `json:"max_gap_hours"`
	SuspiciousGaps int     `json:"suspicious_gaps"`
}

// EncounterStats summarizes at-sea meetings with foreign vessels.
type EncounterStats struct {
	Total        int      `json:"total_encounters"`
	Foreign      int      `json:"foreign_encounters"`
	ForeignFlags []string `json:"encounter_vessel_flags"`
}

// FlagStats summarizes flag-hopping evidence.
type FlagStats struct {
	Changes       int      `json:"flag_changes"`
	PreviousFlags []string `json:"previous_flags"`
	Pattern       string   `json:"flag_change_pattern,omitempty"`
}

// Result is the classifier output for one vessel.
type Result struct {
	Classification string
	Reasons        []string

	Fishing    FishingStats
	Ports      PortStats
	Gaps       GapStats
	Encounters EncounterStats
	Flags      FlagStats

	SupertrawlerScore int
	IsSupertrawler    bool
}

var flaggedGear = map[string]bool{
	"TRAWLERS":     true,
	"PURSE SEINES": true,
	"SEINERS":      true,
}

func computeFishingStats(events []types.FishingEvent) FishingStats {
	stats := FishingStats{EventsCount: len(events)}
	if len(events) == 0 {
		return stats
	}
	intervals := make([]Interval, 0, len(events))
	for _, e := range events {
		if e.End.After(e.Start) {
			intervals = append(intervals, Interval{Start: e.Start, End: e.End})
		}
	}
	stats.TotalHours = TotalHours(intervals)
	stats.AvgHours = stats.TotalHours / float64(len(events))
	return stats
}

func computePortStats(visits []types.PortVisit, homeFlag string) PortStats {
	stats := PortStats{TotalVisits: len(visits)}
	if len(visits) == 0 {
		return stats
	}
	counts := map[string]int{}
	for _, v := range visits {
		if v.AnchorageFlag == "" {
			continue
		}
		counts[v.AnchorageFlag]++
		if v.AnchorageFlag != homeFlag {
			stats.ForeignVisits++
		}
	}
	stats.ForeignVisitPct = float64(stats.ForeignVisits) / float64(stats.TotalVisits)

	type fc struct {
		flag string
		n    int
	}
	ordered := make([]fc, 0, len(counts))
	for f, n := range counts {
		ordered = append(ordered, fc{f, n})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].n != ordered[j].n {
			return ordered[i].n > ordered[j].n
		}
		return ordered[i].flag < ordered[j].flag
	})
	if len(ordered) > 5 {
		ordered = ordered[:5]
	}
	for _, e := range ordered {
		stats.CountriesVisited = append(stats.CountriesVisited, fmt.Sprintf("%s:%d", e.flag, e.n))
	}
	return stats
}

func computeGapStats(gaps []types.AISGap, suspiciousHours float64) GapStats {
	stats := GapStats{TotalGaps: len(gaps)}
	for _, g := range gaps {
		h := g.DurationHours()
		stats.TotalGapHours += h
		if h > stats.MaxGapHours {
			stats.MaxGapHours = h
		}
		if h > suspiciousHours {
			stats.SuspiciousGaps++
		}
	}
	return stats
}

func computeEncounterStats(encounters []types.Encounter, homeFlag string) EncounterStats {
	stats := EncounterStats{Total: len(encounters)}
	counts := map[string]int{}
	for _, e := range encounters {
		if e.OtherVesselFlag != "" && e.OtherVesselFlag != homeFlag {
			stats.Foreign++
			counts[e.OtherVesselFlag]++
		}
	}
	type fc struct {
		flag string
		n    int
	}
	ordered := make([]fc, 0, len(counts))
	for f, n := range counts {
		ordered = append(ordered, fc{f, n})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].n != ordered[j].n {
			return ordered[i].n > ordered[j].n
		}
		return ordered[i].flag < ordered[j].flag
	})
	if len(ordered) > 5 {
		ordered = ordered[:5]
	}
	for _, e := range ordered {
		stats.ForeignFlags = append(stats.ForeignFlags, fmt.Sprintf("%s:%d", e.flag, e.n))
	}
	return stats
}

func computeFlagStats(history []types.FlagChange, homeFlag string) FlagStats {
	stats := FlagStats{}
	if len(history) == 0 {
		return stats
	}
	flags := make([]string, 0, len(history))
	seen := map[string]bool{}
	for _, h := range history {
		if h.Flag == "" {
			continue
		}
		flags = append(flags, h.Flag)
		if h.Flag != homeFlag && !seen[h.Flag] {
			seen[h.Flag] = true
			stats.PreviousFlags = append(stats.PreviousFlags, h.Flag)
		}
	}
	if len(flags) > 0 {
		stats.Changes = len(flags) - 1
		stats.Pattern = strings.Join(flags, " -> ")
	}
	return stats
}

// SupertrawlerScore awards one point each for industrial gear, engine power,
// tonnage and length over the configured bars.
func SupertrawlerScore(facts VesselFacts, t Thresholds) (int, []string) {
	score := 0
	var flags []string

	var found []string
	for _, g := range facts.GearTypes {
		if flaggedGear[strings.ToUpper(strings.TrimSpace(g))] {
			found = append(found, strings.ToUpper(strings.TrimSpace(g)))
		}
	}
	if len(found) > 0 {
		score++
		flags = append(flags, "Industrial gear: "+strings.Join(found, ", "))
	}
	if facts.EnginePowerKW != nil && *facts.EnginePowerKW > t.EnginePowerMaxKW {
		score++
		flags = append(flags, fmt.Sprintf("High engine power (>%.0f kW)", t.EnginePowerMaxKW))
	}
	if facts.GrossTonnage != nil && *facts.GrossTonnage > t.GrossTonnageMax {
		score++
		flags = append(flags, fmt.Sprintf("High gross tonnage (>%.0f GT)", t.GrossTonnageMax))
	}
	if facts.LengthM != nil && *facts.LengthM > t.VesselLengthMaxM {
		score++
		flags = append(flags, fmt.Sprintf("Large vessel (>%.0fm)", t.VesselLengthMaxM))
	}
	return score, flags
}

// Classify runs the full assessment ladder. A non-home flag is conclusive
// (Foreign); every other indicator downgrades a Genuine vessel to Suspect
// and contributes a reason.
func Classify(facts VesselFacts, t Thresholds) Result {
	res := Result{
		Fishing:    computeFishingStats(facts.FishingEvents),
		Ports:      computePortStats(facts.PortVisits, t.HomeFlag),
		Gaps:       computeGapStats(facts.AISGaps, t.AISGapHoursMax),
		Encounters: computeEncounterStats(facts.Encounters, t.HomeFlag),
		Flags:      computeFlagStats(facts.FlagHistory, t.HomeFlag),
	}
	res.SupertrawlerScore, _ = SupertrawlerScore(facts, t)
	res.IsSupertrawler = res.SupertrawlerScore >= t.SupertrawlerScoreMin

	if !facts.Matched {
		res.Classification = types.ClassificationUnknown
		res.Reasons = append(res.Reasons, "No vessel data found")
		return res
	}

	res.Classification = types.ClassificationGenuine
	suspect := func(reason string) {
		if res.Classification == types.ClassificationGenuine {
			res.Classification = types.ClassificationSuspect
		}
		res.Reasons = append(res.Reasons, reason)
	}

	if facts.Flag != "" && facts.Flag != t.HomeFlag {
		res.Classification = types.ClassificationForeign
		res.Reasons = append(res.Reasons, fmt.Sprintf("Foreign flag (%s)", facts.Flag))
	}

	if len(res.Flags.PreviousFlags) > 0 {
		suspect("Previous flags: " + strings.Join(res.Flags.PreviousFlags, ", "))
	}
	if res.Fishing.TotalHours < t.FishingHoursMin {
		suspect(fmt.Sprintf("Low fishing activity (%.1f hours)", res.Fishing.TotalHours))
	}
	if facts.EnginePowerKW != nil && *facts.EnginePowerKW > t.EnginePowerMaxKW {
		suspect(fmt.Sprintf("High engine power (%.0f kW)", *facts.EnginePowerKW))
	}
	if facts.LengthM != nil && *facts.LengthM > t.VesselLengthMaxM {
		suspect(fmt.Sprintf("Large vessel length (%.0f m)", *facts.LengthM))
	}
	if res.Ports.TotalVisits > 0 && res.Ports.ForeignVisitPct > t.ForeignPortPctMax {
		suspect(fmt.Sprintf("Predominantly visits foreign ports (%.1f%%)", res.Ports.ForeignVisitPct*100))
	}
	if res.Gaps.SuspiciousGaps > 0 {
		suspect(fmt.Sprintf("Has %d suspicious AIS gaps", res.Gaps.SuspiciousGaps))
	}
	if facts.OwnerCountry != "" && facts.OwnerCountry != t.HomeFlag {
		suspect(fmt.Sprintf("Foreign ownership (%s)", facts.OwnerCountry))
	}

	if len(res.Reasons) == 0 {
		res.Reasons = append(res.Reasons, "No suspicious indicators")
	}
	return res
}

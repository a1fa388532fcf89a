package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ClassificationGenuine = "genuine"
	ClassificationForeign = "foreign"
	ClassificationSuspect = "suspect"
	ClassificationUnknown = "unknown"
	ClassificationError   = "error"
)

// Assessment is the per-vessel output of one analysis run.
type Assessment struct {
	ID       uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RunID    uuid.UUID    `gorm:"type:uuid;not null;index:idx_assessment,unique,priority:1" json:"run_id"`
	Run      *AnalysisRun `gorm:"constraint:OnDelete:CASCADE;foreignKey:RunID;references:ID" json:"run,omitempty"`
	VesselID *uuid.UUID   `gorm:"type:uuid;index:idx_assessment,unique,priority:2" json:"vessel_id,omitempty"`
	Vessel   *Vessel      `gorm:"constraint:OnDelete:CASCADE;foreignKey:VesselID;references:ID" json:"vessel,omitempty"`

	IMO  string `gorm:"column:imo;index" json:"imo,omitempty"`
	Name string `gorm:"column:name" json:"name"`
	Flag string `gorm:"column:flag;index" json:"flag,omitempty"`

	Classification string `gorm:"column:classification;not null;index" json:"classification"`
	Reasons        string `gorm:"column:reasons" json:"reasons,omitempty"`

	FishingHours      *float64 `gorm:"column:fishing_hours" json:"fishing_hours,omitempty"`
	FishingEvents     int      `gorm:"column:fishing_events;not null;default:0" json:"fishing_events"`
	PortVisits        int      `gorm:"column:port_visits;not null;default:0" json:"port_visits"`
	ForeignPortPct    float64  `gorm:"column:foreign_port_pct;not null;default:0" json:"foreign_port_pct"`
	AISGaps           int      `gorm:"column:ais_gaps;not null;default:0" json:"ais_gaps"`
	SuspiciousGaps    int      `gorm:"column:suspicious_gaps;not null;default:0" json:"suspicious_gaps"`
	Encounters        int      `gorm:"column:encounters;not null;default:0" json:"encounters"`
	ForeignEncounters int      `gorm:"column:foreign_encounters;not null;default:0" json:"foreign_encounters"`
	FlagChanges       int      `gorm:"column:flag_changes;not null;default:0" json:"flag_changes"`
	PreviousFlags     string   `gorm:"column:previous_flags" json:"previous_flags,omitempty"`
	OwnerCountry      string   `gorm:"column:owner_country;index" json:"owner_country,omitempty"`

	SupertrawlerScore int  `gorm:"column:supertrawler_score;not null;default:0" json:"supertrawler_score"`
	IsSupertrawler    bool `gorm:"column:is_supertrawler;not null;default:false;index" json:"is_supertrawler"`

	// Details carries secondary breakdowns (countries visited, encounter
	// flags, gap hours) without widening the row further.
	Details datatypes.JSON `gorm:"type:jsonb;column:details" json:"details,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Assessment) TableName() string { return "assessment" }

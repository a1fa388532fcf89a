package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vessel is the canonical identity a registry record resolves to. Fields are
// merged from GFW self-reported, registry and combined-sources info; registry
// values win when both are present.
type Vessel struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GFWVesselID    *string   `gorm:"column:gfw_vessel_id;uniqueIndex" json:"gfw_vessel_id,omitempty"`
	IMO            string    `gorm:"column:imo;index" json:"imo"`
	Name           string    `gorm:"column:name" json:"name"`
	NormalizedName string    `gorm:"column:normalized_name;index" json:"normalized_name"`
	CallSign       string    `gorm:"column:call_sign" json:"call_sign,omitempty"`
	Flag           string    `gorm:"column:flag;index" json:"flag,omitempty"`
	ShipType       string    `gorm:"column:ship_type" json:"ship_type,omitempty"`
	GearTypes      string    `gorm:"column:gear_types" json:"gear_types,omitempty"`
	LengthM        *float64  `gorm:"column:length_m" json:"length_m,omitempty"`
	EnginePowerKW  *float64  `gorm:"column:engine_power_kw" json:"engine_power_kw,omitempty"`
	GrossTonnage   *float64  `gorm:"column:gross_tonnage" json:"gross_tonnage,omitempty"`
	Ownership      string    `gorm:"column:ownership" json:"ownership,omitempty"`
	OwnerCountry   string    `gorm:"column:owner_country;index" json:"owner_country,omitempty"`
	// MatchStrategy records which identifier resolved this vessel: imo|name|ssid.
	MatchStrategy string         `gorm:"column:match_strategy" json:"match_strategy,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Vessel) TableName() string { return "vessel" }

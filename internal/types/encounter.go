package types

import (
	"time"

	"github.com/google/uuid"
)

// Encounter is an at-sea meeting between the tracked vessel and another
// vessel (typically transshipment activity).
type Encounter struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VesselID uuid.UUID `gorm:"type:uuid;not null;index:idx_encounter,unique,priority:1" json:"vessel_id"`
	Vessel   *Vessel   `gorm:"constraint:OnDelete:CASCADE;foreignKey:VesselID;references:ID" json:"vessel,omitempty"`
	EventID  string    `gorm:"column:event_id;not null;index:idx_encounter,unique,priority:2" json:"event_id"`

	Start           time.Time `gorm:"column:start;not null;index" json:"start"`
	End             time.Time `gorm:"column:end;not null" json:"end"`
	OtherVesselName string    `gorm:"column:other_vessel_name" json:"other_vessel_name,omitempty"`
	OtherVesselFlag string    `gorm:"column:other_vessel_flag;index" json:"other_vessel_flag,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Encounter) TableName() string { return "encounter" }

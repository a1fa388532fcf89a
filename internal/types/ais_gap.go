package types

import (
	"time"

	"github.com/google/uuid"
)

// AISGap is a period during which a vessel's AIS transponder went dark.
type AISGap struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VesselID uuid.UUID `gorm:"type:uuid;not null;index:idx_ais_gap,unique,priority:1" json:"vessel_id"`
	Vessel   *Vessel   `gorm:"constraint:OnDelete:CASCADE;foreignKey:VesselID;references:ID" json:"vessel,omitempty"`
	EventID  string    `gorm:"column:event_id;not null;index:idx_ais_gap,unique,priority:2" json:"event_id"`

	Start time.Time `gorm:"column:start;not null;index" json:"start"`
	End   time.Time `gorm:"column:end;not null" json:"end"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AISGap) TableName() string { return "ais_gap" }

func (g AISGap) DurationHours() float64 {
	if g.End.Before(g.Start) {
		return 0
	}
	return g.End.Sub(g.Start).Hours()
}

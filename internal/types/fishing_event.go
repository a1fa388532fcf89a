package types

import (
	"time"

	"github.com/google/uuid"
)

// FishingEvent is one AIS-derived fishing event for a vessel, as reported by
// the GFW events endpoint.
type FishingEvent struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VesselID uuid.UUID `gorm:"type:uuid;not null;index:idx_fishing_event,unique,priority:1" json:"vessel_id"`
	Vessel   *Vessel   `gorm:"constraint:OnDelete:CASCADE;foreignKey:VesselID;references:ID" json:"vessel,omitempty"`
	// EventID is the GFW event identifier; unique per vessel.
	EventID string `gorm:"column:event_id;not null;index:idx_fishing_event,unique,priority:2" json:"event_id"`

	Start                time.Time `gorm:"column:start;not null;index" json:"start"`
	End                  time.Time `gorm:"column:end;not null" json:"end"`
	Lat                  *float64  `gorm:"column:lat" json:"lat,omitempty"`
	Lon                  *float64  `gorm:"column:lon" json:"lon,omitempty"`
	DistanceFromShoreKM  *float64  `gorm:"column:distance_from_shore_km" json:"distance_from_shore_km,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (FishingEvent) TableName() string { return "fishing_event" }

func (e FishingEvent) DurationHours() float64 {
	if e.End.Before(e.Start) {
		return 0
	}
	return e.End.Sub(e.Start).Hours()
}

package types

import (
	"time"

	"github.com/google/uuid"
)

type PortVisit struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VesselID uuid.UUID `gorm:"type:uuid;not null;index:idx_port_visit,unique,priority:1" json:"vessel_id"`
	Vessel   *Vessel   `gorm:"constraint:OnDelete:CASCADE;foreignKey:VesselID;references:ID" json:"vessel,omitempty"`
	EventID  string    `gorm:"column:event_id;not null;index:idx_port_visit,unique,priority:2" json:"event_id"`

	Start         time.Time `gorm:"column:start;not null;index" json:"start"`
	End           time.Time `gorm:"column:end;not null" json:"end"`
	AnchorageName string    `gorm:"column:anchorage_name" json:"anchorage_name,omitempty"`
	AnchorageFlag string    `gorm:"column:anchorage_flag;index" json:"anchorage_flag,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (PortVisit) TableName() string { return "port_visit" }

package types

import (
	"time"

	"github.com/google/uuid"
)

// FlagChange is one entry of a vessel's flag history, ordered by Seq.
type FlagChange struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VesselID uuid.UUID `gorm:"type:uuid;not null;index:idx_flag_change,unique,priority:1" json:"vessel_id"`
	Vessel   *Vessel   `gorm:"constraint:OnDelete:CASCADE;foreignKey:VesselID;references:ID" json:"vessel,omitempty"`
	Seq      int       `gorm:"column:seq;not null;index:idx_flag_change,unique,priority:2" json:"seq"`

	Flag      string     `gorm:"column:flag;not null" json:"flag"`
	FirstSeen *time.Time `gorm:"column:first_seen" json:"first_seen,omitempty"`
	LastSeen  *time.Time `gorm:"column:last_seen" json:"last_seen,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (FlagChange) TableName() string { return "flag_change" }

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistryRecord is one raw row from an imported fleet registry, kept as
// ingested so matching can be re-run when resolution logic changes.
type RegistryRecord struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Source         string     `gorm:"column:source;not null;index:idx_registry_record,unique,priority:1" json:"source"`
	IMO            string     `gorm:"column:imo;index:idx_registry_record,unique,priority:2" json:"imo,omitempty"`
	Name           string     `gorm:"column:name;index:idx_registry_record,unique,priority:3" json:"name"`
	NormalizedName string     `gorm:"column:normalized_name;index" json:"normalized_name"`
	CallSign       string     `gorm:"column:call_sign" json:"call_sign,omitempty"`
	Flag           string     `gorm:"column:flag" json:"flag,omitempty"`
	ExternalID     string     `gorm:"column:external_id" json:"external_id,omitempty"`
	VesselID       *uuid.UUID `gorm:"type:uuid;index" json:"vessel_id,omitempty"`
	Vessel         *Vessel    `gorm:"constraint:OnDelete:SET NULL;foreignKey:VesselID;references:ID" json:"vessel,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RegistryRecord) TableName() string { return "registry_record" }

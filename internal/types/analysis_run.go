package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AnalysisRun struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Source string    `gorm:"column:source;not null;index" json:"source"`
	Year   int       `gorm:"column:year;not null" json:"year"`

	Status   string `gorm:"column:status;not null;index" json:"status"` // queued|running|completed|failed
	Stage    string `gorm:"column:stage;not null" json:"stage"`         // queued|match|enrich|classify|summarize
	Progress int    `gorm:"column:progress;not null;default:0" json:"progress"`
	Attempts int    `gorm:"column:attempts;not null;default:0" json:"attempts"`
	Error    string `gorm:"column:error" json:"error,omitempty"`

	LockedAt    *time.Time `gorm:"column:locked_at" json:"locked_at,omitempty"`
	HeartbeatAt *time.Time `gorm:"column:heartbeat_at" json:"heartbeat_at,omitempty"`
	LastErrorAt *time.Time `gorm:"column:last_error_at" json:"last_error_at,omitempty"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt  *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`

	// Totals holds the classification counts written when the run completes.
	Totals datatypes.JSON `gorm:"type:jsonb;column:totals" json:"totals,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AnalysisRun) TableName() string { return "analysis_run" }

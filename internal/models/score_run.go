package models

import (
	"time"

	"gorm.io/datatypes"
)

// ScoreRun owns one batch of per-ticker Scores via RunID.
// Lifecycle: pending -> running -> complete (completed == total) | failed.
type ScoreRun struct {
	ID          string     `gorm:"type:uuid;primaryKey"`
	StartedAt   time.Time  `gorm:"type:timestamptz;not null"`
	CompletedAt *time.Time `gorm:"type:timestamptz"`

	Total     int       `gorm:"not null"`
	Completed int       `gorm:"not null;default:0"`
	Status    RunStatus `gorm:"type:varchar(20);not null;index;default:'pending'"`

	Params datatypes.JSON `gorm:"type:jsonb;not null"`
}

func (ScoreRun) TableName() string {
	return "score_runs"
}

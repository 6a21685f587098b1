package models

import "time"

// IndexScoreRun is a ScoreRun scoped to an index and one effective date.
// The effective date is the join key for approval and index building.
type IndexScoreRun struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	IndexID       string    `gorm:"type:varchar(50);not null;index"`
	EffectiveDate time.Time `gorm:"type:date;not null;index"`
	Status        RunStatus `gorm:"type:varchar(20);not null;index;default:'pending'"`

	CreatedAt   time.Time  `gorm:"type:timestamptz;autoCreateTime"`
	CompletedAt *time.Time `gorm:"type:timestamptz"`
}

func (IndexScoreRun) TableName() string {
	return "index_score_runs"
}

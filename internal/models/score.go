package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Score is one scoring attempt for one ticker in one run.
// Rows are immutable once created; a cache reuse still inserts a new row.
type Score struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	RunID  string `gorm:"type:uuid;not null;index;uniqueIndex:uq_score_ticker_run"`
	Ticker string `gorm:"type:varchar(20);not null;index;uniqueIndex:uq_score_ticker_run"`

	TS          time.Time       `gorm:"type:timestamptz;not null;index"`
	Score       decimal.Decimal `gorm:"type:numeric(5,4);not null"`
	Confidence  decimal.Decimal `gorm:"type:numeric(5,4);not null"`
	Direction   Direction       `gorm:"type:varchar(10);not null"`
	HorizonDays int             `gorm:"not null"`

	Rationale datatypes.JSON `gorm:"type:jsonb;not null"`
	Risks     datatypes.JSON `gorm:"type:jsonb;not null"`

	Model     string `gorm:"type:varchar(100);not null"`
	InputHash string `gorm:"type:varchar(64);not null;index"`
}

func (Score) TableName() string {
	return "scores"
}

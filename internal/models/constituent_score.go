package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// NewsSentiment is the derived news summary stored on a constituent score.
type NewsSentiment struct {
	Summary   string    `json:"summary"`
	Sentiment Sentiment `json:"sentiment"`
	PostURL   *string   `json:"postUrl"`
	BlogURL   *string   `json:"blogUrl"`
}

// ConstituentScore is one index member's score for one run/effective date.
// Created pending by the orchestrator; mutated only by the approval flow;
// never deleted, only superseded by a later run's rows.
type ConstituentScore struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	IndexRunID string `gorm:"type:uuid;not null;index"`
	IndexID    string `gorm:"type:varchar(50);not null;index"`
	Ticker     string `gorm:"type:varchar(20);not null;index"`

	Sector        *string   `gorm:"type:varchar(100)"`
	EffectiveDate time.Time `gorm:"type:date;not null;index:idx_cscore_date;index:idx_cscore_date_state"`

	Score      decimal.Decimal `gorm:"type:numeric(5,4);not null"`
	Confidence decimal.Decimal `gorm:"type:numeric(5,4);not null"`
	Direction  Direction       `gorm:"type:varchar(10);not null"`

	NewsSentiment datatypes.JSON `gorm:"type:jsonb"`

	State      ReviewState `gorm:"type:varchar(20);not null;default:'pending';index:idx_cscore_date_state"`
	ApprovedBy *string     `gorm:"type:varchar(100)"`
	ApprovedAt *time.Time  `gorm:"type:timestamptz"`
	Comments   *string     `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (ConstituentScore) TableName() string {
	return "constituent_scores"
}

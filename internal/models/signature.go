package models

import (
	"time"

	"gorm.io/datatypes"
)

// CompositionEntry is one sector allocation inside a signature.
// Order matters: the index builder walks entries as declared.
type CompositionEntry struct {
	Sector     string  `json:"sector"`
	Percentage float64 `json:"percentage"`
}

// Signature is a declarative sector->percentage allocation for a custom
// index. Percentages must sum to 100 (checked at creation, not here).
type Signature struct {
	ID          string  `gorm:"type:uuid;primaryKey"`
	Name        string  `gorm:"type:varchar(200);not null"`
	Description *string `gorm:"type:text"`

	Composition datatypes.JSON `gorm:"type:jsonb;not null"`

	CreatedBy string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Signature) TableName() string {
	return "signatures"
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// CustomIndex is the immutable result of applying a signature to the
// latest effective date's approved constituent scores.
type CustomIndex struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	SignatureID string `gorm:"type:uuid;not null;index"`
	Name        string `gorm:"type:varchar(200);not null"`

	SectorsUsed          datatypes.JSON `gorm:"type:jsonb;not null"`
	ConstituentsSelected datatypes.JSON `gorm:"type:jsonb;not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (CustomIndex) TableName() string {
	return "custom_indexes"
}

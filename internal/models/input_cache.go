package models

import (
	"time"

	"gorm.io/datatypes"
)

// InputCacheEntry is an audit record of an enriched input snapshot keyed by
// its fingerprint. The dedup gate reads scores, not this table; the entry
// exists so a reused score can be traced back to the exact input it saw.
type InputCacheEntry struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement"`
	Ticker    string     `gorm:"type:varchar(20);not null;index"`
	InputHash string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	CachedAt  time.Time  `gorm:"type:timestamptz;not null"`
	ExpiresAt *time.Time `gorm:"type:timestamptz"`

	Data datatypes.JSON `gorm:"type:jsonb;not null"`
}

func (InputCacheEntry) TableName() string {
	return "input_cache"
}

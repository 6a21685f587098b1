package models

import "time"

type Security struct {
	ID       uint64  `gorm:"primaryKey;autoIncrement"`
	Ticker   string  `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name     string  `gorm:"type:text;not null"`
	Currency string  `gorm:"type:varchar(10);not null;default:'USD'"`
	Sector   *string `gorm:"type:varchar(100)"`
	Industry *string `gorm:"type:varchar(100)"`
	LotSize  int     `gorm:"not null;default:1"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Security) TableName() string {
	return "securities"
}

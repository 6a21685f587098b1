package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is one daily OHLCV bar fetched during enrichment.
type PriceBar struct {
	ID     uint64    `gorm:"primaryKey;autoIncrement"`
	Ticker string    `gorm:"type:varchar(20);not null;index;uniqueIndex:uq_price_ticker_ts"`
	TS     time.Time `gorm:"type:timestamptz;not null;index;uniqueIndex:uq_price_ticker_ts"`

	Open   *decimal.Decimal `gorm:"type:numeric(18,6)"`
	High   *decimal.Decimal `gorm:"type:numeric(18,6)"`
	Low    *decimal.Decimal `gorm:"type:numeric(18,6)"`
	Close  *decimal.Decimal `gorm:"type:numeric(18,6)"`
	Volume *decimal.Decimal `gorm:"type:numeric(30,4)"`
}

func (PriceBar) TableName() string {
	return "price_bars"
}

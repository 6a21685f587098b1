package models

import "time"

// NewsArticle is one news item fetched during enrichment.
type NewsArticle struct {
	ID     uint64    `gorm:"primaryKey;autoIncrement"`
	Ticker string    `gorm:"type:varchar(20);not null;index;uniqueIndex:uq_news_ticker_ts_title"`
	TS     time.Time `gorm:"type:timestamptz;not null;index;uniqueIndex:uq_news_ticker_ts_title"`
	Title  string    `gorm:"type:text;not null;uniqueIndex:uq_news_ticker_ts_title"`

	Source  *string `gorm:"type:varchar(100)"`
	URL     *string `gorm:"type:text"`
	Summary *string `gorm:"type:text"`
}

func (NewsArticle) TableName() string {
	return "news_articles"
}

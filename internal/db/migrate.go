package db

import (
	"indexscore/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Security{},
		&models.PriceBar{},
		&models.NewsArticle{},
		&models.InputCacheEntry{},
		&models.ScoreRun{},
		&models.Score{},
		&models.IndexScoreRun{},
		&models.ConstituentScore{},
		&models.Signature{},
		&models.CustomIndex{},
	)
}

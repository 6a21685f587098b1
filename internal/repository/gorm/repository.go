package gormrepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"indexscore/internal/models"
	"indexscore/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- Securities -------------------------------------------------------------

func (s *Store) EnsureSecurity(ctx context.Context, ticker string) error {
	if s == nil || s.db == nil || ticker == "" {
		return nil
	}
	item := models.Security{
		Ticker:   ticker,
		Name:     ticker,
		Currency: "USD",
		LotSize:  1,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}},
		DoNothing: true,
	}).Create(&item).Error
}

// --- Enrichment snapshots ---------------------------------------------------

func (s *Store) UpsertPriceBars(ctx context.Context, items []models.PriceBar) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}, {Name: "ts"}},
		DoNothing: true,
	}).Create(&items).Error
}

func (s *Store) UpsertNewsArticles(ctx context.Context, items []models.NewsArticle) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}, {Name: "ts"}, {Name: "title"}},
		DoNothing: true,
	}).Create(&items).Error
}

func (s *Store) UpsertInputCacheEntry(ctx context.Context, item *models.InputCacheEntry) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "input_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cached_at",
			"expires_at",
			"data",
		}),
	}).Create(item).Error
}

// --- Scores -----------------------------------------------------------------

func (s *Store) InsertScore(ctx context.Context, item *models.Score) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) LatestScoreByFingerprint(ctx context.Context, ticker, inputHash string) (*models.Score, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Score
	err := s.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Where("input_hash = ?", inputHash).
		Order("ts desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) LatestScoreByTicker(ctx context.Context, ticker string) (*models.Score, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Score
	err := s.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("ts desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListScoresByRunID(ctx context.Context, runID string) ([]models.Score, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Score
	if err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("ticker asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountScoresByRunID(ctx context.Context, runID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Score{}).
		Where("run_id = ?", runID).
		Count(&count).Error
	return count, err
}

// --- Score runs -------------------------------------------------------------

func (s *Store) InsertScoreRun(ctx context.Context, item *models.ScoreRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetScoreRunByID(ctx context.Context, id string) (*models.ScoreRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ScoreRun
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateScoreRunStatus(ctx context.Context, id string, status models.RunStatus) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.ScoreRun{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s *Store) FinishScoreRun(ctx context.Context, id string, status models.RunStatus, completed int, completedAt time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.ScoreRun{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"completed":    completed,
			"completed_at": completedAt,
		}).Error
}

// --- Index score runs -------------------------------------------------------

func (s *Store) InsertIndexScoreRun(ctx context.Context, item *models.IndexScoreRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetIndexScoreRunByID(ctx context.Context, id string) (*models.IndexScoreRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.IndexScoreRun
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateIndexScoreRunStatus(ctx context.Context, id string, status models.RunStatus) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.IndexScoreRun{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s *Store) CompleteIndexScoreRun(ctx context.Context, id string, status models.RunStatus, completedAt time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.IndexScoreRun{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"completed_at": completedAt,
		}).Error
}

// --- Constituent scores -----------------------------------------------------

func (s *Store) InsertConstituentScore(ctx context.Context, item *models.ConstituentScore) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetConstituentScoreByID(ctx context.Context, id string) (*models.ConstituentScore, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ConstituentScore
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListConstituentScores(ctx context.Context, params repository.ListConstituentScoresParams) ([]models.ConstituentScore, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.ConstituentScore{}).
		Where("effective_date = ?", params.EffectiveDate.Format("2006-01-02"))
	if params.State != nil {
		query = query.Where("state = ?", *params.State)
	}
	var items []models.ConstituentScore
	if err := query.Order("ticker asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountConstituentScoresByState(ctx context.Context, effectiveDate time.Time) (repository.StateCounts, error) {
	if s == nil || s.db == nil {
		return repository.StateCounts{}, nil
	}
	rows := []struct {
		State models.ReviewState
		N     int64
	}{}
	err := s.db.WithContext(ctx).
		Model(&models.ConstituentScore{}).
		Select("state, count(*) as n").
		Where("effective_date = ?", effectiveDate.Format("2006-01-02")).
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return repository.StateCounts{}, err
	}
	var counts repository.StateCounts
	for _, row := range rows {
		switch row.State {
		case models.StatePending:
			counts.Pending = row.N
		case models.StateApproved:
			counts.Approved = row.N
		case models.StateRejected:
			counts.Rejected = row.N
		case models.StateOnHold:
			counts.OnHold = row.N
		}
	}
	return counts, nil
}

func (s *Store) LatestEffectiveDate(ctx context.Context) (*time.Time, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var latest sql.NullTime
	err := s.db.WithContext(ctx).
		Model(&models.ConstituentScore{}).
		Select("max(effective_date)").
		Row().Scan(&latest)
	if err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	d := latest.Time
	return &d, nil
}

func (s *Store) TransitionConstituentScore(ctx context.Context, id string, to models.ReviewState, approvedBy string, approvedAt time.Time, comments *string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.ConstituentScore{}).
		Where("id = ?", id).
		Where("state = ?", models.StatePending).
		Updates(map[string]any{
			"state":       to,
			"approved_by": approvedBy,
			"approved_at": approvedAt,
			"comments":    comments,
		})
	return res.RowsAffected, res.Error
}

// --- Signatures -------------------------------------------------------------

func (s *Store) InsertSignature(ctx context.Context, item *models.Signature) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetSignatureByID(ctx context.Context, id string) (*models.Signature, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Signature
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSignatures(ctx context.Context) ([]models.Signature, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Signature
	if err := s.db.WithContext(ctx).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- Custom indexes ---------------------------------------------------------

func (s *Store) InsertCustomIndex(ctx context.Context, item *models.CustomIndex) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetCustomIndexByID(ctx context.Context, id string) (*models.CustomIndex, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.CustomIndex
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListCustomIndexes(ctx context.Context) ([]models.CustomIndex, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.CustomIndex
	if err := s.db.WithContext(ctx).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

package repository

import (
	"context"
	"time"

	"indexscore/internal/models"
)

type ListConstituentScoresParams struct {
	EffectiveDate time.Time
	State         *models.ReviewState
}

// StateCounts is the per-state breakdown of constituent scores for one
// effective date.
type StateCounts struct {
	Pending  int64
	Approved int64
	Rejected int64
	OnHold   int64
}

func (c StateCounts) Total() int64 {
	return c.Pending + c.Approved + c.Rejected + c.OnHold
}

// Repository is the persistence surface of the scoring pipeline. Every
// write is a single-row insert or keyed update; no multi-row transaction
// wraps a scoring run.
type Repository interface {
	// Securities
	EnsureSecurity(ctx context.Context, ticker string) error

	// Enrichment snapshots
	UpsertPriceBars(ctx context.Context, items []models.PriceBar) error
	UpsertNewsArticles(ctx context.Context, items []models.NewsArticle) error
	UpsertInputCacheEntry(ctx context.Context, item *models.InputCacheEntry) error

	// Scores
	InsertScore(ctx context.Context, item *models.Score) error
	LatestScoreByFingerprint(ctx context.Context, ticker, inputHash string) (*models.Score, error)
	LatestScoreByTicker(ctx context.Context, ticker string) (*models.Score, error)
	ListScoresByRunID(ctx context.Context, runID string) ([]models.Score, error)
	CountScoresByRunID(ctx context.Context, runID string) (int64, error)

	// Score runs
	InsertScoreRun(ctx context.Context, item *models.ScoreRun) error
	GetScoreRunByID(ctx context.Context, id string) (*models.ScoreRun, error)
	UpdateScoreRunStatus(ctx context.Context, id string, status models.RunStatus) error
	FinishScoreRun(ctx context.Context, id string, status models.RunStatus, completed int, completedAt time.Time) error

	// Index score runs
	InsertIndexScoreRun(ctx context.Context, item *models.IndexScoreRun) error
	GetIndexScoreRunByID(ctx context.Context, id string) (*models.IndexScoreRun, error)
	UpdateIndexScoreRunStatus(ctx context.Context, id string, status models.RunStatus) error
	CompleteIndexScoreRun(ctx context.Context, id string, status models.RunStatus, completedAt time.Time) error

	// Constituent scores
	InsertConstituentScore(ctx context.Context, item *models.ConstituentScore) error
	GetConstituentScoreByID(ctx context.Context, id string) (*models.ConstituentScore, error)
	ListConstituentScores(ctx context.Context, params ListConstituentScoresParams) ([]models.ConstituentScore, error)
	CountConstituentScoresByState(ctx context.Context, effectiveDate time.Time) (StateCounts, error)
	LatestEffectiveDate(ctx context.Context) (*time.Time, error)
	// TransitionConstituentScore moves a pending score to a terminal review
	// state and stamps the reviewer fields. Returns the number of rows
	// updated: 0 means the score was missing or no longer pending.
	TransitionConstituentScore(ctx context.Context, id string, to models.ReviewState, approvedBy string, approvedAt time.Time, comments *string) (int64, error)

	// Signatures
	InsertSignature(ctx context.Context, item *models.Signature) error
	GetSignatureByID(ctx context.Context, id string) (*models.Signature, error)
	ListSignatures(ctx context.Context) ([]models.Signature, error)

	// Custom indexes
	InsertCustomIndex(ctx context.Context, item *models.CustomIndex) error
	GetCustomIndexByID(ctx context.Context, id string) (*models.CustomIndex, error)
	ListCustomIndexes(ctx context.Context) ([]models.CustomIndex, error)
}

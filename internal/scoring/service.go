package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"indexscore/internal/enrich"
	"indexscore/internal/models"
	"indexscore/internal/oracle"
)

// Store is the slice of persistence the per-ticker pipeline needs.
type Store interface {
	EnsureSecurity(ctx context.Context, ticker string) error
	UpsertPriceBars(ctx context.Context, items []models.PriceBar) error
	UpsertNewsArticles(ctx context.Context, items []models.NewsArticle) error
	UpsertInputCacheEntry(ctx context.Context, item *models.InputCacheEntry) error
	InsertScore(ctx context.Context, item *models.Score) error
	LatestScoreByFingerprint(ctx context.Context, ticker, inputHash string) (*models.Score, error)
}

// Oracle is satisfied by *oracle.Client.
type Oracle interface {
	Score(ctx context.Context, prompt string) (*oracle.Result, error)
}

// Service scores one ticker end to end.
type Service struct {
	Store    Store
	Enricher *enrich.Enricher
	Oracle   Oracle
	Model    string
	Logger   *zap.Logger
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

// Outcome is one finished scoring attempt plus the news the input carried,
// for callers that derive sentiment records from it.
type Outcome struct {
	Score    *models.Score
	Reused   bool
	Articles []enrich.Article
}

// ScoreTicker enriches, fingerprints and scores one ticker under runID.
// A fresh prior score with the same fingerprint is reused instead of
// calling the oracle; reuse still inserts a new score row for the run.
// The second return reports whether the score came from reuse.
func (s *Service) ScoreTicker(ctx context.Context, runID, ticker string) (*models.Score, bool, error) {
	out, err := s.ScoreTickerDetailed(ctx, runID, ticker)
	if err != nil {
		return nil, false, err
	}
	return out.Score, out.Reused, nil
}

// ScoreTickerDetailed is ScoreTicker plus the articles behind the score.
func (s *Service) ScoreTickerDetailed(ctx context.Context, runID, ticker string) (*Outcome, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	now := s.now()

	if err := s.Store.EnsureSecurity(ctx, ticker); err != nil {
		return nil, fmt.Errorf("ensure security %s: %w", ticker, err)
	}

	in, err := s.Enricher.Enrich(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("enrich %s: %w", ticker, err)
	}
	hash, err := enrich.Fingerprint(in)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", ticker, err)
	}

	s.persistSnapshot(ctx, in, hash, now)

	prev, err := s.Store.LatestScoreByFingerprint(ctx, ticker, hash)
	if err != nil {
		return nil, fmt.Errorf("lookup prior score for %s: %w", ticker, err)
	}
	if ShouldReuse(prev, now) {
		reused := models.Score{
			RunID:       runID,
			Ticker:      ticker,
			TS:          now,
			Score:       prev.Score,
			Confidence:  prev.Confidence,
			Direction:   prev.Direction,
			HorizonDays: prev.HorizonDays,
			Rationale:   prev.Rationale,
			Risks:       prev.Risks,
			Model:       prev.Model,
			InputHash:   hash,
		}
		if err := s.Store.InsertScore(ctx, &reused); err != nil {
			return nil, fmt.Errorf("persist reused score for %s: %w", ticker, err)
		}
		s.logger().Info("score reused",
			zap.String("ticker", ticker),
			zap.String("input_hash", hash),
			zap.Time("prior_ts", prev.TS))
		return &Outcome{Score: &reused, Reused: true, Articles: in.Articles}, nil
	}

	prompt := oracle.BuildPrompt(in)
	result, err := s.Oracle.Score(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", ticker, err)
	}

	rationale, err := json.Marshal(result.Rationale)
	if err != nil {
		return nil, fmt.Errorf("encode rationale for %s: %w", ticker, err)
	}
	risks, err := json.Marshal(result.Risks)
	if err != nil {
		return nil, fmt.Errorf("encode risks for %s: %w", ticker, err)
	}

	item := models.Score{
		RunID:       runID,
		Ticker:      ticker,
		TS:          now,
		Score:       decimal.NewFromFloat(result.Score),
		Confidence:  decimal.NewFromFloat(result.Confidence),
		Direction:   result.Direction,
		HorizonDays: result.HorizonDays,
		Rationale:   rationale,
		Risks:       risks,
		Model:       s.Model,
		InputHash:   hash,
	}
	if err := s.Store.InsertScore(ctx, &item); err != nil {
		return nil, fmt.Errorf("persist score for %s: %w", ticker, err)
	}
	s.logger().Info("score created",
		zap.String("ticker", ticker),
		zap.Float64("score", result.Score),
		zap.String("direction", string(result.Direction)))
	return &Outcome{Score: &item, Articles: in.Articles}, nil
}

// persistSnapshot writes the enriched input for audit. Snapshot failures
// are logged but never abort scoring.
func (s *Service) persistSnapshot(ctx context.Context, in enrich.Input, hash string, now time.Time) {
	bars := make([]models.PriceBar, 0, len(in.Bars))
	for _, b := range in.Bars {
		bars = append(bars, models.PriceBar{
			Ticker: in.Ticker,
			TS:     b.TS,
			Open:   decPtr(b.Open),
			High:   decPtr(b.High),
			Low:    decPtr(b.Low),
			Close:  decPtr(b.Close),
			Volume: decPtr(b.Volume),
		})
	}
	if err := s.Store.UpsertPriceBars(ctx, bars); err != nil {
		s.logger().Warn("persist price bars failed", zap.String("ticker", in.Ticker), zap.Error(err))
	}

	articles := make([]models.NewsArticle, 0, len(in.Articles))
	for _, a := range in.Articles {
		articles = append(articles, models.NewsArticle{
			Ticker:  in.Ticker,
			TS:      a.TS,
			Title:   a.Title,
			Source:  strPtr(a.Source),
			URL:     strPtr(a.URL),
			Summary: strPtr(a.Summary),
		})
	}
	if err := s.Store.UpsertNewsArticles(ctx, articles); err != nil {
		s.logger().Warn("persist news failed", zap.String("ticker", in.Ticker), zap.Error(err))
	}

	data, err := json.Marshal(in)
	if err != nil {
		s.logger().Warn("encode input snapshot failed", zap.String("ticker", in.Ticker), zap.Error(err))
		return
	}
	expires := now.Add(FreshnessWindow)
	entry := models.InputCacheEntry{
		Ticker:    in.Ticker,
		InputHash: hash,
		CachedAt:  now,
		ExpiresAt: &expires,
		Data:      data,
	}
	if err := s.Store.UpsertInputCacheEntry(ctx, &entry); err != nil {
		s.logger().Warn("persist input snapshot failed", zap.String("ticker", in.Ticker), zap.Error(err))
	}
}

func decPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

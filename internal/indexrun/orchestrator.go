// Package indexrun scores every member of a static index for one effective
// date and records the results as pending constituent scores awaiting
// review.
package indexrun

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"indexscore/internal/apperr"
	"indexscore/internal/client/indexdata"
	"indexscore/internal/models"
	"indexscore/internal/oracle"
	"indexscore/internal/scoring"
)

// Store is the slice of persistence index runs need.
type Store interface {
	InsertIndexScoreRun(ctx context.Context, item *models.IndexScoreRun) error
	GetIndexScoreRunByID(ctx context.Context, id string) (*models.IndexScoreRun, error)
	UpdateIndexScoreRunStatus(ctx context.Context, id string, status models.RunStatus) error
	CompleteIndexScoreRun(ctx context.Context, id string, status models.RunStatus, completedAt time.Time) error
	InsertConstituentScore(ctx context.Context, item *models.ConstituentScore) error
}

// Scorer is satisfied by *scoring.Service.
type Scorer interface {
	ScoreTickerDetailed(ctx context.Context, runID, ticker string) (*scoring.Outcome, error)
}

// Orchestrator drives one index scoring run. Constituent failures are
// tolerated: the run still completes with whatever scores succeeded.
type Orchestrator struct {
	Store       Store
	Membership  indexdata.MembershipProvider
	Scorer      Scorer
	Concurrency int
	Logger      *zap.Logger
	Now         func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

func (o *Orchestrator) limit() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return 4
}

// ScoreIndex scores every constituent of indexID for effectiveDate.
// An unknown or empty index still produces a completed run with zero
// constituent scores.
func (o *Orchestrator) ScoreIndex(ctx context.Context, indexID string, effectiveDate time.Time) (*models.IndexScoreRun, error) {
	constituents, err := o.Membership.Constituents(ctx, indexID)
	if err != nil {
		return nil, fmt.Errorf("load constituents for %s: %w", indexID, err)
	}

	run := models.IndexScoreRun{
		ID:            uuid.NewString(),
		IndexID:       indexID,
		EffectiveDate: effectiveDate,
		Status:        models.RunPending,
	}
	if err := o.Store.InsertIndexScoreRun(ctx, &run); err != nil {
		return nil, fmt.Errorf("create index score run: %w", err)
	}
	if err := o.Store.UpdateIndexScoreRunStatus(ctx, run.ID, models.RunRunning); err != nil {
		return nil, fmt.Errorf("mark index run %s running: %w", run.ID, err)
	}

	var scored atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.limit())
	for _, c := range constituents {
		c := c
		g.Go(func() error {
			if err := o.scoreConstituent(gctx, &run, c); err != nil {
				o.logger().Warn("constituent scoring failed",
					zap.String("index_id", indexID),
					zap.String("ticker", c.Ticker),
					zap.Error(err))
				return nil
			}
			scored.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	finishedAt := o.now()
	if err := o.Store.CompleteIndexScoreRun(ctx, run.ID, models.RunComplete, finishedAt); err != nil {
		return nil, fmt.Errorf("complete index run %s: %w", run.ID, err)
	}
	o.logger().Info("index scoring run finished",
		zap.String("run_id", run.ID),
		zap.String("index_id", indexID),
		zap.Int64("scored", scored.Load()),
		zap.Int("constituents", len(constituents)))

	run.Status = models.RunComplete
	run.CompletedAt = &finishedAt
	return &run, nil
}

func (o *Orchestrator) scoreConstituent(ctx context.Context, run *models.IndexScoreRun, c indexdata.Constituent) error {
	out, err := o.Scorer.ScoreTickerDetailed(ctx, run.ID, c.Ticker)
	if err != nil {
		return err
	}

	sentiment, err := buildNewsSentiment(out)
	if err != nil {
		return fmt.Errorf("build news sentiment for %s: %w", c.Ticker, err)
	}

	sector := c.Sector
	item := models.ConstituentScore{
		ID:            uuid.NewString(),
		IndexRunID:    run.ID,
		IndexID:       run.IndexID,
		Ticker:        c.Ticker,
		Sector:        &sector,
		EffectiveDate: run.EffectiveDate,
		Score:         out.Score.Score,
		Confidence:    out.Score.Confidence,
		Direction:     out.Score.Direction,
		State:         models.StatePending,
	}
	if sentiment != nil {
		item.NewsSentiment = sentiment
	}
	if err := o.Store.InsertConstituentScore(ctx, &item); err != nil {
		return fmt.Errorf("persist constituent score for %s: %w", c.Ticker, err)
	}
	return nil
}

// buildNewsSentiment derives the review-facing news record from the top
// articles: summary from the first article (title when it has no
// summary), sentiment from the score's rationale, links from the top two
// articles. Inputs without news carry no record.
func buildNewsSentiment(out *scoring.Outcome) ([]byte, error) {
	if len(out.Articles) == 0 {
		return nil, nil
	}
	var rationale oracle.Rationale
	if err := json.Unmarshal(out.Score.Rationale, &rationale); err != nil {
		return nil, fmt.Errorf("decode rationale: %w", err)
	}

	top := out.Articles[0]
	summary := top.Summary
	if summary == "" {
		summary = top.Title
	}
	record := models.NewsSentiment{
		Summary:   summary,
		Sentiment: normalizeSentiment(rationale.Sentiment),
	}
	if top.URL != "" {
		url := top.URL
		record.PostURL = &url
	}
	if len(out.Articles) > 1 {
		if url := out.Articles[1].URL; url != "" {
			record.BlogURL = &url
		}
	}
	return json.Marshal(record)
}

// normalizeSentiment maps free-text oracle sentiment onto the closed
// enum. Matching is case-insensitive and tolerates qualifiers like
// "strongly positive"; anything else is neutral.
func normalizeSentiment(s string) models.Sentiment {
	lowered := strings.ToLower(s)
	switch {
	case strings.Contains(lowered, "positive"):
		return models.SentimentPositive
	case strings.Contains(lowered, "negative"):
		return models.SentimentNegative
	}
	return models.SentimentNeutral
}

// GetRun returns a run row for status polling.
func (o *Orchestrator) GetRun(ctx context.Context, id string) (*models.IndexScoreRun, error) {
	run, err := o.Store.GetIndexScoreRunByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load index run %s: %w", id, err)
	}
	if run == nil {
		return nil, apperr.NotFoundf("index score run %s not found", id)
	}
	return run, nil
}

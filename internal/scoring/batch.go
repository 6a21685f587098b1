package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"indexscore/internal/apperr"
	"indexscore/internal/models"
)

// batchParams is what a score run's params column holds.
type batchParams struct {
	Tickers []string `json:"tickers"`
}

// BatchStore is the slice of persistence batch runs need.
type BatchStore interface {
	InsertScoreRun(ctx context.Context, item *models.ScoreRun) error
	GetScoreRunByID(ctx context.Context, id string) (*models.ScoreRun, error)
	UpdateScoreRunStatus(ctx context.Context, id string, status models.RunStatus) error
	FinishScoreRun(ctx context.Context, id string, status models.RunStatus, completed int, completedAt time.Time) error
}

// TickerScorer is satisfied by *Service.
type TickerScorer interface {
	ScoreTicker(ctx context.Context, runID, ticker string) (*models.Score, bool, error)
}

// BatchService creates score runs and fans the pipeline out over their
// tickers. Per-ticker failures never abort a run; they only decide its
// final status.
type BatchService struct {
	Store       BatchStore
	Scorer      TickerScorer
	Concurrency int
	Logger      *zap.Logger
	Now         func() time.Time
}

func (b *BatchService) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now().UTC()
}

func (b *BatchService) logger() *zap.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return zap.NewNop()
}

func (b *BatchService) limit() int {
	if b.Concurrency > 0 {
		return b.Concurrency
	}
	return 4
}

// CreateBatch records a pending run over tickers and returns it.
func (b *BatchService) CreateBatch(ctx context.Context, tickers []string) (*models.ScoreRun, error) {
	if len(tickers) == 0 {
		return nil, apperr.Validationf("at least one ticker is required")
	}
	for _, t := range tickers {
		if t == "" {
			return nil, apperr.Validationf("empty ticker in batch")
		}
	}
	params, err := json.Marshal(batchParams{Tickers: tickers})
	if err != nil {
		return nil, fmt.Errorf("encode batch params: %w", err)
	}
	run := models.ScoreRun{
		ID:        uuid.NewString(),
		StartedAt: b.now(),
		Total:     len(tickers),
		Status:    models.RunPending,
		Params:    params,
	}
	if err := b.Store.InsertScoreRun(ctx, &run); err != nil {
		return nil, fmt.Errorf("create score run: %w", err)
	}
	return &run, nil
}

// ProcessBatch scores every ticker of a pending run. The run finishes
// complete only when every ticker scored; any failure makes it failed.
func (b *BatchService) ProcessBatch(ctx context.Context, runID string) (*models.ScoreRun, error) {
	run, err := b.Store.GetScoreRunByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load score run %s: %w", runID, err)
	}
	if run == nil {
		return nil, apperr.NotFoundf("score run %s not found", runID)
	}
	if run.Status != models.RunPending {
		return nil, apperr.Validationf("score run %s is %s, not pending", runID, run.Status)
	}

	var params batchParams
	if err := json.Unmarshal(run.Params, &params); err != nil {
		return nil, fmt.Errorf("decode batch params for %s: %w", runID, err)
	}

	if err := b.Store.UpdateScoreRunStatus(ctx, runID, models.RunRunning); err != nil {
		return nil, fmt.Errorf("mark score run %s running: %w", runID, err)
	}

	var completed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit())
	for _, ticker := range params.Tickers {
		ticker := ticker
		g.Go(func() error {
			if _, _, err := b.Scorer.ScoreTicker(gctx, runID, ticker); err != nil {
				b.logger().Warn("batch ticker failed",
					zap.String("run_id", runID),
					zap.String("ticker", ticker),
					zap.Error(err))
				return nil
			}
			completed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	done := int(completed.Load())
	status := models.RunFailed
	if done == run.Total {
		status = models.RunComplete
	}
	finishedAt := b.now()
	if err := b.Store.FinishScoreRun(ctx, runID, status, done, finishedAt); err != nil {
		return nil, fmt.Errorf("finish score run %s: %w", runID, err)
	}
	b.logger().Info("batch finished",
		zap.String("run_id", runID),
		zap.Int("completed", done),
		zap.Int("total", run.Total),
		zap.String("status", string(status)))

	run.Status = status
	run.Completed = done
	run.CompletedAt = &finishedAt
	return run, nil
}

// GetBatchStatus returns the run row for status polling.
func (b *BatchService) GetBatchStatus(ctx context.Context, runID string) (*models.ScoreRun, error) {
	run, err := b.Store.GetScoreRunByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load score run %s: %w", runID, err)
	}
	if run == nil {
		return nil, apperr.NotFoundf("score run %s not found", runID)
	}
	return run, nil
}

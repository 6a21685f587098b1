package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"indexscore/internal/models"
	"indexscore/internal/scoring"
)

// scoreReader is the read side of the scores surface.
type scoreReader interface {
	LatestScoreByTicker(ctx context.Context, ticker string) (*models.Score, error)
	ListScoresByRunID(ctx context.Context, runID string) ([]models.Score, error)
}

type ScoresHandler struct {
	Batch  *scoring.BatchService
	Reader scoreReader
	Logger *zap.Logger

	// BaseCtx outlives the request so batch processing survives the
	// client disconnecting.
	BaseCtx context.Context
}

func NewScoresHandler(batch *scoring.BatchService, reader scoreReader, logger *zap.Logger, baseCtx context.Context) *ScoresHandler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &ScoresHandler{Batch: batch, Reader: reader, Logger: logger, BaseCtx: baseCtx}
}

func (h *ScoresHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/score")
	g.POST("/batch", h.createBatch)
	g.GET("/batch/:runId", h.batchStatus)
	g.GET("/ticker/:ticker", h.latestByTicker)
}

type createBatchRequest struct {
	Tickers []string `json:"tickers"`
}

func (h *ScoresHandler) createBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	run, err := h.Batch.CreateBatch(c.Request.Context(), req.Tickers)
	if err != nil {
		fail(c, err)
		return
	}

	go func() {
		if _, err := h.Batch.ProcessBatch(h.BaseCtx, run.ID); err != nil && h.Logger != nil {
			h.Logger.Error("batch processing failed",
				zap.String("run_id", run.ID),
				zap.Error(err))
		}
	}()

	Ok(c, run, nil)
}

func (h *ScoresHandler) batchStatus(c *gin.Context) {
	runID := c.Param("runId")
	run, err := h.Batch.GetBatchStatus(c.Request.Context(), runID)
	if err != nil {
		fail(c, err)
		return
	}
	scores, err := h.Reader.ListScoresByRunID(c.Request.Context(), runID)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, run, map[string]any{"scores": scores})
}

func (h *ScoresHandler) latestByTicker(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	if ticker == "" {
		Error(c, http.StatusBadRequest, "ticker is required", nil)
		return
	}
	score, err := h.Reader.LatestScoreByTicker(c.Request.Context(), ticker)
	if err != nil {
		fail(c, err)
		return
	}
	if score == nil {
		Error(c, http.StatusNotFound, "no score for "+ticker, nil)
		return
	}
	Ok(c, score, nil)
}

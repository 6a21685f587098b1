package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"indexscore/internal/approval"
	"indexscore/internal/models"
)

type ApprovalHandler struct {
	Service *approval.Service
}

func (h *ApprovalHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/approval")
	g.GET("/scores/:effectiveDate", h.scoresByDate)
	g.GET("/scores/:effectiveDate/pending", h.pendingScores)
	g.GET("/scores/:effectiveDate/summary", h.summary)
	g.POST("/decisions/:id/approve", h.approve)
	g.POST("/decisions/:id/reject", h.reject)
	g.POST("/decisions/:id/hold", h.hold)
}

func parseEffectiveDate(c *gin.Context) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", c.Param("effectiveDate"))
	if err != nil {
		Error(c, http.StatusBadRequest, "effectiveDate must be YYYY-MM-DD", nil)
		return time.Time{}, false
	}
	return d, true
}

func (h *ApprovalHandler) scoresByDate(c *gin.Context) {
	d, ok := parseEffectiveDate(c)
	if !ok {
		return
	}
	scores, err := h.Service.ScoresByDate(c.Request.Context(), d)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, scores, nil)
}

func (h *ApprovalHandler) pendingScores(c *gin.Context) {
	d, ok := parseEffectiveDate(c)
	if !ok {
		return
	}
	scores, err := h.Service.PendingScores(c.Request.Context(), d)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, scores, nil)
}

func (h *ApprovalHandler) summary(c *gin.Context) {
	d, ok := parseEffectiveDate(c)
	if !ok {
		return
	}
	summary, err := h.Service.ApprovalSummary(c.Request.Context(), d)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, summary, nil)
}

type reviewRequest struct {
	Reviewer string  `json:"reviewer"`
	Comments *string `json:"comments"`
}

func (h *ApprovalHandler) approve(c *gin.Context) {
	h.transition(c, h.Service.Approve)
}

func (h *ApprovalHandler) reject(c *gin.Context) {
	h.transition(c, h.Service.Reject)
}

func (h *ApprovalHandler) hold(c *gin.Context) {
	h.transition(c, h.Service.Hold)
}

func (h *ApprovalHandler) transition(c *gin.Context, op func(ctx context.Context, id, reviewer string, comments *string) (*models.ConstituentScore, error)) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	score, err := op(c.Request.Context(), c.Param("id"), req.Reviewer, req.Comments)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, score, nil)
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"indexscore/internal/customindex"
	"indexscore/internal/indexrun"
	"indexscore/internal/models"
)

type IndexHandler struct {
	Orchestrator *indexrun.Orchestrator
	Signatures   *customindex.SignatureService
	Builder      *customindex.Builder
}

func (h *IndexHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/index")
	g.POST("/score", h.scoreIndex)
	g.GET("/score/:runId", h.runStatus)
	g.POST("/signature", h.createSignature)
	g.GET("/signature", h.listSignatures)
	g.GET("/signature/:id", h.getSignature)
	g.POST("/custom", h.buildIndex)
	g.GET("/custom", h.listIndexes)
	g.GET("/custom/:id", h.getIndex)
}

type scoreIndexRequest struct {
	IndexID       string `json:"indexId"`
	EffectiveDate string `json:"effectiveDate"`
}

func (h *IndexHandler) scoreIndex(c *gin.Context) {
	var req scoreIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.IndexID == "" {
		Error(c, http.StatusBadRequest, "indexId is required", nil)
		return
	}
	effectiveDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.EffectiveDate != "" {
		d, err := time.Parse("2006-01-02", req.EffectiveDate)
		if err != nil {
			Error(c, http.StatusBadRequest, "effectiveDate must be YYYY-MM-DD", nil)
			return
		}
		effectiveDate = d
	}
	run, err := h.Orchestrator.ScoreIndex(c.Request.Context(), req.IndexID, effectiveDate)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, run, nil)
}

func (h *IndexHandler) runStatus(c *gin.Context) {
	run, err := h.Orchestrator.GetRun(c.Request.Context(), c.Param("runId"))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, run, nil)
}

type createSignatureRequest struct {
	Name        string                    `json:"name"`
	Description *string                   `json:"description"`
	CreatedBy   string                    `json:"createdBy"`
	Composition []models.CompositionEntry `json:"composition"`
}

func (h *IndexHandler) createSignature(c *gin.Context) {
	var req createSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	sig, err := h.Signatures.CreateSignature(c.Request.Context(), req.Name, req.CreatedBy, req.Description, req.Composition)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, sig, nil)
}

func (h *IndexHandler) listSignatures(c *gin.Context) {
	sigs, err := h.Signatures.ListSignatures(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, sigs, nil)
}

func (h *IndexHandler) getSignature(c *gin.Context) {
	sig, err := h.Signatures.GetSignature(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, sig, nil)
}

type buildIndexRequest struct {
	SignatureID string `json:"signatureId"`
	Name        string `json:"name"`
}

func (h *IndexHandler) buildIndex(c *gin.Context) {
	var req buildIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.SignatureID == "" {
		Error(c, http.StatusBadRequest, "signatureId is required", nil)
		return
	}
	idx, err := h.Builder.Build(c.Request.Context(), req.SignatureID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, idx, nil)
}

func (h *IndexHandler) listIndexes(c *gin.Context) {
	indexes, err := h.Builder.ListIndexes(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, indexes, nil)
}

func (h *IndexHandler) getIndex(c *gin.Context) {
	idx, err := h.Builder.GetIndex(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, idx, nil)
}

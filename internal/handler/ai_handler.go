package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smd-api/internal/dto"
	"github.com/noah-isme/smd-api/internal/service"
	appErrors "github.com/noah-isme/smd-api/pkg/errors"
	"github.com/noah-isme/smd-api/pkg/response"
)

// AIHandler queues syllabus analysis tasks for the external AI service.
type AIHandler struct {
	jobs *service.AIJobService
}

// NewAIHandler constructs AIHandler.
func NewAIHandler(jobs *service.AIJobService) *AIHandler {
	return &AIHandler{jobs: jobs}
}

// SemanticDiff godoc
// @Summary Compare two syllabi semantically
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SemanticDiffRequest true "Comparison payload"
// @Success 202 {object} response.Envelope
// @Router /ai/semantic-diff [post]
func (h *AIHandler) SemanticDiff(c *gin.Context) {
	var req dto.SemanticDiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	task, err := h.jobs.SemanticDiff(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, task, nil)
}

// Summary godoc
// @Summary Summarize a syllabus
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SummaryRequest true "Summary payload"
// @Success 202 {object} response.Envelope
// @Router /ai/summary [post]
func (h *AIHandler) Summary(c *gin.Context) {
	var req dto.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	task, err := h.jobs.Summary(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, task, nil)
}

// CLOPLOCheck godoc
// @Summary Check CLO/PLO alignment
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CLOPLOCheckRequest true "Alignment payload"
// @Success 202 {object} response.Envelope
// @Router /ai/clo-plo-check [post]
func (h *AIHandler) CLOPLOCheck(c *gin.Context) {
	var req dto.CLOPLOCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	task, err := h.jobs.CLOPLOCheck(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, task, nil)
}

// OCR godoc
// @Summary Extract text from an uploaded document
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.OCRRequest true "Document payload"
// @Success 202 {object} response.Envelope
// @Router /ai/ocr [post]
func (h *AIHandler) OCR(c *gin.Context) {
	var req dto.OCRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	task, err := h.jobs.OCR(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, task, nil)
}

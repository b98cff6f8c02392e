package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smd-api/internal/dto"
	"github.com/noah-isme/smd-api/internal/service"
	appErrors "github.com/noah-isme/smd-api/pkg/errors"
	"github.com/noah-isme/smd-api/pkg/response"
)

// WorkflowHandler exposes the approval pipeline actions.
type WorkflowHandler struct {
	workflow *service.WorkflowService
}

// NewWorkflowHandler constructs WorkflowHandler.
func NewWorkflowHandler(workflow *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow}
}

// Submit godoc
// @Summary Submit syllabus for review
// @Tags Workflow
// @Produce json
// @Security BearerAuth
// @Param id path string true "Syllabus ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /syllabi/{id}/submit [post]
func (h *WorkflowHandler) Submit(c *gin.Context) {
	syllabus, err := h.workflow.SubmitForReview(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, syllabus, nil)
}

// Approve godoc
// @Summary Approve syllabus
// @Description Moves the syllabus one step forward in the approval pipeline
// @Tags Workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Syllabus ID"
// @Param payload body dto.WorkflowActionRequest false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /syllabi/{id}/approve [post]
func (h *WorkflowHandler) Approve(c *gin.Context) {
	req, err := h.actionRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	syllabus, err := h.workflow.Approve(c.Request.Context(), c.Param("id"), claimsFromContext(c), req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, syllabus, nil)
}

// Reject godoc
// @Summary Reject syllabus
// @Description Returns the syllabus to its creator for rework
// @Tags Workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Syllabus ID"
// @Param payload body dto.WorkflowActionRequest false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /syllabi/{id}/reject [post]
func (h *WorkflowHandler) Reject(c *gin.Context) {
	req, err := h.actionRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	syllabus, err := h.workflow.Reject(c.Request.Context(), c.Param("id"), claimsFromContext(c), req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, syllabus, nil)
}

// Publish godoc
// @Summary Publish approved syllabus
// @Tags Workflow
// @Produce json
// @Security BearerAuth
// @Param id path string true "Syllabus ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /syllabi/{id}/publish [post]
func (h *WorkflowHandler) Publish(c *gin.Context) {
	syllabus, err := h.workflow.Publish(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, syllabus, nil)
}

// History godoc
// @Summary Syllabus transition history
// @Tags Workflow
// @Produce json
// @Security BearerAuth
// @Param id path string true "Syllabus ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /syllabi/{id}/history [get]
func (h *WorkflowHandler) History(c *gin.Context) {
	history, err := h.workflow.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// actionRequest tolerates an empty body: the comment is optional on both
// approve and reject.
func (h *WorkflowHandler) actionRequest(c *gin.Context) (dto.WorkflowActionRequest, error) {
	var req dto.WorkflowActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, appErrors.Clone(appErrors.ErrValidation, "invalid action payload")
		}
	}
	return req, nil
}

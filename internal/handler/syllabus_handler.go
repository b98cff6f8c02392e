package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smd-api/internal/dto"
	"github.com/noah-isme/smd-api/internal/models"
	"github.com/noah-isme/smd-api/internal/service"
	appErrors "github.com/noah-isme/smd-api/pkg/errors"
	"github.com/noah-isme/smd-api/pkg/export"
	"github.com/noah-isme/smd-api/pkg/response"
)

// SyllabusHandler exposes syllabus CRUD, version history and export.
type SyllabusHandler struct {
	syllabi *service.SyllabusService
	pdf     *export.PDFExporter
	csv     *export.CSVExporter
}

// NewSyllabusHandler constructs SyllabusHandler.
func NewSyllabusHandler(syllabi *service.SyllabusService, pdf *export.PDFExporter, csv *export.CSVExporter) *SyllabusHandler {
	return &SyllabusHandler{syllabi: syllabi, pdf: pdf, csv: csv}
}

// Create godoc
// @Summary Create syllabus draft
// @Tags Syllabi
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSyllabusRequest true "Syllabus payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /syllabi [post]
func (h *SyllabusHandler) Create(c *gin.Context) {
	var req dto.CreateSyllabusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	syllabus, err := h.syllabi.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, syllabus)
}

// Update godoc
// @Summary Update syllabus content
// @Description Updates an editable syllabus and records a new content version
// @Tags Syllabi
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Syllabus ID"
// @Param payload body dto.UpdateSyllabusRequest true "Syllabus payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /syllabi/{id} [put]
func (h *SyllabusHandler) Update(c *gin.Context) {
	var req dto.UpdateSyllabusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	syllabus, err := h.syllabi.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, syllabus, nil)
}

// Get godoc
// @Summary Get syllabus detail
// @Tags Syllabi
// @Produce json
// @Security BearerAuth
// @Param id path string true "Syllabus ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /syllabi/{id} [get]
func (h *SyllabusHandler) Get(c *gin.Context) {
	syllabus, err := h.syllabi.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, syllabus, nil)
}

// List godoc
// @Summary List syllabi
// @Tags Syllabi
// @Produce json
// @Security BearerAuth
// @Param status query string false "Comma separated status filter"
// @Param department query string false "Filter by department"
// @Param search query string false "Search by course code or name"
// @Param mine query bool false "Only syllabi created by the caller"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /syllabi [get]
func (h *SyllabusHandler) List(c *gin.Context) {
	query, err := parseSyllabusQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	syllabi, err := h.syllabi.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, syllabi, nil)
}

// ReviewQueue godoc
// @Summary Syllabi waiting on the caller's decision
// @Tags Syllabi
// @Produce json
// @Security BearerAuth
// @Param department query string false "Filter by department"
// @Success 200 {object} response.Envelope
// @Router /syllabi/review-queue [get]
func (h *SyllabusHandler) ReviewQueue(c *gin.Context) {
	syllabi, err := h.syllabi.ReviewQueue(c.Request.Context(), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, syllabi, nil)
}

// Versions godoc
// @Summary List syllabus content versions
// @Tags Syllabi
// @Produce json
// @Security BearerAuth
// @Param id path string true "Syllabus ID"
// @Success 200 {object} response.Envelope
// @Router /syllabi/{id}/versions [get]
func (h *SyllabusHandler) Versions(c *gin.Context) {
	versions, err := h.syllabi.Versions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}

// ExportPDF godoc
// @Summary Export syllabus as PDF
// @Tags Syllabi
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Syllabus ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /syllabi/{id}/export [get]
func (h *SyllabusHandler) ExportPDF(c *gin.Context) {
	ctx := c.Request.Context()
	syllabus, err := h.syllabi.Get(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	version := ""
	if versions, err := h.syllabi.Versions(ctx, syllabus.ID); err == nil && len(versions) > 0 {
		version = versions[0].Version
	}

	data, err := h.pdf.Syllabus(syllabus, version)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF"))
		return
	}

	filename := fmt.Sprintf("syllabus-%s.pdf", syllabus.CourseCode)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportCSV godoc
// @Summary Export syllabus listing as CSV
// @Tags Syllabi
// @Produce text/csv
// @Security BearerAuth
// @Param status query string false "Comma separated status filter"
// @Success 200 {file} binary
// @Router /syllabi/export [get]
func (h *SyllabusHandler) ExportCSV(c *gin.Context) {
	query, err := parseSyllabusQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	syllabi, err := h.syllabi.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.csv.SyllabusList(syllabi)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="syllabi.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func parseSyllabusQuery(c *gin.Context) (dto.SyllabusQuery, error) {
	var query dto.SyllabusQuery
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := models.WorkflowStatus(strings.ToUpper(strings.TrimSpace(part)))
			if !models.ValidStatus(status) {
				return query, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", part))
			}
			query.Statuses = append(query.Statuses, status)
		}
	}
	query.Department = c.Query("department")
	query.Search = strings.TrimSpace(c.Query("search"))
	query.Mine = c.Query("mine") == "true"
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		query.PageSize = size
	}
	return query, nil
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eufiscalizo-api/internal/dto"
	"github.com/noah-isme/eufiscalizo-api/internal/models"
	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
	"github.com/noah-isme/eufiscalizo-api/pkg/response"
)

type inspectionService interface {
	Submit(ctx context.Context, actor models.Actor, req dto.CreateInspectionRequest) (*models.Inspection, error)
	Advance(ctx context.Context, actor models.Actor, id string, req dto.AdvanceStatusRequest) (*models.Inspection, error)
	RateResolution(ctx context.Context, actor models.Actor, id string, req dto.FeedbackRequest) (*models.Inspection, error)
	List(ctx context.Context, actor models.Actor, filter models.InspectionFilter) ([]models.Inspection, error)
	Stats(ctx context.Context, actor models.Actor) (models.InspectionStats, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, actor models.Actor, id string) (*dto.InspectionDetail, error)
	Export(ctx context.Context, actor models.Actor, format dto.ExportFormat, filter models.InspectionFilter) (*dto.ExportResult, error)
}

// InspectionHandler exposes inspection reporting and triage endpoints.
type InspectionHandler struct {
	service inspectionService
}

// NewInspectionHandler builds a new handler.
func NewInspectionHandler(service inspectionService) *InspectionHandler {
	return &InspectionHandler{service: service}
}

// List godoc
// @Summary List inspections
// @Description Students only see their own reports
// @Tags Inspections
// @Produce json
// @Param search query string false "Case-insensitive text search"
// @Param category query string false "Category or all"
// @Param status query string false "recebida, em_processo, concluida or all"
// @Param studentId query string false "Owner filter (admins)"
// @Success 200 {object} response.Envelope
// @Router /inspections [get]
func (h *InspectionHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var query dto.InspectionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, err := h.service.List(c.Request.Context(), actor, query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Stats godoc
// @Summary Inspection counts per status
// @Tags Inspections
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /inspections/stats [get]
func (h *InspectionHandler) Stats(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// Categories godoc
// @Summary Inspection categories
// @Tags Inspections
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /inspections/categories [get]
func (h *InspectionHandler) Categories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories)
}

// Get godoc
// @Summary Get an inspection
// @Tags Inspections
// @Produce json
// @Param id path string true "Inspection ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /inspections/{id} [get]
func (h *InspectionHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Create godoc
// @Summary Report a problem
// @Tags Inspections
// @Accept json
// @Produce json
// @Param payload body dto.CreateInspectionRequest true "Inspection payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /inspections [post]
func (h *InspectionHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid inspection payload"))
		return
	}
	created, err := h.service.Submit(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// UpdateStatus godoc
// @Summary Advance inspection status
// @Description Only the next stage is accepted
// @Tags Inspections
// @Accept json
// @Produce json
// @Param id path string true "Inspection ID"
// @Param payload body dto.AdvanceStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /inspections/{id}/status [patch]
func (h *InspectionHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	updated, err := h.service.Advance(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// Feedback godoc
// @Summary Rate a resolved inspection
// @Tags Inspections
// @Accept json
// @Produce json
// @Param id path string true "Inspection ID"
// @Param payload body dto.FeedbackRequest true "Feedback payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /inspections/{id}/feedback [post]
func (h *InspectionHandler) Feedback(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}
	updated, err := h.service.RateResolution(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// Export godoc
// @Summary Export inspections
// @Tags Inspections
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /inspections/export [get]
func (h *InspectionHandler) Export(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var query dto.InspectionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	result, err := h.service.Export(c.Request.Context(), actor, dto.ExportFormat(c.Query("format")), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

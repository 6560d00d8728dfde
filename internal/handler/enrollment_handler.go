package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/health-program-api/internal/middleware"
	"github.com/noah-isme/health-program-api/internal/models"
	"github.com/noah-isme/health-program-api/pkg/response"
)

type enrollmentService interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	Get(ctx context.Context, id string, scope models.EnrollmentFilter) (*models.EnrollmentDetail, error)
	Create(ctx context.Context, req models.EnrollmentRequest) (*models.EnrollmentDetail, error)
	Update(ctx context.Context, id string, scope models.EnrollmentFilter, req models.EnrollmentRequest) (*models.EnrollmentDetail, error)
	Patch(ctx context.Context, id string, scope models.EnrollmentFilter, patch models.EnrollmentPatch) (*models.EnrollmentDetail, error)
	Delete(ctx context.Context, id string, scope models.EnrollmentFilter) error
}

// EnrollmentHandler exposes enrollment endpoints. The client and program
// query filters apply to every route, including retrieve, update and delete.
type EnrollmentHandler struct {
	service    enrollmentService
	exports    exportService
	pagination Pagination
}

// NewEnrollmentHandler builds a new handler instance.
func NewEnrollmentHandler(svc enrollmentService, exports exportService, pagination Pagination) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, exports: exports, pagination: pagination}
}

// scope reads the client and program filters.
func (h *EnrollmentHandler) scope(c *gin.Context) (models.EnrollmentFilter, error) {
	var filter models.EnrollmentFilter
	var err error
	if filter.ClientID, err = queryUUID(c, "client"); err != nil {
		return filter, err
	}
	if filter.ProgramID, err = queryUUID(c, "program"); err != nil {
		return filter, err
	}
	filter.Ordering = c.Query("ordering")
	return filter, nil
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param client query string false "Client ID"
// @Param program query string false "Program ID"
// @Param ordering query string false "enrollment_date, status; prefix - for descending"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} models.Page
// @Failure 400 {object} response.ErrorEnvelope
// @Router /enrollments/ [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter, err := h.scope(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if filter.Page, filter.PageSize, err = h.pagination.page(c); err != nil {
		response.Error(c, err)
		return
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := checkPage(filter.Page, len(items)); err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, filter.Page, filter.PageSize)
}

// Get godoc
// @Summary Get enrollment by id
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Param client query string false "Client ID"
// @Param program query string false "Program ID"
// @Success 200 {object} models.EnrollmentDetail
// @Failure 404 {object} response.ErrorEnvelope
// @Router /enrollments/{id}/ [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	id, scope, ok := h.target(c)
	if !ok {
		return
	}
	detail, err := h.service.Get(c.Request.Context(), id, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Create godoc
// @Summary Enroll client in program
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.EnrollmentRequest true "Enrollment payload"
// @Success 201 {object} models.EnrollmentDetail
// @Failure 400 {object} response.ErrorEnvelope
// @Router /enrollments/ [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req models.EnrollmentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResourceID(c, detail.ID)
	response.Created(c, detail)
}

// Update godoc
// @Summary Replace enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Param payload body models.EnrollmentRequest true "Enrollment payload"
// @Success 200 {object} models.EnrollmentDetail
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /enrollments/{id}/ [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	id, scope, ok := h.target(c)
	if !ok {
		return
	}
	var req models.EnrollmentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.service.Update(c.Request.Context(), id, scope, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Patch godoc
// @Summary Partially update enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Param payload body models.EnrollmentPatch true "Fields to change"
// @Success 200 {object} models.EnrollmentDetail
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /enrollments/{id}/ [patch]
func (h *EnrollmentHandler) Patch(c *gin.Context) {
	id, scope, ok := h.target(c)
	if !ok {
		return
	}
	var patch models.EnrollmentPatch
	if err := bindJSON(c, &patch); err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.service.Patch(c.Request.Context(), id, scope, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Delete godoc
// @Summary Delete enrollment
// @Tags Enrollments
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 204
// @Failure 404 {object} response.ErrorEnvelope
// @Router /enrollments/{id}/ [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	id, scope, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, scope); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export enrollment roster
// @Tags Enrollments
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param client query string false "Client ID"
// @Param program query string false "Program ID"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorEnvelope
// @Router /enrollments/export/ [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	format, err := exportFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := h.scope(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.Enrollments(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendExport(c, result)
}

// target resolves the path id and scope filters, writing the error response
// itself when either is malformed.
func (h *EnrollmentHandler) target(c *gin.Context) (string, models.EnrollmentFilter, bool) {
	id, err := pathID(c, "enrollment")
	if err != nil {
		response.Error(c, err)
		return "", models.EnrollmentFilter{}, false
	}
	scope, err := h.scope(c)
	if err != nil {
		response.Error(c, err)
		return "", models.EnrollmentFilter{}, false
	}
	return id, scope, true
}

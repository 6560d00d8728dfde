package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/health-program-api/internal/middleware"
	"github.com/noah-isme/health-program-api/internal/models"
	"github.com/noah-isme/health-program-api/pkg/response"
)

type programService interface {
	List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error)
	Get(ctx context.Context, id string) (*models.Program, error)
	Create(ctx context.Context, req models.ProgramRequest) (*models.Program, error)
	Update(ctx context.Context, id string, req models.ProgramRequest) (*models.Program, error)
	Patch(ctx context.Context, id string, patch models.ProgramPatch) (*models.Program, error)
	Delete(ctx context.Context, id string) error
}

// ProgramHandler handles program endpoints.
type ProgramHandler struct {
	service    programService
	pagination Pagination
}

// NewProgramHandler constructs a program handler.
func NewProgramHandler(svc programService, pagination Pagination) *ProgramHandler {
	return &ProgramHandler{service: svc, pagination: pagination}
}

// List godoc
// @Summary List programs
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param ordering query string false "name, created_at; prefix - for descending"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} models.Page
// @Failure 401 {object} response.ErrorEnvelope
// @Router /programs/ [get]
func (h *ProgramHandler) List(c *gin.Context) {
	page, size, err := h.pagination.page(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.ProgramFilter{Ordering: c.Query("ordering"), Page: page, PageSize: size}

	programs, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := checkPage(page, len(programs)); err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, programs, total, page, size)
}

// Get godoc
// @Summary Get program by id
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 200 {object} models.Program
// @Failure 404 {object} response.ErrorEnvelope
// @Router /programs/{id}/ [get]
func (h *ProgramHandler) Get(c *gin.Context) {
	id, err := pathID(c, "program")
	if err != nil {
		response.Error(c, err)
		return
	}
	program, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program)
}

// Create godoc
// @Summary Create program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ProgramRequest true "Program payload"
// @Success 201 {object} models.Program
// @Failure 400 {object} response.ErrorEnvelope
// @Router /programs/ [post]
func (h *ProgramHandler) Create(c *gin.Context) {
	var req models.ProgramRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	program, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResourceID(c, program.ID)
	response.Created(c, program)
}

// Update godoc
// @Summary Replace program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param payload body models.ProgramRequest true "Program payload"
// @Success 200 {object} models.Program
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /programs/{id}/ [put]
func (h *ProgramHandler) Update(c *gin.Context) {
	id, err := pathID(c, "program")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.ProgramRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	program, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program)
}

// Patch godoc
// @Summary Partially update program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param payload body models.ProgramPatch true "Fields to change"
// @Success 200 {object} models.Program
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /programs/{id}/ [patch]
func (h *ProgramHandler) Patch(c *gin.Context) {
	id, err := pathID(c, "program")
	if err != nil {
		response.Error(c, err)
		return
	}
	var patch models.ProgramPatch
	if err := bindJSON(c, &patch); err != nil {
		response.Error(c, err)
		return
	}
	program, err := h.service.Patch(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program)
}

// Delete godoc
// @Summary Delete program and its enrollments
// @Tags Programs
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 204
// @Failure 404 {object} response.ErrorEnvelope
// @Router /programs/{id}/ [delete]
func (h *ProgramHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "program")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

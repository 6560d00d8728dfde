package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/health-program-api/internal/middleware"
	"github.com/noah-isme/health-program-api/internal/models"
	"github.com/noah-isme/health-program-api/internal/service"
	appErrors "github.com/noah-isme/health-program-api/pkg/errors"
	"github.com/noah-isme/health-program-api/pkg/export"
	"github.com/noah-isme/health-program-api/pkg/response"
)

type clientService interface {
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error)
	Get(ctx context.Context, id string) (*models.Client, error)
	Create(ctx context.Context, req models.ClientRequest) (*models.Client, error)
	Update(ctx context.Context, id string, req models.ClientRequest) (*models.Client, error)
	Patch(ctx context.Context, id string, patch models.ClientPatch) (*models.Client, error)
	Delete(ctx context.Context, id string) error
}

type profileService interface {
	Get(ctx context.Context, clientID string) (*models.ClientProfile, bool, error)
}

type exportService interface {
	Clients(ctx context.Context, filter models.ClientFilter, format export.Format) (*service.ExportResult, error)
	Enrollments(ctx context.Context, filter models.EnrollmentFilter, format export.Format) (*service.ExportResult, error)
}

// ClientHandler handles client endpoints including the profile view and
// roster export.
type ClientHandler struct {
	service    clientService
	profiles   profileService
	exports    exportService
	pagination Pagination
}

// NewClientHandler constructs a client handler.
func NewClientHandler(svc clientService, profiles profileService, exports exportService, pagination Pagination) *ClientHandler {
	return &ClientHandler{service: svc, profiles: profiles, exports: exports, pagination: pagination}
}

func clientFilter(c *gin.Context) models.ClientFilter {
	return models.ClientFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Ordering: c.Query("ordering"),
	}
}

// List godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param search query string false "Matches first name, last name or email"
// @Param ordering query string false "first_name, last_name, created_at; prefix - for descending"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} models.Page
// @Router /clients/ [get]
func (h *ClientHandler) List(c *gin.Context) {
	page, size, err := h.pagination.page(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := clientFilter(c)
	filter.Page = page
	filter.PageSize = size

	clients, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := checkPage(page, len(clients)); err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, clients, total, page, size)
}

// Get godoc
// @Summary Get client by id
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} models.Client
// @Failure 404 {object} response.ErrorEnvelope
// @Router /clients/{id}/ [get]
func (h *ClientHandler) Get(c *gin.Context) {
	id, err := pathID(c, "client")
	if err != nil {
		response.Error(c, err)
		return
	}
	client, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client)
}

// Create godoc
// @Summary Register client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ClientRequest true "Client payload"
// @Success 201 {object} models.Client
// @Failure 400 {object} response.ErrorEnvelope
// @Router /clients/ [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req models.ClientRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	client, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResourceID(c, client.ID)
	response.Created(c, client)
}

// Update godoc
// @Summary Replace client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param payload body models.ClientRequest true "Client payload"
// @Success 200 {object} models.Client
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /clients/{id}/ [put]
func (h *ClientHandler) Update(c *gin.Context) {
	id, err := pathID(c, "client")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.ClientRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	client, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client)
}

// Patch godoc
// @Summary Partially update client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param payload body models.ClientPatch true "Fields to change"
// @Success 200 {object} models.Client
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /clients/{id}/ [patch]
func (h *ClientHandler) Patch(c *gin.Context) {
	id, err := pathID(c, "client")
	if err != nil {
		response.Error(c, err)
		return
	}
	var patch models.ClientPatch
	if err := bindJSON(c, &patch); err != nil {
		response.Error(c, err)
		return
	}
	client, err := h.service.Patch(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client)
}

// Delete godoc
// @Summary Delete client and its enrollments
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 204
// @Failure 404 {object} response.ErrorEnvelope
// @Router /clients/{id}/ [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "client")
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

// Profile godoc
// @Summary Client profile with enrollments
// @Description Client fields plus every enrollment with its program, newest first
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} models.ClientProfile
// @Header 200 {string} X-Cache "HIT or MISS"
// @Failure 404 {object} response.ErrorEnvelope
// @Router /clients/{id}/profile/ [get]
func (h *ClientHandler) Profile(c *gin.Context) {
	id, err := pathID(c, "client")
	if err != nil {
		response.Error(c, err)
		return
	}
	profile, hit, err := h.profiles.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, profile)
}

// Export godoc
// @Summary Export client roster
// @Tags Clients
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param search query string false "Matches first name, last name or email"
// @Param ordering query string false "first_name, last_name, created_at"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorEnvelope
// @Router /clients/export/ [get]
func (h *ClientHandler) Export(c *gin.Context) {
	format, err := exportFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.Clients(c.Request.Context(), clientFilter(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendExport(c, result)
}

func exportFormat(c *gin.Context) (export.Format, error) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return "", appErrors.InvalidField("format", `Select a valid choice. Use "csv" or "pdf".`)
	}
	return format, nil
}

func sendExport(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

package response

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/health-program-api/internal/models"
	appErrors "github.com/noah-isme/health-program-api/pkg/errors"
)

// ErrorEnvelope wraps error payloads.
type ErrorEnvelope struct {
	Error *appErrors.Error `json:"error"`
}

// JSON sends a success response with the resource as the body.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Paginated renders a list page with absolute next/previous links derived
// from the current request URL.
func Paginated(c *gin.Context, results interface{}, total, page, pageSize int) {
	body := models.Page{Count: total, Results: results}
	if page > 1 {
		prev := pageURL(c, page-1)
		body.Previous = &prev
	}
	if pageSize > 0 && page*pageSize < total {
		next := pageURL(c, page+1)
		body.Next = &next
	}
	JSON(c, http.StatusOK, body)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, ErrorEnvelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func pageURL(c *gin.Context, page int) string {
	u := url.URL{Scheme: scheme(c), Host: c.Request.Host, Path: c.Request.URL.Path}
	query := c.Request.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = query.Encode()
	return u.String()
}

func scheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

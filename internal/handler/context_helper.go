package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/health-program-api/internal/middleware"
	"github.com/noah-isme/health-program-api/internal/models"
	appErrors "github.com/noah-isme/health-program-api/pkg/errors"
	"github.com/noah-isme/health-program-api/pkg/validation"
)

// Pagination holds the default and maximum list page sizes.
type Pagination struct {
	PageSize    int
	MaxPageSize int
}

func (p Pagination) normalized() Pagination {
	if p.PageSize <= 0 {
		p.PageSize = 10
	}
	if p.MaxPageSize < p.PageSize {
		p.MaxPageSize = p.PageSize
	}
	return p
}

var errInvalidPage = appErrors.Clone(appErrors.ErrNotFound, "Invalid page.")

// page reads the page and page_size query parameters. A malformed or
// non-positive page is a 404; a malformed page_size falls back to the
// default and a large one is capped.
func (p Pagination) page(c *gin.Context) (int, int, error) {
	p = p.normalized()
	page := 1
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, 0, errInvalidPage
		}
		page = n
	}
	size := p.PageSize
	if raw := strings.TrimSpace(c.Query("page_size")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = n
		}
	}
	if size > p.MaxPageSize {
		size = p.MaxPageSize
	}
	return page, size, nil
}

// checkPage rejects pages past the last non-empty one.
func checkPage(page, count int) error {
	if page > 1 && count == 0 {
		return errInvalidPage
	}
	return nil
}

// pathID returns the :id parameter. Ids that are not UUIDs cannot exist, so
// they are reported as not found.
func pathID(c *gin.Context, resource string) (string, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, resource+" not found")
	}
	return id.String(), nil
}

// queryUUID reads an optional UUID filter.
func queryUUID(c *gin.Context, name string) (string, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return "", nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", appErrors.InvalidField(name, "Must be a valid UUID.")
	}
	return id.String(), nil
}

// bindJSON decodes the request body. An empty body decodes to the zero
// payload so validation can report the missing fields.
func bindJSON(c *gin.Context, dest interface{}) error {
	err := c.ShouldBindJSON(dest)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		if typeErr.Type == models.DateType {
			return appErrors.InvalidField(typeErr.Field, models.DateFormatMessage)
		}
		return appErrors.InvalidField(typeErr.Field, fmt.Sprintf("Expected %s but got %s.", typeErr.Type.Kind(), typeErr.Value))
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return appErrors.InvalidField(validation.NonFieldErrors, "JSON parse error.")
	}
	return appErrors.InvalidField(validation.NonFieldErrors, err.Error())
}

func claimsFromContext(c *gin.Context) (*models.JWTClaims, error) {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/health-program-api/pkg/errors"
)

type pageBody struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []string `json:"results"`
}

func TestPaginatedMiddlePage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/clients/?page=2&search=bob", nil)
	c.Request.Host = "example.test"

	Paginated(c, []string{"b"}, 5, 2, 2)

	require.Equal(t, http.StatusOK, w.Code)
	var body pageBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Count)
	require.NotNil(t, body.Next)
	require.NotNil(t, body.Previous)
	assert.Equal(t, "http://example.test/api/clients/?page=3&search=bob", *body.Next)
	assert.Equal(t, "http://example.test/api/clients/?search=bob", *body.Previous)
}

func TestPaginatedLastPageHasNoNext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/programs/", nil)

	Paginated(c, []string{"a"}, 1, 1, 10)

	var body pageBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.Next)
	assert.Nil(t, body.Previous)
	assert.Equal(t, []string{"a"}, body.Results)
}

func TestErrorRendersFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, appErrors.InvalidField("contact_number", "Enter a valid phone number."))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["error"]["code"])
	assert.Contains(t, w.Body.String(), "Enter a valid phone number.")
}

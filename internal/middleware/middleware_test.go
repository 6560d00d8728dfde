package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/health-program-api/internal/models"
	"github.com/noah-isme/health-program-api/internal/service"
	appErrors "github.com/noah-isme/health-program-api/pkg/errors"
	"github.com/noah-isme/health-program-api/pkg/logger"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.token = token
	return s.claims, s.err
}

type recordingAudit struct {
	logs []*models.AuditLog
	err  error
}

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return r.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(validator TokenValidator) *gin.Engine {
	r := gin.New()
	r.GET("/secure", JWT(validator), func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.Username+":"+c.GetString(logger.UserIDKey))
	})
	return r
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	validator := &stubValidator{claims: &models.JWTClaims{UserID: "u1"}}
	r := protectedRouter(validator)

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Contains(t, w.Body.String(), appErrors.ErrUnauthorized.Code)
	}
	assert.Empty(t, validator.token)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	validator := &stubValidator{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")}
	r := protectedRouter(validator)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer expired")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "expired", validator.token)
	assert.NotContains(t, w.Body.String(), "u1")
}

func TestJWTStoresClaims(t *testing.T) {
	r := protectedRouter(&stubValidator{claims: &models.JWTClaims{UserID: "u1", Username: "alice"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice:u1", w.Body.String())
}

func auditRouter(recorder AuditRecorder, status int) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1"})
	})
	group := r.Group("/programs", Audit(recorder, "programs", nil))
	group.POST("/", func(c *gin.Context) {
		SetAuditResourceID(c, "p-new")
		c.Status(status)
	})
	group.PATCH("/:id/", func(c *gin.Context) { c.Status(status) })
	group.DELETE("/:id/", func(c *gin.Context) { c.Status(status) })
	group.GET("/", func(c *gin.Context) { c.Status(status) })
	return r
}

func TestAuditRecordsMutations(t *testing.T) {
	recorder := &recordingAudit{}
	r := auditRouter(recorder, http.StatusOK)

	cases := []struct {
		method, path, action, resourceID string
	}{
		{http.MethodPost, "/programs/", models.AuditActionCreate, "p-new"},
		{http.MethodPatch, "/programs/p1/", models.AuditActionUpdate, "p1"},
		{http.MethodDelete, "/programs/p1/", models.AuditActionDelete, "p1"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/programs/", nil))

	require.Len(t, recorder.logs, len(cases))
	for i, tc := range cases {
		log := recorder.logs[i]
		assert.Equal(t, tc.action, log.Action)
		assert.Equal(t, "programs", log.Resource)
		require.NotNil(t, log.ResourceID)
		assert.Equal(t, tc.resourceID, *log.ResourceID)
		require.NotNil(t, log.UserID)
		assert.Equal(t, "u1", *log.UserID)
		assert.Contains(t, string(log.NewValues), `"method":"`+tc.method+`"`)
	}
}

func TestAuditSkipsFailures(t *testing.T) {
	recorder := &recordingAudit{}
	r := auditRouter(recorder, http.StatusBadRequest)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/programs/", nil))
	assert.Empty(t, recorder.logs)
}

func TestAuditWriteFailureDoesNotBreakResponse(t *testing.T) {
	recorder := &recordingAudit{err: errors.New("db down")}
	r := auditRouter(recorder, http.StatusNoContent)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/programs/p1/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, recorder.logs, 1)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/clients/:id/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clients/abc/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/clients/:id/",status="200"} 1`)
	assert.False(t, strings.Contains(body, "/clients/abc/"))
	assert.Contains(t, body, "http_requests_in_flight 0")
}

func TestSetCacheHit(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	SetCacheHit(c, true)
	assert.Equal(t, "HIT", w.Header().Get(CacheHeader))

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	SetCacheHit(c, false)
	assert.Equal(t, "MISS", w.Header().Get(CacheHeader))
}

func TestRateLimiterPerIP(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.False(t, limiter.Allow("1.1.1.1"))
	assert.True(t, limiter.Allow("2.2.2.2"))

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("1.1.1.1"))

	now = now.Add(limiterIdleTTL + time.Minute)
	limiter.Allow("3.3.3.3")
	assert.Len(t, limiter.visitors, 1)
}

func TestRateLimiterMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/login", NewRateLimiter(0.001, 1).Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	assert.True(t, NewRateLimiter(0, 0).Allow("1.1.1.1"))
}

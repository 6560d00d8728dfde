// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/health-program-api/api/swagger"
	"github.com/noah-isme/health-program-api/internal/handler"
	"github.com/noah-isme/health-program-api/internal/middleware"
	"github.com/noah-isme/health-program-api/internal/service"
	"github.com/noah-isme/health-program-api/pkg/config"
	appErrors "github.com/noah-isme/health-program-api/pkg/errors"
	"github.com/noah-isme/health-program-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/health-program-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/health-program-api/pkg/middleware/requestid"
	"github.com/noah-isme/health-program-api/pkg/response"
)

// Options carries the cross-cutting dependencies of the router.
type Options struct {
	Env            string
	APIPrefix      string
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	AuthLimiter    *middleware.RateLimiter
	Tokens         middleware.TokenValidator
	Audit          middleware.AuditRecorder
}

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Programs    *handler.ProgramHandler
	Clients     *handler.ClientHandler
	Enrollments *handler.EnrollmentHandler
	Dashboard   *handler.DashboardHandler
	System      *handler.MetricsHandler
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger, "/health", "/metrics"))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "not found"))
	})

	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	if opts.Metrics != nil {
		r.GET("/metrics", h.System.Prometheus)
	}
	if opts.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	auth := middleware.JWT(opts.Tokens)

	authRoutes := api.Group("/auth")
	{
		limited := authRoutes.Group("", opts.AuthLimiter.Middleware())
		limited.POST("/login/", h.Auth.Login)
		limited.POST("/register/", h.Auth.Register)
		limited.POST("/refresh/", h.Auth.Refresh)

		authRoutes.POST("/logout/", auth, h.Auth.Logout)
		authRoutes.POST("/change-password/", auth, h.Auth.ChangePassword)
		authRoutes.GET("/me/", auth, h.Auth.Me)
	}

	protected := api.Group("", auth)

	programs := protected.Group("/programs", middleware.Audit(opts.Audit, "programs", opts.Logger))
	{
		programs.GET("/", h.Programs.List)
		programs.POST("/", h.Programs.Create)
		programs.GET("/:id/", h.Programs.Get)
		programs.PUT("/:id/", h.Programs.Update)
		programs.PATCH("/:id/", h.Programs.Patch)
		programs.DELETE("/:id/", h.Programs.Delete)
	}

	clients := protected.Group("/clients", middleware.Audit(opts.Audit, "clients", opts.Logger))
	{
		clients.GET("/", h.Clients.List)
		clients.POST("/", h.Clients.Create)
		clients.GET("/export/", h.Clients.Export)
		clients.GET("/:id/", h.Clients.Get)
		clients.PUT("/:id/", h.Clients.Update)
		clients.PATCH("/:id/", h.Clients.Patch)
		clients.DELETE("/:id/", h.Clients.Delete)
		clients.GET("/:id/profile/", h.Clients.Profile)
	}

	enrollments := protected.Group("/enrollments", middleware.Audit(opts.Audit, "enrollments", opts.Logger))
	{
		enrollments.GET("/", h.Enrollments.List)
		enrollments.POST("/", h.Enrollments.Create)
		enrollments.GET("/export/", h.Enrollments.Export)
		enrollments.GET("/:id/", h.Enrollments.Get)
		enrollments.PUT("/:id/", h.Enrollments.Update)
		enrollments.PATCH("/:id/", h.Enrollments.Patch)
		enrollments.DELETE("/:id/", h.Enrollments.Delete)
	}

	protected.GET("/dashboard/", h.Dashboard.Stats)

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, appErrors.New("METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed, "method not allowed"))
	})

	return r
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/health-program-api/internal/handler"
	"github.com/noah-isme/health-program-api/internal/middleware"
	"github.com/noah-isme/health-program-api/internal/repository"
	"github.com/noah-isme/health-program-api/internal/server"
	"github.com/noah-isme/health-program-api/internal/service"
	"github.com/noah-isme/health-program-api/pkg/cache"
	"github.com/noah-isme/health-program-api/pkg/config"
	"github.com/noah-isme/health-program-api/pkg/database"
	"github.com/noah-isme/health-program-api/pkg/logger"
	"github.com/noah-isme/health-program-api/pkg/validation"
)

// @title Health Program API
// @version 1.0.0
// @description Client, program and enrollment management for health programs
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	var redisClient *redis.Client
	if cfg.Profile.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, profile cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient),
		metrics,
		cfg.Profile.CacheTTL,
		logr.Named("cache"),
		redisClient != nil,
	)

	validate := validation.New()

	userRepo := repository.NewUserRepository(db)
	programRepo := repository.NewProgramRepository(db)
	clientRepo := repository.NewClientRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr.Named("auth"), service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	profileSvc := service.NewProfileService(clientRepo, enrollmentRepo, cacheSvc, cfg.Profile.CacheTTL, logr.Named("profile"))
	programSvc := service.NewProgramService(programRepo, profileSvc, validate, logr.Named("programs"))
	clientSvc := service.NewClientService(clientRepo, profileSvc, validate, logr.Named("clients"))
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, clientRepo, programRepo, profileSvc, validate, logr.Named("enrollments"))
	dashboardSvc := service.NewDashboardService(repository.NewDashboardRepository(db), logr.Named("dashboard"))
	exportSvc := service.NewExportService(clientRepo, enrollmentRepo, logr.Named("export"))

	pagination := handler.Pagination{PageSize: cfg.Pagination.PageSize, MaxPageSize: cfg.Pagination.MaxPageSize}

	router := server.NewRouter(server.Options{
		Env:            cfg.Env,
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logr,
		Metrics:        metrics,
		AuthLimiter:    middleware.NewRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst),
		Tokens:         authSvc,
		Audit:          userRepo,
	}, server.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Programs:    handler.NewProgramHandler(programSvc, pagination),
		Clients:     handler.NewClientHandler(clientSvc, profileSvc, exportSvc, pagination),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc, exportSvc, pagination),
		Dashboard:   handler.NewDashboardHandler(dashboardSvc),
		System:      handler.NewMetricsHandler(metrics, db, logr),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown error", zap.Error(err))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-eligibility-api/api/swagger"
	"github.com/noah-isme/course-eligibility-api/internal/eligibility"
	"github.com/noah-isme/course-eligibility-api/internal/handler"
	"github.com/noah-isme/course-eligibility-api/internal/i18n"
	internalmiddleware "github.com/noah-isme/course-eligibility-api/internal/middleware"
	"github.com/noah-isme/course-eligibility-api/internal/repository"
	"github.com/noah-isme/course-eligibility-api/internal/service"
	"github.com/noah-isme/course-eligibility-api/pkg/cache"
	"github.com/noah-isme/course-eligibility-api/pkg/config"
	"github.com/noah-isme/course-eligibility-api/pkg/database"
	"github.com/noah-isme/course-eligibility-api/pkg/jobs"
	"github.com/noah-isme/course-eligibility-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-eligibility-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-eligibility-api/pkg/middleware/requestid"
)

// @title Course Eligibility API
// @version 1.0.0
// @description Decides whether courses and their enrolments can feed course completion analytics
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	localizer, err := i18n.NewLocalizer(cfg.Eligibility.DefaultLocale)
	if err != nil {
		logr.Fatal("failed to build message catalog", zap.Error(err))
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Eligibility.CacheTTL, logr, cfg.Eligibility.CacheEnabled && redisClient != nil)

	formats := repository.NewFormatCatalog(cfg.Eligibility.SectionFormats)
	courseRepo := repository.NewCourseRepository(db, formats)
	enrolmentRepo := repository.NewEnrolmentRepository(db)

	eligibilitySvc := service.NewEligibilityService(service.EligibilityServiceParams{
		Courses:   courseRepo,
		Samples:   enrolmentRepo,
		Formats:   formats,
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		Validator: validate,
		Logger:    logr,
		Config: service.EligibilityServiceConfig{
			Limits: eligibility.Limits{
				MaxSpan:      cfg.Eligibility.MaxSpan,
				SettleMargin: cfg.Eligibility.SettleMargin,
			},
			CacheTTL:       cfg.Eligibility.CacheTTL,
			MaxConcurrency: cfg.Eligibility.MaxConcurrency,
		},
	})
	exportSvc := service.NewExportService(eligibilitySvc, localizer, logr)
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	batchSvc := service.NewBatchService(eligibilitySvc, metricsSvc, validate, logr)
	batchQueue := jobs.NewQueue("eligibility-batches", batchSvc.Handle, jobs.QueueConfig{
		Workers:    cfg.Eligibility.BatchWorkers,
		MaxRetries: cfg.Eligibility.BatchRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
		OnFailure:  batchSvc.MarkFailed,
	})
	batchSvc.UseQueue(batchQueue)
	batchQueue.Start(ctx)
	defer batchQueue.Stop()

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Routes{
		Eligibility: handler.NewEligibilityHandler(eligibilitySvc, exportSvc, localizer),
		Batches:     handler.NewBatchHandler(batchSvc, localizer),
		Metrics:     metricsHandler,
		Tokens:      tokenSvc,
		Logger:      logr,
	}.Register(r.Group(cfg.APIPrefix))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := cacheRepo.Close(); err != nil {
		logr.Warn("failed to close redis", zap.Error(err))
	}
}

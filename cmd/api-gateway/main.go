package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/peer-review-api/api/swagger"
	"github.com/noah-isme/peer-review-api/internal/handler"
	internalmiddleware "github.com/noah-isme/peer-review-api/internal/middleware"
	"github.com/noah-isme/peer-review-api/internal/repository"
	"github.com/noah-isme/peer-review-api/internal/service"
	"github.com/noah-isme/peer-review-api/pkg/cache"
	"github.com/noah-isme/peer-review-api/pkg/config"
	"github.com/noah-isme/peer-review-api/pkg/database"
	"github.com/noah-isme/peer-review-api/pkg/jobs"
	"github.com/noah-isme/peer-review-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/peer-review-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/peer-review-api/pkg/middleware/requestid"
)

// @title Peer Review API
// @version 1.0.0
// @description Monthly peer review collection and group results
// @BasePath /api/v1
// @schemes http https
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

	redisClient, err := cache.NewRedis(ctx, cfg.Redis, cfg.Results.CacheEnabled)
	if err != nil {
		// results are always computable from the store, so run without cache
		logr.Warn("results cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	r, warmer := newRouter(cfg, logr, db, redisClient, metrics)
	warmer.Start(ctx)
	defer warmer.Stop()

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func newRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client, metrics *service.MetricsService) (*gin.Engine, *service.ResultsWarmer) {
	validate := validator.New()

	periodRepo := repository.NewPeriodRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	resultsCacheRepo := repository.NewResultsCacheRepository(redisClient)

	resultsCache := service.NewResultsCache(resultsCacheRepo, cfg.Results.CacheEnabled && resultsCacheRepo.Available(), cfg.Results.CacheTTL, metrics, logr)
	periodSvc := service.NewPeriodService(periodRepo, validate, metrics, logr)
	resultSvc := service.NewResultService(service.ResultServiceParams{
		Scores:  reviewRepo,
		Groups:  directoryRepo,
		Periods: periodRepo,
		Cache:   resultsCache,
		Metrics: metrics,
		Logger:  logr,
	})
	var warmer *service.ResultsWarmer
	if resultsCache.Enabled() && cfg.Results.WarmWorkers > 0 {
		warmer = service.NewResultsWarmer(resultSvc, jobs.QueueConfig{
			Workers:    cfg.Results.WarmWorkers,
			MaxRetries: 2,
			RetryDelay: 2 * time.Second,
			Logger:     logr,
		})
	}
	admissionSvc := service.NewAdmissionService(service.AdmissionServiceParams{
		Periods:   periodRepo,
		Students:  directoryRepo,
		Ledger:    submissionRepo,
		Reviews:   reviewRepo,
		Cache:     resultsCache,
		Warmer:    warmer,
		Refresher: resultSvc,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
		Config:    service.AdmissionConfig{EnforceGroupMembership: cfg.Submission.EnforceGroupMembership},
	})
	directorySvc := service.NewDirectoryService(directoryRepo, service.DirectoryConfig{
		SearchMinLength: cfg.Directory.SearchMinLength,
		SearchLimit:     cfg.Directory.SearchLimit,
	}, logr)
	authSvc := service.NewAuthService(adminRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	periodHandler := handler.NewPeriodHandler(periodSvc)
	admissionHandler := handler.NewAdmissionHandler(admissionSvc)
	resultHandler := handler.NewResultHandler(resultSvc)
	directoryHandler := handler.NewDirectoryHandler(directorySvc)
	authHandler := handler.NewAuthHandler(authSvc)
	metricsHandler := handler.NewMetricsHandler(metrics.Handler(), db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	if !cfg.IsProduction() {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if !cfg.AdminAuth.Enabled {
		logr.Warn("admin routes are not protected; set ENABLE_ADMIN_AUTH=true in shared deployments")
	}
	mountRoutes(r, cfg.APIPrefix,
		newRouteHandlers(periodHandler, admissionHandler, resultHandler, directoryHandler, authHandler, metricsHandler),
		internalmiddleware.AdminGuard(cfg.AdminAuth.Enabled, authSvc))

	return r, warmer
}

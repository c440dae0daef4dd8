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

	_ "github.com/noah-isme/sma-journal-api/api/swagger"
	"github.com/noah-isme/sma-journal-api/internal/handler"
	"github.com/noah-isme/sma-journal-api/internal/middleware"
	"github.com/noah-isme/sma-journal-api/internal/models"
	"github.com/noah-isme/sma-journal-api/internal/repository"
	"github.com/noah-isme/sma-journal-api/internal/service"
	"github.com/noah-isme/sma-journal-api/pkg/cache"
	"github.com/noah-isme/sma-journal-api/pkg/config"
	"github.com/noah-isme/sma-journal-api/pkg/database"
	"github.com/noah-isme/sma-journal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-journal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-journal-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-journal-api/pkg/storage"
)

// @title SMA Journal API
// @version 0.1.0
// @description Teaching journal generation and grouping service
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	validate := validator.New()

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Journal.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Journal.CacheTTL, logr, true)
	} else {
		cacheService = service.NewCacheService(nil, metricsService, cfg.Journal.CacheTTL, logr, false)
	}

	journalRepo := repository.NewJournalRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	classRepo := repository.NewClassRepository(db)
	userRepo := repository.NewUserRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	generatorService := service.NewJournalGeneratorService(
		scheduleRepo, holidayRepo, classRepo, timeSlotRepo, journalRepo,
		metricsService, validate, logr,
		service.JournalGeneratorConfig{MaxRangeDays: cfg.Journal.MaxRangeDays},
	)
	groupService := service.NewJournalGroupService()
	journalService := service.NewJournalService(journalRepo, groupService, cacheService, validate, logr)
	masterDataService := service.NewMasterDataService(scheduleRepo, holidayRepo, timeSlotRepo, logr)

	authHandler := handler.NewAuthHandler(authService)
	journalHandler := handler.NewJournalHandler(generatorService, journalService)
	masterDataHandler := handler.NewMasterDataHandler(masterDataService)
	metricsHandler := handler.NewMetricsHandler(metricsService, db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportHandler *handler.ExportHandler
	var exportService *service.JournalExportService
	if cfg.Exports.Enabled {
		fileStorage, err := storage.NewArtifactStore(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewDownloadSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportService = service.NewJournalExportService(
			journalRepo, groupService, fileStorage, signer, validate, logr,
			service.ExportConfig{
				APIPrefix:         cfg.APIPrefix,
				WorkerConcurrency: cfg.Exports.WorkerConcurrency,
				WorkerRetries:     cfg.Exports.WorkerRetries,
			},
		)
		exportService.Start(ctx)
		defer exportService.Stop()
		exportHandler = handler.NewExportHandler(exportService, fileStorage)

		if removed, err := fileStorage.Sweep(cfg.Exports.RetentionTTL); err != nil {
			logr.Sugar().Warnw("export retention sweep failed", "error", err)
		} else if removed > 0 {
			logr.Sugar().Infow("expired export artifacts removed", "count", removed)
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	if exportHandler != nil {
		// Download is authorised by the signed token itself.
		api.GET("/journal/exports/download", exportHandler.Download)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/journal", journalHandler.List)
	authed.GET("/schedule", masterDataHandler.ListSchedule)
	authed.GET("/holidays", masterDataHandler.ListHolidays)
	authed.GET("/time-slots", masterDataHandler.ListTimeSlots)
	if exportHandler != nil {
		authed.POST("/journal/exports", exportHandler.Create)
		authed.GET("/journal/exports/:id", exportHandler.Get)
	}

	mutate := authed.Group("")
	mutate.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleOperator))
	mutate.POST("/journal/generate", journalHandler.Generate)
	mutate.DELETE("/journal/range", journalHandler.DeleteRange)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

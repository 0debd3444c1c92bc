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
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/fullsco/scholarship-api/api/swagger"
	"github.com/fullsco/scholarship-api/internal/handler"
	"github.com/fullsco/scholarship-api/internal/middleware"
	"github.com/fullsco/scholarship-api/internal/models"
	"github.com/fullsco/scholarship-api/internal/repository"
	"github.com/fullsco/scholarship-api/internal/service"
	"github.com/fullsco/scholarship-api/pkg/cache"
	"github.com/fullsco/scholarship-api/pkg/config"
	"github.com/fullsco/scholarship-api/pkg/database"
	"github.com/fullsco/scholarship-api/pkg/logger"
	corsmiddleware "github.com/fullsco/scholarship-api/pkg/middleware/cors"
	"github.com/fullsco/scholarship-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/fullsco/scholarship-api/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// @title FULLSCO Scholarship API
// @version 1.0.0
// @description Scholarship search, taxonomy and site settings API.
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(database.URL(cfg.Database)); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
		logr.Info("migrations applied")
	}

	// A nil interface disables caching; a typed nil *redis.Client would not.
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, search cache disabled", zap.Error(err))
		} else {
			redisClient = client
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Search.CacheTTL, logr, cfg.Search.CacheEnabled && redisClient != nil)
	validate := validator.New()

	categoryRepo := repository.NewTaxonomyRepository(db, models.TaxonomyCategory)
	countryRepo := repository.NewTaxonomyRepository(db, models.TaxonomyCountry)
	levelRepo := repository.NewTaxonomyRepository(db, models.TaxonomyLevel)
	scholarshipRepo := repository.NewScholarshipRepository(db)
	settingsRepo := repository.NewSiteSettingsRepository(db)

	resolver := service.NewFilterResolver(categoryRepo, countryRepo, levelRepo, service.FilterResolverConfig{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	}, metricsSvc, logr)
	assembler := service.NewScholarshipAssembler(categoryRepo, countryRepo, levelRepo, cfg.Search.DefaultThumbnail)

	searchSvc := service.NewScholarshipSearchService(resolver, scholarshipRepo, assembler, cacheSvc, cfg.Search.CacheTTL, metricsSvc, logr)
	scholarshipSvc := service.NewScholarshipService(scholarshipRepo, resolver, assembler, categoryRepo, countryRepo, levelRepo, cacheSvc, validate, logr, service.ScholarshipServiceConfig{
		ExportMaxRows: cfg.Export.MaxRows,
	})
	settingsSvc := service.NewSiteSettingsService(settingsRepo, validate, logr)
	tokens := service.NewTokenValidator(service.TokenValidatorConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	deps := handler.RouterDeps{
		Scholarships: handler.NewScholarshipHandler(searchSvc, scholarshipSvc),
		Categories:   handler.NewTaxonomyHandler(service.NewTaxonomyService(categoryRepo, cacheSvc, validate, logr)),
		Countries:    handler.NewTaxonomyHandler(service.NewTaxonomyService(countryRepo, cacheSvc, validate, logr)),
		Levels:       handler.NewTaxonomyHandler(service.NewTaxonomyService(levelRepo, cacheSvc, validate, logr)),
		Settings:     handler.NewSettingsHandler(settingsSvc),
		Metrics:      handler.NewMetricsHandler(metricsSvc, db),
		Tokens:       tokens,
	}
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ratelimit.Config{RPS: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst})
		defer limiter.Stop()
		deps.RateLimit = limiter.Middleware()
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, deps)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

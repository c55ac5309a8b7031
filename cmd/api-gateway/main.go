package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ankithlg/PeerBridge/api/swagger"
	"github.com/ankithlg/PeerBridge/internal/handler"
	"github.com/ankithlg/PeerBridge/internal/middleware"
	"github.com/ankithlg/PeerBridge/internal/repository"
	"github.com/ankithlg/PeerBridge/internal/service"
	"github.com/ankithlg/PeerBridge/pkg/cache"
	"github.com/ankithlg/PeerBridge/pkg/config"
	"github.com/ankithlg/PeerBridge/pkg/database"
	"github.com/ankithlg/PeerBridge/pkg/jobs"
	"github.com/ankithlg/PeerBridge/pkg/logger"
	corsmiddleware "github.com/ankithlg/PeerBridge/pkg/middleware/cors"
	reqidmiddleware "github.com/ankithlg/PeerBridge/pkg/middleware/requestid"
	"github.com/ankithlg/PeerBridge/pkg/storage"
)

// @title PeerBridge API
// @version 1.0.0
// @description Peer skill-exchange platform: profiles, teacher matching and connections
// @BasePath /api/v1
// @schemes http

const jobTypeCacheInvalidate = "cache.invalidate"

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.Database.MigrationsDir); err != nil {
		logr.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, match caching disabled", zap.Error(err))
		redisClient = nil
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	studentRepo := repository.NewStudentRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(studentRepo, cfg.JWT, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)
	skillSvc := service.NewSkillService(skillRepo, logr)
	matchSvc := service.NewMatchService(skillRepo, connectionRepo, cacheRepo,
		cfg.Matching.CacheEnabled && redisClient != nil, cfg.Matching.CacheTTL, metricsSvc, logr)

	maintenance := jobs.NewQueue("maintenance", func(jobCtx context.Context, job jobs.Job) error {
		switch job.Type {
		case jobTypeCacheInvalidate:
			event, ok := job.Payload.(service.ConnectionEvent)
			if !ok {
				return fmt.Errorf("unexpected payload type %T", job.Payload)
			}
			if err := matchSvc.InvalidateFor(jobCtx, event.StudentA); err != nil {
				return err
			}
			return matchSvc.InvalidateFor(jobCtx, event.StudentB)
		case service.JobTypeExportCleanup:
			removed, err := exportStore.CleanupOlderThan(cfg.Exports.SignedURLTTL)
			if err != nil {
				return err
			}
			if len(removed) > 0 {
				logr.Info("expired exports removed", zap.Int("count", len(removed)))
			}
			return nil
		default:
			return fmt.Errorf("unknown job type %q", job.Type)
		}
	}, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerCount,
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	maintenance.Start(ctx)
	defer maintenance.Stop()

	connectionSvc := service.NewConnectionService(connectionRepo, studentRepo, metricsSvc, logr, func(event service.ConnectionEvent) {
		if err := maintenance.Enqueue(jobs.Job{Type: jobTypeCacheInvalidate, Payload: event}); err != nil {
			logr.Warn("failed to enqueue cache invalidation", zap.Error(err))
		}
	})
	exportSvc := service.NewExportService(connectionRepo, exportStore, signer, maintenance, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	skillHandler := handler.NewSkillHandler(skillSvc)
	matchHandler := handler.NewMatchHandler(matchSvc)
	connectionHandler := handler.NewConnectionHandler(connectionSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		version, err := database.MigrationVersion(c.Request.Context(), db)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "schema_version": version})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api/v1")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.GET("/students/me", studentHandler.Me)
	protected.PATCH("/students/me", studentHandler.UpdateMe)
	protected.GET("/students/:id", studentHandler.Get)
	protected.GET("/skills/teach", skillHandler.ListTeachSkills)
	protected.POST("/skills/teach", skillHandler.AddTeachSkill)
	protected.DELETE("/skills/teach/:id", skillHandler.DeleteTeachSkill)
	protected.GET("/skills/learn", skillHandler.ListLearnSkills)
	protected.POST("/skills/learn", skillHandler.AddLearnSkill)
	protected.DELETE("/skills/learn/:id", skillHandler.DeleteLearnSkill)
	protected.POST("/matches", matchHandler.Find)
	protected.GET("/connections", connectionHandler.List)
	protected.POST("/connections", connectionHandler.Request)
	protected.POST("/connections/:id/respond", connectionHandler.Respond)
	protected.GET("/connections/status", connectionHandler.Status)
	protected.DELETE("/connections", connectionHandler.Remove)
	protected.POST("/exports/connections", exportHandler.Create)

	// Download authenticates through the signed token itself.
	api.GET("/exports/download", exportHandler.Download)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

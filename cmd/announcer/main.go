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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/aslabkom/announcer-api/api/swagger"
	"github.com/aslabkom/announcer-api/internal/audio"
	"github.com/aslabkom/announcer-api/internal/handler"
	"github.com/aslabkom/announcer-api/internal/ids"
	"github.com/aslabkom/announcer-api/internal/lexicon"
	"github.com/aslabkom/announcer-api/internal/middleware"
	"github.com/aslabkom/announcer-api/internal/repository"
	"github.com/aslabkom/announcer-api/internal/service"
	"github.com/aslabkom/announcer-api/internal/tts"
	"github.com/aslabkom/announcer-api/pkg/cache"
	"github.com/aslabkom/announcer-api/pkg/config"
	"github.com/aslabkom/announcer-api/pkg/database"
	"github.com/aslabkom/announcer-api/pkg/logger"
	corsmiddleware "github.com/aslabkom/announcer-api/pkg/middleware/cors"
	reqidmiddleware "github.com/aslabkom/announcer-api/pkg/middleware/requestid"
	"github.com/aslabkom/announcer-api/pkg/storage"
)

// @title Announcer API
// @version 1.0.0
// @description PA announcement service: TTS clip production and playback scheduling
// @BasePath /api
// @schemes http

const transientTTL = time.Hour

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

	clips, err := storage.NewClipStore(cfg.Audio.ClipDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare clip directory", "error", err)
	}
	if removed, err := clips.CleanupTransients(transientTTL); err != nil {
		logr.Sugar().Warnw("transient cleanup failed", "error", err)
	} else if len(removed) > 0 {
		logr.Sugar().Infow("removed stale pipeline artifacts", "count", len(removed))
	}

	var (
		announcementStore repository.AnnouncementStore = repository.NewMemoryAnnouncementRepository()
		scheduleStore     repository.ScheduleStore     = repository.NewMemoryScheduleRepository()
		recitationStore   repository.RecitationStore   = repository.NewMemoryRecitationRepository()
	)
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		announcementStore = repository.NewAnnouncementRepository(db)
		scheduleStore = repository.NewScheduleRepository(db)
		recitationStore = repository.NewRecitationRepository(db)
		logr.Info("using postgres stores")
	} else {
		logr.Info("using in-memory stores")
	}

	var redisClient *redis.Client
	if cfg.Schedules.EnableCaching {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, due cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	metricsSvc := service.NewMetricsService()
	gen := ids.NewMonotonic()

	engine := tts.NewExternalEngine(
		cfg.Synthesis.Command,
		cfg.Synthesis.ScriptPath,
		time.Duration(cfg.Synthesis.TimeoutSeconds)*time.Second,
		logr,
	)
	mixer := audio.NewFFmpegMixer(
		cfg.Audio.FFmpegPath,
		time.Duration(cfg.Audio.TimeoutSeconds)*time.Second,
		logr,
	)
	pipeline := tts.NewPipeline(lexicon.NewNormalizer(), engine, mixer, clips, cfg.Audio.IntroPath, cfg.Audio.OutroPath, logr)
	if err := pipeline.CheckAssets(); err != nil {
		logr.Sugar().Warnw("jingle assets missing, generation will fail until they are in place",
			"intro", cfg.Audio.IntroPath, "outro", cfg.Audio.OutroPath)
	}

	announcementSvc := service.NewAnnouncementService(
		announcementStore, scheduleStore, pipeline, clips, gen,
		service.AnnouncementServiceConfig{
			BaseURL:    cfg.BaseURL,
			Workers:    cfg.Synthesis.Workers,
			QueueSize:  cfg.Synthesis.QueueSize,
			JobTimeout: time.Duration(cfg.Synthesis.TimeoutSeconds+cfg.Audio.TimeoutSeconds) * time.Second,
		}, metricsSvc, logr)
	scheduleSvc := service.NewScheduleService(scheduleStore, announcementStore, clips, gen, nil, logr)
	recitationSvc := service.NewRecitationService(recitationStore, gen, nil, logr)
	playbackSvc := service.NewPlaybackService(scheduleStore, recitationStore, announcementStore, redisClient,
		service.PlaybackServiceConfig{
			Timezone: cfg.Schedules.Timezone,
			CacheTTL: cfg.Schedules.DueCacheTTL,
		}, metricsSvc, logr)
	authSvc := service.NewAuthService(service.AuthServiceConfig{
		AccessCode: cfg.Auth.AccessCode,
		JWTSecret:  cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	}, nil, logr)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()
	announcementSvc.Start(rootCtx)
	defer announcementSvc.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc),
		Schedules:     handler.NewScheduleHandler(scheduleSvc),
		Recitations:   handler.NewRecitationHandler(recitationSvc),
		Playback:      handler.NewPlaybackHandler(playbackSvc),
		System:        handler.NewSystemHandler(cfg.BaseURL, pipeline),
		Metrics:       handler.NewMetricsHandler(metricsSvc),
		Authenticate:  middleware.JWTAuth(authSvc),
	}, clips.Dir())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Info("server stopped", zap.String("addr", addr))
}

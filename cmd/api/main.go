package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	_ "dub-pipeline-service/docs"
	"dub-pipeline-service/internal/adapter"
	"dub-pipeline-service/internal/config"
	"dub-pipeline-service/internal/logging"
	"dub-pipeline-service/internal/media"
	"dub-pipeline-service/internal/repository/postgresql"
	"dub-pipeline-service/internal/service"
	"dub-pipeline-service/internal/storage"
	httptransport "dub-pipeline-service/internal/transport/http"
)

// @title Dub Pipeline Service API
// @version 1.0
// @description Video dubbing pipeline: upload, transcribe, translate, synthesize, mux.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.New(config.EnvOr("LOG_LEVEL", "info"))

	pgDSN := config.MustEnv("POSTGRES_DSN")
	redisAddr := config.MustEnv("REDIS_ADDR")
	addr := config.EnvOr("HTTP_ADDR", ":8080")
	queuePrefix := config.EnvOr("REDIS_KEY_PREFIX", "dub")

	pool, err := postgresql.NewPool(ctx, pgDSN)
	if err != nil {
		log.WithError(err).Fatal("pg connect")
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("redis connect")
	}

	projects := postgresql.NewProjectRepository(pool)
	jobs := postgresql.NewJobRepository(pool)
	artifacts := postgresql.NewArtifactRepository(pool)

	store := storage.NewSupabaseStore(
		config.MustEnv("SUPABASE_URL"),
		config.MustEnv("SUPABASE_SERVICE_KEY"),
		config.EnvOr("SUPABASE_BUCKET", "dub-media"),
	)

	registry, err := adapter.NewRegistry(adapter.Config{
		STT:         adapter.Endpoint{Provider: config.EnvOr("STT_PROVIDER", "whisper"), URL: config.MustEnv("STT_URL")},
		Translation: adapter.Endpoint{Provider: config.EnvOr("TRANSLATION_PROVIDER", "mt"), URL: config.MustEnv("TRANSLATION_URL")},
		TTS:         adapter.Endpoint{Provider: config.EnvOr("TTS_PROVIDER", "tts"), URL: config.MustEnv("TTS_URL")},
	}, nil)
	if err != nil {
		log.WithError(err).Fatal("adapter registry")
	}

	queue := service.NewRedisStageQueue(rdb, queuePrefix)
	notifier := service.NewRedisNotifier(rdb, queuePrefix)

	orch := service.NewOrchestrator(projects, jobs, artifacts, queue, notifier, log, service.OrchestratorOptions{
		OutputTTL: config.EnvDurationOr("OUTPUT_TTL", 7*24*time.Hour),
		Watermark: config.EnvBoolOr("WATERMARK", false),
	})

	ffmpeg := media.NewFFmpeg(log)
	projectSvc := service.NewProjectService(projects, jobs, artifacts, ffmpeg, store, log)

	h := httptransport.NewHandler(projectSvc, orch, registry)
	srv := &http.Server{
		Addr:         addr,
		Handler:      httptransport.Routes(h, log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr": addr, "postgres_dsn": config.RedactDSN(pgDSN), "redis_addr": redisAddr,
		}).Info("[http] api started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http serve")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	log.Info("[http] api stopped")
}

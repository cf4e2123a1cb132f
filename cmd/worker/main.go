package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"dub-pipeline-service/internal/adapter"
	"dub-pipeline-service/internal/config"
	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/logging"
	"dub-pipeline-service/internal/media"
	"dub-pipeline-service/internal/repository/postgresql"
	"dub-pipeline-service/internal/service"
	"dub-pipeline-service/internal/storage"
	"dub-pipeline-service/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.New(config.EnvOr("LOG_LEVEL", "info"))

	pgDSN := config.MustEnv("POSTGRES_DSN")
	redisAddr := config.MustEnv("REDIS_ADDR")
	queuePrefix := config.EnvOr("REDIS_KEY_PREFIX", "dub")
	workersPerStage := config.EnvIntOr("WORKERS_PER_STAGE", 2)

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

	processor := worker.NewProcessor(jobs, orch, log,
		worker.NewSTTRunner(ffmpeg, store, registry),
		worker.NewTranslationRunner(artifacts, registry),
		worker.NewTTSRunner(artifacts, store, registry),
		worker.NewMuxingRunner(ffmpeg, store),
	)

	// Reaper: redeliver jobs stranded in processing lanes by a crashed
	// worker, and promote delayed retries that are due.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := queue.RequeueStale(ctx, 100); err != nil {
					log.WithError(err).Error("requeue stale")
				} else if n > 0 {
					log.WithField("count", n).Info("[worker] requeued stale jobs")
				}
				if n, err := queue.PromoteDue(ctx, 100); err != nil {
					log.WithError(err).Error("promote delayed")
				} else if n > 0 {
					log.WithField("count", n).Info("[worker] promoted delayed retries")
				}
			}
		}
	}()

	// Purge: drop expired outputs and their stored media.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged, err := projects.PurgeExpired(ctx, 100)
				if err != nil {
					log.WithError(err).Error("purge expired")
					continue
				}
				for _, p := range purged {
					keys := append(storage.ProjectKeys(p.ID.String()), p.VideoKey)
					if err := store.Remove(ctx, keys...); err != nil {
						log.WithFields(logrus.Fields{"project_id": p.ID}).
							WithError(err).Error("purge storage")
						continue
					}
					log.WithField("project_id", p.ID).Info("[worker] project purged")
				}
			}
		}
	}()

	log.WithFields(logrus.Fields{
		"workers_per_stage": workersPerStage,
		"redis_addr":        redisAddr,
		"key_prefix":        queuePrefix,
		"postgres_dsn":      config.RedactDSN(pgDSN),
	}).Info("[worker] started")

	var wg sync.WaitGroup
	for _, stage := range entity.Stages() {
		wg.Add(1)
		go func(s entity.Stage) {
			defer wg.Done()
			worker.NewPool(queue, s, processor, workersPerStage, log).Run(ctx)
		}(stage)
	}
	wg.Wait()

	log.Info("[worker] stopped")
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"worker-debrief/config"
	"worker-debrief/constant"
	jobHandler "worker-debrief/handler"
	"worker-debrief/pkg/diarize"
	"worker-debrief/pkg/genai"
	"worker-debrief/pkg/rabbitmq"
	"worker-debrief/pkg/storage"
	"worker-debrief/pkg/transcription"
	"worker-debrief/repository"
	"worker-debrief/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewRabbitMQConn")
	}

	repo := repository.NewRepo(cfg.DB)
	store := storage.NewMinIOStore(cfg.Storage, cfg.MinIOBucket)
	transcriber := transcription.NewClient(cfg.Transcription.URL, cfg.Transcription.APIKey, cfg.Transcription.Timeout)
	diarizer := diarize.NewClient(cfg.Diarization.URL, cfg.Diarization.Timeout)
	generator := genai.NewClient(cfg.Generation.URL, cfg.Generation.APIKey, cfg.Generation.Model, cfg.Generation.Timeout)

	publisher := rabbitmq.NewPublisher(conn)
	orchestrator := service.NewOrchestrator(repo, publisher)
	transcriptionService := service.NewTranscriptionService(repo, store, transcriber, diarizer, orchestrator, nil)
	debriefService := service.NewDebriefService(repo, generator)
	retryCoordinator := service.NewRetryCoordinator(repo, orchestrator)
	openerService := service.NewOpenerService(generator)

	serviceDeps := jobHandler.ServiceDependencies{
		TranscriptionService: transcriptionService,
		DebriefService:       debriefService,
	}

	consumerOpts := rabbitmq.Options{
		Workers:        cfg.Server.Workers,
		MaxAttempts:    cfg.Pipeline.MaxAttempts,
		InitialBackoff: cfg.Pipeline.InitialBackoff,
		JobsPerMinute:  cfg.Pipeline.JobsPerMinute,
	}

	transcriptionConsumer := rabbitmq.NewConsumer(conn, rabbitmq.TranscriptionStage, consumerOpts, jobHandler.TranscriptionHandler)
	go func() {
		if err := transcriptionConsumer.Consume(ctx, serviceDeps); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("transcription consumer error")
		}
	}()

	debriefConsumer := rabbitmq.NewConsumer(conn, rabbitmq.DebriefStage, consumerOpts, jobHandler.DebriefHandler)
	go func() {
		if err := debriefConsumer.Consume(ctx, serviceDeps); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("debrief consumer error")
		}
	}()

	go pruneJobs(ctx, repo, cfg.Pipeline)

	r := gin.Default()
	addHealth(r)
	api := &jobHandler.Api{
		Repo:         repo,
		Store:        store,
		Orchestrator: orchestrator,
		Retry:        retryCoordinator,
		Opener:       openerService,
	}
	api.Register(r)

	handler := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := handler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := handler.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

// pruneJobs enforces job retention hourly: completed rows past 24h (keeping
// the most recent 1000) and failed rows past 7 days.
func pruneJobs(ctx context.Context, repo repository.Repository, cfg config.Pipeline) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			err := repo.PruneJobs(ctx, now.Add(-cfg.CompletedRetention), now.Add(-cfg.FailedRetention), cfg.CompletedKeep)
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("job prune failed")
			}
		case <-ctx.Done():
			return
		}
	}
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}

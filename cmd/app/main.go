// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workflow-analyst/internal/config"
	apiv1 "workflow-analyst/internal/infra/api/apiv1"
	"workflow-analyst/internal/infra/llm"
	"workflow-analyst/internal/infra/logging"
	"workflow-analyst/internal/infra/metrics"
	"workflow-analyst/internal/infra/tracing"
	"workflow-analyst/internal/infra/worker"
	"workflow-analyst/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, error details, static AI fallback)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled: error details are returned to clients")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit, cfg.AI.Provider)

	// ---- Tracing ----
	tp, shutdownTracing := tracing.Setup(cfg.Tracing, logger)

	// ---- Job store ----
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("job store")
	}

	// ---- Events ----
	publisher, closeEvents := openEvents(cfg, logger)

	// ---- AI ----
	ai, err := buildAI(ctx, cfg, tp)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.AI.Provider).Msg("ai adapter")
	}
	gateway := llm.NewGateway(ai, llm.Options{
		Provider: cfg.AI.Provider,
		Model:    cfg.AI.DefaultModel,
		Timeout:  cfg.AI.RequestTimeout,
		Dev:      cfg.Runtime.Dev,
	}, logger)
	logger.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.DefaultModel).Msg("AI adapter ready")

	// ---- Worker pool ----
	// Not tied to the signal context: Stop decides when in-flight jobs are cancelled.
	pool := worker.NewPool(cfg.Worker.Workers, cfg.Worker.QueueSize, cfg.Worker.TaskTimeout, logger)
	pool.Start(context.Background())

	// ---- Use cases ----
	jobUC := usecase.NewJobUseCase(store, publisher, cfg.Store.KeyPrefix, logger)
	workflowUC := usecase.NewWorkflowUseCase(gateway, logger, cfg.Runtime.Dev)
	generationUC := usecase.NewGenerationJobUseCase(jobUC, workflowUC, pool, logger)

	// ---- HTTP ----
	srv := apiv1.NewServer(workflowUC, generationUC, logger, cfg.Runtime.Dev)
	router := apiv1.NewRouter(srv, apiv1.RouterOptions{
		AllowedOrigin:  cfg.Server.AllowedOrigin,
		RequestTimeout: cfg.Server.RequestTimeout,
		Metrics:        true,
	}, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("store", cfg.Store.Backend).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := pool.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("worker pool shutdown")
	}
	closeEvents()
	if err := closeStore(); err != nil {
		logger.Error().Err(err).Msg("close job store")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("tracing shutdown")
	}
	logger.Info().Msg("bye")
}

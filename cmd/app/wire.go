package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"workflow-analyst/internal/config"
	"workflow-analyst/internal/domain/ports/adapter"
	"workflow-analyst/internal/domain/ports/repository"
	aiAdapters "workflow-analyst/internal/infra/adapters/ai"
	pg "workflow-analyst/internal/infra/db/postgres"
	"workflow-analyst/internal/infra/db/sqlite"
	"workflow-analyst/internal/infra/events"
	"workflow-analyst/internal/infra/memory"
	red "workflow-analyst/internal/infra/redis"
	"workflow-analyst/internal/infra/scheduler"
)

// openStore builds the configured job store and a func that releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.JobStore, func() error, error) {
	noClose := func() error { return nil }
	switch cfg.Store.Backend {
	case "memory":
		return memory.NewJobStore(), noClose, nil

	case "redis":
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		stats := poolStats(ctx, "redis-pool-stats", client.ReportPoolStats, logger)
		return red.NewJobStore(client, cfg.Redis.TTL), func() error {
			stats.Stop()
			return client.Close()
		}, nil

	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.MaxConns))
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		st := pg.NewJobStore(pool)
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		stats := poolStats(ctx, "pg-pool-stats", func() { pg.ReportPoolStats(pool) }, logger)
		return st, func() error {
			stats.Stop()
			pool.Close()
			return nil
		}, nil

	case "sqlite":
		st, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		logger.Info().Str("path", cfg.SQLite.Path).Msg("sqlite job store opened")
		return st, st.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// poolStats reports connection pool gauges every 15s until stopped.
func poolStats(ctx context.Context, name string, report func(), logger *zerolog.Logger) *scheduler.Scheduler {
	s := scheduler.New(name, 15*time.Second, time.Second, func(context.Context) error {
		report()
		return nil
	}, logger)
	s.Start(ctx)
	return s
}

// openEvents connects the NATS publisher when configured. A failed connection is logged
// and the service runs without events.
func openEvents(cfg *config.Config, logger *zerolog.Logger) (adapter.JobEventPublisher, func()) {
	if cfg.Events.NATSURL == "" {
		return events.NopPublisher{}, func() {}
	}
	nc, err := events.Connect(cfg.Events.NATSURL)
	if err != nil {
		logger.Error().Err(err).Msg("job events disabled")
		return events.NopPublisher{}, func() {}
	}
	logger.Info().Str("url", cfg.Events.NATSURL).Str("prefix", cfg.Events.SubjectPrefix).Msg("publishing job events to NATS")
	return events.NewNATSPublisher(nc, cfg.Events.SubjectPrefix, logger), func() { _ = nc.Drain() }
}

// buildAI registers every provider that has credentials, routes by model name with the
// configured provider as default, then adds tracing and the concurrency limit.
func buildAI(ctx context.Context, cfg *config.Config, tp trace.TracerProvider) (adapter.AIServiceAdapter, error) {
	ac := cfg.AI
	providers := map[string]adapter.AIServiceAdapter{}

	if ac.GeminiKey != "" {
		g, err := aiAdapters.NewGeminiAdapter(ctx, ac.GeminiKey, ac.GeminiURL, ac.DefaultModel, ac.MaxOutputTokens, ac.Temperature)
		if err != nil {
			return nil, fmt.Errorf("gemini adapter: %w", err)
		}
		providers["gemini"] = g
	}
	if ac.OpenAIKey != "" {
		o, err := aiAdapters.NewOpenAIAdapter(ac.OpenAIKey, ac.DefaultModel, ac.OpenAIBaseURL, ac.MaxOutputTokens, ac.Temperature)
		if err != nil {
			return nil, fmt.Errorf("openai adapter: %w", err)
		}
		providers["openai"] = o
	}
	if ac.CompatibleBaseURL != "" {
		c, err := aiAdapters.NewCompatibleAdapter(ac.CompatibleKey, ac.DefaultModel, ac.CompatibleBaseURL, ac.MaxOutputTokens, ac.Temperature, ac.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("compatible adapter: %w", err)
		}
		providers["compatible"] = c
	}
	if ac.Provider == "static" {
		providers["static"] = aiAdapters.NewStaticAdapter(ac.StaticReply)
	}
	if _, ok := providers[ac.Provider]; !ok {
		return nil, fmt.Errorf("provider %q has no credentials", ac.Provider)
	}

	multi := aiAdapters.NewMultiAIAdapter(ac.Provider, providers, nil)
	traced := aiAdapters.NewTracedAI(multi, ac.Provider, tp)
	return aiAdapters.NewLimitedAI(traced, ac.ConcurrentLimit), nil
}

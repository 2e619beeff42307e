package bootstrap

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"meetscribe/internal/audio"
	"meetscribe/internal/cli"
	"meetscribe/internal/config"
	"meetscribe/internal/metrics"
	"meetscribe/internal/ports"
	"meetscribe/internal/providers/gemini"
	"meetscribe/internal/retry"
	"meetscribe/internal/store"
	"meetscribe/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Orchestrator *usecase.Orchestrator
	Store        *store.PostgresStore
	Syncer       ports.MeetingSyncer
	Registry     *prometheus.Registry
	Config       config.Config
}

// Close releases resources held by long-lived collaborators.
func (s Services) Close() error {
	if s.Store != nil {
		return s.Store.Close()
	}
	return nil
}

// Build wires all backend dependencies for the current runtime. The
// Postgres store and Supabase syncer are optional: when unconfigured
// the pipeline still runs, it just keeps results in memory.
func Build(ctx context.Context, cfg config.Config, events ports.EventSink, logger *slog.Logger) (Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	geminiCfg := gemini.Config{
		APIKey:          cfg.Gemini.APIKey,
		BaseURL:         cfg.Gemini.BaseURL,
		LiveEndpoint:    cfg.Gemini.LiveEndpoint,
		TranscribeModel: cfg.Gemini.TranscribeModel,
		AnalysisModel:   cfg.Gemini.AnalysisModel,
		ThinkingBudget:  cfg.Gemini.ThinkingBudget,
		Timeout:         cfg.Gemini.Timeout(),
	}
	client := gemini.NewClient(geminiCfg, logger)
	live := gemini.NewLive(geminiCfg, logger, m)

	var meetingStore *store.PostgresStore
	var storePort ports.MeetingStore
	if cfg.Postgres.DSN != "" {
		meetingStore = store.NewPostgresStore(store.PostgresConfig{
			DSN:          cfg.Postgres.DSN,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
			MaxIdleConns: cfg.Postgres.MaxIdleConns,
		})
		if err := meetingStore.Connect(ctx); err != nil {
			return Services{}, err
		}
		storePort = meetingStore
	}

	var syncer ports.MeetingSyncer
	if cfg.Supabase.URL != "" && cfg.Supabase.Key != "" {
		s, err := store.NewSupabaseSyncer(store.SupabaseConfig{
			URL: cfg.Supabase.URL,
			Key: cfg.Supabase.Key,
		})
		if err != nil {
			return Services{}, err
		}
		syncer = s
	}

	post := usecase.NewPostProcessor(
		client,
		client,
		storePort,
		events,
		retry.New(cfg.Retry.MaxRetries, cfg.Retry.BaseDelay()),
		logger,
		m,
	)

	orchestrator := usecase.NewOrchestrator(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		live,
		post,
		events,
		logger,
		m,
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				FrameSize:   cfg.Audio.FrameSize,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Streaming: ports.StreamingConfig{
				SampleRate: cfg.Audio.SampleRate,
				QueueSize:  cfg.Streaming.QueueSize,
			},
		},
	)

	return Services{
		Orchestrator: orchestrator,
		Store:        meetingStore,
		Syncer:       syncer,
		Registry:     registry,
		Config:       cfg,
	}, nil
}

// Dependencies adapts the service graph to the CLI layer.
func (s Services) Dependencies(formatter *cli.Formatter, logger *slog.Logger) *cli.Dependencies {
	if logger == nil {
		logger = slog.Default()
	}
	deps := &cli.Dependencies{
		Orchestrator: s.Orchestrator,
		Syncer:       s.Syncer,
		Formatter:    formatter,
		Config:       s.Config,
		Logger:       logger,
	}
	if s.Store != nil {
		deps.Store = s.Store
	}
	return deps
}

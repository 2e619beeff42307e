package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meetscribe/internal/bootstrap"
	"meetscribe/internal/cli"
	"meetscribe/internal/config"
)

func main() {
	if err := run(); err != nil {
		cli.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath(), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	formatter := cli.NewFormatter(os.Stdout)

	services, err := bootstrap.Build(context.Background(), cfg, formatter, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, services, logger)
	}

	root := cli.NewRootCmd(services.Dependencies(formatter, logger))
	root.SetArgs(flag.Args())
	return root.Execute()
}

func serveMetrics(addr string, services bootstrap.Services, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(services.Registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics endpoint stopped", "addr", addr, "error", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func defaultConfigPath() string {
	if path := strings.TrimSpace(os.Getenv("MEETSCRIBE_CONFIG")); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.config/meetscribe/config.yaml"
}

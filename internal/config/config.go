// Package config resolves runtime configuration from an optional YAML
// file layered under environment variables. Secrets (API keys, DSNs)
// are environment-only and never read from the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config stores runtime configuration for meetscribe.
type Config struct {
	Gemini    GeminiConfig    `yaml:"gemini"`
	Audio     AudioConfig     `yaml:"audio"`
	Streaming StreamingConfig `yaml:"streaming"`
	Retry     RetryConfig     `yaml:"retry"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Supabase  SupabaseConfig  `yaml:"supabase"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

type MetricsConfig struct {
	// Addr enables a Prometheus /metrics endpoint when non-empty,
	// e.g. "127.0.0.1:9090".
	Addr string `yaml:"addr"`
}

type GeminiConfig struct {
	APIKey          string `yaml:"-"`
	BaseURL         string `yaml:"base_url"`
	LiveEndpoint    string `yaml:"live_endpoint"`
	TranscribeModel string `yaml:"transcribe_model"`
	AnalysisModel   string `yaml:"analysis_model"`
	ThinkingBudget  int    `yaml:"thinking_budget"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (g GeminiConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

type AudioConfig struct {
	RecorderCommand string `yaml:"recorder_command"`
	InputFormat     string `yaml:"input_format"`
	InputDevice     string `yaml:"input_device"`
	SampleRate      int    `yaml:"sample_rate"`
	Channels        int    `yaml:"channels"`
	FrameSize       int    `yaml:"frame_size"`
}

type StreamingConfig struct {
	QueueSize int `yaml:"queue_size"`
}

type RetryConfig struct {
	MaxRetries  int `yaml:"max_retries"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// BaseDelay returns the first backoff interval as a duration.
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMS) * time.Millisecond
}

type PostgresConfig struct {
	DSN          string `yaml:"-"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type SupabaseConfig struct {
	URL string `yaml:"-"`
	Key string `yaml:"-"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist), overlays environment variables, and validates.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.overlayEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Gemini: GeminiConfig{
			BaseURL:         "https://generativelanguage.googleapis.com",
			TranscribeModel: "gemini-2.5-flash",
			AnalysisModel:   "gemini-2.5-pro",
			TimeoutSeconds:  120,
		},
		Audio: AudioConfig{
			RecorderCommand: "ffmpeg",
			InputFormat:     "pulse",
			InputDevice:     "default",
			SampleRate:      16000,
			Channels:        1,
			FrameSize:       4096,
		},
		Streaming: StreamingConfig{QueueSize: 32},
		Retry: RetryConfig{
			MaxRetries:  2,
			BaseDelayMS: 400,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func (c *Config) overlayEnv() {
	c.Gemini.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	c.Gemini.BaseURL = envOrDefault("MEETSCRIBE_GEMINI_BASE_URL", c.Gemini.BaseURL)
	c.Gemini.TranscribeModel = envOrDefault("MEETSCRIBE_TRANSCRIBE_MODEL", c.Gemini.TranscribeModel)
	c.Gemini.AnalysisModel = envOrDefault("MEETSCRIBE_ANALYSIS_MODEL", c.Gemini.AnalysisModel)

	c.Audio.RecorderCommand = envOrDefault("MEETSCRIBE_FFMPEG_COMMAND", c.Audio.RecorderCommand)
	c.Audio.InputFormat = envOrDefault("MEETSCRIBE_AUDIO_INPUT_FORMAT", c.Audio.InputFormat)
	c.Audio.InputDevice = envOrDefault("MEETSCRIBE_AUDIO_INPUT_DEVICE", c.Audio.InputDevice)
	c.Audio.SampleRate = envOrDefaultInt("MEETSCRIBE_SAMPLE_RATE", c.Audio.SampleRate)
	c.Audio.Channels = envOrDefaultInt("MEETSCRIBE_CHANNELS", c.Audio.Channels)
	c.Audio.FrameSize = envOrDefaultInt("MEETSCRIBE_FRAME_SIZE", c.Audio.FrameSize)

	c.Postgres.DSN = strings.TrimSpace(os.Getenv("MEETSCRIBE_POSTGRES_DSN"))
	c.Supabase.URL = strings.TrimSpace(os.Getenv("SUPABASE_URL"))
	c.Supabase.Key = strings.TrimSpace(os.Getenv("SUPABASE_KEY"))

	c.Metrics.Addr = envOrDefault("MEETSCRIBE_METRICS_ADDR", c.Metrics.Addr)
	c.Log.Level = envOrDefault("MEETSCRIBE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOrDefault("MEETSCRIBE_LOG_FORMAT", c.Log.Format)
}

func (c *Config) validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels <= 0 {
		return fmt.Errorf("audio.channels must be positive, got %d", c.Audio.Channels)
	}
	if c.Audio.FrameSize < 256 {
		return fmt.Errorf("audio.frame_size must be at least 256, got %d", c.Audio.FrameSize)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.BaseDelayMS < 0 {
		return fmt.Errorf("retry.base_delay_ms must not be negative, got %d", c.Retry.BaseDelayMS)
	}
	if c.Streaming.QueueSize <= 0 {
		c.Streaming.QueueSize = 32
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

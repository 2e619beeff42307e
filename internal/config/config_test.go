package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MEETSCRIBE_POSTGRES_DSN", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Audio.SampleRate != 16000 {
		t.Fatalf("sample rate = %d, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.FrameSize != 4096 {
		t.Fatalf("frame size = %d, want 4096", cfg.Audio.FrameSize)
	}
	if cfg.Retry.MaxRetries != 2 || cfg.Retry.BaseDelay() != 400*time.Millisecond {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Retry)
	}
	if cfg.Gemini.TranscribeModel != "gemini-2.5-flash" {
		t.Fatalf("transcribe model = %q", cfg.Gemini.TranscribeModel)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoadMissingFileIsTolerated(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing file must fall back to defaults: %v", err)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
audio:
  input_device: "alsa_input.usb"
  sample_rate: 48000
retry:
  max_retries: 5
  base_delay_ms: 1000
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MEETSCRIBE_AUDIO_INPUT_DEVICE", "")
	t.Setenv("MEETSCRIBE_SAMPLE_RATE", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Audio.InputDevice != "alsa_input.usb" {
		t.Fatalf("input device = %q", cfg.Audio.InputDevice)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Fatalf("sample rate = %d", cfg.Audio.SampleRate)
	}
	if cfg.Retry.MaxRetries != 5 || cfg.Retry.BaseDelay() != time.Second {
		t.Fatalf("unexpected retry config: %+v", cfg.Retry)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	// Unset keys keep their defaults.
	if cfg.Audio.Channels != 1 {
		t.Fatalf("channels = %d, want 1", cfg.Audio.Channels)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("audio:\n  sample_rate: 48000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MEETSCRIBE_SAMPLE_RATE", "8000")
	t.Setenv("GEMINI_API_KEY", "secret-key")
	t.Setenv("MEETSCRIBE_POSTGRES_DSN", "postgres://localhost/meetscribe")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Audio.SampleRate != 8000 {
		t.Fatalf("env override lost: sample rate = %d", cfg.Audio.SampleRate)
	}
	if cfg.Gemini.APIKey != "secret-key" {
		t.Fatalf("API key not picked up from env")
	}
	if cfg.Postgres.DSN != "postgres://localhost/meetscribe" {
		t.Fatalf("DSN not picked up from env")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"zero sample rate", "audio:\n  sample_rate: -1\n"},
		{"tiny frame size", "audio:\n  frame_size: 16\n"},
		{"negative retries", "retry:\n  max_retries: -3\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"not yaml", "{{{"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.contents), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

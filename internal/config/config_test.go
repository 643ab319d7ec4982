package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Session.PrefetchDelayMS != 300 {
		t.Fatalf("expected default prefetch delay 300, got %d", cfg.Session.PrefetchDelayMS)
	}
	if cfg.Capture.SampleRate != 16000 {
		t.Fatalf("expected default sample rate 16000, got %d", cfg.Capture.SampleRate)
	}
	if cfg.Transcribe.Mode != "mock" {
		t.Fatalf("expected default transcribe mode mock, got %s", cfg.Transcribe.Mode)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hush.yaml")
	data := []byte(`
runtime_name: hush-test
session:
  prefetch_delay_ms: 250
  done_linger_ms: 900
transcribe:
  mode: groq
  api_key: test-key
delivery:
  mode: exec
  copy_command: "wl-copy"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RuntimeName != "hush-test" {
		t.Fatalf("expected runtime name override, got %s", cfg.RuntimeName)
	}
	if cfg.Session.PrefetchDelayMS != 250 || cfg.Session.DoneLingerMS != 900 {
		t.Fatalf("expected session overrides, got %+v", cfg.Session)
	}
	if cfg.Transcribe.Mode != "groq" || cfg.Transcribe.APIKey != "test-key" {
		t.Fatalf("expected transcribe overrides, got %+v", cfg.Transcribe)
	}
	if cfg.Delivery.CopyCommand != "wl-copy" {
		t.Fatalf("expected delivery override, got %+v", cfg.Delivery)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HUSH_SESSION_PREFETCH_DELAY_MS", "450")
	t.Setenv("HUSH_CAPTURE_MODE", "ffmpeg")
	t.Setenv("HUSH_CAPTURE_INPUT_DEVICE", "hw:1")
	t.Setenv("HUSH_TRANSCRIBE_LANGUAGE", "fr")
	t.Setenv("HUSH_TEXTGEN_TEMPERATURE", "0.7")
	t.Setenv("HUSH_BUS_SERVERS", "nats://one:4222, nats://two:4222")
	t.Setenv("HUSH_EVENT_STORE_RETENTION_MODE", "persistent")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Session.PrefetchDelayMS != 450 {
		t.Fatalf("expected prefetch override, got %d", cfg.Session.PrefetchDelayMS)
	}
	if cfg.Capture.Mode != "ffmpeg" || cfg.Capture.InputDevice != "hw:1" {
		t.Fatalf("expected capture overrides, got %+v", cfg.Capture)
	}
	if cfg.Transcribe.Language != "fr" {
		t.Fatalf("expected language override, got %s", cfg.Transcribe.Language)
	}
	if cfg.TextGen.Temperature != 0.7 {
		t.Fatalf("expected temperature override, got %f", cfg.TextGen.Temperature)
	}
	if len(cfg.Bus.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", cfg.Bus.Servers)
	}
	if cfg.EventStore.RetentionMode != "persistent" {
		t.Fatalf("expected retention mode override")
	}
}

func TestValidateRejectsBadModes(t *testing.T) {
	cases := map[string]func(*Config){
		"capture":    func(c *Config) { c.Capture.Mode = "alsa" },
		"selection":  func(c *Config) { c.Selection.Mode = "dbus" },
		"transcribe": func(c *Config) { c.Transcribe.Mode = "whisperx" },
		"textgen":    func(c *Config) { c.TextGen.Mode = "openai" },
		"delivery":   func(c *Config) { c.Delivery.Mode = "xdotool" },
		"retention":  func(c *Config) { c.EventStore.RetentionMode = "forever" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := validate(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestValidateRequiresProviderKeys(t *testing.T) {
	cfg := Default()
	cfg.Transcribe.Mode = "groq"
	if err := validate(cfg); err == nil {
		t.Fatal("expected error for groq mode without api key")
	}

	cfg = Default()
	cfg.TextGen.Mode = "gemini"
	if err := validate(cfg); err == nil {
		t.Fatal("expected error for gemini mode without api key")
	}
}

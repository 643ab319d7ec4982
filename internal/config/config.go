package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type BusConfig struct {
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

// SessionConfig tunes the push-to-talk orchestrator.
type SessionConfig struct {
	PrefetchDelayMS int `yaml:"prefetch_delay_ms"`
	DoneLingerMS    int `yaml:"done_linger_ms"`
}

type CaptureConfig struct {
	Mode        string `yaml:"mode"` // mock, ffmpeg
	Command     string `yaml:"command"`
	InputFormat string `yaml:"input_format"`
	InputDevice string `yaml:"input_device"`
	SampleRate  int    `yaml:"sample_rate"`
	Channels    int    `yaml:"channels"`
	Enhance     bool   `yaml:"enhance"`
}

type SelectionConfig struct {
	Mode    string `yaml:"mode"` // mock, exec
	Command string `yaml:"command"`
}

type TranscribeConfig struct {
	Mode     string `yaml:"mode"` // mock, groq
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

type TextGenConfig struct {
	Mode        string  `yaml:"mode"` // mock, gemini
	Endpoint    string  `yaml:"endpoint"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

type DeliveryConfig struct {
	Mode         string `yaml:"mode"` // mock, exec
	PasteCommand string `yaml:"paste_command"`
	CopyCommand  string `yaml:"copy_command"`
}

type EventStoreConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxSessions   int    `yaml:"max_sessions"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type Config struct {
	RuntimeName string           `yaml:"runtime_name"`
	Environment string           `yaml:"environment"`
	HTTP        HTTPConfig       `yaml:"http"`
	Telemetry   TelemetryConfig  `yaml:"telemetry"`
	Bus         BusConfig        `yaml:"bus"`
	Session     SessionConfig    `yaml:"session"`
	Capture     CaptureConfig    `yaml:"capture"`
	Selection   SelectionConfig  `yaml:"selection"`
	Transcribe  TranscribeConfig `yaml:"transcribe"`
	TextGen     TextGenConfig    `yaml:"textgen"`
	Delivery    DeliveryConfig   `yaml:"delivery"`
	EventStore  EventStoreConfig `yaml:"event_store"`
}

func Default() Config {
	return Config{
		RuntimeName: "hush-runtime",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "127.0.0.1",
			Port: 8090,
		},
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			OTLPEndpoint: "",
			OTLPInsecure: true,
		},
		Bus: BusConfig{
			Embedded:       true,
			Port:           4222,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		Session: SessionConfig{
			PrefetchDelayMS: 300,
			DoneLingerMS:    1500,
		},
		Capture: CaptureConfig{
			Mode:        "mock",
			Command:     "ffmpeg",
			InputFormat: "pulse",
			InputDevice: "default",
			SampleRate:  16000,
			Channels:    1,
			Enhance:     true,
		},
		Selection: SelectionConfig{
			Mode: "mock",
		},
		Transcribe: TranscribeConfig{
			Mode:     "mock",
			Endpoint: "https://api.groq.com/openai/v1/audio/transcriptions",
			Model:    "whisper-large-v3-turbo",
		},
		TextGen: TextGenConfig{
			Mode:        "mock",
			Endpoint:    "https://generativelanguage.googleapis.com/v1beta/models",
			Model:       "gemini-2.5-flash-lite-preview-09-2025",
			Temperature: 0.3,
		},
		Delivery: DeliveryConfig{
			Mode: "mock",
		},
		EventStore: EventStoreConfig{
			Path:          "./data/hush-events.db",
			RetentionMode: "session",
			RetentionDays: 30,
			MaxSessions:   10000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.RuntimeName, "HUSH_RUNTIME_NAME")
	overrideString(&cfg.Environment, "HUSH_RUNTIME_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "HUSH_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "HUSH_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "HUSH_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "HUSH_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "HUSH_TELEMETRY_OTLP_INSECURE")
	overrideBool(&cfg.Bus.Embedded, "HUSH_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "HUSH_BUS_PORT")
	overrideStringSlice(&cfg.Bus.Servers, "HUSH_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "HUSH_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "HUSH_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "HUSH_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "HUSH_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "HUSH_BUS_CONNECT_TIMEOUT_MS")
	overrideInt(&cfg.Session.PrefetchDelayMS, "HUSH_SESSION_PREFETCH_DELAY_MS")
	overrideInt(&cfg.Session.DoneLingerMS, "HUSH_SESSION_DONE_LINGER_MS")
	overrideString(&cfg.Capture.Mode, "HUSH_CAPTURE_MODE")
	overrideString(&cfg.Capture.Command, "HUSH_CAPTURE_COMMAND")
	overrideString(&cfg.Capture.InputFormat, "HUSH_CAPTURE_INPUT_FORMAT")
	overrideString(&cfg.Capture.InputDevice, "HUSH_CAPTURE_INPUT_DEVICE")
	overrideInt(&cfg.Capture.SampleRate, "HUSH_CAPTURE_SAMPLE_RATE")
	overrideInt(&cfg.Capture.Channels, "HUSH_CAPTURE_CHANNELS")
	overrideBool(&cfg.Capture.Enhance, "HUSH_CAPTURE_ENHANCE")
	overrideString(&cfg.Selection.Mode, "HUSH_SELECTION_MODE")
	overrideString(&cfg.Selection.Command, "HUSH_SELECTION_COMMAND")
	overrideString(&cfg.Transcribe.Mode, "HUSH_TRANSCRIBE_MODE")
	overrideString(&cfg.Transcribe.Endpoint, "HUSH_TRANSCRIBE_ENDPOINT")
	overrideString(&cfg.Transcribe.APIKey, "HUSH_TRANSCRIBE_API_KEY")
	overrideString(&cfg.Transcribe.Model, "HUSH_TRANSCRIBE_MODEL")
	overrideString(&cfg.Transcribe.Language, "HUSH_TRANSCRIBE_LANGUAGE")
	overrideString(&cfg.TextGen.Mode, "HUSH_TEXTGEN_MODE")
	overrideString(&cfg.TextGen.Endpoint, "HUSH_TEXTGEN_ENDPOINT")
	overrideString(&cfg.TextGen.APIKey, "HUSH_TEXTGEN_API_KEY")
	overrideString(&cfg.TextGen.Model, "HUSH_TEXTGEN_MODEL")
	overrideFloat(&cfg.TextGen.Temperature, "HUSH_TEXTGEN_TEMPERATURE")
	overrideString(&cfg.Delivery.Mode, "HUSH_DELIVERY_MODE")
	overrideString(&cfg.Delivery.PasteCommand, "HUSH_DELIVERY_PASTE_COMMAND")
	overrideString(&cfg.Delivery.CopyCommand, "HUSH_DELIVERY_COPY_COMMAND")
	overrideString(&cfg.EventStore.Path, "HUSH_EVENT_STORE_PATH")
	overrideString(&cfg.EventStore.RetentionMode, "HUSH_EVENT_STORE_RETENTION_MODE")
	overrideInt(&cfg.EventStore.RetentionDays, "HUSH_EVENT_STORE_RETENTION_DAYS")
	overrideInt(&cfg.EventStore.MaxSessions, "HUSH_EVENT_STORE_MAX_SESSIONS")
	overrideBool(&cfg.EventStore.VacuumOnStart, "HUSH_EVENT_STORE_VACUUM_ON_START")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.RuntimeName == "" {
		return errors.New("runtime_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Bus.Embedded {
		if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
			return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
		}
	} else {
		if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	if cfg.Session.PrefetchDelayMS < 0 {
		return errors.New("session.prefetch_delay_ms must be >= 0")
	}
	if cfg.Session.DoneLingerMS < 0 {
		return errors.New("session.done_linger_ms must be >= 0")
	}
	switch cfg.Capture.Mode {
	case "mock", "ffmpeg":
	default:
		return errors.New("capture.mode must be one of mock|ffmpeg")
	}
	if cfg.Capture.SampleRate <= 0 {
		return errors.New("capture.sample_rate must be positive")
	}
	if cfg.Capture.Channels <= 0 {
		return errors.New("capture.channels must be positive")
	}
	switch cfg.Selection.Mode {
	case "mock", "exec":
	default:
		return errors.New("selection.mode must be one of mock|exec")
	}
	if cfg.Selection.Mode == "exec" && cfg.Selection.Command == "" {
		return errors.New("selection.command must be set when mode=exec")
	}
	switch cfg.Transcribe.Mode {
	case "mock", "groq":
	default:
		return errors.New("transcribe.mode must be one of mock|groq")
	}
	if cfg.Transcribe.Mode == "groq" {
		if cfg.Transcribe.APIKey == "" {
			return errors.New("transcribe.api_key must be set when mode=groq")
		}
		if cfg.Transcribe.Endpoint == "" {
			return errors.New("transcribe.endpoint must not be empty")
		}
	}
	switch cfg.TextGen.Mode {
	case "mock", "gemini":
	default:
		return errors.New("textgen.mode must be one of mock|gemini")
	}
	if cfg.TextGen.Mode == "gemini" {
		if cfg.TextGen.APIKey == "" {
			return errors.New("textgen.api_key must be set when mode=gemini")
		}
		if cfg.TextGen.Endpoint == "" {
			return errors.New("textgen.endpoint must not be empty")
		}
	}
	switch cfg.Delivery.Mode {
	case "mock", "exec":
	default:
		return errors.New("delivery.mode must be one of mock|exec")
	}
	if cfg.Delivery.Mode == "exec" && cfg.Delivery.CopyCommand == "" {
		return errors.New("delivery.copy_command must be set when mode=exec")
	}
	if cfg.EventStore.Path == "" {
		return errors.New("event_store.path must not be empty")
	}
	switch cfg.EventStore.RetentionMode {
	case "ephemeral", "session", "persistent":
		// ok
	default:
		return errors.New("event_store.retention_mode must be one of ephemeral|session|persistent")
	}
	if cfg.EventStore.RetentionDays < 0 {
		return errors.New("event_store.retention_days must be >= 0")
	}
	return nil
}

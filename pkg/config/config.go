// Package config loads and validates the easel client configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values, exported for documentation and validation.
const (
	DefaultServerURL       = "ws://127.0.0.1:8787/ws"
	DefaultStrokeBaseURL   = "http://127.0.0.1:8787"
	DefaultListenAddr      = "127.0.0.1:9292"
	DefaultMaxWordsPerItem = 25
	DefaultRevealChunkSize = 3
	DefaultRevealInterval  = 150 * time.Millisecond
	DefaultPointInterval   = 16 * time.Millisecond
	DefaultFetchRetryDelay = 500 * time.Millisecond
	DefaultReconnectDelay  = time.Second
	DefaultFetchTimeout    = 10 * time.Second
	DefaultLogLevel        = "info"
)

// Duration wraps time.Duration for YAML string parsing (e.g. "150ms", "5s").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "150ms" or "1m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Config is the complete easel client configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Animation AnimationConfig `yaml:"animation"`
	Debug     DebugConfig     `yaml:"debug"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig points the client at the drawing-agent server.
type ServerConfig struct {
	// URL is the WebSocket event stream endpoint.
	URL string `yaml:"url"`
	// StrokeBaseURL is the base URL of the stroke fetch side channel.
	StrokeBaseURL string `yaml:"stroke_base_url"`
	// ReconnectDelay is the pause before a reconnect attempt.
	ReconnectDelay Duration `yaml:"reconnect_delay"`
	// FetchTimeout bounds a single stroke-batch fetch.
	FetchTimeout Duration `yaml:"fetch_timeout"`
	// FetchRetryDelay is the pause before retrying a failed batch fetch.
	FetchRetryDelay Duration `yaml:"fetch_retry_delay"`
}

// AnimationConfig paces the staging pipeline.
type AnimationConfig struct {
	// MaxWordsPerItem caps how many words merge into one reveal chunk.
	MaxWordsPerItem int `yaml:"max_words_per_item"`
	// RevealChunkSize is how many words each reveal step uncovers.
	RevealChunkSize int `yaml:"reveal_chunk_size"`
	// RevealInterval is the pause between reveal steps.
	RevealInterval Duration `yaml:"reveal_interval"`
	// PointInterval is the pause between stroke point dispatches.
	PointInterval Duration `yaml:"point_interval"`
}

// DebugConfig controls the local debug/metrics endpoint.
type DebugConfig struct {
	// ListenAddr serves /metrics, /healthz and /debug/state. Empty
	// disables the endpoint.
	ListenAddr string `yaml:"listen_addr"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a fully populated configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:             DefaultServerURL,
			StrokeBaseURL:   DefaultStrokeBaseURL,
			ReconnectDelay:  Duration{DefaultReconnectDelay},
			FetchTimeout:    Duration{DefaultFetchTimeout},
			FetchRetryDelay: Duration{DefaultFetchRetryDelay},
		},
		Animation: AnimationConfig{
			MaxWordsPerItem: DefaultMaxWordsPerItem,
			RevealChunkSize: DefaultRevealChunkSize,
			RevealInterval:  Duration{DefaultRevealInterval},
			PointInterval:   Duration{DefaultPointInterval},
		},
		Debug: DebugConfig{
			ListenAddr: DefaultListenAddr,
			LogLevel:   DefaultLogLevel,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url must be set")
	}
	if c.Server.StrokeBaseURL == "" {
		return fmt.Errorf("server.stroke_base_url must be set")
	}
	if c.Animation.MaxWordsPerItem < 1 {
		return fmt.Errorf("animation.max_words_per_item must be at least 1, got %d", c.Animation.MaxWordsPerItem)
	}
	if c.Animation.RevealChunkSize < 1 {
		return fmt.Errorf("animation.reveal_chunk_size must be at least 1, got %d", c.Animation.RevealChunkSize)
	}
	if c.Animation.RevealInterval.Duration < 0 || c.Animation.PointInterval.Duration < 0 {
		return fmt.Errorf("animation intervals must not be negative")
	}
	switch c.Debug.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("debug.log_level must be one of debug, info, warn, error; got %q", c.Debug.LogLevel)
	}
	return nil
}

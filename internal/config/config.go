package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Courtside configuration
type Config struct {
	Backend  BackendConfig  `mapstructure:"backend" yaml:"backend"`
	Realtime RealtimeConfig `mapstructure:"realtime" yaml:"realtime"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// BackendConfig describes the hosted realtime backend
type BackendConfig struct {
	// URL is the websocket endpoint, e.g. "wss://club.example.co/realtime/v1/websocket"
	URL string `mapstructure:"url" yaml:"url"`
	// APIKey is sent as the apikey query parameter and channel access token
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	// Schema is the database schema whose tables are watched (default: "public")
	Schema string `mapstructure:"schema" yaml:"schema"`
	// HeartbeatIntervalMs is how often the socket heartbeat is sent
	HeartbeatIntervalMs int `mapstructure:"heartbeat_interval_ms" yaml:"heartbeat_interval_ms"`
	// DialTimeoutMs bounds the websocket handshake
	DialTimeoutMs int `mapstructure:"dial_timeout_ms" yaml:"dial_timeout_ms"`
}

// RealtimeConfig tunes the subscription coordinator
type RealtimeConfig struct {
	// MaxRetries is how many times a failed admission is retried before the
	// request is dropped (default: 3)
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
	// BaseDelayMs is the delay before the first retry; each later retry doubles it
	BaseDelayMs int `mapstructure:"base_delay_ms" yaml:"base_delay_ms"`
	// AdmissionTimeoutMs bounds how long one channel may stay CONNECTING
	AdmissionTimeoutMs int `mapstructure:"admission_timeout_ms" yaml:"admission_timeout_ms"`
	// InterAdmissionDelayMs is the pause between two admissions (0 disables it)
	InterAdmissionDelayMs int `mapstructure:"inter_admission_delay_ms" yaml:"inter_admission_delay_ms"`
	// DefaultPriority applies to requests that do not set one
	DefaultPriority int `mapstructure:"default_priority" yaml:"default_priority"`
	// DefaultScope applies to requests that do not set one
	DefaultScope string `mapstructure:"default_scope" yaml:"default_scope"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is where courtside.log is written. Empty logs to stderr.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB rotates the log file once it grows past this size. 0 disables rotation.
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is how many rotated files are kept
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	// Enabled starts an HTTP server exposing /metrics
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// ListenAddr is the address the metrics server binds to
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:                 "ws://localhost:4000/realtime/v1/websocket",
			Schema:              "public",
			HeartbeatIntervalMs: 25000,
			DialTimeoutMs:       10000,
		},
		Realtime: RealtimeConfig{
			MaxRetries:            3,
			BaseDelayMs:           1000,
			AdmissionTimeoutMs:    30000,
			InterAdmissionDelayMs: 100,
			DefaultPriority:       1,
			DefaultScope:          "default",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        StateDir(),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:9464",
		},
	}
}

// HeartbeatInterval returns the heartbeat interval as a Duration
func (c *BackendConfig) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalMs) * time.Millisecond
}

// DialTimeout returns the dial timeout as a Duration
func (c *BackendConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMs) * time.Millisecond
}

// BaseDelay returns the first retry delay as a Duration
func (c *RealtimeConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// AdmissionTimeout returns the admission timeout as a Duration
func (c *RealtimeConfig) AdmissionTimeout() time.Duration {
	return time.Duration(c.AdmissionTimeoutMs) * time.Millisecond
}

// InterAdmissionDelay returns the pause between admissions as a Duration
func (c *RealtimeConfig) InterAdmissionDelay() time.Duration {
	return time.Duration(c.InterAdmissionDelayMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Backend defaults
	viper.SetDefault("backend.url", defaults.Backend.URL)
	viper.SetDefault("backend.api_key", defaults.Backend.APIKey)
	viper.SetDefault("backend.schema", defaults.Backend.Schema)
	viper.SetDefault("backend.heartbeat_interval_ms", defaults.Backend.HeartbeatIntervalMs)
	viper.SetDefault("backend.dial_timeout_ms", defaults.Backend.DialTimeoutMs)

	// Realtime defaults
	viper.SetDefault("realtime.max_retries", defaults.Realtime.MaxRetries)
	viper.SetDefault("realtime.base_delay_ms", defaults.Realtime.BaseDelayMs)
	viper.SetDefault("realtime.admission_timeout_ms", defaults.Realtime.AdmissionTimeoutMs)
	viper.SetDefault("realtime.inter_admission_delay_ms", defaults.Realtime.InterAdmissionDelayMs)
	viper.SetDefault("realtime.default_priority", defaults.Realtime.DefaultPriority)
	viper.SetDefault("realtime.default_scope", defaults.Realtime.DefaultScope)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	viper.SetDefault("metrics.listen_addr", defaults.Metrics.ListenAddr)
}

// Load reads the configuration from viper and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "courtside")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".courtside"
	}
	return filepath.Join(home, ".config", "courtside")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns the directory for logs and other runtime state
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "courtside")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".courtside", "state")
	}
	return filepath.Join(home, ".local", "state", "courtside")
}

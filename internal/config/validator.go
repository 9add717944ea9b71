package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "realtime.max_retries")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Bounds for realtime tuning values.
const (
	maxRetriesLimit     = 10
	minHeartbeatMs      = 100
	maxBaseDelayMs      = 5 * 60 * 1000
	maxAdmissionTimeout = 10 * 60 * 1000
	maxInterAdmissionMs = 60 * 1000
)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidSchemes returns the URL schemes accepted for backend.url
func ValidSchemes() []string {
	return []string{"ws", "wss", "http", "https"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateBackend()...)
	errors = append(errors, c.validateRealtime()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateMetrics()...)

	return errors
}

func (c *Config) validateBackend() []ValidationError {
	var errors []ValidationError

	if c.Backend.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "backend.url",
			Value:   c.Backend.URL,
			Message: "must not be empty",
		})
	} else if u, err := url.Parse(c.Backend.URL); err != nil || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "backend.url",
			Value:   c.Backend.URL,
			Message: "must be an absolute URL",
		})
	} else if !slices.Contains(ValidSchemes(), u.Scheme) {
		errors = append(errors, ValidationError{
			Field:   "backend.url",
			Value:   c.Backend.URL,
			Message: fmt.Sprintf("scheme must be one of: %s", strings.Join(ValidSchemes(), ", ")),
		})
	}

	if strings.TrimSpace(c.Backend.Schema) == "" {
		errors = append(errors, ValidationError{
			Field:   "backend.schema",
			Value:   c.Backend.Schema,
			Message: "must not be empty",
		})
	}

	if c.Backend.HeartbeatIntervalMs < minHeartbeatMs {
		errors = append(errors, ValidationError{
			Field:   "backend.heartbeat_interval_ms",
			Value:   c.Backend.HeartbeatIntervalMs,
			Message: fmt.Sprintf("must be at least %d", minHeartbeatMs),
		})
	}

	if c.Backend.DialTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "backend.dial_timeout_ms",
			Value:   c.Backend.DialTimeoutMs,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateRealtime() []ValidationError {
	var errors []ValidationError
	r := c.Realtime

	if r.MaxRetries < 0 || r.MaxRetries > maxRetriesLimit {
		errors = append(errors, ValidationError{
			Field:   "realtime.max_retries",
			Value:   r.MaxRetries,
			Message: fmt.Sprintf("must be between 0 and %d", maxRetriesLimit),
		})
	}

	if r.BaseDelayMs <= 0 || r.BaseDelayMs > maxBaseDelayMs {
		errors = append(errors, ValidationError{
			Field:   "realtime.base_delay_ms",
			Value:   r.BaseDelayMs,
			Message: fmt.Sprintf("must be between 1 and %d", maxBaseDelayMs),
		})
	}

	if r.AdmissionTimeoutMs <= 0 || r.AdmissionTimeoutMs > maxAdmissionTimeout {
		errors = append(errors, ValidationError{
			Field:   "realtime.admission_timeout_ms",
			Value:   r.AdmissionTimeoutMs,
			Message: fmt.Sprintf("must be between 1 and %d", maxAdmissionTimeout),
		})
	}

	if r.InterAdmissionDelayMs < 0 || r.InterAdmissionDelayMs > maxInterAdmissionMs {
		errors = append(errors, ValidationError{
			Field:   "realtime.inter_admission_delay_ms",
			Value:   r.InterAdmissionDelayMs,
			Message: fmt.Sprintf("must be between 0 and %d", maxInterAdmissionMs),
		})
	}

	if strings.TrimSpace(r.DefaultScope) == "" {
		errors = append(errors, ValidationError{
			Field:   "realtime.default_scope",
			Value:   r.DefaultScope,
			Message: "must not be empty",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateMetrics() []ValidationError {
	var errors []ValidationError

	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.ListenAddr) == "" {
		errors = append(errors, ValidationError{
			Field:   "metrics.listen_addr",
			Value:   c.Metrics.ListenAddr,
			Message: "must be set when metrics are enabled",
		})
	}

	return errors
}

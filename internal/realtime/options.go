package realtime

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/courtside-app/courtside/internal/event"
	"github.com/courtside-app/courtside/internal/logging"
)

// Defaults applied by New and Request.
const (
	DefaultMaxRetries          = 3
	DefaultBaseDelay           = time.Second
	DefaultAdmissionTimeout    = 30 * time.Second
	DefaultInterAdmissionDelay = 100 * time.Millisecond
	DefaultPriority            = 1
	DefaultScope               = "default"
)

type coordinatorConfig struct {
	clock               clock.Clock
	logger              *logging.Logger
	bus                 *event.Bus
	maxRetries          int
	baseDelay           time.Duration
	admissionTimeout    time.Duration
	interAdmissionDelay time.Duration
	defaultPriority     int
	defaultScope        string
}

func defaultConfig() coordinatorConfig {
	return coordinatorConfig{
		clock:               clock.New(),
		logger:              logging.NopLogger(),
		maxRetries:          DefaultMaxRetries,
		baseDelay:           DefaultBaseDelay,
		admissionTimeout:    DefaultAdmissionTimeout,
		interAdmissionDelay: DefaultInterAdmissionDelay,
		defaultPriority:     DefaultPriority,
		defaultScope:        DefaultScope,
	}
}

// Option configures a Coordinator.
type Option func(*coordinatorConfig)

// WithClock sets the time source for timeouts, pacing and backoff.
func WithClock(c clock.Clock) Option {
	return func(cfg *coordinatorConfig) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithLogger sets the logger. A nil logger keeps the no-op default.
func WithLogger(l *logging.Logger) Option {
	return func(cfg *coordinatorConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithBus publishes subscription lifecycle events on b.
func WithBus(b *event.Bus) Option {
	return func(cfg *coordinatorConfig) { cfg.bus = b }
}

// WithMaxRetries sets how many retries a failing request gets before it is
// dropped. Negative values are treated as zero.
func WithMaxRetries(n int) Option {
	return func(cfg *coordinatorConfig) { cfg.maxRetries = max(n, 0) }
}

// WithBaseDelay sets the delay before the first retry. Later retries
// double it.
func WithBaseDelay(d time.Duration) Option {
	return func(cfg *coordinatorConfig) {
		if d > 0 {
			cfg.baseDelay = d
		}
	}
}

// WithAdmissionTimeout bounds how long one admission may wait for ACTIVE.
func WithAdmissionTimeout(d time.Duration) Option {
	return func(cfg *coordinatorConfig) {
		if d > 0 {
			cfg.admissionTimeout = d
		}
	}
}

// WithInterAdmissionDelay sets the pause between consecutive admissions.
// Zero disables pacing.
func WithInterAdmissionDelay(d time.Duration) Option {
	return func(cfg *coordinatorConfig) { cfg.interAdmissionDelay = max(d, 0) }
}

// WithDefaultPriority sets the priority used when Request is not given one.
func WithDefaultPriority(p int) Option {
	return func(cfg *coordinatorConfig) { cfg.defaultPriority = p }
}

// WithDefaultScope sets the scope used when Request is not given one.
func WithDefaultScope(s string) Option {
	return func(cfg *coordinatorConfig) {
		if s != "" {
			cfg.defaultScope = s
		}
	}
}

type requestOptions struct {
	priority int
	scope    string
}

// RequestOption configures a single Request call.
type RequestOption func(*requestOptions)

// WithPriority sets the request's priority. Higher values are admitted first.
func WithPriority(p int) RequestOption {
	return func(o *requestOptions) { o.priority = p }
}

// WithScope sets the namespace that keeps independent features watching the
// same topic apart.
func WithScope(s string) RequestOption {
	return func(o *requestOptions) { o.scope = s }
}

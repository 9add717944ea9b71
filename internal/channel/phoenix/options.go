package phoenix

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"

	"github.com/courtside-app/courtside/internal/logging"
)

// Defaults for client options.
const (
	DefaultSchema            = "public"
	DefaultHeartbeatInterval = 25 * time.Second
	DefaultDialTimeout       = 10 * time.Second
	writeTimeout             = 10 * time.Second
)

type clientConfig struct {
	apiKey            string
	schema            string
	heartbeatInterval time.Duration
	dialTimeout       time.Duration
	logger            *logging.Logger
	clock             clock.Clock
	dialer            *websocket.Dialer
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		schema:            DefaultSchema,
		heartbeatInterval: DefaultHeartbeatInterval,
		dialTimeout:       DefaultDialTimeout,
		logger:            logging.NopLogger(),
		clock:             clock.New(),
	}
}

// Option configures a Client.
type Option func(*clientConfig)

// WithAPIKey sets the key sent as the apikey query parameter and as the
// channel access token.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithSchema sets the database schema whose tables are watched.
func WithSchema(schema string) Option {
	return func(c *clientConfig) {
		if schema != "" {
			c.schema = schema
		}
	}
}

// WithHeartbeatInterval sets how often a heartbeat is sent.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.heartbeatInterval = d
		}
	}
}

// WithDialTimeout bounds the websocket handshake.
func WithDialTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.dialTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the time source for heartbeats.
func WithClock(clk clock.Clock) Option {
	return func(c *clientConfig) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *clientConfig) { c.dialer = d }
}

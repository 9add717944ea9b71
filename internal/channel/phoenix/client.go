package phoenix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"

	"github.com/courtside-app/courtside/internal/channel"
	"github.com/courtside-app/courtside/internal/logging"
)

// Errors reported by the client or attached to channel statuses.
var (
	ErrNotConnected   = errors.New("phoenix: not connected")
	ErrJoinRejected   = errors.New("phoenix: join rejected")
	ErrChannelError   = errors.New("phoenix: channel error")
	ErrConnectionLost = errors.New("phoenix: connection lost")
	ErrForeignHandle  = errors.New("phoenix: handle not created by this client")
)

// Client is a channel.Provider backed by one shared websocket.
type Client struct {
	endpoint *url.URL
	apiKey   string
	schema   string
	logger   *logging.Logger
	clock    clock.Clock
	dialer   *websocket.Dialer

	heartbeatInterval time.Duration
	dialTimeout       time.Duration

	ref     atomic.Uint64
	handles atomic.Uint64

	// dialMu serializes dials so concurrent Opens share one socket. It is
	// never held together with mu while waiting on the network.
	dialMu sync.Mutex

	mu       sync.Mutex
	conn     *connection
	channels map[string]*Handle // by join topic
	closed   bool

	wg conc.WaitGroup
}

var _ channel.Provider = (*Client)(nil)

// New creates a client for the websocket endpoint, for example
// "wss://project.example.co/realtime/v1/websocket". Nothing is dialled
// until the first Open.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("parse endpoint: unsupported scheme %q", u.Scheme)
	}

	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	dialer := cfg.dialer
	if dialer == nil {
		dialer = &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: cfg.dialTimeout,
		}
	}

	return &Client{
		endpoint:          u,
		apiKey:            cfg.apiKey,
		schema:            cfg.schema,
		logger:            cfg.logger.WithComponent("phoenix"),
		clock:             cfg.clock,
		dialer:            dialer,
		heartbeatInterval: cfg.heartbeatInterval,
		dialTimeout:       cfg.dialTimeout,
		channels:          make(map[string]*Handle),
	}, nil
}

// SocketURL returns the URL dialled by the client, including the apikey
// and protocol version parameters.
func (c *Client) SocketURL() string {
	u := *c.endpoint
	q := u.Query()
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	q.Set("vsn", protocolVersion)
	u.RawQuery = q.Encode()
	return u.String()
}

// Connected reports whether a socket is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Open joins a channel for the given table. It reports CONNECTING
// synchronously and ACTIVE or ERROR once the backend replies.
func (c *Client) Open(topic string, cb channel.Callbacks) (channel.Handle, error) {
	conn, err := c.connect()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, channel.ErrClosed
	}
	if c.conn != conn {
		c.mu.Unlock()
		return nil, ErrConnectionLost
	}
	n := c.handles.Add(1)
	h := &Handle{
		client:    c,
		topic:     topic,
		joinTopic: c.joinTopicLocked(topic, n),
		joinRef:   c.nextRef(),
		cb:        cb,
		conn:      conn,
	}
	c.channels[h.joinTopic] = h
	c.mu.Unlock()

	h.report(channel.StatusConnecting, nil)

	err = conn.send(c.clock, Message{
		Topic:   h.joinTopic,
		Event:   eventJoin,
		Payload: newJoinPayload(c.schema, topic, c.apiKey),
		Ref:     h.joinRef,
		JoinRef: h.joinRef,
	})
	if err != nil {
		c.forget(h)
		h.markClosed()
		return nil, fmt.Errorf("join %s: %w", h.joinTopic, err)
	}
	c.logger.WithTopic(topic).Debug("join sent", "join_topic", h.joinTopic, "ref", h.joinRef)
	return h, nil
}

// Close leaves the channel. Only the first call sends phx_leave; later
// calls and handles whose socket already dropped are no-ops.
func (c *Client) Close(handle channel.Handle) error {
	h, ok := handle.(*Handle)
	if !ok || h.client != c {
		return ErrForeignHandle
	}
	if !h.markClosed() {
		return nil
	}
	c.forget(h)

	c.mu.Lock()
	live := c.conn == h.conn
	c.mu.Unlock()
	if !live {
		return nil
	}

	err := h.conn.send(c.clock, Message{
		Topic:   h.joinTopic,
		Event:   eventLeave,
		Payload: emptyPayload,
		Ref:     c.nextRef(),
		JoinRef: h.joinRef,
	})
	if err != nil {
		return fmt.Errorf("leave %s: %w", h.joinTopic, err)
	}
	return nil
}

// Shutdown closes the socket and waits for its goroutines. Channels still
// joined are not notified. The client cannot be reused afterwards.
func (c *Client) Shutdown() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.channels = make(map[string]*Handle)
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.close(c.clock)
	}
	c.wg.Wait()
	return err
}

// connect returns the live socket, dialling one if needed. The dial runs
// without holding mu, so Close and the read loops of other sockets are not
// blocked while the backend answers.
func (c *Client) connect() (*connection, error) {
	c.dialMu.Lock()
	defer c.dialMu.Unlock()

	c.mu.Lock()
	closed, conn := c.closed, c.conn
	c.mu.Unlock()
	if closed {
		return nil, channel.ErrClosed
	}
	if conn != nil {
		return conn, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.dialTimeout)
	defer cancel()
	ws, resp, err := c.dialer.DialContext(ctx, c.SocketURL(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.endpoint.Host, err)
	}

	conn = newConnection(ws)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = ws.Close()
		return nil, channel.ErrClosed
	}
	c.conn = conn
	c.wg.Go(func() { c.readLoop(conn) })
	c.wg.Go(func() { c.heartbeatLoop(conn) })
	c.mu.Unlock()

	c.logger.Info("socket connected", "host", c.endpoint.Host)
	return conn, nil
}

// joinTopicLocked names the channel for table. Phoenix allows one join per
// topic per socket, so a second channel for the same table gets a suffix.
func (c *Client) joinTopicLocked(table string, n uint64) string {
	topic := "realtime:" + c.schema + ":" + table
	if _, taken := c.channels[topic]; taken {
		topic += ":" + strconv.FormatUint(n, 10)
	}
	return topic
}

func (c *Client) nextRef() string {
	return strconv.FormatUint(c.ref.Add(1), 10)
}

func (c *Client) forget(h *Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channels[h.joinTopic] == h {
		delete(c.channels, h.joinTopic)
	}
}

func (c *Client) readLoop(conn *connection) {
	for {
		var msg Message
		if err := conn.ws.ReadJSON(&msg); err != nil {
			c.connectionLost(conn, err)
			return
		}
		c.dispatch(msg)
	}
}

func (c *Client) heartbeatLoop(conn *connection) {
	ticker := c.clock.Ticker(c.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-conn.done:
			return
		case <-ticker.C:
			err := conn.send(c.clock, Message{
				Topic:   heartbeatTopic,
				Event:   eventHeartbeat,
				Payload: emptyPayload,
				Ref:     c.nextRef(),
			})
			if err != nil {
				c.logger.Debug("heartbeat failed", "error", err)
				return
			}
		}
	}
}

func (c *Client) dispatch(msg Message) {
	if msg.Topic == heartbeatTopic {
		return
	}

	c.mu.Lock()
	h := c.channels[msg.Topic]
	c.mu.Unlock()
	if h == nil {
		c.logger.Debug("message for unknown topic", "topic", msg.Topic, "event", msg.Event)
		return
	}

	switch msg.Event {
	case eventReply:
		if msg.Ref != h.joinRef {
			return
		}
		var reply replyPayload
		if err := json.Unmarshal(msg.Payload, &reply); err != nil {
			h.report(channel.StatusError, fmt.Errorf("%w: malformed reply: %v", ErrJoinRejected, err))
			return
		}
		if reply.Status == "ok" {
			h.report(channel.StatusActive, nil)
			return
		}
		h.report(channel.StatusError, fmt.Errorf("%w: %s %s", ErrJoinRejected, reply.Status, string(reply.Response)))
	case eventError:
		h.report(channel.StatusError, ErrChannelError)
	case eventClose:
		h.report(channel.StatusClosed, nil)
	default:
		if isChange(msg.Event) {
			h.change()
		}
	}
}

// connectionLost drops the socket and fails every channel that was on it.
func (c *Client) connectionLost(conn *connection, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	var affected []*Handle
	for topic, h := range c.channels {
		if h.conn == conn {
			affected = append(affected, h)
			delete(c.channels, topic)
		}
	}
	c.mu.Unlock()

	conn.abandon()
	c.logger.Warn("socket lost", "error", cause, "channels", len(affected))
	err := fmt.Errorf("%w: %v", ErrConnectionLost, cause)
	for _, h := range affected {
		h.report(channel.StatusError, err)
	}
}

// connection is one websocket plus its write lock.
type connection struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

func newConnection(ws *websocket.Conn) *connection {
	return &connection{ws: ws, done: make(chan struct{})}
}

func (c *connection) send(clk clock.Clock, msg Message) error {
	select {
	case <-c.done:
		return ErrNotConnected
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.SetWriteDeadline(clk.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(msg)
}

// abandon stops the heartbeat and releases the socket without a close
// handshake.
func (c *connection) abandon() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// close sends a normal-closure frame and then releases the socket.
func (c *connection) close(clk clock.Clock) error {
	var errs error
	c.once.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		errs = multierr.Append(errs, c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			clk.Now().Add(writeTimeout),
		))
		c.writeMu.Unlock()
		errs = multierr.Append(errs, c.ws.Close())
	})
	return errs
}

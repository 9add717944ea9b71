package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/courtside-app/courtside/internal/channel"
	"github.com/courtside-app/courtside/internal/event"
	"github.com/courtside-app/courtside/internal/logging"
)

// Status is a point-in-time view of the coordinator.
type Status struct {
	QueuedCount int
	ActiveCount int
	// IsDraining is true while the drain loop is working through the
	// queue. It stays false before Start even if requests are queued.
	IsDraining    bool
	RetryingCount int
	Admitting     bool
}

// Coordinator arbitrates subscription requests against a channel provider.
// Create one with New, start its drain loop with Start and release every
// channel with Stop.
type Coordinator struct {
	provider channel.Provider
	clock    clock.Clock
	logger   *logging.Logger
	bus      *event.Bus

	maxRetries          int
	baseDelay           time.Duration
	admissionTimeout    time.Duration
	interAdmissionDelay time.Duration
	defaultPriority     int
	defaultScope        string

	mu       sync.Mutex
	queue    pendingQueue
	reg      registry
	retrying map[string]*pendingRetry
	inflight *admission
	draining bool
	started  bool
	stopped  bool

	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a coordinator that opens channels through provider.
// Requests made before Start are queued and admitted once it runs.
func New(provider channel.Provider, opts ...Option) *Coordinator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Coordinator{
		provider:            provider,
		clock:               cfg.clock,
		logger:              cfg.logger.WithComponent("realtime"),
		bus:                 cfg.bus,
		maxRetries:          cfg.maxRetries,
		baseDelay:           cfg.baseDelay,
		admissionTimeout:    cfg.admissionTimeout,
		interAdmissionDelay: cfg.interAdmissionDelay,
		defaultPriority:     cfg.defaultPriority,
		defaultScope:        cfg.defaultScope,
		reg:                 newRegistry(),
		retrying:            make(map[string]*pendingRetry),
		wake:                make(chan struct{}, 1),
	}
}

// Start launches the drain loop. It returns ErrAlreadyStarted on a second
// call and ErrStopped after Stop.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if c.started {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.started = true
	if c.queue.len() > 0 {
		c.kickLocked()
	}

	go c.run(ctx)
	c.logger.Info("coordinator started", "queued", c.queue.len())
	return nil
}

// Stop halts the drain loop and tears down all state like Reset. The
// returned error joins any failures from closing channels. Stop is
// idempotent.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	started, cancel, done := c.started, c.cancel, c.done
	c.mu.Unlock()

	if started {
		cancel()
		<-done
	}
	err := c.teardown()
	c.logger.Info("coordinator stopped")
	return err
}

// Request registers interest in change events for topic and returns the
// subscription id. An identical (scope, topic) intent that is already
// queued, admitting, retrying or active returns its existing id and the
// new callback is discarded. Admission failures are never reported here.
func (c *Coordinator) Request(topic string, cb Callback, opts ...RequestOption) (string, error) {
	ro := requestOptions{priority: c.defaultPriority, scope: c.defaultScope}
	for _, opt := range opts {
		opt(&ro)
	}
	switch {
	case topic == "":
		return "", ErrEmptyTopic
	case ro.scope == "":
		return "", ErrEmptyScope
	case cb == nil:
		return "", ErrNilCallback
	}
	k := subKey{scope: ro.scope, topic: topic}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return "", ErrStopped
	}
	if id, phase := c.lookupLocked(k); id != "" {
		c.mu.Unlock()
		c.logger.WithScope(k.scope).Debug("duplicate request",
			"topic", topic, "existing_id", id, "phase", phase)
		return id, nil
	}

	now := c.clock.Now()
	req := &request{
		id:         newRequestID(ro.scope, topic, now),
		scope:      ro.scope,
		topic:      topic,
		callback:   cb,
		priority:   ro.priority,
		createdAt:  now,
		enqueuedAt: now,
	}
	c.queue.push(req)
	depth := c.queue.len()
	c.kickLocked()
	c.mu.Unlock()

	c.logger.WithSubscription(req.id, req.scope, req.topic).Debug("request queued",
		"priority", req.priority, "queue_depth", depth)
	c.publish(event.NewSubscriptionQueuedEvent(now, req.subscription(), req.priority, 0, depth))
	return req.id, nil
}

// Cancel stops the subscription with the given id wherever it is: queued,
// admitting, waiting to retry or active. An active channel is closed
// exactly once. Unknown ids are ignored.
func (c *Coordinator) Cancel(id string) {
	var (
		sub    event.Subscription
		phase  string
		handle channel.Handle
	)

	c.mu.Lock()
	if r := c.queue.remove(id); r != nil {
		sub, phase = r.subscription(), "queued"
	} else if pr := c.retrying[id]; pr != nil {
		pr.timer.Stop()
		delete(c.retrying, id)
		sub, phase = pr.req.subscription(), "retrying"
	} else if adm := c.inflight; adm != nil && adm.req.id == id && !adm.aborted {
		adm.abort()
		c.inflight = nil
		sub, phase = adm.req.subscription(), "admitting"
	} else if s := c.reg.remove(id); s != nil {
		s.listener.finish()
		handle = s.handle
		sub, phase = s.subscription(), "active"
	} else {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	log := c.logger.WithSubscription(sub.ID, sub.Scope, sub.Topic)
	if handle != nil {
		c.closeHandle(handle, log)
	}
	log.Info("subscription cancelled", "phase", phase)
	c.publish(event.NewSubscriptionCancelledEvent(c.clock.Now(), sub, phase))
}

// HasActive reports whether any scope holds an active subscription to topic.
func (c *Coordinator) HasActive(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.hasTopic(topic)
}

// ListActive returns the ids of all active subscriptions, sorted.
func (c *Coordinator) ListActive() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.ids()
}

// Snapshot describes every active subscription, sorted by id.
func (c *Coordinator) Snapshot() []ActiveInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.snapshot()
}

// Queued returns the ids waiting for admission, in admission order.
func (c *Coordinator) Queued() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.ids()
}

// Status returns current counts and whether the drain loop is working.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		QueuedCount:   c.queue.len(),
		ActiveCount:   c.reg.len(),
		IsDraining:    c.draining,
		RetryingCount: len(c.retrying),
		Admitting:     c.inflight != nil,
	}
}

// Reset closes every active channel, discards queued and retrying
// requests and aborts the admission in progress. Afterwards Status reports
// nothing queued, nothing active and no draining. Close failures are
// logged and otherwise ignored.
func (c *Coordinator) Reset() {
	if err := c.teardown(); err != nil {
		c.logger.Warn("reset closed channels with errors", "error", err)
	}
}

func (c *Coordinator) teardown() error {
	c.mu.Lock()
	subs := c.reg.clear()
	queued := c.queue.drain()
	for id, pr := range c.retrying {
		pr.timer.Stop()
		delete(c.retrying, id)
	}
	if c.inflight != nil {
		c.inflight.abort()
		c.inflight = nil
	}
	c.draining = false
	for _, s := range subs {
		s.listener.finish()
	}
	c.mu.Unlock()

	var errs error
	for _, s := range subs {
		errs = multierr.Append(errs, c.provider.Close(s.handle))
	}
	c.logger.Info("coordinator reset",
		"closed_channels", len(subs), "discarded_queue", len(queued))
	c.publish(event.NewSubscriptionResetEvent(c.clock.Now(), len(subs), len(queued)))
	return errs
}

// lookupLocked finds a live intent for k and reports which phase holds it.
func (c *Coordinator) lookupLocked(k subKey) (id, phase string) {
	if s := c.reg.lookup(k); s != nil {
		return s.req.id, "active"
	}
	if r := c.queue.find(k); r != nil {
		return r.id, "queued"
	}
	if adm := c.inflight; adm != nil && adm.req.key() == k {
		return adm.req.id, "admitting"
	}
	for _, pr := range c.retrying {
		if pr.req.key() == k {
			return pr.req.id, "retrying"
		}
	}
	return "", ""
}

// kickLocked marks the coordinator as draining and wakes the drain loop
// if it was idle. Before Start there is no loop to wake; Start kicks it
// once for whatever was queued.
func (c *Coordinator) kickLocked() {
	if c.draining || !c.started {
		return
	}
	c.draining = true
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Coordinator) closeHandle(h channel.Handle, log *logging.Logger) {
	if err := c.provider.Close(h); err != nil {
		log.Warn("closing channel failed", "error", err)
	}
}

// deliver hands one change event to the subscription's callback.
func (c *Coordinator) deliver(s *activeSubscription) {
	s.changes.Add(1)
	c.invoke(s)
	c.publish(event.NewSubscriptionChangedEvent(c.clock.Now(), s.subscription()))
}

func (c *Coordinator) invoke(s *activeSubscription) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithSubscription(s.req.id, s.req.scope, s.req.topic).Error(
				"subscription callback panicked", "panic", r)
		}
	}()
	s.req.callback()
}

func (c *Coordinator) publish(events ...event.Event) {
	if c.bus == nil {
		return
	}
	for _, e := range events {
		c.bus.Publish(e)
	}
}

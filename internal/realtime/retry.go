package realtime

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/courtside-app/courtside/internal/channel"
	"github.com/courtside-app/courtside/internal/event"
)

// pendingRetry is a failed request waiting out its backoff.
type pendingRetry struct {
	req   *request
	timer *clock.Timer
}

// Backoff returns the delay before retry number attempt (1-based):
// base, 2*base, 4*base and so on. The result saturates at the largest
// Duration instead of overflowing. A non-positive base yields 0.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 1; i < attempt; i++ {
		if d > math.MaxInt64/2 {
			return time.Duration(math.MaxInt64)
		}
		d *= 2
	}
	return d
}

// fail routes a failed admission to the retry scheduler unless it was
// aborted in the meantime.
func (c *Coordinator) fail(adm *admission, cause error) {
	req := adm.req

	c.mu.Lock()
	if adm.aborted {
		c.mu.Unlock()
		return
	}
	// The request now belongs to the retry scheduler; Cancel must find it
	// there and not in the finished admission.
	if c.inflight == adm {
		c.inflight = nil
	}
	now := c.clock.Now()
	events := []event.Event{event.NewSubscriptionFailedEvent(now, req.subscription(), req.retryCount, cause)}
	events = append(events, c.scheduleRetryLocked(req, cause)...)
	c.mu.Unlock()

	c.logger.WithSubscription(req.id, req.scope, req.topic).Warn("admission failed",
		"retry_count", req.retryCount, "error", cause)
	c.publish(events...)
}

// demote removes an active subscription whose channel ended and sends it
// back through the retry scheduler with a fresh retry budget.
func (c *Coordinator) demote(s *activeSubscription, status channel.Status, cause error) {
	req := s.req

	c.mu.Lock()
	if c.reg.get(req.id) != s {
		c.mu.Unlock()
		return
	}
	c.reg.remove(req.id)
	s.listener.finish()
	req.retryCount = 0
	now := c.clock.Now()
	events := []event.Event{event.NewSubscriptionDemotedEvent(now, req.subscription(), status.String())}
	events = append(events, c.scheduleRetryLocked(req, &AdmissionError{Topic: req.topic, Status: status, Err: cause})...)
	c.mu.Unlock()

	log := c.logger.WithSubscription(req.id, req.scope, req.topic)
	log.Warn("active channel lost", "status", status.String(), "error", cause)
	c.closeHandle(s.handle, log)
	c.publish(events...)
}

// scheduleRetryLocked either arms a backoff timer for req or drops it when
// its retries are exhausted. Each retry raises the request's priority by
// one so it overtakes newer requests of its original priority.
func (c *Coordinator) scheduleRetryLocked(req *request, cause error) []event.Event {
	now := c.clock.Now()
	if c.stopped {
		return nil
	}
	if req.retryCount >= c.maxRetries {
		c.logger.WithSubscription(req.id, req.scope, req.topic).Warn("dropping subscription after exhausting retries",
			"retry_count", req.retryCount, "error", cause)
		return []event.Event{event.NewSubscriptionDroppedEvent(now, req.subscription(), req.retryCount, cause)}
	}

	req.retryCount++
	req.priority++
	delay := Backoff(c.baseDelay, req.retryCount)
	pr := &pendingRetry{req: req}
	pr.timer = c.clock.AfterFunc(delay, func() { c.requeue(pr) })
	c.retrying[req.id] = pr

	c.logger.WithSubscription(req.id, req.scope, req.topic).Debug("retry scheduled",
		"retry_count", req.retryCount, "delay", delay, "priority", req.priority)
	return []event.Event{event.NewSubscriptionRetryScheduledEvent(now, req.subscription(), req.retryCount, delay, req.priority)}
}

// requeue puts a request whose backoff elapsed back into the queue. It is
// a no-op if the retry was cancelled or reset, and it discards the request
// if an identical subscription became active meanwhile.
func (c *Coordinator) requeue(pr *pendingRetry) {
	req := pr.req

	c.mu.Lock()
	if c.retrying[req.id] != pr {
		c.mu.Unlock()
		return
	}
	delete(c.retrying, req.id)
	if existing := c.reg.lookup(req.key()); existing != nil {
		c.mu.Unlock()
		c.logger.WithSubscription(req.id, req.scope, req.topic).Debug(
			"discarding retry for already active subscription", "active_id", existing.req.id)
		return
	}
	now := c.clock.Now()
	req.enqueuedAt = now
	c.queue.push(req)
	depth := c.queue.len()
	c.kickLocked()
	c.mu.Unlock()

	c.publish(event.NewSubscriptionQueuedEvent(now, req.subscription(), req.priority, req.retryCount, depth))
}

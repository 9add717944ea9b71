package realtime

import (
	"context"
	"time"
)

// run is the single drain goroutine. It sleeps until kicked and then
// admits queued requests one at a time.
func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.wake:
		}
		c.drain(ctx)
	}
}

// drain admits requests until the queue is empty or ctx ends. Between two
// admissions it waits interAdmissionDelay; once the queue is found empty
// the draining flag is cleared under the same lock, so a request that
// arrives afterwards kicks a fresh pass.
func (c *Coordinator) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		c.mu.Lock()
		req := c.queue.pop()
		if req == nil {
			c.draining = false
			c.mu.Unlock()
			return
		}
		if existing := c.reg.lookup(req.key()); existing != nil {
			c.mu.Unlock()
			c.logger.WithSubscription(req.id, req.scope, req.topic).Debug(
				"discarding request for already active subscription", "active_id", existing.req.id)
			continue
		}
		adm := newAdmission(req)
		c.inflight = adm
		c.mu.Unlock()

		c.admit(ctx, adm)

		c.mu.Lock()
		if c.inflight == adm {
			c.inflight = nil
		}
		more := c.queue.len() > 0
		if !more {
			c.draining = false
		}
		c.mu.Unlock()

		if !more || !c.sleep(ctx, c.interAdmissionDelay) {
			return
		}
	}
}

// sleep waits d on the coordinator's clock. It returns false if ctx ended
// first.
func (c *Coordinator) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := c.clock.Timer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

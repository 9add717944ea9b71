package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/courtside-app/courtside/internal/channel"
	"github.com/courtside-app/courtside/internal/event"
)

// admission is the single request currently being opened by the drain loop.
type admission struct {
	req     *request
	aborted bool // guarded by Coordinator.mu
	stop    chan struct{}
}

func newAdmission(req *request) *admission {
	return &admission{req: req, stop: make(chan struct{})}
}

// abort interrupts the admission. Callers hold Coordinator.mu.
func (a *admission) abort() {
	if a.aborted {
		return
	}
	a.aborted = true
	close(a.stop)
}

type listenerPhase int

const (
	phaseAdmitting listenerPhase = iota
	phaseActive
	phaseDone
)

type statusUpdate struct {
	status channel.Status
	err    error
}

// listener receives one channel's callbacks. While admitting it forwards
// decisive statuses to the waiting admission; once active it delivers
// change events and demotes the subscription on ERROR or CLOSED. After
// finish it ignores everything.
type listener struct {
	c       *Coordinator
	mu      sync.Mutex
	phase   listenerPhase
	sub     *activeSubscription
	updates chan statusUpdate
}

func newListener(c *Coordinator) *listener {
	return &listener{c: c, updates: make(chan statusUpdate, 4)}
}

func (l *listener) callbacks() channel.Callbacks {
	return channel.Callbacks{OnStatus: l.onStatus, OnChange: l.onChange}
}

func (l *listener) onStatus(status channel.Status, err error) {
	if status == channel.StatusConnecting {
		return
	}
	l.mu.Lock()
	switch l.phase {
	case phaseAdmitting:
		select {
		case l.updates <- statusUpdate{status: status, err: err}:
		default:
		}
		l.mu.Unlock()
	case phaseActive:
		sub := l.sub
		l.mu.Unlock()
		if status.Terminal() {
			l.c.demote(sub, status, err)
		}
	default:
		l.mu.Unlock()
	}
}

func (l *listener) onChange() {
	l.mu.Lock()
	sub := l.sub
	active := l.phase == phaseActive
	l.mu.Unlock()
	if active {
		l.c.deliver(sub)
	}
}

// activate switches the listener to live delivery and returns a terminal
// status that raced in behind ACTIVE, if any.
func (l *listener) activate(sub *activeSubscription) (statusUpdate, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.phase = phaseActive
	l.sub = sub
	for {
		select {
		case u := <-l.updates:
			if u.status.Terminal() {
				return u, true
			}
		default:
			return statusUpdate{}, false
		}
	}
}

func (l *listener) finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.phase = phaseDone
}

// admit opens a channel for adm and waits for it to become active, fail,
// time out or be aborted. Failures go to the retry scheduler; aborted
// admissions and shutdown close the channel without retrying.
func (c *Coordinator) admit(ctx context.Context, adm *admission) {
	req := adm.req
	log := c.logger.WithSubscription(req.id, req.scope, req.topic)
	log.Debug("admitting", "priority", req.priority, "retry_count", req.retryCount)

	l := newListener(c)
	handle, err := c.provider.Open(req.topic, l.callbacks())
	if err != nil {
		l.finish()
		c.fail(adm, fmt.Errorf("open channel: %w", err))
		return
	}

	err = c.await(ctx, adm, l, handle)
	if err == nil {
		return
	}
	l.finish()
	c.closeHandle(handle, log)
	if errors.Is(err, errAborted) || ctx.Err() != nil {
		log.Debug("admission abandoned", "reason", err)
		return
	}
	c.fail(adm, err)
}

func (c *Coordinator) await(ctx context.Context, adm *admission, l *listener, handle channel.Handle) error {
	timer := c.clock.Timer(c.admissionTimeout)
	defer timer.Stop()

	for {
		select {
		case u := <-l.updates:
			switch {
			case u.status == channel.StatusActive:
				return c.activate(adm, l, handle)
			case u.status.Terminal():
				return &AdmissionError{Topic: adm.req.topic, Status: u.status, Err: u.err}
			}
		case <-timer.C:
			return fmt.Errorf("%w after %s", ErrAdmissionTimeout, c.admissionTimeout)
		case <-adm.stop:
			return errAborted
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// activate registers the admitted channel unless the admission was aborted
// while it was connecting.
func (c *Coordinator) activate(adm *admission, l *listener, handle channel.Handle) error {
	req := adm.req

	c.mu.Lock()
	if adm.aborted {
		c.mu.Unlock()
		return errAborted
	}
	now := c.clock.Now()
	sub := &activeSubscription{
		req:        req,
		handle:     handle,
		listener:   l,
		admittedAt: now,
	}
	c.reg.add(sub)
	if c.inflight == adm {
		c.inflight = nil
	}
	pending, raced := l.activate(sub)
	c.mu.Unlock()

	wait := now.Sub(req.createdAt)
	c.logger.WithSubscription(req.id, req.scope, req.topic).Info("subscription active",
		"retry_count", req.retryCount, "wait", wait)
	c.publish(event.NewSubscriptionAdmittedEvent(now, req.subscription(), req.retryCount, wait))

	if raced {
		c.demote(sub, pending.status, pending.err)
	}
	return nil
}

// Package fake provides a scripted channel provider for tests.
//
// Every Open consumes the next [Outcome] scripted for its topic (or the
// provider default) and reports it synchronously through the caller's
// callbacks. Channels scripted with [Hang] stay CONNECTING until the test
// resolves them with [Provider.Activate] or [Provider.Fail].
package fake

import (
	"errors"
	"sync"

	"github.com/courtside-app/courtside/internal/channel"
)

// Outcome is what a fake channel does right after Open.
type Outcome int

const (
	// Activate reports ACTIVE immediately.
	Activate Outcome = iota
	// Error reports ERROR immediately.
	Error
	// Close reports CLOSED immediately.
	Close
	// Hang stays CONNECTING until resolved by the test.
	Hang
	// Reject makes Open itself return an error.
	Reject
)

// ErrRejected is returned by Open for channels scripted with Reject.
var ErrRejected = errors.New("fake: open rejected")

// ErrBackend is the error attached to scripted ERROR statuses.
var ErrBackend = errors.New("fake: backend error")

// Handle is a fake channel handle.
type Handle struct {
	id     int
	topic  string
	cb     channel.Callbacks
	status channel.Status
	closes int
}

// Topic implements channel.Handle.
func (h *Handle) Topic() string { return h.topic }

// ID returns the open sequence number of the handle, starting at 1.
func (h *Handle) ID() int { return h.id }

// Provider is a deterministic channel.Provider. It is safe for concurrent use.
type Provider struct {
	mu       sync.Mutex
	def      Outcome
	scripts  map[string][]Outcome
	handles  []*Handle
	rejected []string
}

// New creates a provider whose unscripted channels activate immediately.
func New() *Provider {
	return &Provider{
		def:     Activate,
		scripts: make(map[string][]Outcome),
	}
}

// SetDefault changes the outcome used once a topic's script is exhausted.
func (p *Provider) SetDefault(o Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.def = o
}

// Script queues outcomes for the next opens of topic, in order.
func (p *Provider) Script(topic string, outcomes ...Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts[topic] = append(p.scripts[topic], outcomes...)
}

// Open implements channel.Provider.
func (p *Provider) Open(topic string, cb channel.Callbacks) (channel.Handle, error) {
	p.mu.Lock()
	outcome := p.def
	if script := p.scripts[topic]; len(script) > 0 {
		outcome = script[0]
		p.scripts[topic] = script[1:]
	}
	if outcome == Reject {
		p.rejected = append(p.rejected, topic)
		p.mu.Unlock()
		return nil, ErrRejected
	}
	h := &Handle{
		id:     len(p.handles) + 1,
		topic:  topic,
		cb:     cb,
		status: channel.StatusConnecting,
	}
	p.handles = append(p.handles, h)
	p.mu.Unlock()

	notify(h, channel.StatusConnecting, nil)
	switch outcome {
	case Activate:
		p.transition(h, channel.StatusActive, nil)
	case Error:
		p.transition(h, channel.StatusError, ErrBackend)
	case Close:
		p.transition(h, channel.StatusClosed, nil)
	}
	return h, nil
}

// Close implements channel.Provider. It records the call and does not emit
// a status; callers that close a handle have already stopped caring about it.
func (p *Provider) Close(h channel.Handle) error {
	fh, ok := h.(*Handle)
	if !ok {
		return errors.New("fake: foreign handle")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fh.closes++
	fh.status = channel.StatusClosed
	return nil
}

// Activate resolves the most recent hanging channel for topic as ACTIVE.
// It returns false when there is nothing to resolve.
func (p *Provider) Activate(topic string) bool {
	h := p.latest(topic, channel.StatusConnecting)
	if h == nil {
		return false
	}
	p.transition(h, channel.StatusActive, nil)
	return true
}

// Fail resolves the most recent hanging channel for topic as ERROR.
func (p *Provider) Fail(topic string) bool {
	h := p.latest(topic, channel.StatusConnecting)
	if h == nil {
		return false
	}
	p.transition(h, channel.StatusError, ErrBackend)
	return true
}

// Drop makes the live channel for topic report CLOSED, as if the backend
// ended it.
func (p *Provider) Drop(topic string) bool {
	h := p.latest(topic, channel.StatusActive)
	if h == nil {
		return false
	}
	p.transition(h, channel.StatusClosed, nil)
	return true
}

// Emit delivers one change event to every live channel for topic and
// returns how many channels received it.
func (p *Provider) Emit(topic string) int {
	p.mu.Lock()
	var live []*Handle
	for _, h := range p.handles {
		if h.topic == topic && h.status == channel.StatusActive {
			live = append(live, h)
		}
	}
	p.mu.Unlock()

	for _, h := range live {
		if h.cb.OnChange != nil {
			h.cb.OnChange()
		}
	}
	return len(live)
}

// Opens returns the topic of every successful Open, in call order.
func (p *Provider) Opens() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	topics := make([]string, len(p.handles))
	for i, h := range p.handles {
		topics[i] = h.topic
	}
	return topics
}

// OpenCount returns how many channels were opened for topic, including
// rejected attempts.
func (p *Provider) OpenCount(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, h := range p.handles {
		if h.topic == topic {
			n++
		}
	}
	for _, t := range p.rejected {
		if t == topic {
			n++
		}
	}
	return n
}

// Handles returns every handle opened for topic, oldest first.
func (p *Provider) Handles(topic string) []*Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*Handle
	for _, h := range p.handles {
		if h.topic == topic {
			out = append(out, h)
		}
	}
	return out
}

// CloseCount returns how many times Close was called for h.
func (p *Provider) CloseCount(h *Handle) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return h.closes
}

// TotalCloses returns the number of Close calls across all handles.
func (p *Provider) TotalCloses() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, h := range p.handles {
		n += h.closes
	}
	return n
}

func (p *Provider) latest(topic string, status channel.Status) *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.handles) - 1; i >= 0; i-- {
		h := p.handles[i]
		if h.topic == topic && h.status == status && h.closes == 0 {
			return h
		}
	}
	return nil
}

func (p *Provider) transition(h *Handle, status channel.Status, err error) {
	p.mu.Lock()
	if h.closes > 0 {
		p.mu.Unlock()
		return
	}
	h.status = status
	p.mu.Unlock()
	notify(h, status, err)
}

func notify(h *Handle, status channel.Status, err error) {
	if h.cb.OnStatus != nil {
		h.cb.OnStatus(status, err)
	}
}

package phoenix

import (
	"sync"

	"github.com/courtside-app/courtside/internal/channel"
)

// Handle is one joined channel.
type Handle struct {
	client    *Client
	topic     string
	joinTopic string
	joinRef   string
	cb        channel.Callbacks
	conn      *connection

	mu     sync.Mutex
	status channel.Status
	closed bool
}

// Topic implements channel.Handle.
func (h *Handle) Topic() string { return h.topic }

// JoinTopic returns the Phoenix topic the channel joined.
func (h *Handle) JoinTopic() string { return h.joinTopic }

// report moves the handle to status and notifies the owner. Closed handles
// and handles already in a terminal status stay silent.
func (h *Handle) report(status channel.Status, err error) {
	h.mu.Lock()
	if h.closed || h.status.Terminal() {
		h.mu.Unlock()
		return
	}
	h.status = status
	h.mu.Unlock()

	if h.cb.OnStatus != nil {
		h.cb.OnStatus(status, err)
	}
}

func (h *Handle) change() {
	h.mu.Lock()
	live := !h.closed && h.status == channel.StatusActive
	h.mu.Unlock()

	if live && h.cb.OnChange != nil {
		h.cb.OnChange()
	}
}

// markClosed flags the handle closed and reports whether this call did it.
func (h *Handle) markClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.closed = true
	return true
}

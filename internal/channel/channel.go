// Package channel defines the contract between the subscription coordinator
// and a live-update backend.
//
// A [Provider] opens one live feed ("channel") per topic and reports its
// lifecycle asynchronously through [Callbacks]. The coordinator never
// inspects a [Handle] beyond passing it back to [Provider.Close], so any
// backend that can express CONNECTING/ACTIVE/ERROR/CLOSED and emit change
// notifications can sit behind this interface.
//
// Implementations:
//
//   - [github.com/courtside-app/courtside/internal/channel/phoenix]: websocket
//     client for the hosted realtime backend
//   - [github.com/courtside-app/courtside/internal/channel/fake]: scripted,
//     deterministic provider for tests
package channel

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by providers when an operation targets a handle
// or connection that has already been torn down.
var ErrClosed = errors.New("channel closed")

// Status is the lifecycle state of one channel.
type Status int

const (
	StatusConnecting Status = iota
	StatusActive
	StatusError
	StatusClosed
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusActive:
		return "active"
	case StatusError:
		return "error"
	case StatusClosed:
		return "closed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether the status ends the channel's useful life.
func (s Status) Terminal() bool {
	return s == StatusError || s == StatusClosed
}

// Callbacks receive a channel's asynchronous notifications.
// Providers may invoke them from any goroutine, including synchronously
// from within Open or Close. Either field may be nil.
type Callbacks struct {
	// OnStatus is called on every status transition. err carries the
	// backend's reason for ERROR/CLOSED when one is known.
	OnStatus func(status Status, err error)
	// OnChange is called for every change event while the channel is live.
	OnChange func()
}

// Handle is an opaque reference to one open channel.
type Handle interface {
	// Topic returns the topic the channel was opened for.
	Topic() string
}

// Provider opens and closes live channels.
type Provider interface {
	// Open starts a channel for topic. The returned handle reports
	// StatusConnecting until the backend confirms or rejects it.
	Open(topic string, cb Callbacks) (Handle, error)
	// Close tears the channel down. It is idempotent and safe to call on
	// a handle that never reached StatusActive.
	Close(h Handle) error
}

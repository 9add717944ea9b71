package realtime

import (
	"errors"
	"fmt"

	"github.com/courtside-app/courtside/internal/channel"
)

// Sentinel errors returned by coordinator operations.
var (
	ErrEmptyTopic       = errors.New("realtime: topic must not be empty")
	ErrEmptyScope       = errors.New("realtime: scope must not be empty")
	ErrNilCallback      = errors.New("realtime: callback must not be nil")
	ErrAlreadyStarted   = errors.New("realtime: coordinator already started")
	ErrStopped          = errors.New("realtime: coordinator stopped")
	ErrAdmissionTimeout = errors.New("realtime: admission timed out")
)

// errAborted marks an admission interrupted by Cancel or Reset.
var errAborted = errors.New("realtime: admission aborted")

// AdmissionError reports a channel that ended with a terminal status, either
// while being admitted or after it had become active.
type AdmissionError struct {
	Topic  string
	Status channel.Status
	Err    error // backend reason, may be nil
}

func (e *AdmissionError) Error() string {
	msg := fmt.Sprintf("realtime: channel for %q reported %s", e.Topic, e.Status)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AdmissionError) Unwrap() error { return e.Err }

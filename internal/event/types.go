package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "subscription.admitted").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeSubscriptionQueued         = "subscription.queued"
	TypeSubscriptionAdmitted       = "subscription.admitted"
	TypeSubscriptionFailed         = "subscription.failed"
	TypeSubscriptionRetryScheduled = "subscription.retry_scheduled"
	TypeSubscriptionDropped        = "subscription.dropped"
	TypeSubscriptionDemoted        = "subscription.demoted"
	TypeSubscriptionCancelled      = "subscription.cancelled"
	TypeSubscriptionReset          = "subscription.reset"
	TypeSubscriptionChanged        = "subscription.changed"
)

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string, at time.Time) baseEvent {
	if at.IsZero() {
		at = time.Now()
	}
	return baseEvent{eventType: eventType, timestamp: at}
}

// Subscription identifies the subscription an event is about.
type Subscription struct {
	ID    string
	Scope string
	Topic string
}

// SubscriptionQueuedEvent is emitted when a request enters the pending queue,
// either fresh from a caller or re-inserted by the retry scheduler.
type SubscriptionQueuedEvent struct {
	baseEvent
	Subscription
	Priority   int
	RetryCount int
	QueueDepth int
}

// NewSubscriptionQueuedEvent creates a SubscriptionQueuedEvent.
func NewSubscriptionQueuedEvent(at time.Time, sub Subscription, priority, retryCount, depth int) SubscriptionQueuedEvent {
	return SubscriptionQueuedEvent{
		baseEvent:    newBaseEvent(TypeSubscriptionQueued, at),
		Subscription: sub,
		Priority:     priority,
		RetryCount:   retryCount,
		QueueDepth:   depth,
	}
}

// SubscriptionAdmittedEvent is emitted when a channel reaches ACTIVE.
type SubscriptionAdmittedEvent struct {
	baseEvent
	Subscription
	RetryCount int
	Wait       time.Duration // time between queueing and activation
}

// NewSubscriptionAdmittedEvent creates a SubscriptionAdmittedEvent.
func NewSubscriptionAdmittedEvent(at time.Time, sub Subscription, retryCount int, wait time.Duration) SubscriptionAdmittedEvent {
	return SubscriptionAdmittedEvent{
		baseEvent:    newBaseEvent(TypeSubscriptionAdmitted, at),
		Subscription: sub,
		RetryCount:   retryCount,
		Wait:         wait,
	}
}

// SubscriptionFailedEvent is emitted for every failed admission attempt.
type SubscriptionFailedEvent struct {
	baseEvent
	Subscription
	RetryCount int
	Err        error
}

// NewSubscriptionFailedEvent creates a SubscriptionFailedEvent.
func NewSubscriptionFailedEvent(at time.Time, sub Subscription, retryCount int, err error) SubscriptionFailedEvent {
	return SubscriptionFailedEvent{
		baseEvent:    newBaseEvent(TypeSubscriptionFailed, at),
		Subscription: sub,
		RetryCount:   retryCount,
		Err:          err,
	}
}

// SubscriptionRetryScheduledEvent is emitted when a failed request is
// scheduled for re-insertion.
type SubscriptionRetryScheduledEvent struct {
	baseEvent
	Subscription
	RetryCount int
	Delay      time.Duration
	Priority   int
}

// NewSubscriptionRetryScheduledEvent creates a SubscriptionRetryScheduledEvent.
func NewSubscriptionRetryScheduledEvent(at time.Time, sub Subscription, retryCount int, delay time.Duration, priority int) SubscriptionRetryScheduledEvent {
	return SubscriptionRetryScheduledEvent{
		baseEvent:    newBaseEvent(TypeSubscriptionRetryScheduled, at),
		Subscription: sub,
		RetryCount:   retryCount,
		Delay:        delay,
		Priority:     priority,
	}
}

// SubscriptionDroppedEvent is emitted when a request exhausts its retries.
// The caller that made the request is not otherwise notified.
type SubscriptionDroppedEvent struct {
	baseEvent
	Subscription
	RetryCount int
	Err        error
}

// NewSubscriptionDroppedEvent creates a SubscriptionDroppedEvent.
func NewSubscriptionDroppedEvent(at time.Time, sub Subscription, retryCount int, err error) SubscriptionDroppedEvent {
	return SubscriptionDroppedEvent{
		baseEvent:    newBaseEvent(TypeSubscriptionDropped, at),
		Subscription: sub,
		RetryCount:   retryCount,
		Err:          err,
	}
}

// SubscriptionDemotedEvent is emitted when an active channel reports
// ERROR or CLOSED and its subscription goes back through the retry path.
type SubscriptionDemotedEvent struct {
	baseEvent
	Subscription
	Status string
}

// NewSubscriptionDemotedEvent creates a SubscriptionDemotedEvent.
func NewSubscriptionDemotedEvent(at time.Time, sub Subscription, status string) SubscriptionDemotedEvent {
	return SubscriptionDemotedEvent{
		baseEvent:    newBaseEvent(TypeSubscriptionDemoted, at),
		Subscription: sub,
		Status:       status,
	}
}

// SubscriptionCancelledEvent is emitted when a caller cancels a subscription.
// Phase is where it was found: "queued", "admitting", "retrying" or "active".
type SubscriptionCancelledEvent struct {
	baseEvent
	Subscription
	Phase string
}

// NewSubscriptionCancelledEvent creates a SubscriptionCancelledEvent.
func NewSubscriptionCancelledEvent(at time.Time, sub Subscription, phase string) SubscriptionCancelledEvent {
	return SubscriptionCancelledEvent{
		baseEvent:    newBaseEvent(TypeSubscriptionCancelled, at),
		Subscription: sub,
		Phase:        phase,
	}
}

// SubscriptionResetEvent is emitted after the coordinator discarded all state.
type SubscriptionResetEvent struct {
	baseEvent
	ClosedChannels int
	DiscardedQueue int
}

// NewSubscriptionResetEvent creates a SubscriptionResetEvent.
func NewSubscriptionResetEvent(at time.Time, closed, discarded int) SubscriptionResetEvent {
	return SubscriptionResetEvent{
		baseEvent:      newBaseEvent(TypeSubscriptionReset, at),
		ClosedChannels: closed,
		DiscardedQueue: discarded,
	}
}

// SubscriptionChangedEvent is emitted each time a change notification is
// delivered to a subscription's callback.
type SubscriptionChangedEvent struct {
	baseEvent
	Subscription
}

// NewSubscriptionChangedEvent creates a SubscriptionChangedEvent.
func NewSubscriptionChangedEvent(at time.Time, sub Subscription) SubscriptionChangedEvent {
	return SubscriptionChangedEvent{
		baseEvent:    newBaseEvent(TypeSubscriptionChanged, at),
		Subscription: sub,
	}
}

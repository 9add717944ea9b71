package realtime

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/courtside-app/courtside/internal/event"
)

// Callback is invoked once per change event delivered to an active
// subscription. The coordinator never mutates or replaces it.
type Callback func()

// subKey is the deduplication key of a subscription intent.
type subKey struct {
	scope string
	topic string
}

// request is a pending subscription intent. The same request value moves
// between the queue, an in-flight admission and the retry scheduler, so its
// id survives every retry.
type request struct {
	id         string
	scope      string
	topic      string
	callback   Callback
	priority   int
	retryCount int
	createdAt  time.Time
	enqueuedAt time.Time
}

func (r *request) key() subKey { return subKey{scope: r.scope, topic: r.topic} }

func (r *request) subscription() event.Subscription {
	return event.Subscription{ID: r.id, Scope: r.scope, Topic: r.topic}
}

// newRequestID builds an id from the intent and its creation time plus a
// random suffix, so two requests created in the same millisecond differ.
func newRequestID(scope, topic string, now time.Time) string {
	return fmt.Sprintf("%s:%s:%d:%s", scope, topic, now.UnixMilli(), uuid.NewString()[:8])
}

package tui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/courtside-app/courtside/internal/event"
)

// DefaultFeedSize is how many events a Feed keeps.
const DefaultFeedSize = 12

// Feed keeps the most recent coordinator events for display. It is safe
// for concurrent use; the bus publishes from coordinator goroutines while
// the UI reads on its own.
type Feed struct {
	mu     sync.Mutex
	events []event.Event
	size   int
	bus    *event.Bus
	subID  string
}

// NewFeed subscribes to every event on bus and keeps the last size of them.
func NewFeed(bus *event.Bus, size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	f := &Feed{size: size, bus: bus}
	if bus != nil {
		f.subID = bus.SubscribeAll(f.add)
	}
	return f
}

func (f *Feed) add(e event.Event) {
	// Change events arrive far more often than lifecycle events and would
	// push everything else off the list.
	if e.EventType() == event.TypeSubscriptionChanged {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	if len(f.events) > f.size {
		f.events = f.events[len(f.events)-f.size:]
	}
}

// Events returns the retained events, oldest first.
func (f *Feed) Events() []event.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]event.Event, len(f.events))
	copy(out, f.events)
	return out
}

// Close unsubscribes the feed from its bus.
func (f *Feed) Close() {
	if f.bus != nil {
		f.bus.Unsubscribe(f.subID)
	}
}

// Describe renders e as a one-line summary.
func Describe(e event.Event) string {
	switch ev := e.(type) {
	case event.SubscriptionQueuedEvent:
		return fmt.Sprintf("queued     %s/%s priority=%d depth=%d", ev.Scope, ev.Topic, ev.Priority, ev.QueueDepth)
	case event.SubscriptionAdmittedEvent:
		return fmt.Sprintf("active     %s/%s after %s", ev.Scope, ev.Topic, ev.Wait.Round(time.Millisecond))
	case event.SubscriptionFailedEvent:
		return fmt.Sprintf("failed     %s/%s attempt=%d: %v", ev.Scope, ev.Topic, ev.RetryCount+1, ev.Err)
	case event.SubscriptionRetryScheduledEvent:
		return fmt.Sprintf("retry      %s/%s #%d in %s", ev.Scope, ev.Topic, ev.RetryCount, ev.Delay)
	case event.SubscriptionDroppedEvent:
		return fmt.Sprintf("dropped    %s/%s after %d retries", ev.Scope, ev.Topic, ev.RetryCount)
	case event.SubscriptionDemotedEvent:
		return fmt.Sprintf("lost       %s/%s (%s)", ev.Scope, ev.Topic, ev.Status)
	case event.SubscriptionCancelledEvent:
		return fmt.Sprintf("cancelled  %s/%s while %s", ev.Scope, ev.Topic, ev.Phase)
	case event.SubscriptionResetEvent:
		return fmt.Sprintf("reset      closed=%d discarded=%d", ev.ClosedChannels, ev.DiscardedQueue)
	case event.SubscriptionChangedEvent:
		return fmt.Sprintf("change     %s/%s", ev.Scope, ev.Topic)
	default:
		return e.EventType()
	}
}

func eventStyle(e event.Event) lipgloss.Style {
	switch e.(type) {
	case event.SubscriptionAdmittedEvent:
		return eventGood
	case event.SubscriptionFailedEvent, event.SubscriptionRetryScheduledEvent, event.SubscriptionDemotedEvent:
		return eventWarn
	case event.SubscriptionDroppedEvent:
		return eventBad
	default:
		return eventQuiet
	}
}

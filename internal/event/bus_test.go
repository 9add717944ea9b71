package event

import (
	"sync"
	"testing"
	"time"
)

var testSub = Subscription{ID: "sub-1", Scope: "dashboard", Topic: "sessions"}

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe(TypeSubscriptionAdmitted, func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	bus.Subscribe(TypeSubscriptionAdmitted, func(e Event) {
		received = e
	})

	bus.Publish(NewSubscriptionAdmittedEvent(time.Now(), testSub, 2, time.Second))

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	admitted, ok := received.(SubscriptionAdmittedEvent)
	if !ok {
		t.Fatalf("received %T, want SubscriptionAdmittedEvent", received)
	}
	if admitted.ID != "sub-1" || admitted.RetryCount != 2 {
		t.Errorf("unexpected event payload: %+v", admitted)
	}
}

func TestBus_SpecificBeforeWildcard(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "all") })
	bus.Subscribe(TypeSubscriptionQueued, func(e Event) { order = append(order, "specific") })

	bus.Publish(NewSubscriptionQueuedEvent(time.Now(), testSub, 1, 0, 1))

	if len(order) != 2 || order[0] != "specific" || order[1] != "all" {
		t.Errorf("order = %v, want [specific all]", order)
	}
}

func TestBus_NoMatchingHandlers(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe(TypeSubscriptionDropped, func(e Event) {
		t.Error("Handler should not be called for non-matching event type")
	})

	bus.Publish(NewSubscriptionResetEvent(time.Now(), 0, 0))
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	callCount := 0
	id := bus.Subscribe(TypeSubscriptionChanged, func(e Event) { callCount++ })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe should return true for a known ID")
	}
	if bus.Unsubscribe(id) {
		t.Error("Unsubscribe should return false the second time")
	}

	bus.Publish(NewSubscriptionChangedEvent(time.Now(), testSub))
	if callCount != 0 {
		t.Errorf("handler called %d times after Unsubscribe", callCount)
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", bus.SubscriptionCount())
	}
}

func TestBus_PanicRecovery(t *testing.T) {
	bus := NewBus(nil)

	secondCalled := false
	bus.Subscribe(TypeSubscriptionCancelled, func(e Event) { panic("boom") })
	bus.Subscribe(TypeSubscriptionCancelled, func(e Event) { secondCalled = true })

	bus.Publish(NewSubscriptionCancelledEvent(time.Now(), testSub, "queued"))

	if !secondCalled {
		t.Error("handler after a panicking handler should still be called")
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus(nil)
	bus.Subscribe(TypeSubscriptionQueued, func(Event) {})
	bus.SubscribeAll(func(Event) {})

	bus.Clear()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after Clear, want 0", bus.SubscriptionCount())
	}
}

func TestBus_ConcurrentAccess(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := bus.Subscribe(TypeSubscriptionChanged, func(Event) {
				mu.Lock()
				count++
				mu.Unlock()
			})
			bus.Publish(NewSubscriptionChangedEvent(time.Now(), testSub))
			bus.Unsubscribe(id)
		}()
	}
	wg.Wait()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", bus.SubscriptionCount())
	}
	mu.Lock()
	defer mu.Unlock()
	if count < 10 {
		t.Errorf("count = %d, want at least 10", count)
	}
}

func TestEvent_Timestamp(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	e := NewSubscriptionDroppedEvent(at, testSub, 3, nil)
	if !e.Timestamp().Equal(at) {
		t.Errorf("Timestamp() = %v, want %v", e.Timestamp(), at)
	}
	if e.EventType() != TypeSubscriptionDropped {
		t.Errorf("EventType() = %q, want %q", e.EventType(), TypeSubscriptionDropped)
	}

	zero := NewSubscriptionResetEvent(time.Time{}, 0, 0)
	if zero.Timestamp().IsZero() {
		t.Error("zero time should default to now")
	}
}

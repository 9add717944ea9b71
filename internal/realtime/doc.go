// Package realtime coordinates live-update subscriptions against a shared
// backend connection.
//
// Many independent features each want to be told when a backend table
// changes. Opening one channel per screen causes connection storms and
// duplicate channels for the same resource; the [Coordinator] arbitrates
// those requests instead:
//
//   - Identical intents, keyed by (scope, topic), are deduplicated and
//     share one id.
//   - Channels are opened strictly one at a time by a single drain
//     goroutine, with a fixed pause between admissions.
//   - Failed admissions are retried with exponential backoff and a
//     priority boost, then dropped once retries are exhausted.
//   - Cancel and Reset tear channels down exactly once.
//
// # Pipeline
//
//	Request ─▶ pending queue ─▶ drain loop ─▶ admission ─▶ active registry
//	              ▲                              │
//	              └──── retry scheduler ◀────────┘ (ERROR / CLOSED / timeout)
//
// The pending queue is ordered by priority (highest first) and then by the
// time a request entered it. An active subscription whose channel later
// reports ERROR or CLOSED is demoted back into the retry scheduler.
//
// # Usage
//
//	coord := realtime.New(provider,
//	    realtime.WithLogger(logger),
//	    realtime.WithBus(bus),
//	)
//	if err := coord.Start(ctx); err != nil {
//	    return err
//	}
//	defer coord.Stop()
//
//	id, err := coord.Request("sessions", refresh, realtime.WithScope("dashboard"))
//	...
//	coord.Cancel(id)
//
// # Failure visibility
//
// Admission failures are never returned to the caller of Request. A
// request whose retries run out is dropped silently; observers that need
// to know can listen for [event.SubscriptionDroppedEvent] on the bus.
//
// # Thread Safety
//
// All Coordinator methods are safe for concurrent use. The provider is
// never called while the coordinator's lock is held, so providers may
// invoke callbacks synchronously.
package realtime

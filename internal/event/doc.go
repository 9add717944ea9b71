// Package event provides a synchronous pub-sub bus and the lifecycle events
// the subscription coordinator emits.
//
// The bus decouples the coordinator from its observers: metrics, the
// dashboard and the CLI printer all subscribe to events instead of being
// called directly.
//
// # Subscription lifecycle events
//
//   - [SubscriptionQueuedEvent]: a request entered the pending queue
//   - [SubscriptionAdmittedEvent]: a channel reached ACTIVE and was registered
//   - [SubscriptionFailedEvent]: one admission attempt failed
//   - [SubscriptionRetryScheduledEvent]: a failed request will be re-queued after a backoff
//   - [SubscriptionDroppedEvent]: retries are exhausted; the request is gone
//   - [SubscriptionDemotedEvent]: a live channel ended and the subscription went back to retrying
//   - [SubscriptionCancelledEvent]: a caller cancelled a subscription
//   - [SubscriptionResetEvent]: the coordinator was reset
//   - [SubscriptionChangedEvent]: a change notification was delivered
//
// # Thread Safety
//
// [Bus] is safe for concurrent use. Handlers are called synchronously on
// the publishing goroutine; a panicking handler is recovered and logged.
package event

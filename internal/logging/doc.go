// Package logging provides structured logging for courtside processes.
//
// It wraps log/slog with a JSON handler and adds child loggers that carry
// subscription context, so every line emitted while a subscription is
// being admitted, retried or torn down can be filtered by its id, scope
// or topic.
//
// Create a logger writing to a directory (or stderr when dir is empty):
//
//	logger, err := logging.NewLogger(dir, logging.LevelInfo)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	subLog := logger.WithSubscription(id, "dashboard", "sessions")
//	subLog.Info("admitted", "retry_count", 0)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"admitted","subscription_id":"...","scope":"dashboard","topic":"sessions","retry_count":0}
//
// Use [NopLogger] in tests.
//
// All types in this package are safe for concurrent use.
package logging

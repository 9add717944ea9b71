// Package metrics exposes coordinator activity as Prometheus metrics.
//
// A [Collector] counts lifecycle events from the event bus and samples
// queue, registry and retry sizes from the coordinator on every scrape.
// [Server] serves the collector's registry on /metrics.
package metrics

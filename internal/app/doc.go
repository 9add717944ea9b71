// Package app assembles the Courtside object graph with go.uber.org/fx.
//
// [Module] provides the logger, event bus, backend client, coordinator and
// metrics collector from a *config.Config and ties their start and stop to
// the fx lifecycle. Commands build an application with [New] and pull out
// the pieces they need with fx.Populate.
package app

// Package tui renders a live dashboard of the subscription coordinator
// with bubbletea.
//
// The [Model] polls coordinator status and the active-subscription snapshot
// on a fixed tick and shows the most recent lifecycle events collected by a
// [Feed] from the event bus.
package tui

// Package phoenix implements channel.Provider on top of the Phoenix
// channels protocol spoken by the hosted realtime backend.
//
// A single websocket is shared by every channel and dialled lazily on the
// first Open. Each Open joins a topic of the form
// "realtime:<schema>:<table>" with a postgres_changes configuration for
// that table. Join replies drive the channel status:
//
//	phx_reply {"status":"ok"}    -> ACTIVE
//	phx_reply {"status":"error"} -> ERROR
//	phx_error                    -> ERROR
//	phx_close                    -> CLOSED
//
// Any other event on a joined topic (postgres_changes, broadcast) counts as
// one change notification. A heartbeat is sent on the "phoenix" topic at a
// fixed interval. When the socket drops, every channel on it reports ERROR
// and the next Open dials a fresh socket.
package phoenix

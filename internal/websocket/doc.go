// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

/*
Package websocket pushes map session snapshots to browsers.

Each Client is bound to one map session id at upgrade time. The Hub routes
messages published with PublishToSession to the clients of that session only,
and BroadcastJSON to every client. Delivery is non-blocking: a full hub queue
drops the message and a client whose send buffer is full is disconnected, so a
slow browser never stalls a session loop.

	┌─────────────┐  PublishToSession(id, "snapshot", snap)
	│ map session │ ─────────────────────────────┐
	└─────────────┘                              ▼
	                                        ┌─────────┐
	                                        │   Hub   │
	                                        └────┬────┘
	                          ┌──────────────────┼──────────────┐
	                     Client(id)         Client(id)      Client(other)

Each client has two goroutines: readPump answers "ping" messages with "pong"
and detects disconnects; writePump writes queued messages and keepalive pings.

Message types:

  - snapshot: the full render state of the client's session
  - observation_created: an observation was created by any user
  - ping / pong: application-level keepalive

The hub is run under suture via RunWithContext; cancellation closes every
client.
*/
package websocket

// Package stream implements the per-client streaming session.
//
// Each connected client gets one Session running two independent periodic
// actions: a heartbeat that probes liveness and closes dead connections, and a
// poll-and-diff loop that pushes a serialized update whenever the store's
// latest reading changes. Session logic is transport-agnostic; the websocket
// adapter in this package binds it to gorilla/websocket.
package stream

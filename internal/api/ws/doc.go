// Package ws bridges the desktop runtime to shell WebSocket clients.
//
// One connection carries both directions: inbound "action" messages are
// decoded with the shared wire codec and dispatched to the runtime, and
// runtime events (state changes, lifecycles, app events, notices) stream
// back out. Ping/pong keepalive closes dead connections.
package ws

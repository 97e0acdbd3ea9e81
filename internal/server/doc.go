// Package server wires the desktop runtime behind its HTTP surface.
//
// Wiring order:
//  1. Logger from configuration
//  2. App registry (builtins plus manifest directory scan)
//  3. State store (file-backed when a data dir is configured)
//  4. Reducer, capability gate, and runtime
//  5. Gin router with recovery, metrics, CORS, and rate limiting
//  6. REST routes, the metrics endpoint, and the WebSocket stream
//
// Run boots persisted state, starts the runtime loop, and serves until the
// context is canceled, then shuts down gracefully.
package server

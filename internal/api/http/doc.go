// Package http provides the REST handlers and the action wire codec for
// the desktop runtime.
//
// Actions arrive as JSON envelopes discriminated by a "type" field and are
// decoded into reducer actions; the same codec serves the WebSocket
// surface. Reads go through the runtime's View so responses never hold
// references into live state.
package http

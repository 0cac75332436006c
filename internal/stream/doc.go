// Package stream exposes the pipeline to presentation clients over
// WebSocket.
//
// The hub broadcasts alert_ready, queue_depth, universe_sync, and
// price frames to every connected client, and dispatches inbound
// command frames (set_mode, request_next, set_filter, add_symbols,
// remove_symbol, toggle_priority) to the engine. Writes per client are
// serialized through a buffered send channel; a slow client drops
// frames rather than stalling the broadcast.
package stream

// Package pipeline wires polled events through deduplication,
// consensus, and enrichment into the delivery queue.
//
// The engine owns a growable buffer fed by the pollers and a single
// consume loop that drains it, so every downstream stage runs on one
// goroutine and stage state needs no extra locking. A periodic flush
// sweep promotes stale single-source stories on the same cadence the
// delivery timer runs at. When the delivery queue is full, news and
// fundamentals events are shed before enrichment rather than paying
// for analysis that cannot be delivered.
package pipeline

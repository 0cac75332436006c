// Package dedup suppresses news items that have already been seen.
//
// Admission runs through two tiers: a bounded in-memory LRU for the hot
// path, backed by the persistent seen_news table so suppression survives
// restarts. A memory hit never touches the store; a memory miss consults
// the store and backfills the LRU. Duplicate drops are silent. Store
// failures degrade to memory-only behavior rather than blocking the
// pipeline.
package dedup

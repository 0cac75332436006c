// Package store is the persistence collaborator for the pipeline.
//
// It owns the durable state the core needs across restarts: the full
// ticker universe, serialized settings, seen-news dedup keys, the
// incremental price cache, and cached analysis verdicts. The Postgres
// implementation is the production path; MemoryStore backs tests and
// degraded in-memory operation.
package store

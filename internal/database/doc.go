// Package database provides connection pool management for PostgreSQL.
//
// The sentry keeps all persisted state in a single database:
//   - tickers (full universe)
//   - settings (monitoring/priority lists, sync timestamps)
//   - seen_news (persistent dedup keys)
//   - price_history (incremental price cache)
//   - analysis_cache (cached narrative verdicts)
package database

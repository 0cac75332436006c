package store

// schemaStatements create the sentry tables. All statements are idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tickers (
		symbol TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS seen_news (
		dedup_key TEXT PRIMARY KEY,
		seen_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS seen_news_seen_at_idx ON seen_news (seen_at)`,
	`CREATE TABLE IF NOT EXISTS price_history (
		symbol TEXT NOT NULL,
		ts     TIMESTAMPTZ NOT NULL,
		price  DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (symbol, ts)
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_cache (
		content_hash TEXT PRIMARY KEY,
		verdict      TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
}

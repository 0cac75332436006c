package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pmercer/marketwire/internal/model"
)

// PGStore is the Postgres-backed Store implementation.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PGStore and ensures the schema exists.
func NewPGStore(ctx context.Context, db *pgxpool.Pool) (*PGStore, error) {
	s := &PGStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// ensureSchema creates all tables idempotently.
func (s *PGStore) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetTickers returns every symbol in the full universe.
func (s *PGStore) GetTickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT symbol FROM tickers ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// AddTickers bulk-merges symbols into the full universe.
func (s *PGStore) AddTickers(ctx context.Context, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, sym := range symbols {
		batch.Queue(`
			INSERT INTO tickers (symbol)
			VALUES ($1)
			ON CONFLICT (symbol) DO NOTHING
		`, sym)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range symbols {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert ticker: %w", err)
		}
	}
	return nil
}

// GetSetting returns the value for key, or "" when the key is absent.
func (s *PGStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting upserts a setting.
func (s *PGStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// IsNewsSeen reports whether a dedup key has been recorded.
func (s *PGStore) IsNewsSeen(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM seen_news WHERE dedup_key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query seen news: %w", err)
	}
	return exists, nil
}

// MarkNewsSeen records a dedup key.
func (s *PGStore) MarkNewsSeen(ctx context.Context, key string, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO seen_news (dedup_key, seen_at)
		VALUES ($1, $2)
		ON CONFLICT (dedup_key) DO NOTHING
	`, key, at.UTC())
	if err != nil {
		return fmt.Errorf("mark news seen: %w", err)
	}
	return nil
}

// PruneSeenNews deletes dedup records older than the cutoff.
func (s *PGStore) PruneSeenNews(ctx context.Context, olderThan time.Time) (int64, error) {
	ct, err := s.db.Exec(ctx, `DELETE FROM seen_news WHERE seen_at < $1`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune seen news: %w", err)
	}
	return ct.RowsAffected(), nil
}

// GetPriceHistory returns price rows for symbol at or after since, ascending.
func (s *PGStore) GetPriceHistory(ctx context.Context, symbol string, since time.Time) ([]model.PricePoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ts, price FROM price_history
		WHERE symbol = $1 AND ts >= $2
		ORDER BY ts ASC
	`, symbol, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// StorePrices inserts price rows, skipping duplicates.
func (s *PGStore) StorePrices(ctx context.Context, symbol string, rows []model.PricePoint) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO price_history (symbol, ts, price)
			VALUES ($1, $2, $3)
			ON CONFLICT (symbol, ts) DO NOTHING
		`, symbol, r.Timestamp.UTC(), r.Price)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert price: %w", err)
		}
	}
	return nil
}

// GetLastPriceTimestamp returns the newest stored timestamp for symbol,
// or the zero time when no history exists.
func (s *PGStore) GetLastPriceTimestamp(ctx context.Context, symbol string) (time.Time, error) {
	var ts time.Time
	err := s.db.QueryRow(ctx,
		`SELECT ts FROM price_history WHERE symbol = $1 ORDER BY ts DESC LIMIT 1`, symbol).Scan(&ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query last price timestamp: %w", err)
	}
	return ts, nil
}

// GetAnalysisCache returns a cached verdict by content hash.
func (s *PGStore) GetAnalysisCache(ctx context.Context, hash string) (string, bool, error) {
	var verdict string
	err := s.db.QueryRow(ctx,
		`SELECT verdict FROM analysis_cache WHERE content_hash = $1`, hash).Scan(&verdict)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query analysis cache: %w", err)
	}
	return verdict, true, nil
}

// StoreAnalysisCache upserts a verdict by content hash.
func (s *PGStore) StoreAnalysisCache(ctx context.Context, hash, verdict string, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO analysis_cache (content_hash, verdict, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (content_hash) DO UPDATE SET verdict = EXCLUDED.verdict, created_at = EXCLUDED.created_at
	`, hash, verdict, at.UTC())
	if err != nil {
		return fmt.Errorf("store analysis cache: %w", err)
	}
	return nil
}

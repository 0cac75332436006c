// Package model defines shared data types used across the MarketWire pipeline.
//
// Conventions:
//   - Symbols: opaque uppercase identifiers (equity tickers, crypto pairs,
//     FX pairs, indices)
//   - Timestamps: time.Time in UTC
//   - IDs: uuid.UUID for emitted stories and alerts
package model

// Package provider implements the REST client for external market-data
// providers.
//
// The client covers five operations: current price, per-symbol news,
// the provider-agnostic global news firehose, the full symbol listing
// (primary host with a secondary fallback), and symbol validation.
// All operations retry retryable failures with jittered exponential
// backoff; provider outages surface as errors at the poll site, never
// as process failures.
package provider

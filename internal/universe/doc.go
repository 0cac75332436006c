// Package universe implements the Universe Manager.
//
// The manager owns three symbol sets and their persistence:
//   - full: every known-valid symbol (thousands, refreshed daily from the
//     listing sources)
//   - monitoring: the user-controlled subset that is actively polled
//   - priority: a small capped subset of monitoring polled at high frequency
//
// Invariant: priority ⊆ monitoring; monitoring symbols are validated
// against a provider, trusted when already listed in full, and admitted
// permissively only while the full universe is still empty (cold start
// before the first listing sync).
package universe

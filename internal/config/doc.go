// Package config loads and validates the sentry daemon configuration.
//
// Configuration is YAML with ${VAR} environment expansion. Optional fields
// receive defaults via applyDefaults; Validate rejects structurally invalid
// setups before any component starts.
package config

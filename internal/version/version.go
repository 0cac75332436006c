// Package version carries the build metadata stamped into the sentry
// binary.
//
// Release builds stamp all three fields:
//
//	go build -ldflags "\
//	  -X github.com/pmercer/marketwire/internal/version.Version=$(git describe --tags --always) \
//	  -X github.com/pmercer/marketwire/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/pmercer/marketwire/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

var (
	Version   = "dev"     // git describe output, or "dev" for local builds
	Commit    = "unknown" // short commit hash
	BuildTime = "unknown" // UTC build timestamp, RFC 3339
)

// String renders the build metadata for startup logs.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}

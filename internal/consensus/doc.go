// Package consensus corroborates news reports across sources before
// they become alerts.
//
// Each symbol owns a pending buffer of recent reports. A report only
// counts once per source inside the TTL window. When the buffer reaches
// the configured threshold the reports are promoted to a single
// VerifiedStory and the buffer is cleared. A periodic flush promotes
// stale single-source buffers so a story never dies waiting for
// corroboration that will not come.
package consensus

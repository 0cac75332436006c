// Package delivery owns the bounded alert queue and its flow control.
//
// Alerts arrive from enrichment and leave through either a recurring
// AUTO timer or explicit user requests in MANUAL mode. The queue sheds
// the newest item at capacity so content already promised to the user
// is never starved. An active symbol filter scopes delivery without
// reordering or dropping the items it skips.
package delivery

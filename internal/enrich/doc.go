// Package enrich turns verified stories and fundamentals reports into
// renderable alert payloads.
//
// Enrichment layers a narrative verdict (from a Narrator, fronted by a
// persistent analysis cache), a technical read of recent prices, and a
// fundamentals score on top of the story. Every layer is best-effort:
// a failed narrator or an empty price history degrades the payload, it
// never blocks the alert.
package enrich

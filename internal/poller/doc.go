// Package poller drives the three polling loops that feed the pipeline.
//
// The priority loop sweeps the priority universe on a tight interval,
// the standard loop covers the rest of the monitoring universe, and the
// global loop pulls the cross-market news feed and maps tagged symbols
// back onto the full universe. Within one sweep, symbols are polled
// concurrently under a shared semaphore; within one symbol, price is
// always read before news. A failed fetch costs that symbol one cycle
// and nothing else.
package poller

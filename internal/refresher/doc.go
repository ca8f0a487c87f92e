// Package refresher implements the scheduled stock quote refresh.
//
// The Refresher:
//   - Runs one cycle at start, then one at every multiple of the interval (top of the hour by default)
//   - Processes symbols one at a time: quote, merge history, upsert
//   - Records a per-symbol result and never stops a cycle on a single failure
//   - Does not retry within a cycle; the next tick is the retry
//
// Cycles share one goroutine so they cannot overlap within a process. Nothing
// prevents two processes from refreshing the same rows concurrently.
package refresher

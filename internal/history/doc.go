// Package history maintains the rolling daily price window stored with each stock.
//
// A merge prunes stored entries to the trailing window, backfills from the
// quote provider when nothing usable is left, and appends today's price once.
package history

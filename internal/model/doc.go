// Package model defines shared data types used across the portfolio tracker.
//
// Conventions:
//   - Money and prices: decimal.Decimal, rendered as JSON numbers
//   - Calendar days: Date (UTC, "2006-01-02")
//   - Instants: time.Time
//   - IDs: int64 for database serials, string for stock codes
package model

// Package quote provides the market-data client used to refresh stock prices.
//
// Data comes from the Yahoo Finance v8 chart endpoint:
//   - GET /v8/finance/chart/{symbol}?range=1d&interval=1d for the current quote
//   - GET /v8/finance/chart/{symbol}?period1=..&period2=..&interval=1d for daily closes
package quote

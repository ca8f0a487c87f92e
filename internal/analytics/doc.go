// Package analytics derives the computed views served by the API from raw
// store data: portfolio performance, price changes against stored history,
// trade summaries, the net-asset series and the dashboard.
//
// Everything here is pure; callers supply the data and the current date.
package analytics

// Package store implements the PostgreSQL persistence layer.
//
// Tables:
//   - stock_info (refreshed quotes, history_price stored as JSON text)
//   - stock_holding (held quantity per stock)
//   - asset, portfolio, portfolio_asset
//   - cash_accounts, investment_accounts
//   - trade_record
//
// Every method is a single statement or a single pgx.Batch; there are no
// multi-statement transactions. NUMERIC columns are read back as text and
// parsed into decimal.Decimal so no precision is lost.
package store

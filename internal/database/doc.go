// Package database provides PostgreSQL connection pool management and schema bootstrap.
//
// Tables:
//   - asset, portfolio, portfolio_asset: user-managed portfolios
//   - stock_info: quotes and the rolling price history written by the refresher
//   - stock_holding: stocks the user holds, joined against stock_info
//   - cash_accounts, investment_accounts, trade_record: cash flow and net worth
package database

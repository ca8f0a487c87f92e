package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Market Data
// -----------------------------------------------------------------------------

// StockRecord is one row of stock_info: the latest quote plus its rolling history.
type StockRecord struct {
	Code         string          `json:"stock_code"` // Primary key (e.g., "AAPL")
	Name         string          `json:"stock_name"`
	CompanyName  string          `json:"company_name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	History      History         `json:"history_price"` // Nil when stored history is absent or malformed
}

// Holding is a held stock joined with its latest quote.
type Holding struct {
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	CompanyName   string           `json:"company_name,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Value         decimal.Decimal  `json:"value"`
	Change        *decimal.Decimal `json:"change"`
	ChangePercent *decimal.Decimal `json:"change_percent"`
}

// -----------------------------------------------------------------------------
// Portfolios
// -----------------------------------------------------------------------------

// Asset is a user-defined tradable asset.
type Asset struct {
	ID     int64           `json:"id"`
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Type   string          `json:"type"`
}

// Portfolio groups assets under a name.
type Portfolio struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PortfolioAsset is a position: an asset held in a portfolio at a purchase price.
type PortfolioAsset struct {
	PortfolioID   int64           `json:"portfolio_id"`
	AssetID       int64           `json:"asset_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// Position is an asset as listed inside a portfolio detail.
type Position struct {
	ID            int64           `json:"id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// PortfolioDetail is a portfolio with its positions.
type PortfolioDetail struct {
	Portfolio
	Assets []Position `json:"assets"`
}

// Performance summarizes the value of a set of positions against their cost.
type Performance struct {
	TotalValue       decimal.Decimal `json:"total_value"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	ProfitLoss       decimal.Decimal `json:"profit_loss"`
	ReturnPercentage decimal.Decimal `json:"return_percentage"`
}

// -----------------------------------------------------------------------------
// Accounts & Cash Flow
// -----------------------------------------------------------------------------

// Trade types recorded in trade_record.
const (
	TradeIncome  = "income"
	TradeExpense = "expense"
)

// Income details recognized by the trade summary.
const (
	DetailBank  = "bank"
	DetailStock = "stock"
)

// TradeRecord is a cash movement.
type TradeRecord struct {
	ID     int64           `json:"id"`
	Type   string          `json:"trade_type"`
	Detail string          `json:"trade_detail"`
	Amount decimal.Decimal `json:"amount"`
	Time   time.Time       `json:"trade_time"`
}

// TradeTotal is the sum of amounts for one (type, detail) pair.
type TradeTotal struct {
	Type   string
	Detail string
	Total  decimal.Decimal
}

// DailyTradeTotal is the sum of amounts for one type on one day.
type DailyTradeTotal struct {
	Date  Date
	Type  string
	Total decimal.Decimal
}

// CashAccount is a bank or cash balance.
type CashAccount struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Type    string          `json:"type"`
	Updated time.Time       `json:"updated"`
}

// InvestmentAccount is a brokerage or retirement account value.
type InvestmentAccount struct {
	Name    string          `json:"name"`
	Value   decimal.Decimal `json:"value"`
	Type    string          `json:"type"`
	Updated time.Time       `json:"updated"`
}

// HeldStock is a stock_holding row joined with its stock_info record.
type HeldStock struct {
	Stock    StockRecord
	Quantity decimal.Decimal
}

// -----------------------------------------------------------------------------
// Dashboard
// -----------------------------------------------------------------------------

// DashboardSnapshot is the raw data the dashboard is computed from.
type DashboardSnapshot struct {
	CashAccounts       []CashAccount
	InvestmentAccounts []InvestmentAccount
	Income             decimal.Decimal // Income over the cash-flow window
	Spending           decimal.Decimal // Expenses over the cash-flow window
	MarketIndices      []StockRecord
	Held               []HeldStock
}

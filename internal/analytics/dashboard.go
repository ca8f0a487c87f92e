package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

// Dashboard defaults.
const (
	CashFlowDays  = 30 // Window for cash-flow income and spending
	TopMoverCount = 5
)

// netWorthOffsets shape the synthetic net-worth trend preceding the current
// value: each point is the cash total plus the offset.
var netWorthOffsets = []int64{-1000, -500, 200, 500, 1000, 2000}

// Category weights used until trades carry categories.
var (
	DefaultIncomeCategories   = []int{75, 15, 8, 2}
	DefaultSpendingCategories = []int{40, 25, 20, 10, 5}
)

// Insights shown on every dashboard.
var DefaultInsights = []string{
	"Compared to our baseline portfolio, you are underweight in: International Stocks by (8.64)%.",
	"You are currently paying over $2408.34 per year in fees for mutual funds and ETF's.",
	"You are projected to pay over $119017.22 in 20 years in management fees for mutual funds and ETF's.",
}

// Categories holds percentage weights per cash-flow category.
type Categories struct {
	Income   []int `json:"income"`
	Spending []int `json:"spending"`
}

// CashFlow is income and spending over the cash-flow window.
type CashFlow struct {
	Income     decimal.Decimal `json:"income"`
	Spending   decimal.Decimal `json:"spending"`
	Categories Categories      `json:"categories"`
}

// Dashboard is the combined overview served to the front end.
type Dashboard struct {
	CashAccounts       []model.CashAccount       `json:"cashAccounts"`
	InvestmentAccounts []model.InvestmentAccount `json:"investmentAccounts"`
	NetWorth           decimal.Decimal           `json:"netWorth"`
	NetWorthHistory    []decimal.Decimal         `json:"netWorthHistory"`
	CashFlow           CashFlow                  `json:"cashFlow"`
	MarketIndices      []IndexQuote              `json:"marketIndices"`
	Gainers            []model.Holding           `json:"gainers"`
	Losers             []model.Holding           `json:"losers"`
	Insights           []string                  `json:"insights"`
}

// BuildDashboard computes the dashboard from a snapshot.
func BuildDashboard(snap model.DashboardSnapshot) Dashboard {
	cash, invested := decimal.Zero, decimal.Zero
	for _, a := range snap.CashAccounts {
		cash = cash.Add(a.Balance)
	}
	for _, a := range snap.InvestmentAccounts {
		invested = invested.Add(a.Value)
	}
	netWorth := cash.Add(invested)

	holdings := Holdings(snap.Held)

	return Dashboard{
		CashAccounts:       nonNil(snap.CashAccounts),
		InvestmentAccounts: nonNil(snap.InvestmentAccounts),
		NetWorth:           netWorth,
		NetWorthHistory:    NetWorthHistory(cash, netWorth),
		CashFlow: CashFlow{
			Income:   snap.Income,
			Spending: snap.Spending,
			Categories: Categories{
				Income:   append([]int(nil), DefaultIncomeCategories...),
				Spending: append([]int(nil), DefaultSpendingCategories...),
			},
		},
		MarketIndices: Indices(snap.MarketIndices),
		Gainers:       TopMovers(holdings, Up, TopMoverCount),
		Losers:        TopMovers(holdings, Down, TopMoverCount),
		Insights:      append([]string(nil), DefaultInsights...),
	}
}

// NetWorthHistory returns the trend points derived from the cash total,
// ending with the current net worth.
func NetWorthHistory(cash, netWorth decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(netWorthOffsets)+1)
	for _, off := range netWorthOffsets {
		out = append(out, cash.Add(decimal.NewFromInt(off)))
	}
	return append(out, netWorth)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

// NetAssetDays is the length of the daily net-asset series.
const NetAssetDays = 15

// IncomeBreakdown splits income by source.
type IncomeBreakdown struct {
	Bank  decimal.Decimal `json:"bank"`
	Stock decimal.Decimal `json:"stock"`
	Total decimal.Decimal `json:"total"`
}

// TradeSummary is income by source and total expenditure.
type TradeSummary struct {
	Income      IncomeBreakdown `json:"income"`
	Expenditure decimal.Decimal `json:"expenditure"`
}

// NetAssets is lifetime income, expenditure and their difference.
type NetAssets struct {
	Income      decimal.Decimal `json:"income"`
	Expenditure decimal.Decimal `json:"expenditure"`
	NetAsset    decimal.Decimal `json:"net_asset"`
}

// NetAssetPoint is one day of the cumulative net-asset series.
type NetAssetPoint struct {
	Date               model.Date      `json:"date"`
	Income             decimal.Decimal `json:"income"`
	Expenditure        decimal.Decimal `json:"expenditure"`
	CumulativeNetAsset decimal.Decimal `json:"cumulative_net_asset"`
}

// SummarizeTrades folds per-(type, detail) totals into a TradeSummary.
// Income with a detail other than bank or stock is not counted.
func SummarizeTrades(totals []model.TradeTotal) TradeSummary {
	var s TradeSummary
	for _, t := range totals {
		switch t.Type {
		case model.TradeIncome:
			switch t.Detail {
			case model.DetailBank:
				s.Income.Bank = s.Income.Bank.Add(t.Total)
			case model.DetailStock:
				s.Income.Stock = s.Income.Stock.Add(t.Total)
			}
		case model.TradeExpense:
			s.Expenditure = s.Expenditure.Add(t.Total)
		}
	}
	s.Income.Total = s.Income.Bank.Add(s.Income.Stock)
	return s
}

// CurrentNetAssets sums all income and expenses.
func CurrentNetAssets(totals []model.TradeTotal) NetAssets {
	var n NetAssets
	for _, t := range totals {
		switch t.Type {
		case model.TradeIncome:
			n.Income = n.Income.Add(t.Total)
		case model.TradeExpense:
			n.Expenditure = n.Expenditure.Add(t.Total)
		}
	}
	n.NetAsset = n.Income.Sub(n.Expenditure).Round(2)
	return n
}

// SeriesStart returns the first day of a series of days ending today.
func SeriesStart(today model.Date, days int) model.Date {
	return today.AddDays(-(days - 1))
}

// NetAssetSeries returns one point per day for the days ending today. The
// cumulative value starts at zero on the first day; totals outside the range
// are ignored.
func NetAssetSeries(daily []model.DailyTradeTotal, today model.Date, days int) []NetAssetPoint {
	type flows struct{ income, expense decimal.Decimal }
	byDay := make(map[model.Date]flows)
	for _, d := range daily {
		f := byDay[d.Date]
		switch d.Type {
		case model.TradeIncome:
			f.income = f.income.Add(d.Total)
		case model.TradeExpense:
			f.expense = f.expense.Add(d.Total)
		}
		byDay[d.Date] = f
	}

	out := make([]NetAssetPoint, 0, days)
	cumulative := decimal.Zero
	for day := SeriesStart(today, days); !day.After(today); day = day.AddDays(1) {
		f := byDay[day]
		cumulative = cumulative.Add(f.income).Sub(f.expense)
		out = append(out, NetAssetPoint{
			Date:               day,
			Income:             f.income,
			Expenditure:        f.expense,
			CumulativeNetAsset: cumulative.Round(2),
		})
	}
	return out
}

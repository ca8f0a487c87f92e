package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

// PortfolioPerformance values positions at their asset price against their
// purchase cost. The return percentage is zero when the total cost is zero.
func PortfolioPerformance(positions []model.Position) model.Performance {
	value, cost := decimal.Zero, decimal.Zero
	for _, p := range positions {
		value = value.Add(p.Quantity.Mul(p.Price))
		cost = cost.Add(p.Quantity.Mul(p.PurchasePrice))
	}

	pl := value.Sub(cost)
	ret := decimal.Zero
	if !cost.IsZero() {
		ret = pl.Div(cost).Mul(hundred).Round(percentPlaces)
	}

	return model.Performance{
		TotalValue:       value,
		TotalCost:        cost,
		ProfitLoss:       pl,
		ReturnPercentage: ret,
	}
}

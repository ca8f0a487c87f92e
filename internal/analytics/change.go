package analytics

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

var hundred = decimal.NewFromInt(100)

// percentPlaces is the rounding applied to every percentage.
const percentPlaces = 2

// StockChange is a stock with its change against the most recent stored close.
type StockChange struct {
	Code          string           `json:"stock_code"`
	Name          string           `json:"stock_name"`
	CompanyName   string           `json:"company_name,omitempty"`
	CurrentPrice  decimal.Decimal  `json:"current_price"`
	ChangePercent *decimal.Decimal `json:"change_percent"`
}

// IndexQuote is a market index with its change over the stored window.
type IndexQuote struct {
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	Change        *decimal.Decimal `json:"change"`
	ChangePercent *decimal.Decimal `json:"change_percent"`
}

// changeFrom returns price-base and its percentage of base. Both are nil when
// base is missing or zero.
func changeFrom(price decimal.Decimal, base model.PricePoint, ok bool) (*decimal.Decimal, *decimal.Decimal) {
	if !ok || base.Price.IsZero() {
		return nil, nil
	}
	change := price.Sub(base.Price)
	pct := change.Div(base.Price).Mul(hundred).Round(percentPlaces)
	return &change, &pct
}

// ChangeSinceFirst compares the current price with the oldest stored close.
func ChangeSinceFirst(rec model.StockRecord) (change, percent *decimal.Decimal) {
	first, ok := rec.History.First()
	return changeFrom(rec.CurrentPrice, first, ok)
}

// ChangeSinceLast compares the current price with the newest stored close.
func ChangeSinceLast(rec model.StockRecord) (change, percent *decimal.Decimal) {
	last, ok := rec.History.Last()
	return changeFrom(rec.CurrentPrice, last, ok)
}

// Holdings values each held stock and its change over the stored window.
func Holdings(held []model.HeldStock) []model.Holding {
	out := make([]model.Holding, 0, len(held))
	for _, h := range held {
		change, pct := ChangeSinceFirst(h.Stock)
		out = append(out, model.Holding{
			Symbol:        h.Stock.Code,
			Name:          h.Stock.Name,
			CompanyName:   h.Stock.CompanyName,
			Price:         h.Stock.CurrentPrice,
			Quantity:      h.Quantity,
			Value:         h.Stock.CurrentPrice.Mul(h.Quantity),
			Change:        change,
			ChangePercent: pct,
		})
	}
	return out
}

// Changes reports each stock's change against its newest stored close.
func Changes(stocks []model.StockRecord) []StockChange {
	out := make([]StockChange, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, changeOf(s))
	}
	return out
}

func changeOf(s model.StockRecord) StockChange {
	_, pct := ChangeSinceLast(s)
	return StockChange{
		Code:          s.Code,
		Name:          s.Name,
		CompanyName:   s.CompanyName,
		CurrentPrice:  s.CurrentPrice,
		ChangePercent: pct,
	}
}

// Direction selects rising or falling stocks.
type Direction int

const (
	Up Direction = iota
	Down
)

// Movers returns the held stocks whose change against the newest stored close
// is strictly positive (Up) or strictly negative (Down). Stocks without a
// usable history are never movers.
func Movers(held []model.HeldStock, dir Direction) []StockChange {
	out := []StockChange{}
	for _, h := range held {
		c := changeOf(h.Stock)
		if c.ChangePercent == nil {
			continue
		}
		sign := c.ChangePercent.Sign()
		if (dir == Up && sign > 0) || (dir == Down && sign < 0) {
			out = append(out, c)
		}
	}
	return out
}

// Indices reports each index with its change over the stored window.
func Indices(stocks []model.StockRecord) []IndexQuote {
	out := make([]IndexQuote, 0, len(stocks))
	for _, s := range stocks {
		change, pct := ChangeSinceFirst(s)
		out = append(out, IndexQuote{
			Symbol:        s.Code,
			Name:          s.Name,
			Price:         s.CurrentPrice,
			Change:        change,
			ChangePercent: pct,
		})
	}
	return out
}

// TopMovers returns up to n holdings with the highest (Up) or lowest (Down)
// change percentage. A missing percentage ranks as zero.
func TopMovers(holdings []model.Holding, dir Direction, n int) []model.Holding {
	sorted := slices.Clone(holdings)
	slices.SortStableFunc(sorted, func(a, b model.Holding) int {
		c := percentOrZero(a).Cmp(percentOrZero(b))
		if dir == Up {
			return -c
		}
		return c
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []model.Holding{}
	}
	return sorted
}

func percentOrZero(h model.Holding) decimal.Decimal {
	if h.ChangePercent == nil {
		return decimal.Zero
	}
	return *h.ChangePercent
}

package analytics

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) model.Date { return model.MustParseDate(s) }

func history(points ...string) model.History {
	var h model.History
	for i := 0; i+1 < len(points); i += 2 {
		h = append(h, model.PricePoint{Date: day(points[i]), Price: d(points[i+1])})
	}
	return h
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func assertPercent(t *testing.T, name string, got *decimal.Decimal, want string) {
	t.Helper()
	if want == "" {
		if got != nil {
			t.Errorf("%s = %s, want nil", name, got)
		}
		return
	}
	if got == nil {
		t.Errorf("%s = nil, want %s", name, want)
		return
	}
	assertDecimal(t, name, *got, want)
}

func TestPortfolioPerformance(t *testing.T) {
	tests := []struct {
		name      string
		positions []model.Position
		value     string
		cost      string
		pl        string
		ret       string
	}{
		{
			name: "gain",
			positions: []model.Position{
				{Price: d("150"), Quantity: d("10"), PurchasePrice: d("100")},
				{Price: d("50"), Quantity: d("2"), PurchasePrice: d("50")},
			},
			value: "1600", cost: "1100", pl: "500", ret: "45.45",
		},
		{
			name:      "loss",
			positions: []model.Position{{Price: d("80"), Quantity: d("1"), PurchasePrice: d("100")}},
			value:     "80", cost: "100", pl: "-20", ret: "-20",
		},
		{
			name:  "no positions",
			value: "0", cost: "0", pl: "0", ret: "0",
		},
		{
			name:      "zero cost",
			positions: []model.Position{{Price: d("10"), Quantity: d("3"), PurchasePrice: d("0")}},
			value:     "30", cost: "0", pl: "30", ret: "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PortfolioPerformance(tt.positions)
			assertDecimal(t, "TotalValue", got.TotalValue, tt.value)
			assertDecimal(t, "TotalCost", got.TotalCost, tt.cost)
			assertDecimal(t, "ProfitLoss", got.ProfitLoss, tt.pl)
			assertDecimal(t, "ReturnPercentage", got.ReturnPercentage, tt.ret)
		})
	}
}

func TestChangeSinceFirstAndLast(t *testing.T) {
	rec := model.StockRecord{
		Code:         "AAPL",
		CurrentPrice: d("110"),
		History:      history("2024-01-19", "100", "2024-01-20", "120"),
	}

	change, pct := ChangeSinceFirst(rec)
	assertPercent(t, "first change", change, "10")
	assertPercent(t, "first percent", pct, "10")

	change, pct = ChangeSinceLast(rec)
	assertPercent(t, "last change", change, "-10")
	assertPercent(t, "last percent", pct, "-8.33")
}

func TestChange_NoUsableBase(t *testing.T) {
	tests := []struct {
		name    string
		history model.History
	}{
		{"no history", nil},
		{"zero base", history("2024-01-20", "0")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := model.StockRecord{CurrentPrice: d("10"), History: tt.history}
			change, pct := ChangeSinceFirst(rec)
			if change != nil || pct != nil {
				t.Errorf("ChangeSinceFirst = %v, %v; want nil, nil", change, pct)
			}
			change, pct = ChangeSinceLast(rec)
			if change != nil || pct != nil {
				t.Errorf("ChangeSinceLast = %v, %v; want nil, nil", change, pct)
			}
		})
	}
}

func TestHoldings(t *testing.T) {
	held := []model.HeldStock{
		{Stock: model.StockRecord{Code: "AAPL", Name: "Apple", CurrentPrice: d("200"), History: history("2024-01-10", "160")}, Quantity: d("3")},
		{Stock: model.StockRecord{Code: "BAD", Name: "Malformed", CurrentPrice: d("5")}, Quantity: d("10")},
	}

	got := Holdings(held)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Symbol != "AAPL" || got[0].Name != "Apple" {
		t.Errorf("holding[0] = %+v", got[0])
	}
	assertDecimal(t, "value", got[0].Value, "600")
	assertPercent(t, "change", got[0].Change, "40")
	assertPercent(t, "change_percent", got[0].ChangePercent, "25")

	assertDecimal(t, "value", got[1].Value, "50")
	assertPercent(t, "malformed change", got[1].Change, "")
	assertPercent(t, "malformed change_percent", got[1].ChangePercent, "")
}

func TestMovers(t *testing.T) {
	held := []model.HeldStock{
		{Stock: model.StockRecord{Code: "UP", CurrentPrice: d("11"), History: history("2024-01-20", "10")}},
		{Stock: model.StockRecord{Code: "DOWN", CurrentPrice: d("9"), History: history("2024-01-20", "10")}},
		{Stock: model.StockRecord{Code: "FLAT", CurrentPrice: d("10"), History: history("2024-01-20", "10")}},
		{Stock: model.StockRecord{Code: "NONE", CurrentPrice: d("10")}},
	}

	up := Movers(held, Up)
	if len(up) != 1 || up[0].Code != "UP" {
		t.Errorf("Up movers = %+v, want [UP]", up)
	}
	assertPercent(t, "up percent", up[0].ChangePercent, "10")

	down := Movers(held, Down)
	if len(down) != 1 || down[0].Code != "DOWN" {
		t.Errorf("Down movers = %+v, want [DOWN]", down)
	}

	if got := Movers(nil, Up); got == nil || len(got) != 0 {
		t.Errorf("Movers(nil) = %v, want empty slice", got)
	}
}

func TestTopMovers(t *testing.T) {
	pct := func(s string) *decimal.Decimal { v := d(s); return &v }
	holdings := []model.Holding{
		{Symbol: "A", ChangePercent: pct("5")},
		{Symbol: "B", ChangePercent: pct("-3")},
		{Symbol: "C"},
		{Symbol: "D", ChangePercent: pct("12")},
		{Symbol: "E", ChangePercent: pct("-8")},
		{Symbol: "F", ChangePercent: pct("1")},
	}

	symbols := func(hs []model.Holding) string {
		s := ""
		for _, h := range hs {
			s += h.Symbol
		}
		return s
	}

	if got := symbols(TopMovers(holdings, Up, 5)); got != "DAFCB" {
		t.Errorf("gainers = %s, want DAFCB", got)
	}
	if got := symbols(TopMovers(holdings, Down, 5)); got != "EBCFA" {
		t.Errorf("losers = %s, want EBCFA", got)
	}
	if holdings[0].Symbol != "A" {
		t.Error("TopMovers must not reorder its input")
	}
	if got := TopMovers(nil, Up, 5); got == nil {
		t.Error("TopMovers(nil) should return an empty slice")
	}
}

func TestSummarizeTrades(t *testing.T) {
	totals := []model.TradeTotal{
		{Type: model.TradeIncome, Detail: model.DetailBank, Total: d("1000")},
		{Type: model.TradeIncome, Detail: model.DetailStock, Total: d("250.5")},
		{Type: model.TradeIncome, Detail: "gift", Total: d("99")},
		{Type: model.TradeExpense, Detail: "rent", Total: d("800")},
		{Type: model.TradeExpense, Detail: "food", Total: d("120.25")},
	}

	s := SummarizeTrades(totals)
	assertDecimal(t, "bank", s.Income.Bank, "1000")
	assertDecimal(t, "stock", s.Income.Stock, "250.5")
	assertDecimal(t, "income total", s.Income.Total, "1250.5")
	assertDecimal(t, "expenditure", s.Expenditure, "920.25")

	n := CurrentNetAssets(totals)
	assertDecimal(t, "income", n.Income, "1349.5")
	assertDecimal(t, "expenditure", n.Expenditure, "920.25")
	assertDecimal(t, "net", n.NetAsset, "429.25")
}

func TestNetAssetSeries(t *testing.T) {
	today := day("2024-01-21")
	daily := []model.DailyTradeTotal{
		{Date: day("2024-01-06"), Type: model.TradeExpense, Total: d("999")}, // before the series
		{Date: day("2024-01-07"), Type: model.TradeIncome, Total: d("100")},
		{Date: day("2024-01-10"), Type: model.TradeExpense, Total: d("30")},
		{Date: day("2024-01-21"), Type: model.TradeIncome, Total: d("50")},
		{Date: day("2024-01-21"), Type: model.TradeExpense, Total: d("20")},
	}

	got := NetAssetSeries(daily, today, NetAssetDays)
	if len(got) != 15 {
		t.Fatalf("len = %d, want 15", len(got))
	}
	if got[0].Date != day("2024-01-07") || got[14].Date != today {
		t.Errorf("range = %s..%s, want 2024-01-07..2024-01-21", got[0].Date, got[14].Date)
	}
	assertDecimal(t, "day 0 cumulative", got[0].CumulativeNetAsset, "100")
	assertDecimal(t, "day 3 expenditure", got[3].Expenditure, "30")
	assertDecimal(t, "day 3 cumulative", got[3].CumulativeNetAsset, "70")
	assertDecimal(t, "day 13 cumulative", got[13].CumulativeNetAsset, "70")
	assertDecimal(t, "last income", got[14].Income, "50")
	assertDecimal(t, "last cumulative", got[14].CumulativeNetAsset, "100")
}

func TestBuildDashboard(t *testing.T) {
	snap := model.DashboardSnapshot{
		CashAccounts: []model.CashAccount{
			{Name: "Checking", Balance: d("1500")},
			{Name: "Savings", Balance: d("500")},
		},
		InvestmentAccounts: []model.InvestmentAccount{{Name: "Brokerage", Value: d("3000")}},
		Income:             d("4000"),
		Spending:           d("1200"),
		MarketIndices: []model.StockRecord{
			{Code: "^GSPC", Name: "S&P 500", CurrentPrice: d("4800"), History: history("2024-01-10", "4700")},
		},
		Held: []model.HeldStock{
			{Stock: model.StockRecord{Code: "AAPL", CurrentPrice: d("110"), History: history("2024-01-10", "100")}, Quantity: d("1")},
			{Stock: model.StockRecord{Code: "TSLA", CurrentPrice: d("90"), History: history("2024-01-10", "100")}, Quantity: d("1")},
		},
	}

	got := BuildDashboard(snap)

	assertDecimal(t, "netWorth", got.NetWorth, "5000")
	wantHistory := []string{"1000", "1500", "2200", "2500", "3000", "4000", "5000"}
	if len(got.NetWorthHistory) != len(wantHistory) {
		t.Fatalf("netWorthHistory len = %d, want %d", len(got.NetWorthHistory), len(wantHistory))
	}
	for i, want := range wantHistory {
		assertDecimal(t, "netWorthHistory", got.NetWorthHistory[i], want)
	}

	assertDecimal(t, "cashFlow.income", got.CashFlow.Income, "4000")
	assertDecimal(t, "cashFlow.spending", got.CashFlow.Spending, "1200")
	if len(got.CashFlow.Categories.Income) != 4 || len(got.CashFlow.Categories.Spending) != 5 {
		t.Errorf("categories = %+v", got.CashFlow.Categories)
	}

	if len(got.MarketIndices) != 1 || got.MarketIndices[0].Symbol != "^GSPC" {
		t.Errorf("marketIndices = %+v", got.MarketIndices)
	}
	assertPercent(t, "index change", got.MarketIndices[0].Change, "100")

	if len(got.Gainers) != 2 || got.Gainers[0].Symbol != "AAPL" {
		t.Errorf("gainers = %+v", got.Gainers)
	}
	if len(got.Losers) != 2 || got.Losers[0].Symbol != "TSLA" {
		t.Errorf("losers = %+v", got.Losers)
	}
	if len(got.Insights) != 3 {
		t.Errorf("insights = %d, want 3", len(got.Insights))
	}
}

func TestBuildDashboard_Empty(t *testing.T) {
	got := BuildDashboard(model.DashboardSnapshot{})

	if got.CashAccounts == nil || got.InvestmentAccounts == nil {
		t.Error("account lists should be empty, not nil")
	}
	assertDecimal(t, "netWorth", got.NetWorth, "0")
	assertDecimal(t, "first history point", got.NetWorthHistory[0], "-1000")
	if len(got.Gainers) != 0 || got.Gainers == nil {
		t.Errorf("gainers = %v, want empty", got.Gainers)
	}
}

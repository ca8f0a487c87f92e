package quote

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

// Errors
var (
	ErrNoResult = errors.New("quote: no result")
	ErrNoPrice  = errors.New("quote: no market price")
)

// Quote is the current market snapshot for a symbol.
type Quote struct {
	Symbol      string
	Price       decimal.Decimal
	ShortName   string
	LongName    string
	DisplayName string
	Currency    string
	MarketTime  time.Time
}

// Name returns the short display name, falling back to DisplayName.
func (q Quote) Name() string {
	if q.ShortName != "" {
		return q.ShortName
	}
	return q.DisplayName
}

// HistoricalOptions selects a range of daily bars.
type HistoricalOptions struct {
	Start    time.Time
	End      time.Time // zero means now
	Interval string    // default "1d"
}

// DailyClose is the closing price of one trading day.
type DailyClose struct {
	Date  model.Date
	Close decimal.Decimal
}

// chartResponse from GET /v8/finance/chart/{symbol}
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta       chartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"` // null on non-trading or incomplete bars
		} `json:"quote"`
	} `json:"indicators"`
}

type chartMeta struct {
	Symbol             string   `json:"symbol"`
	Currency           string   `json:"currency"`
	ShortName          string   `json:"shortName"`
	LongName           string   `json:"longName"`
	DisplayName        string   `json:"displayName"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64    `json:"regularMarketTime"`
	GMTOffset          int64    `json:"gmtoffset"` // seconds east of UTC for the exchange
}

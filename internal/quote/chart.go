package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

// GetQuote fetches the current price and names for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = normalizeSymbol(symbol)
	query := url.Values{}
	query.Set("range", "1d")
	query.Set("interval", "1d")

	result, err := c.chart(ctx, symbol, query)
	if err != nil {
		return nil, fmt.Errorf("get quote %s: %w", symbol, err)
	}

	meta := result.Meta
	if meta.RegularMarketPrice == nil || *meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("get quote %s: %w", symbol, ErrNoPrice)
	}

	q := &Quote{
		Symbol:      meta.Symbol,
		Price:       decimal.NewFromFloat(*meta.RegularMarketPrice),
		ShortName:   meta.ShortName,
		LongName:    meta.LongName,
		DisplayName: meta.DisplayName,
		Currency:    meta.Currency,
	}
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	if meta.RegularMarketTime > 0 {
		q.MarketTime = time.Unix(meta.RegularMarketTime, 0).UTC()
	}
	return q, nil
}

// GetHistorical fetches daily closes between opts.Start and opts.End.
// Bars with a null close are skipped.
func (c *Client) GetHistorical(ctx context.Context, symbol string, opts HistoricalOptions) ([]DailyClose, error) {
	end := opts.End
	if end.IsZero() {
		end = c.now()
	}
	interval := opts.Interval
	if interval == "" {
		interval = "1d"
	}

	query := url.Values{}
	query.Set("period1", strconv.FormatInt(opts.Start.Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))
	query.Set("interval", interval)

	result, err := c.chart(ctx, symbol, query)
	if err != nil {
		return nil, fmt.Errorf("get historical %s: %w", symbol, err)
	}

	var closes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	out := make([]DailyClose, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		// Shift into exchange local time so the bar lands on its trading day.
		day := model.DateOf(time.Unix(ts+result.Meta.GMTOffset, 0))
		out = append(out, DailyClose{Date: day, Close: decimal.NewFromFloat(*closes[i])})
	}
	return out, nil
}

// Backfill returns the daily closes from since through today as a price history.
func (c *Client) Backfill(ctx context.Context, symbol string, since model.Date) (model.History, error) {
	closes, err := c.GetHistorical(ctx, symbol, HistoricalOptions{Start: since.Time(), Interval: "1d"})
	if err != nil {
		return nil, err
	}

	h := make(model.History, 0, len(closes))
	for _, dc := range closes {
		h = append(h, model.PricePoint{Date: dc.Date, Price: dc.Close})
	}
	return h.Normalize(), nil
}

// chart performs a chart request and returns its single result.
func (c *Client) chart(ctx context.Context, symbol string, query url.Values) (*chartResult, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}

	var resp chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), query, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound && apiErr.Code != "" {
			return nil, fmt.Errorf("%w: %w", ErrNoResult, err)
		}
		return nil, err
	}

	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrNoResult, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNoResult
	}
	return &resp.Chart.Result[0], nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

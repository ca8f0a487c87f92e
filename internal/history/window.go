package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/model"
)

// DefaultWindowDays is the number of trailing days kept per stock.
const DefaultWindowDays = 15

// Backfiller provides daily closes for a symbol from a start date through today.
type Backfiller interface {
	Backfill(ctx context.Context, symbol string, since model.Date) (model.History, error)
}

// BackfillFunc is a function adapter for Backfiller.
type BackfillFunc func(ctx context.Context, symbol string, since model.Date) (model.History, error)

func (f BackfillFunc) Backfill(ctx context.Context, symbol string, since model.Date) (model.History, error) {
	return f(ctx, symbol, since)
}

// Merger combines stored history with a fresh quote.
type Merger struct {
	days   int
	source Backfiller
	logger *slog.Logger
}

// NewMerger creates a Merger keeping the trailing days (DefaultWindowDays if < 1).
func NewMerger(days int, source Backfiller, logger *slog.Logger) *Merger {
	if days < 1 {
		days = DefaultWindowDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{days: days, source: source, logger: logger}
}

// Days returns the window length.
func (m *Merger) Days() int { return m.days }

// Merge returns the new history for symbol given the stored text, today's date
// and the current price. Stored text that does not parse is treated as empty.
// Only a failed backfill is reported as an error.
func (m *Merger) Merge(ctx context.Context, symbol, stored string, today model.Date, price decimal.Decimal) (model.History, error) {
	h, err := model.ParseHistory(stored)
	if err != nil {
		m.logger.Warn("stored history unreadable, rebuilding",
			"symbol", symbol,
			"error", err,
		)
		h = nil
	}

	h = Prune(h, today, m.days)

	if len(h) == 0 {
		since := Cutoff(today, m.days).AddDays(1)
		fetched, err := m.source.Backfill(ctx, symbol, since)
		if err != nil {
			return nil, fmt.Errorf("backfill %s since %s: %w", symbol, since, err)
		}
		m.logger.Debug("backfilled history",
			"symbol", symbol,
			"since", since.String(),
			"points", len(fetched),
		)
		h = fetched
	}

	if !h.Has(today) {
		h = append(h, model.PricePoint{Date: today, Price: price})
	}

	return Prune(h, today, m.days), nil
}

// Cutoff returns the newest date that falls outside a window of days ending today.
func Cutoff(today model.Date, days int) model.Date {
	return today.AddDays(-days)
}

// Prune keeps entries dated after the cutoff and not after today, sorted
// ascending with one entry per date.
func Prune(h model.History, today model.Date, days int) model.History {
	cutoff := Cutoff(today, days)
	kept := make(model.History, 0, len(h))
	for _, p := range h {
		if p.Date.After(cutoff) && !p.Date.After(today) {
			kept = append(kept, p)
		}
	}
	return kept.Normalize()
}

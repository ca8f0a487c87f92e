package refresher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/portfolio-tracker/internal/history"
	"github.com/rickgao/portfolio-tracker/internal/model"
	"github.com/rickgao/portfolio-tracker/internal/quote"
)

// QuoteSource provides current quotes.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*quote.Quote, error)
}

// Store reads stored history and persists refreshed records.
type Store interface {
	// StoredHistory returns the raw history_price text, or "" if the stock has no row.
	StoredHistory(ctx context.Context, code string) (string, error)
	UpsertStock(ctx context.Context, rec model.StockRecord) error
}

// Publisher receives every successfully persisted record.
type Publisher interface {
	Publish(rec model.StockRecord)
}

// PublisherFunc is a function adapter for Publisher.
type PublisherFunc func(model.StockRecord)

func (f PublisherFunc) Publish(rec model.StockRecord) { f(rec) }

// Config holds refresher configuration.
type Config struct {
	Interval      time.Duration // Cycle interval (default: 1h)
	SymbolTimeout time.Duration // Per-symbol deadline, 0 = none
	Symbols       []string      // Tickers refreshed each cycle, in order
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: time.Hour,
	}
}

// SymbolResult is the outcome for one symbol in a cycle.
type SymbolResult struct {
	Symbol string `json:"symbol"`
	Points int    `json:"points"`
	Error  string `json:"error,omitempty"`
	Err    error  `json:"-"`
}

// CycleReport summarizes one refresh cycle.
type CycleReport struct {
	ID         uuid.UUID      `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Results    []SymbolResult `json:"results"`
}

// Failed returns the number of symbols that could not be refreshed.
func (r CycleReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Succeeded returns the number of symbols refreshed.
func (r CycleReport) Succeeded() int {
	return len(r.Results) - r.Failed()
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithClock sets the clock used for scheduling and for today's date.
func WithClock(c Clock) Option {
	return func(r *Refresher) { r.clock = c }
}

// WithPublisher sets the publisher notified after each upsert.
func WithPublisher(p Publisher) Option {
	return func(r *Refresher) { r.publisher = p }
}

// Refresher periodically refreshes stock quotes and their rolling history.
type Refresher struct {
	cfg       Config
	quotes    QuoteSource
	merger    *history.Merger
	store     Store
	publisher Publisher
	clock     Clock
	logger    *slog.Logger

	mu   sync.RWMutex
	last *CycleReport

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Refresher.
func New(cfg Config, quotes QuoteSource, merger *history.Merger, store Store, logger *slog.Logger, opts ...Option) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	r := &Refresher{
		cfg:    cfg,
		quotes: quotes,
		merger: merger,
		store:  store,
		clock:  SystemClock(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins the refresh loop. The first cycle runs immediately.
func (r *Refresher) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.run()

	r.logger.Info("stock refresher started",
		"interval", r.cfg.Interval,
		"symbols", len(r.cfg.Symbols),
	)

	return nil
}

// Stop cancels the loop and waits for the running cycle to finish.
func (r *Refresher) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("stock refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastReport returns the most recent completed cycle.
func (r *Refresher) LastReport() (CycleReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return CycleReport{}, false
	}
	return *r.last, true
}

// run is the main scheduling loop.
func (r *Refresher) run() {
	defer r.wg.Done()

	// Refresh immediately on start so a fresh install gets its history.
	r.RunCycle(r.ctx)

	for {
		wait := untilNextTick(r.clock.Now(), r.cfg.Interval)
		select {
		case <-r.ctx.Done():
			return
		case <-r.clock.After(wait):
			r.RunCycle(r.ctx)
		}
	}
}

// RunCycle refreshes every configured symbol in order and returns the report.
func (r *Refresher) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{
		ID:        uuid.New(),
		StartedAt: r.clock.Now(),
		Results:   make([]SymbolResult, 0, len(r.cfg.Symbols)),
	}
	start := time.Now()

	r.logger.Info("refresh cycle started",
		"cycle_id", report.ID,
		"symbols", len(r.cfg.Symbols),
	)

	for _, symbol := range r.cfg.Symbols {
		if ctx.Err() != nil {
			break
		}

		res := SymbolResult{Symbol: symbol}
		rec, err := r.refreshSymbol(ctx, symbol)
		if err != nil {
			res.Err = err
			res.Error = err.Error()
			r.logger.Warn("failed to refresh stock",
				"cycle_id", report.ID,
				"symbol", symbol,
				"error", err,
			)
		} else {
			res.Points = len(rec.History)
			r.logger.Debug("stock refreshed",
				"symbol", symbol,
				"price", rec.CurrentPrice.String(),
				"points", res.Points,
			)
		}
		report.Results = append(report.Results, res)
	}

	report.FinishedAt = r.clock.Now()

	r.mu.Lock()
	r.last = &report
	r.mu.Unlock()

	r.logger.Info("refresh cycle complete",
		"cycle_id", report.ID,
		"refreshed", report.Succeeded(),
		"errors", report.Failed(),
		"duration", time.Since(start),
	)

	return report
}

// refreshSymbol fetches, merges and persists a single stock.
func (r *Refresher) refreshSymbol(ctx context.Context, symbol string) (model.StockRecord, error) {
	if r.cfg.SymbolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.SymbolTimeout)
		defer cancel()
	}

	q, err := r.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return model.StockRecord{}, fmt.Errorf("fetch quote: %w", err)
	}

	stored, err := r.store.StoredHistory(ctx, symbol)
	if err != nil {
		return model.StockRecord{}, fmt.Errorf("read stored history: %w", err)
	}

	today := model.DateOf(r.clock.Now())
	h, err := r.merger.Merge(ctx, symbol, stored, today, q.Price)
	if err != nil {
		return model.StockRecord{}, fmt.Errorf("merge history: %w", err)
	}

	rec := model.StockRecord{
		Code:         symbol,
		Name:         q.Name(),
		CompanyName:  q.LongName,
		CurrentPrice: q.Price,
		History:      h,
	}
	if err := r.store.UpsertStock(ctx, rec); err != nil {
		return model.StockRecord{}, fmt.Errorf("upsert stock: %w", err)
	}

	if r.publisher != nil {
		r.publisher.Publish(rec)
	}
	return rec, nil
}

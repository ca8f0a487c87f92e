package cli

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/history"
	"github.com/rickgao/portfolio-tracker/internal/model"
)

// quoteCmd implements the "quote" command.
type quoteCmd struct {
	opts    *Options
	baseURL string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "fetches the current price of one or more symbols" }
func (*quoteCmd) Usage() string {
	return `trackerctl quote [-base-url URL] <symbol>...

  Fetches current quotes from the configured provider and prints them as JSON.
  Nothing is written to the database.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.baseURL, "base-url", "", "quote provider URL, overrides quote.base_url")
}

type quoteOutput struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	CompanyName string          `json:"company_name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency,omitempty"`
	MarketTime  *time.Time      `json:"market_time,omitempty"`
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		c.opts.errorf("at least one symbol is required")
		return subcommands.ExitUsageError
	}

	cfg, err := c.opts.load(false)
	if err != nil {
		return c.opts.errorf("%v", err)
	}
	client := newQuoteClient(cfg, c.baseURL, c.opts.logger(cfg))

	out := make([]quoteOutput, 0, f.NArg())
	for _, symbol := range f.Args() {
		q, err := client.GetQuote(ctx, symbol)
		if err != nil {
			return c.opts.errorf("quote %s: %v", symbol, err)
		}
		o := quoteOutput{
			Symbol:      q.Symbol,
			Name:        q.Name(),
			CompanyName: q.LongName,
			Price:       q.Price,
			Currency:    q.Currency,
		}
		if !q.MarketTime.IsZero() {
			t := q.MarketTime.UTC()
			o.MarketTime = &t
		}
		out = append(out, o)
	}

	if err := c.opts.printJSON(out); err != nil {
		return c.opts.errorf("%v", err)
	}
	return subcommands.ExitSuccess
}

// historyCmd implements the "history" command.
type historyCmd struct {
	opts    *Options
	baseURL string
	days    int
	today   string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "builds a fresh price history window for a symbol" }
func (*historyCmd) Usage() string {
	return `trackerctl history [-days N] [-today YYYY-MM-DD] <symbol>

  Backfills daily closes for the window ending today, appends the current
  price and prints the history exactly as the refresher would store it.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.baseURL, "base-url", "", "quote provider URL, overrides quote.base_url")
	f.IntVar(&c.days, "days", 0, "window length in days, defaults to refresher.window_days")
	f.StringVar(&c.today, "today", "", "end of the window, defaults to the current UTC date")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		c.opts.errorf("exactly one symbol is required")
		return subcommands.ExitUsageError
	}
	symbol := f.Arg(0)

	today := model.DateOf(time.Now())
	if c.today != "" {
		d, err := model.ParseDate(c.today)
		if err != nil {
			c.opts.errorf("invalid -today: %v", err)
			return subcommands.ExitUsageError
		}
		today = d
	}

	cfg, err := c.opts.load(false)
	if err != nil {
		return c.opts.errorf("%v", err)
	}
	days := c.days
	if days == 0 {
		days = cfg.Refresher.WindowDays
	}

	logger := c.opts.logger(cfg)
	client := newQuoteClient(cfg, c.baseURL, logger)

	q, err := client.GetQuote(ctx, symbol)
	if err != nil {
		return c.opts.errorf("quote %s: %v", symbol, err)
	}
	h, err := history.NewMerger(days, client, logger).Merge(ctx, symbol, "", today, q.Price)
	if err != nil {
		return c.opts.errorf("%v", err)
	}

	if err := c.opts.printJSON(h); err != nil {
		return c.opts.errorf("%v", err)
	}
	return subcommands.ExitSuccess
}

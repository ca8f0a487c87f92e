package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/rickgao/portfolio-tracker/internal/database"
	"github.com/rickgao/portfolio-tracker/internal/history"
	"github.com/rickgao/portfolio-tracker/internal/refresher"
	"github.com/rickgao/portfolio-tracker/internal/store"
)

// refreshCmd implements the "refresh" command.
type refreshCmd struct {
	opts    *Options
	symbols string
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "runs a single refresh cycle against the database" }
func (*refreshCmd) Usage() string {
	return `trackerctl refresh [-symbols AAPL,MSFT]

  Refreshes every configured symbol once, stores the results and prints the
  cycle report as JSON. Exits non-zero when no symbol could be refreshed.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "comma separated symbols, overrides refresher.symbols")
}

func (c *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.opts.load(true)
	if err != nil {
		return c.opts.errorf("%v", err)
	}
	symbols := cfg.Refresher.Symbols
	if c.symbols != "" {
		symbols = splitSymbols(c.symbols)
	}
	if len(symbols) == 0 {
		c.opts.errorf("no symbols to refresh")
		return subcommands.ExitUsageError
	}

	logger := c.opts.logger(cfg)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return c.opts.errorf("%v", err)
	}
	defer pool.Close()

	quotes := newQuoteClient(cfg, "", logger)
	ref := refresher.New(refresher.Config{
		Interval:      cfg.Refresher.Interval,
		SymbolTimeout: cfg.Refresher.SymbolTimeout,
		Symbols:       symbols,
	}, quotes, history.NewMerger(cfg.Refresher.WindowDays, quotes, logger), store.New(pool, logger), logger)

	report := ref.RunCycle(ctx)
	if err := c.opts.printJSON(report); err != nil {
		return c.opts.errorf("%v", err)
	}
	if report.Succeeded() == 0 {
		return c.opts.errorf("all %d symbols failed", report.Failed())
	}
	return subcommands.ExitSuccess
}

// migrateCmd implements the "migrate" command.
type migrateCmd struct {
	opts  *Options
	print bool
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "creates missing database tables" }
func (*migrateCmd) Usage() string {
	return `trackerctl migrate [-print]

  Applies the schema to the configured database. Every statement is
  idempotent. With -print the schema is written to stdout instead.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.print, "print", false, "print the schema without connecting")
}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.print {
		fmt.Fprint(c.opts.Stdout, database.Schema())
		return subcommands.ExitSuccess
	}

	cfg, err := c.opts.load(true)
	if err != nil {
		return c.opts.errorf("%v", err)
	}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return c.opts.errorf("%v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		return c.opts.errorf("%v", err)
	}
	fmt.Fprintf(c.opts.Stdout, "schema applied to %s\n", cfg.Database.Name)
	return subcommands.ExitSuccess
}

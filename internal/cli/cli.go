// Package cli implements the trackerctl maintenance commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/rickgao/portfolio-tracker/internal/config"
	"github.com/rickgao/portfolio-tracker/internal/quote"
)

// Options are shared by every command.
type Options struct {
	ConfigPath string
	Stdout     io.Writer
	Stderr     io.Writer
}

// Register adds the trackerctl commands to c.
func Register(c *subcommands.Commander, opts *Options) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(&versionCmd{opts: opts}, "")

	c.Register(&quoteCmd{opts: opts}, "market data")
	c.Register(&historyCmd{opts: opts}, "market data")

	c.Register(&refreshCmd{opts: opts}, "database")
	c.Register(&migrateCmd{opts: opts}, "database")
}

// load reads the config file. Commands that touch the database validate it;
// market data commands only need the quote section.
func (o *Options) load(validate bool) (*config.TrackerConfig, error) {
	if validate {
		return config.LoadAndValidate(o.ConfigPath)
	}
	return config.LoadWithDefaults(o.ConfigPath)
}

func (o *Options) logger(cfg *config.TrackerConfig) *slog.Logger {
	logger, err := cfg.Log.NewLogger(o.Stderr)
	if err != nil {
		return slog.New(slog.NewTextHandler(o.Stderr, nil))
	}
	return logger
}

func (o *Options) errorf(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(o.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

func (o *Options) printJSON(v any) error {
	enc := json.NewEncoder(o.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newQuoteClient(cfg *config.TrackerConfig, baseURL string, logger *slog.Logger) *quote.Client {
	if baseURL == "" {
		baseURL = cfg.Quote.BaseURL
	}
	return quote.NewClient(
		baseURL,
		quote.WithLogger(logger),
		quote.WithTimeout(cfg.Quote.Timeout),
		quote.WithUserAgent(cfg.Quote.UserAgent),
		quote.WithRetries(cfg.Quote.MaxRetries, time.Second),
	)
}

// splitSymbols parses a comma separated symbol list, dropping blanks.
func splitSymbols(s string) []string {
	var out []string
	for _, sym := range strings.Split(s, ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

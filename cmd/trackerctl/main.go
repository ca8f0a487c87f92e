package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/cli"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	opts := &cli.Options{}
	flag.StringVar(&opts.ConfigPath, "config", "configs/tracker.local.yaml", "path to config file")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander, opts)

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

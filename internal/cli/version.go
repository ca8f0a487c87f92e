package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/rickgao/portfolio-tracker/internal/version"
)

type versionCmd struct {
	opts *Options
}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "prints build information" }
func (*versionCmd) Usage() string {
	return `trackerctl version
`
}

func (*versionCmd) SetFlags(*flag.FlagSet) {}

func (c *versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Fprintln(c.opts.Stdout, "trackerctl", version.String())
	return subcommands.ExitSuccess
}

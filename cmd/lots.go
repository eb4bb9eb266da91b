package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/taxfolio/taxfolio/renderer"
)

type lotsCmd struct {
	portfolio string
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "display the tax lots of a holding" }
func (*lotsCmd) Usage() string {
	return `tf lots -p <portfolio> <ticker>

  Displays the open and sold tax lots of one holding, with per-lot cost,
  proceeds, gain and tax.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio id holding the instrument.")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.portfolio == "" || f.NArg() != 1 {
		return fail("Usage: tf lots -p <portfolio> <ticker>")
	}
	e, _, err := loadEngine()
	if err != nil {
		return fail("Error loading bundle: %v", err)
	}
	h, ok := e.Holding(c.portfolio, f.Arg(0))
	if !ok {
		return fail("No holding %q in portfolio %q", f.Arg(0), c.portfolio)
	}
	printMarkdown(renderer.LotsMarkdown(h))
	return subcommands.ExitSuccess
}

package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/taxfolio/taxfolio"
	"github.com/taxfolio/taxfolio/renderer"
)

type holdingsCmd struct {
	portfolio string
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "list holdings with their current figures" }
func (*holdingsCmd) Usage() string {
	return `tf holdings [-p <portfolio>]

  Lists every holding with its quantity, market value, cost basis,
  unrealized gain and tax liability.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio id to list. All by default.")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, _, err := loadEngine()
	if err != nil {
		return fail("Error loading bundle: %v", err)
	}
	var holdings []*taxfolio.Holding
	if c.portfolio != "" {
		holdings = e.HoldingsOf(c.portfolio)
	} else {
		holdings = e.Holdings()
	}
	printMarkdown(renderer.HoldingsMarkdown(e.Portfolios(), holdings))
	return subcommands.ExitSuccess
}

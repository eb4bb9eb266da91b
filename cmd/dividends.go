package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/taxfolio/taxfolio"
	"github.com/taxfolio/taxfolio/renderer"
)

type dividendsCmd struct {
	portfolio string
}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "display dividends received, with fee and tax breakdown" }
func (*dividendsCmd) Usage() string {
	return `tf dividends [-p <portfolio>]

  Displays every dividend received, with its gross amount, commission,
  tax and net, and the portion credited to unvested grants.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio id to list. All by default.")
}

func (c *dividendsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.DividendsMarkdown(holdings))
	return subcommands.ExitSuccess
}

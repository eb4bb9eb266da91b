package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/taxfolio/taxfolio/renderer"
)

type gainsCmd struct {
	currency   string
	portfolios flagList
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "display realized gains and taxes per holding" }
func (*gainsCmd) Usage() string {
	return `tf gains [-c <currency>] [-p <portfolio>]...

  Displays realized proceeds, gains and taxes per holding, with the
  account total in the display currency.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Display currency for totals. Defaults to the first portfolio's currency.")
	f.Var(&c.portfolios, "p", "Portfolio id to include. Repeatable; all by default.")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, _, err := loadEngine()
	if err != nil {
		return fail("Error loading bundle: %v", err)
	}
	display, err := parseDisplayCurrency(c.currency, e)
	if err != nil {
		return fail("Error parsing currency: %v", err)
	}

	s := e.GlobalSummary(display, nil, c.portfolios...)
	printMarkdown(renderer.GainsMarkdown(e.Holdings(), &s))
	return subcommands.ExitSuccess
}

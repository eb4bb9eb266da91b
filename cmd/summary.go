package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/taxfolio/taxfolio/renderer"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	currency   string
	portfolios flagList
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the account-wide dashboard summary" }
func (*summaryCmd) Usage() string {
	return `tf summary [-c <currency>] [-p <portfolio>]...

  Displays the account-wide summary: AUM, gains, taxes, dividends and
  trailing performance windows, in the chosen display currency.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Display currency. Defaults to the first portfolio's currency.")
	f.Var(&c.portfolios, "p", "Portfolio id to include. Repeatable; all by default.")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, _, err := loadEngine()
	if err != nil {
		return fail("Error loading bundle: %v", err)
	}
	display, err := parseDisplayCurrency(c.currency, e)
	if err != nil {
		return fail("Error parsing currency: %v", err)
	}

	s := e.GlobalSummary(display, nil, c.portfolios...)
	printMarkdown(renderer.SummaryMarkdown(&s, e.Now()))
	return subcommands.ExitSuccess
}

// flagList collects a repeatable string flag.
type flagList []string

func (l *flagList) String() string { return "" }
func (l *flagList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// Package cmd implements the CLI application reporting on a bundle of
// portfolio data.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/taxfolio/taxfolio"
)

// Commands lists every subcommand in registration order.
var Commands = []subcommands.Command{
	&summaryCmd{},
	&holdingsCmd{},
	&gainsCmd{},
	&lotsCmd{},
	&dividendsCmd{},
}

// As a CLI application it is very short lived, so global flags are fine.

var bundlePath = flag.String("bundle", ".", "Path to the bundle folder holding portfolios, transactions and market data")

// loadEngine loads the app bundle and runs the full pipeline over it.
func loadEngine() (*taxfolio.Engine, *taxfolio.Bundle, error) {
	b, err := taxfolio.LoadBundle(*bundlePath)
	if err != nil {
		return nil, nil, err
	}
	return b.NewEngine(), b, nil
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when the renderer cannot initialize (e.g. output is not a TTY theme).
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}

// parseDisplayCurrency resolves the -c flag, defaulting to the first
// portfolio's currency.
func parseDisplayCurrency(s string, e *taxfolio.Engine) (taxfolio.Currency, error) {
	if s == "" {
		if ps := e.Portfolios(); len(ps) > 0 {
			return ps[0].Currency, nil
		}
		return taxfolio.USD, nil
	}
	return taxfolio.NormalizeCurrency(s)
}

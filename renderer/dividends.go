package renderer

import (
	"fmt"
	"strings"

	"github.com/taxfolio/taxfolio"
)

// DividendsMarkdown renders every dividend received, per holding.
func DividendsMarkdown(holdings []*taxfolio.Holding) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Dividends\n\n")
	fmt.Fprintln(&b, "| Date | Holding | Gross | Fee | Tax | Net | Reinvested (net) |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|")

	any := false
	for _, h := range holdings {
		for _, d := range h.Dividends {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				d.Date, h.Key(), d.Gross, d.Fee, d.Tax, d.Net, d.Reinvested.Net)
			any = true
		}
	}
	if !any {
		return "# Dividends\n\nNo dividends received.\n"
	}
	return b.String()
}

package renderer

import (
	"fmt"
	"strings"

	"github.com/taxfolio/taxfolio"
)

// HoldingsMarkdown renders one table of all holdings, grouped by portfolio.
func HoldingsMarkdown(portfolios []*taxfolio.Portfolio, holdings []*taxfolio.Holding) string {
	var b strings.Builder

	names := make(map[string]string, len(portfolios))
	for _, p := range portfolios {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		names[p.ID] = name
	}

	fmt.Fprint(&b, "# Holdings\n\n")
	fmt.Fprintln(&b, "| Portfolio | Ticker | Qty | Unvested | Market Value | Cost | Unrealized | Tax | Day |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|---:|---:|")

	for _, h := range holdings {
		if !h.QtyVested.IsPositive() && !h.QtyUnvested.IsPositive() {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			names[h.PortfolioID],
			h.Ticker,
			h.QtyVested,
			h.QtyUnvested,
			h.MarketValue,
			h.CostBasis,
			h.UnrealizedGain.SignedString(),
			h.UnrealizedTax,
			h.DayChange.SignedString(),
		)
	}
	return b.String()
}

// GainsMarkdown renders realized figures per holding, with the summary's
// display-currency totals as the last row.
func GainsMarkdown(holdings []*taxfolio.Holding, s *taxfolio.DashboardSummary) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Realized Gains\n\n")
	fmt.Fprintln(&b, "| Holding | Proceeds | Cost of Sold | Realized | Taxable | Tax | Income Tax |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|")

	for _, h := range holdings {
		if h.Proceeds.IsZero() && h.RealizedGain.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			h.Key(),
			h.Proceeds,
			h.CostOfSold,
			h.RealizedGain.SignedString(),
			h.RealizedTaxable.SignedString(),
			h.RealizedTax,
			h.RealizedIncomeTax,
		)
	}
	fmt.Fprintf(&b, "| **Total (%s)** | | | **%s** | | **%s** | |\n",
		s.Currency, s.RealizedGain.SignedString(), s.RealizedTax)
	return b.String()
}

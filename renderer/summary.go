// Package renderer turns engine output into markdown reports.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/taxfolio/taxfolio"
)

// SummaryMarkdown renders the account-wide dashboard summary.
func SummaryMarkdown(s *taxfolio.DashboardSummary, on taxfolio.Date) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Account Summary on %s", on))
	doc.PlainText(fmt.Sprintf("Assets under management: %s", s.AUM))

	doc.H2("Value")
	doc.Table(md.TableSet{
		Header: []string{"Figure", "Amount"},
		Rows: [][]string{
			{"Market value (vested)", s.AUM.String()},
			{"Unvested grants", s.UnvestedValue.String()},
			{"Cost basis", s.CostBasis.String()},
			{"Unrealized gain", s.UnrealizedGain.SignedString()},
			{"Unrealized tax liability", s.UnrealizedTax.String()},
			{"Net value after tax", s.NetValue.String()},
		},
	})

	doc.H2("Realized")
	doc.Table(md.TableSet{
		Header: []string{"Figure", "Amount"},
		Rows: [][]string{
			{"Realized gain", s.RealizedGain.SignedString()},
			{"Realized tax", s.RealizedTax.String()},
			{"Cost of sold", s.CostOfSold.String()},
			{"Fees", s.Fees.String()},
			{"Dividends (gross)", s.DividendsGross.String()},
			{"Dividends (net)", s.DividendsNet.String()},
			{"Realized gain after tax", s.RealizedGainAfterTax.SignedString()},
		},
	})

	doc.H2("Performance")
	rows := [][]string{
		{"Day", s.DayChange.SignedString(), ""},
	}
	for _, name := range taxfolio.TrailingWindowNames {
		w := s.Windows[name]
		note := ""
		if w.Incomplete {
			note = "incomplete"
		}
		rows = append(rows, []string{name, w.GainPercent.SignedString(), note})
	}
	doc.Table(md.TableSet{
		Header: []string{"Period", "Return", "Note"},
		Rows:   rows,
	})

	return doc.String()
}

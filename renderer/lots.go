package renderer

import (
	"fmt"
	"strings"

	"github.com/taxfolio/taxfolio"
)

// LotsMarkdown renders one holding's tax lots, open lots first.
func LotsMarkdown(h *taxfolio.Holding) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Lots of %s\n\n", h.Key())

	open := writeLotSection(&b, "Open Lots", h.ActiveLots(), false)
	sold := writeLotSection(&b, "Sold Lots", h.RealizedLots(), true)
	if !open && !sold {
		fmt.Fprint(&b, "No lots.\n")
	}
	if fees := h.PendingFees(); !fees.IsZero() {
		fmt.Fprintf(&b, "Fees charged against the open position: %s\n", fees)
	}
	return b.String()
}

func writeLotSection(b *strings.Builder, title string, lots []*taxfolio.Lot, sold bool) bool {
	if len(lots) == 0 {
		return false
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	if sold {
		fmt.Fprintln(b, "| Bought | Sold | Qty | Cost | Proceeds | Gain | Taxable | Tax |")
		fmt.Fprintln(b, "|:---|:---|---:|---:|---:|---:|---:|---:|")
		for _, l := range lots {
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
				l.BuyDate, l.SoldDate, l.Quantity,
				l.Cost.Amount(), l.Proceeds.Amount(),
				l.RealizedGain.SignedString(), l.RealizedTaxable.SignedString(), l.RealizedTax)
		}
	} else {
		fmt.Fprintln(b, "| Bought | Qty | Unit Cost | Cost | Fee | Vests |")
		fmt.Fprintln(b, "|:---|---:|---:|---:|---:|:---|")
		for _, l := range lots {
			vests := "-"
			if !l.VestDate.IsZero() && !l.Vested {
				vests = l.VestDate.String()
			}
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
				l.BuyDate, l.Quantity,
				l.CostPerUnit.Amount(), l.Cost.Amount(), l.BuyFee.Amount(), vests)
		}
	}
	fmt.Fprintln(b)
	return true
}

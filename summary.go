package taxfolio

// completenessThreshold is the share of AUM a trailing window must cover
// before its aggregate figure is presented as reliable.
const completenessThreshold = 0.9

// WindowSummary is one trailing window's aggregate performance: a
// value-weighted blend of the holdings' window returns. Incomplete flags a
// window where the holdings actually reporting it cover too little of the
// AUM for the blend to be trusted.
type WindowSummary struct {
	GainPercent Percent `json:"gainPercent"`
	Incomplete  bool    `json:"incomplete,omitempty"`
}

// DashboardSummary is the flat account-wide rollup in a single display
// currency. Taxes are floored at zero here and only here; holdings propagate
// negative liabilities so credits can offset within a portfolio first.
type DashboardSummary struct {
	Currency Currency `json:"currency"`

	AUM            Money `json:"aum"` // vested market value
	UnvestedValue  Money `json:"unvestedValue"`
	CostBasis      Money `json:"costBasis"`
	UnrealizedGain Money `json:"unrealizedGain"`
	UnrealizedTax  Money `json:"unrealizedTax"`
	RealizedGain   Money `json:"realizedGain"`
	RealizedTax    Money `json:"realizedTax"`
	CostOfSold     Money `json:"costOfSold"`
	Fees           Money `json:"fees"`
	DividendsGross Money `json:"dividendsGross"`
	DividendsNet   Money `json:"dividendsNet"`

	// RealizedGainAfterTax = realized gain - floored taxes + net dividends.
	RealizedGainAfterTax Money `json:"realizedGainAfterTax"`
	// NetValue = AUM - floored unrealized tax liability.
	NetValue Money `json:"netValue"`

	DayChange Percent                  `json:"dayChange"`
	Windows   map[string]WindowSummary `json:"windows"`
}

// GlobalSummary folds the holdings (optionally restricted to the given
// portfolio ids) into a single display-currency summary. Call after
// CalculateSnapshots. The price provider feeds the trailing windows; nil
// degrades them to cost-carried initials.
func (e *Engine) GlobalSummary(display Currency, prices PriceProvider, filterIDs ...string) DashboardSummary {
	set := e.rates.Current()
	zero := M(0, display)
	conv := func(m Money) Money { return ConvertMoneyOrZero(m, display, set) }

	filter := make(map[string]bool, len(filterIDs))
	for _, id := range filterIDs {
		filter[id] = true
	}

	s := DashboardSummary{
		Currency: display,
		AUM:      zero, UnvestedValue: zero, CostBasis: zero,
		UnrealizedGain: zero, UnrealizedTax: zero,
		RealizedGain: zero, RealizedTax: zero,
		CostOfSold: zero, Fees: zero,
		DividendsGross: zero, DividendsNet: zero,
		Windows: make(map[string]WindowSummary, len(TrailingWindowNames)),
	}

	type windowAcc struct {
		weighted float64 // sum(perf% x marketValue)
		covered  float64 // market value of holdings reporting the window
	}
	windows := make(map[string]*windowAcc, len(TrailingWindowNames))
	for _, name := range TrailingWindowNames {
		windows[name] = &windowAcc{}
	}

	var dayChangeWeighted, dayChangeQty float64
	var totalAUM float64

	for _, h := range e.Holdings() {
		if len(filter) > 0 && !filter[h.PortfolioID] {
			continue
		}
		mv := conv(h.MarketValue)
		s.AUM = s.AUM.Add(mv)
		s.UnvestedValue = s.UnvestedValue.Add(conv(h.MarketValueUnvested))
		s.CostBasis = s.CostBasis.Add(conv(h.CostBasis))
		s.UnrealizedGain = s.UnrealizedGain.Add(conv(h.UnrealizedGain))
		s.UnrealizedTax = s.UnrealizedTax.Add(conv(h.UnrealizedTax))
		s.RealizedGain = s.RealizedGain.Add(conv(h.RealizedGain))
		s.RealizedTax = s.RealizedTax.Add(conv(h.RealizedTax).Add(conv(h.RealizedIncomeTax)))
		s.CostOfSold = s.CostOfSold.Add(conv(h.CostOfSold))
		s.Fees = s.Fees.Add(conv(h.Fees))
		s.DividendsGross = s.DividendsGross.Add(conv(h.DividendsGross))
		s.DividendsNet = s.DividendsNet.Add(conv(h.DividendsNet))

		qty := h.QtyVested.AsFloat()
		dayChangeWeighted += float64(h.DayChange) * qty
		dayChangeQty += qty

		mvf := mv.AsFloat()
		totalAUM += mvf
		for name, g := range e.TrailingPerformance(h, prices) {
			if !g.Covered {
				continue
			}
			acc := windows[name]
			acc.weighted += float64(g.GainPercent(h.DayChange)) * mvf
			acc.covered += mvf
		}
	}

	// Taxes floor at zero at this final aggregation; a net credit does not
	// inflate gains.
	s.RealizedTax = s.RealizedTax.FloorZero()
	s.UnrealizedTax = s.UnrealizedTax.FloorZero()

	s.RealizedGainAfterTax = s.RealizedGain.Sub(s.RealizedTax).Add(s.DividendsNet)
	s.NetValue = s.AUM.Sub(s.UnrealizedTax)

	if dayChangeQty > 0 {
		s.DayChange = Percent(dayChangeWeighted / dayChangeQty)
	}
	for _, name := range TrailingWindowNames {
		acc := windows[name]
		w := WindowSummary{}
		if acc.covered > 0 {
			w.GainPercent = Percent(acc.weighted / acc.covered)
		}
		if totalAUM > 0 && acc.covered/totalAUM < completenessThreshold {
			w.Incomplete = true
		}
		s.Windows[name] = w
	}
	return s
}

package taxfolio

import "math"

// Trailing window names, in display order.
var TrailingWindowNames = []string{"1m", "3m", "6m", "ytd", "1y", "3y"}

// TrailingStarts maps each window name to its start date relative to now.
func TrailingStarts(now Date) map[string]Date {
	return map[string]Date{
		"1m":  now.AddMonths(-1),
		"3m":  now.AddMonths(-3),
		"6m":  now.AddMonths(-6),
		"ytd": now.StartOfYear(),
		"1y":  now.AddMonths(-12),
		"3y":  now.AddMonths(-36),
	}
}

// PeriodGain is a holding's simple (non-time-weighted) return over a lookback
// window. Initial and Final carry USD and ILS views alongside the portfolio
// currency so neither needs re-deriving later. Covered is false when the
// price provider could not value every surviving lot at the window start.
type PeriodGain struct {
	Start   Date
	Initial MCValue
	Final   MCValue
	Gain    Money
	Covered bool
}

// GainPercent is the period gain relative to the initial value. A zero or
// near-zero initial value yields the caller's fallback (typically a
// market-level figure) rather than an undefined percentage.
func (g PeriodGain) GainPercent(fallback Percent) Percent {
	initial := g.Initial.Amount().AsFloat()
	if math.Abs(initial) < 1e-6 {
		return fallback
	}
	return PercentOfRatio(g.Gain.AsFloat() / initial)
}

// PeriodGain computes the holding's return since start. For each vested lot
// not sold before start, the initial value is the lot's cost when it was
// bought inside the window, otherwise its quantity at the historical price;
// the final value is the lot's proceeds when it was sold inside the window,
// otherwise its quantity at the current price. Dividends received during the
// window count toward both the final value and the gain, net of fee and tax.
func (h *Holding) PeriodGain(start Date, prices PriceProvider, rates ExchangeRates, now Date) PeriodGain {
	setStart, _ := rates.On(start)
	setNow := rates.Current()
	zero := M(0, h.PortfolioCurrency)

	g := PeriodGain{
		Start:   start,
		Initial: ZeroMCValue(h.PortfolioCurrency),
		Final:   ZeroMCValue(h.PortfolioCurrency),
		Gain:    zero,
		Covered: true,
	}

	for _, lot := range h.Lots {
		if !lot.vestedOn(now) {
			continue
		}
		if lot.Sold() && lot.SoldDate.Before(start) {
			continue
		}

		var initial MCValue
		switch {
		case !lot.BuyDate.Before(start):
			initial = lot.Cost
		case prices != nil:
			price, ok := prices(h.Ticker, h.Exchange, start)
			if !ok {
				g.Covered = false
				continue
			}
			value := M(price, h.StockCurrency).Mul(lot.Quantity)
			initial = CaptureValue(ConvertMoneyOrZero(value, h.PortfolioCurrency, setStart), setStart)
		default:
			// No history available: carry the lot at cost, the flat-return
			// assumption for the pre-window stretch.
			initial = lot.Cost
		}

		var final MCValue
		if lot.Sold() {
			final = lot.Proceeds
		} else {
			final = CaptureValue(h.lotMarketValue(lot, setNow), setNow)
		}

		g.Initial = g.Initial.Add(initial)
		g.Final = g.Final.Add(final)
		g.Gain = g.Gain.Add(final.Amount().Sub(initial.Amount()))
	}

	for _, d := range h.Dividends {
		if d.Date.Before(start) || d.Date.After(now) {
			continue
		}
		net := CaptureValue(d.Net, setNow)
		g.Final = g.Final.Add(net)
		g.Gain = g.Gain.Add(d.Net)
	}
	return g
}

// TrailingPerformance computes every trailing window for one holding.
func (e *Engine) TrailingPerformance(h *Holding, prices PriceProvider) map[string]PeriodGain {
	out := make(map[string]PeriodGain, len(TrailingWindowNames))
	for name, start := range TrailingStarts(e.now) {
		out[name] = h.PeriodGain(start, prices, e.rates, e.now)
	}
	return out
}

package taxfolio

// costBasisAt is the cost of the lots open on a date, in the portfolio
// currency. Lots split by a later sale still sum to their original cost for
// any date before that sale.
func (h *Holding) costBasisAt(on Date) Money {
	total := M(0, h.PortfolioCurrency)
	for _, lot := range h.Lots {
		if lot.BuyDate.After(on) {
			continue
		}
		if lot.Sold() && !lot.SoldDate.After(on) {
			continue
		}
		total = total.Add(lot.Cost.Amount())
	}
	return total
}

// firstActivity is the date of the holding's earliest applied transaction.
func (h *Holding) firstActivity() (Date, bool) {
	if len(h.txns) == 0 {
		return Date{}, false
	}
	first := h.txns[0].Date
	for _, tx := range h.txns[1:] {
		if tx.Date.Before(first) {
			first = tx.Date
		}
	}
	return first, true
}

// GenerateRecurringFees synthesizes percentage-based management fee charges
// for every portfolio whose fee record carries a nonzero annual rate.
//
// Charges land at the end of each interval, and each holding's interval walk
// is phased from its own first transaction date, so a position opened
// mid-period is charged a full period after opening rather than on a shared
// portfolio boundary. Each charge values the quantity held on the charge date
// (reconstructed by transaction replay) at the historical price supplied by
// the provider, then applies the per-period slice of the annual rate. Dates
// the provider cannot price are skipped. A missing position is priced at the
// holding's cost basis as a last resort with a nil provider.
//
// Call after ProcessEvents and before CalculateSnapshots.
func (e *Engine) GenerateRecurringFees(prices PriceProvider) {
	for _, id := range e.order {
		p := e.portfolios[id]
		for _, h := range e.HoldingsOf(id) {
			start, ok := h.firstActivity()
			if !ok {
				continue
			}
			on := start
			for {
				interval := p.RecordAt(on).FeeInterval
				on = on.AddMonths(interval.Months())
				if on.After(e.now) {
					break
				}
				rec := p.RecordAt(on)
				if rec.AnnualFeeRate <= 0 {
					continue
				}
				rate := rec.AnnualFeeRate / float64(rec.FeeInterval.PeriodsPerYear())
				base, ok := h.positionValueAt(on, prices, e.rates)
				if !ok {
					continue
				}
				h.addRecurringFee(p, on, base.Mul(Q(rate)), e.rates)
			}
		}
	}
}

// positionValueAt values the position held on a date at the provider's
// historical price, converted to the portfolio currency at that date's rates.
// With no provider the cost basis stands in; with a provider that cannot
// price the date, the position is unvalued and the second return is false.
func (h *Holding) positionValueAt(on Date, prices PriceProvider, rates ExchangeRates) (Money, bool) {
	vested, unvested := h.QuantityAt(on)
	qty := vested.Add(unvested)
	if !qty.IsPositive() {
		return M(0, h.PortfolioCurrency), false
	}
	if prices == nil {
		return h.costBasisAt(on), true
	}
	price, ok := prices(h.Ticker, h.Exchange, on)
	if !ok {
		return M(0, h.PortfolioCurrency), false
	}
	set, _ := rates.On(on)
	value := M(price, h.StockCurrency).Mul(qty)
	return ConvertMoneyOrZero(value, h.PortfolioCurrency, set), true
}

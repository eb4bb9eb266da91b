package taxfolio

import (
	"log"

	"github.com/google/uuid"
)

// DividendSplit is the tax/fee breakdown of one portion (cashed or
// reinvested) of a dividend payment. All amounts are in the portfolio
// currency.
type DividendSplit struct {
	Gross Money `json:"gross"`
	Fee   Money `json:"fee"`
	Tax   Money `json:"tax"`
	Net   Money `json:"net"`
}

// DividendRecord is a dividend payment applied to a holding, preserving the
// gross/fee/tax breakdown for drill-down. The gross amount is kept in the
// instrument currency alongside the portfolio-currency figures.
type DividendRecord struct {
	Date       Date          `json:"date"`
	GrossStock Money         `json:"grossStock"`
	Gross      Money         `json:"gross"`
	Fee        Money         `json:"fee"`
	Tax        Money         `json:"tax"`
	Net        Money         `json:"net"`
	Cashed     DividendSplit `json:"cashed"`
	Reinvested DividendSplit `json:"reinvested"`
	Source     string        `json:"source,omitempty"`
}

// feeCharge is a standalone fee applied to a holding: an explicit FEE
// transaction or a synthesized recurring management fee.
type feeCharge struct {
	on     Date
	amount MCValue // portfolio currency
}

// Holding is the aggregate for one (portfolio, instrument) pair. It owns the
// ordered lot list and dividend records, which are the durable facts; every
// other monetary field is derived and recomputed by CalculateSnapshot, never
// stored redundantly with the lots.
type Holding struct {
	PortfolioID       string
	Ticker            string
	Exchange          string
	StockCurrency     Currency
	PortfolioCurrency Currency

	// Current market quote, injected by HydrateLivePrices (stock currency).
	Price     Money
	DayChange Percent

	Lots      []*Lot
	Dividends []DividendRecord

	txns        []Transaction // chronological, for quantity-at-date replay
	charges     []feeCharge
	lastEmptied Date // last date the position sold down to zero
	// pendingFees is the sum of charges dated after lastEmptied: the fees
	// standing against the currently open position. Charges booked before
	// the position emptied never leak into a re-opened position.
	pendingFees Money

	// Derived by CalculateSnapshot.
	QtyVested           Quantity
	QtyUnvested         Quantity
	MarketValue         Money // vested, portfolio currency
	MarketValueUnvested Money
	CostBasis           Money
	Proceeds            Money
	CostOfSold          Money
	Fees                Money
	RealizedGain        Money
	RealizedTaxable     Money
	RealizedTax         Money
	RealizedIncomeTax   Money
	UnrealizedGain      Money
	UnrealizedTaxable   Money
	UnrealizedTax       Money
	DividendsGross      Money
	DividendsNet        Money
}

func newHolding(p *Portfolio, ticker, exchange string, stock Currency) *Holding {
	return &Holding{
		PortfolioID:       p.ID,
		Ticker:            ticker,
		Exchange:          exchange,
		StockCurrency:     stock,
		PortfolioCurrency: p.Currency,
	}
}

// Key returns the holding's map key, portfolioID_ticker.
func (h *Holding) Key() string {
	return holdingKey(h.PortfolioID, h.Ticker)
}

// ActiveLots returns the lots still holding units.
func (h *Holding) ActiveLots() []*Lot {
	var active []*Lot
	for _, l := range h.Lots {
		if l.Active() {
			active = append(active, l)
		}
	}
	return active
}

// RealizedLots returns the lots recording completed sales.
func (h *Holding) RealizedLots() []*Lot {
	var sold []*Lot
	for _, l := range h.Lots {
		if l.Sold() {
			sold = append(sold, l)
		}
	}
	return sold
}

// PendingFees is the total of fee charges standing against the currently
// open position, valid after CalculateSnapshot. Charges booked before the
// position last emptied are excluded.
func (h *Holding) PendingFees() Money { return h.pendingFees }

// QuantityAt reconstructs the vested and unvested quantity held on a date by
// replaying this holding's transactions. A buy counts as vested when its vest
// date is on or before the query date; a sell reduces vested quantity first.
// Quantities are clamped at zero: an over-sold history never reports a
// negative position.
func (h *Holding) QuantityAt(on Date) (vested, unvested Quantity) {
	for _, tx := range h.txns {
		if tx.Date.After(on) {
			break
		}
		switch tx.Type {
		case TxBuy:
			if tx.VestDate.IsZero() || !tx.VestDate.After(on) {
				vested = vested.Add(tx.Quantity)
			} else {
				unvested = unvested.Add(tx.Quantity)
			}
		case TxSell:
			cut := MinQuantity(vested, tx.Quantity)
			vested = vested.Sub(cut)
			unvested = unvested.Sub(tx.Quantity.Sub(cut)).ClampZero()
		}
	}
	return vested.ClampZero(), unvested.ClampZero()
}

// resolveUnitValue expresses a transaction's per-unit price in the target
// currency, preferring in order: the price itself when the transaction is
// already in the target currency, a caller-supplied pre-converted historical
// value, and only then a live conversion through the rate table.
func (h *Holding) resolveUnitValue(tx Transaction, target Currency, rates ExchangeRates) (MCValue, error) {
	set, _ := rates.On(tx.Date)

	capture := func(m Money) MCValue {
		v := CaptureValue(m, set)
		if !tx.OriginalPriceUSD.IsZero() {
			v = v.WithUSD(tx.OriginalPriceUSD)
		}
		if !tx.OriginalPriceILA.IsZero() {
			v = v.WithILS(tx.OriginalPriceILA.Div(hundred))
		}
		return v
	}

	if tx.Currency == target {
		return capture(tx.PriceMoney()), nil
	}
	switch target {
	case USD:
		if !tx.OriginalPriceUSD.IsZero() {
			return capture(M(tx.OriginalPriceUSD, USD)), nil
		}
	case ILS:
		if !tx.OriginalPriceILA.IsZero() {
			return capture(M(tx.OriginalPriceILA.Div(hundred), ILS)), nil
		}
	case ILA:
		if !tx.OriginalPriceILA.IsZero() {
			return capture(M(tx.OriginalPriceILA, ILA)), nil
		}
	}
	converted, err := ConvertMoney(tx.PriceMoney(), target, set)
	if err != nil {
		return MCValue{}, err
	}
	return capture(converted), nil
}

// applyBuy opens a new lot. Lots are never merged.
func (h *Holding) applyBuy(p *Portfolio, tx Transaction, rates ExchangeRates, cpi *CPISeries, now Date) {
	if tx.Quantity.IsZero() {
		return
	}
	unit, err := h.resolveUnitValue(tx, p.Currency, rates)
	if err != nil {
		log.Printf("holding %s: cannot price buy on %s: %v", h.Key(), tx.Date, err)
		unit = NewMCValue(M(0, p.Currency))
	}
	set, _ := rates.On(tx.Date)
	fee := CaptureValue(ConvertMoneyOrZero(tx.CommissionMoney(), p.Currency, set), set)

	lot := &Lot{
		ID:          uuid.New(),
		BuyDate:     tx.Date,
		Quantity:    tx.Quantity,
		CostPerUnit: unit,
		Cost:        unit.Scale(tx.Quantity),
		BuyFee:      fee,
		CPIAtBuy:    cpi.At(tx.Date),
		VestDate:    tx.VestDate,
		Vested:      tx.VestDate.IsZero() || !tx.VestDate.After(now),
	}
	h.Lots = append(h.Lots, lot)
	h.txns = append(h.txns, tx)
}

// applySell consumes active lots FIFO, splitting the last lot pro rata when
// it is larger than the remaining sell quantity, and allocates the sell
// commission across the consumed lots by relative quantity.
func (h *Holding) applySell(p *Portfolio, tx Transaction, rates ExchangeRates, cpi *CPISeries) {
	if tx.Quantity.IsZero() {
		return
	}
	unit, err := h.resolveUnitValue(tx, p.Currency, rates)
	if err != nil {
		log.Printf("holding %s: cannot price sell on %s: %v", h.Key(), tx.Date, err)
		unit = NewMCValue(M(0, p.Currency))
	}
	set, _ := rates.On(tx.Date)
	commission := CaptureValue(ConvertMoneyOrZero(tx.CommissionMoney(), p.Currency, set), set)
	rec := p.RecordAt(tx.Date)

	active := h.ActiveLots()
	sortLotsFIFO(active)

	remaining := tx.Quantity
	for _, lot := range active {
		if !remaining.IsPositive() {
			break
		}
		portion := MinQuantity(lot.Quantity, remaining)
		sold := lot
		if portion.LessThan(lot.Quantity) {
			sold = lot.split(portion)
			h.Lots = append(h.Lots, sold)
		}
		sellFee := commission.Scale(portion.Div(tx.Quantity))
		proceeds := unit.Scale(portion)
		h.finalizeSale(p, sold, tx.Date, proceeds, sellFee, rec, cpi, rates)
		remaining = remaining.Sub(portion)
	}
	if remaining.IsPositive() {
		log.Printf("holding %s: sell of %s on %s exceeds position by %s, excess ignored",
			h.Key(), tx.Quantity, tx.Date, remaining)
	}
	h.txns = append(h.txns, tx)

	if len(h.ActiveLots()) == 0 {
		h.lastEmptied = tx.Date
	}
}

// finalizeSale stamps a (possibly split) lot with the result of its sale:
// realized gain in the portfolio currency, the own-currency gain the tax
// policies need, and the resulting capital-gains and income tax.
func (h *Holding) finalizeSale(p *Portfolio, lot *Lot, on Date, proceeds, sellFee MCValue, rec FeeRecord, cpi *CPISeries, rates ExchangeRates) {
	set, _ := rates.On(on)

	lot.SoldDate = on
	lot.Proceeds = proceeds
	lot.SellFee = sellFee

	nominal := proceeds.Amount().
		Sub(lot.Cost.Amount()).
		Sub(lot.BuyFee.Amount()).
		Sub(sellFee.Amount())
	lot.RealizedGain = nominal

	own := h.ownCurrencyGain(lot.Cost, lot.BuyFee, proceeds, sellFee, set)

	taxable := TaxableGain(p.TaxPolicy, GainBasis{
		Nominal:     nominal,
		OwnCurrency: own,
		Cost:        lot.Cost.Amount(),
		Domestic:    p.domestic(h.StockCurrency),
		CPIStart:    lot.CPIAtBuy,
		CPIEnd:      cpi.At(on),
	})
	if p.TaxOnBase {
		taxable = proceeds.Amount()
	}
	lot.RealizedTaxable = taxable
	lot.RealizedTax = taxable.Mul(Q(rec.CapitalGainsRate))
	lot.RealizedIncomeTax = IncomeTax(p.TaxPolicy, lot.Cost.Amount(), rec.IncomeTaxRate)
}

// ownCurrencyGain measures a gain in the instrument's own currency, using the
// stored projections, and converts the result to the portfolio currency at
// evaluation time.
func (h *Holding) ownCurrencyGain(cost, buyFee, proceeds, sellFee MCValue, set RateSet) Money {
	in := func(v MCValue) Money {
		m, err := v.In(h.StockCurrency, set)
		if err != nil {
			log.Printf("holding %s: no %s view of %s: %v", h.Key(), h.StockCurrency, v.Amount(), err)
			return M(0, h.StockCurrency)
		}
		return m
	}
	gain := in(proceeds).Sub(in(cost)).Sub(in(buyFee)).Sub(in(sellFee))
	return ConvertMoneyOrZero(gain, h.PortfolioCurrency, set)
}

// applyDividend books a dividend distribution against the quantity held at
// the ex-date. The gross amount splits proportionally between the vested
// (cashed) and unvested (reinvested) quantity, each portion accruing its own
// fee and tax.
func (h *Holding) applyDividend(p *Portfolio, on Date, perUnit Money, source string, class SecurityClass, rates ExchangeRates) {
	vested, unvested := h.QuantityAt(on)
	total := vested.Add(unvested)
	if !total.IsPositive() {
		return
	}
	set, _ := rates.On(on)
	rec := p.RecordAt(on)

	grossStock := perUnit.Mul(total)
	gross := ConvertMoneyOrZero(grossStock, p.Currency, set)

	taxRate := rec.CapitalGainsRate
	if class.REIT && rec.IncomeTaxRate > 0 {
		taxRate = rec.IncomeTaxRate
	}
	if p.TaxPolicy == TaxFree {
		taxRate = 0
	}

	split := func(portion Quantity, taxed bool) DividendSplit {
		g := gross.Mul(portion).Div(total)
		s := DividendSplit{
			Gross: g,
			Fee:   g.Mul(Q(rec.DividendCommissionRate)),
			Tax:   M(0, p.Currency),
		}
		if taxed {
			s.Tax = g.Mul(Q(taxRate))
		}
		s.Net = s.Gross.Sub(s.Fee).Sub(s.Tax)
		return s
	}

	cashed := split(vested, true)
	reinvested := split(unvested, !p.DividendPolicy.exemptsReinvested())

	record := DividendRecord{
		Date:       on,
		GrossStock: grossStock,
		Gross:      gross,
		Fee:        cashed.Fee.Add(reinvested.Fee),
		Tax:        cashed.Tax.Add(reinvested.Tax),
		Cashed:     cashed,
		Reinvested: reinvested,
		Source:     source,
	}
	record.Net = record.Gross.Sub(record.Fee).Sub(record.Tax)
	h.Dividends = append(h.Dividends, record)
}

// applyFee books a standalone fee charge against the holding. The charge
// reduces realized gain at snapshot time.
func (h *Holding) applyFee(p *Portfolio, tx Transaction, rates ExchangeRates) {
	amount := tx.PriceMoney()
	if !tx.Quantity.IsZero() {
		amount = amount.Mul(tx.Quantity)
	}
	if amount.IsZero() {
		return
	}
	set, _ := rates.On(tx.Date)
	charged := ConvertMoneyOrZero(amount, p.Currency, set)
	h.charges = append(h.charges, feeCharge{on: tx.Date, amount: CaptureValue(charged, set)})
	h.txns = append(h.txns, tx)
}

// addRecurringFee books a synthesized management-fee charge (see fees.go).
func (h *Holding) addRecurringFee(p *Portfolio, on Date, charged Money, rates ExchangeRates) {
	if charged.IsZero() {
		return
	}
	set, _ := rates.On(on)
	h.charges = append(h.charges, feeCharge{on: on, amount: CaptureValue(charged, set)})
}

// CalculateSnapshot recomputes every derived field from the lot list,
// dividend records, and fee charges. It is idempotent and safe to call
// repeatedly, e.g. after HydrateLivePrices changed only the current price.
func (h *Holding) CalculateSnapshot(p *Portfolio, rates ExchangeRates, cpi *CPISeries, now Date) {
	set := rates.Current()
	zero := M(0, p.Currency)

	h.QtyVested, h.QtyUnvested = Quantity{}, Quantity{}
	h.MarketValue, h.MarketValueUnvested = zero, zero
	h.CostBasis, h.Proceeds, h.CostOfSold, h.Fees = zero, zero, zero, zero
	h.RealizedGain, h.RealizedTaxable, h.RealizedTax, h.RealizedIncomeTax = zero, zero, zero, zero
	h.UnrealizedGain, h.UnrealizedTaxable, h.UnrealizedTax = zero, zero, zero
	h.DividendsGross, h.DividendsNet = zero, zero

	cgtRate := p.CapitalGainsRateAt(now)
	cpiNow := cpi.At(now)

	for _, lot := range h.Lots {
		if lot.Sold() {
			h.Proceeds = h.Proceeds.Add(lot.Proceeds.Amount())
			h.CostOfSold = h.CostOfSold.Add(lot.Cost.Amount())
			h.Fees = h.Fees.Add(lot.BuyFee.Amount()).Add(lot.SellFee.Amount())
			h.RealizedGain = h.RealizedGain.Add(lot.RealizedGain)
			h.RealizedTaxable = h.RealizedTaxable.Add(lot.RealizedTaxable)
			h.RealizedTax = h.RealizedTax.Add(lot.RealizedTax)
			h.RealizedIncomeTax = h.RealizedIncomeTax.Add(lot.RealizedIncomeTax)
			continue
		}
		if !lot.Quantity.IsPositive() {
			continue
		}

		lot.Vested = lot.vestedOn(now)
		h.CostBasis = h.CostBasis.Add(lot.Cost.Amount())
		h.Fees = h.Fees.Add(lot.BuyFee.Amount())

		mv := h.lotMarketValue(lot, set)
		if lot.Vested {
			h.QtyVested = h.QtyVested.Add(lot.Quantity)
			h.MarketValue = h.MarketValue.Add(mv)
		} else {
			h.QtyUnvested = h.QtyUnvested.Add(lot.Quantity)
			h.MarketValueUnvested = h.MarketValueUnvested.Add(mv)
		}

		gain := mv.Sub(lot.Cost.Amount()).Sub(lot.BuyFee.Amount())
		h.UnrealizedGain = h.UnrealizedGain.Add(gain)

		// Unvested grants never contribute to the current tax liability.
		if !lot.Vested {
			continue
		}
		own := h.ownCurrencyUnrealized(lot, set)
		taxable := TaxableGain(p.TaxPolicy, GainBasis{
			Nominal:     gain,
			OwnCurrency: own,
			Cost:        lot.Cost.Amount(),
			Domestic:    p.domestic(h.StockCurrency),
			CPIStart:    lot.CPIAtBuy,
			CPIEnd:      cpiNow,
		})
		if p.TaxOnBase {
			taxable = mv
		}
		h.UnrealizedTaxable = h.UnrealizedTaxable.Add(taxable)
		// A negative liability (tax credit) propagates; flooring happens only
		// at the final portfolio-level aggregation.
		h.UnrealizedTax = h.UnrealizedTax.Add(taxable.Mul(Q(cgtRate)))
	}

	h.pendingFees = zero
	for _, c := range h.charges {
		h.Fees = h.Fees.Add(c.amount.Amount())
		h.RealizedGain = h.RealizedGain.Sub(c.amount.Amount())
		if h.lastEmptied.IsZero() || c.on.After(h.lastEmptied) {
			h.pendingFees = h.pendingFees.Add(c.amount.Amount())
		}
	}
	for _, d := range h.Dividends {
		h.DividendsGross = h.DividendsGross.Add(d.Gross)
		h.DividendsNet = h.DividendsNet.Add(d.Net)
	}
}

// lotMarketValue values an active lot at the current quote, in the portfolio
// currency. Without a quote the lot is carried at cost, so a missing price
// reads as "no gain yet", not as a total loss.
func (h *Holding) lotMarketValue(lot *Lot, set RateSet) Money {
	if h.Price.IsZero() {
		return lot.Cost.Amount()
	}
	return ConvertMoneyOrZero(h.Price.Mul(lot.Quantity), h.PortfolioCurrency, set)
}

// ownCurrencyUnrealized is the mark-to-market counterpart of ownCurrencyGain.
func (h *Holding) ownCurrencyUnrealized(lot *Lot, set RateSet) Money {
	if h.Price.IsZero() {
		return M(0, h.PortfolioCurrency)
	}
	in := func(v MCValue) Money {
		m, err := v.In(h.StockCurrency, set)
		if err != nil {
			log.Printf("holding %s: no %s view of %s: %v", h.Key(), h.StockCurrency, v.Amount(), err)
			return M(0, h.StockCurrency)
		}
		return m
	}
	// Quotes can arrive in a minor unit of the stock currency (TASE quotes
	// in agorot for a shekel holding); align before subtracting.
	mvStock := ConvertMoneyOrZero(h.Price.Mul(lot.Quantity), h.StockCurrency, set)
	gain := mvStock.Sub(in(lot.Cost)).Sub(in(lot.BuyFee))
	return ConvertMoneyOrZero(gain, h.PortfolioCurrency, set)
}

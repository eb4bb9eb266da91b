package taxfolio

import "testing"

func newTestHolding(p *Portfolio) *Holding {
	return newHolding(p, "AAPL", "NASDAQ", USD)
}

func TestApplySellFIFO(t *testing.T) {
	p := testPortfolio(TaxFree)
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2024-12-31")

	h := newTestHolding(p)
	h.applyBuy(p, buy("2024-01-10", 10, 100), rates, cpi, now)
	h.applyBuy(p, buy("2024-02-10", 10, 120), rates, cpi, now)
	h.applySell(p, sell("2024-03-01", 15, 180), rates, cpi)
	h.CalculateSnapshot(p, rates, cpi, now)

	// Lot 1 consumed whole (gain 800), lot 2 split 5/10 (gain 300).
	if !h.RealizedGain.Equal(usd(1100)) {
		t.Errorf("RealizedGain = %s, want 1100", h.RealizedGain)
	}
	if !h.Proceeds.Equal(usd(2700)) {
		t.Errorf("Proceeds = %s, want 2700", h.Proceeds)
	}
	if !h.CostOfSold.Equal(usd(1600)) {
		t.Errorf("CostOfSold = %s, want 1600", h.CostOfSold)
	}
	if !h.QtyVested.Equal(Q(5)) {
		t.Errorf("QtyVested = %s, want 5", h.QtyVested)
	}
	if !h.CostBasis.Equal(usd(600)) {
		t.Errorf("CostBasis = %s, want 600 (remaining half of lot 2)", h.CostBasis)
	}
}

func TestApplySellProRataFees(t *testing.T) {
	p := testPortfolio(TaxFree)
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2024-12-31")

	h := newTestHolding(p)
	b := buy("2024-01-10", 10, 100)
	b.Commission = dec(10)
	h.applyBuy(p, b, rates, cpi, now)

	s := sell("2024-03-01", 4, 150)
	s.Commission = dec(6)
	h.applySell(p, s, rates, cpi)

	var sold, open *Lot
	for _, l := range h.Lots {
		if l.Sold() {
			sold = l
		} else {
			open = l
		}
	}
	if sold == nil || open == nil {
		t.Fatalf("want one sold and one open lot, got %d lots", len(h.Lots))
	}

	// 4/10 of the buy fee travels with the chunk, the rest stays.
	if !sold.BuyFee.Amount().Equal(usd(4)) {
		t.Errorf("sold chunk BuyFee = %s, want 4", sold.BuyFee.Amount())
	}
	if !open.BuyFee.Amount().Equal(usd(6)) {
		t.Errorf("remaining BuyFee = %s, want 6", open.BuyFee.Amount())
	}
	if !sold.SellFee.Amount().Equal(usd(6)) {
		t.Errorf("SellFee = %s, want the whole 6", sold.SellFee.Amount())
	}
	// gain = 600 - 400 - 4 - 6
	if !sold.RealizedGain.Equal(usd(190)) {
		t.Errorf("RealizedGain = %s, want 190", sold.RealizedGain)
	}
	// Conservation: chunk cost + remaining cost = original cost.
	if got := sold.Cost.Amount().Add(open.Cost.Amount()); !got.Equal(usd(1000)) {
		t.Errorf("split costs sum to %s, want 1000", got)
	}
}

// The classic worked example: buy 10 @ 100 with a 5 commission, sell 5 @ 180
// with a 5 commission. gain = 900 - 500 - 2.5 - 5.
func TestRealizedGainWorkedExample(t *testing.T) {
	p := testPortfolio(RealGain)
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2024-12-31")

	h := newTestHolding(p)
	b := buy("2024-01-10", 10, 100)
	b.Commission = dec(5)
	h.applyBuy(p, b, rates, cpi, now)

	s := sell("2024-06-01", 5, 180)
	s.Commission = dec(5)
	h.applySell(p, s, rates, cpi)
	h.CalculateSnapshot(p, rates, cpi, now)

	if !h.RealizedGain.Equal(usd(392.5)) {
		t.Errorf("RealizedGain = %s, want 392.5", h.RealizedGain)
	}
	// Domestic flat-CPI real gain taxed at 25%.
	if !h.RealizedTax.Equal(usd(98.125)) {
		t.Errorf("RealizedTax = %s, want 98.125", h.RealizedTax)
	}
}

func TestOversellIsClamped(t *testing.T) {
	p := testPortfolio(TaxFree)
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2024-12-31")

	h := newTestHolding(p)
	h.applyBuy(p, buy("2024-01-10", 10, 100), rates, cpi, now)
	h.applySell(p, sell("2024-03-01", 15, 150), rates, cpi)
	h.CalculateSnapshot(p, rates, cpi, now)

	if !h.QtyVested.IsZero() {
		t.Errorf("QtyVested = %s, want 0", h.QtyVested)
	}
	// Only the held 10 units sold: gain = 1500 - 1000.
	if !h.RealizedGain.Equal(usd(500)) {
		t.Errorf("RealizedGain = %s, want 500", h.RealizedGain)
	}

	vested, unvested := h.QuantityAt(dt("2024-04-01"))
	if !vested.IsZero() || !unvested.IsZero() {
		t.Errorf("QuantityAt = %s/%s, want 0/0", vested, unvested)
	}
}

func TestVestingExcludedFromTaxAndValue(t *testing.T) {
	p := testPortfolio(RealGain)
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2024-06-30")

	h := newTestHolding(p)
	vested := buy("2024-01-10", 10, 100)
	granted := buy("2024-01-10", 10, 100)
	granted.VestDate = dt("2025-01-10")
	h.applyBuy(p, vested, rates, cpi, now)
	h.applyBuy(p, granted, rates, cpi, now)

	h.Price = usd(150)
	h.CalculateSnapshot(p, rates, cpi, now)

	if !h.QtyVested.Equal(Q(10)) || !h.QtyUnvested.Equal(Q(10)) {
		t.Errorf("quantities = %s/%s, want 10/10", h.QtyVested, h.QtyUnvested)
	}
	if !h.MarketValue.Equal(usd(1500)) {
		t.Errorf("MarketValue = %s, want 1500 (vested only)", h.MarketValue)
	}
	if !h.MarketValueUnvested.Equal(usd(1500)) {
		t.Errorf("MarketValueUnvested = %s, want 1500", h.MarketValueUnvested)
	}
	// Unrealized gain counts both lots, tax only the vested one.
	if !h.UnrealizedGain.Equal(usd(1000)) {
		t.Errorf("UnrealizedGain = %s, want 1000", h.UnrealizedGain)
	}
	if !h.UnrealizedTax.Equal(usd(125)) {
		t.Errorf("UnrealizedTax = %s, want 125 (25%% of the vested 500)", h.UnrealizedTax)
	}
}

func TestQuantityAtReplay(t *testing.T) {
	p := testPortfolio(TaxFree)
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2025-12-31")

	h := newTestHolding(p)
	g1 := buy("2024-01-10", 10, 100)
	g1.VestDate = dt("2024-07-01")
	h.applyBuy(p, g1, rates, cpi, now)
	h.applyBuy(p, buy("2024-02-01", 5, 110), rates, cpi, now)
	h.applySell(p, sell("2024-08-01", 8, 150), rates, cpi)

	tests := []struct {
		on               string
		vested, unvested float64
	}{
		{"2024-01-05", 0, 0},
		{"2024-01-10", 0, 10}, // grant not yet vested
		{"2024-02-01", 5, 10}, // plain buy is vested immediately
		{"2024-07-01", 15, 0}, // grant vests
		{"2024-08-01", 7, 0},  // sell reduces vested first
	}
	for _, tt := range tests {
		vested, unvested := h.QuantityAt(dt(tt.on))
		if !vested.Equal(Q(tt.vested)) || !unvested.Equal(Q(tt.unvested)) {
			t.Errorf("QuantityAt(%s) = %s/%s, want %v/%v",
				tt.on, vested, unvested, tt.vested, tt.unvested)
		}
	}
}

func TestDividendSplitAndTax(t *testing.T) {
	p := testPortfolio(RealGain)
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2025-12-31")

	h := newTestHolding(p)
	h.applyBuy(p, buy("2024-01-10", 6, 100), rates, cpi, now)
	granted := buy("2024-01-10", 4, 100)
	granted.VestDate = dt("2025-01-10")
	h.applyBuy(p, granted, rates, cpi, now)

	h.applyDividend(p, dt("2024-06-01"), usd(1), "test", SecurityClass{}, rates)

	if len(h.Dividends) != 1 {
		t.Fatalf("len(Dividends) = %d, want 1", len(h.Dividends))
	}
	d := h.Dividends[0]
	if !d.Gross.Equal(usd(10)) {
		t.Errorf("Gross = %s, want 10", d.Gross)
	}
	// Cashed 60%: fee 4% and tax 25% on 6.
	if !d.Cashed.Gross.Equal(usd(6)) || !d.Cashed.Fee.Equal(usd(0.24)) || !d.Cashed.Tax.Equal(usd(1.5)) {
		t.Errorf("Cashed = %+v, want gross 6, fee 0.24, tax 1.5", d.Cashed)
	}
	// Reinvested 40% under the default cash-taxed policy is taxed too.
	if !d.Reinvested.Tax.Equal(usd(1)) {
		t.Errorf("Reinvested.Tax = %s, want 1", d.Reinvested.Tax)
	}
	if !d.Net.Equal(usd(10 - 0.4 - 2.5)) {
		t.Errorf("Net = %s, want 7.1", d.Net)
	}
}

func TestDividendReinvestedExemption(t *testing.T) {
	p := testPortfolio(RealGain)
	p.DividendPolicy = AccumulateTaxFree
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2025-12-31")

	h := newTestHolding(p)
	granted := buy("2024-01-10", 10, 100)
	granted.VestDate = dt("2025-01-10")
	h.applyBuy(p, granted, rates, cpi, now)

	h.applyDividend(p, dt("2024-06-01"), usd(1), "test", SecurityClass{}, rates)

	d := h.Dividends[0]
	if !d.Reinvested.Tax.IsZero() {
		t.Errorf("Reinvested.Tax = %s, want 0 under accumulate-tax-free", d.Reinvested.Tax)
	}
	if !d.Reinvested.Fee.Equal(usd(0.4)) {
		t.Errorf("Reinvested.Fee = %s, want 0.4 (commission still applies)", d.Reinvested.Fee)
	}
}

func TestDividendREITUsesIncomeRate(t *testing.T) {
	p := testPortfolio(RealGain)
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2025-12-31")

	h := newTestHolding(p)
	h.applyBuy(p, buy("2024-01-10", 10, 100), rates, cpi, now)

	h.applyDividend(p, dt("2024-06-01"), usd(1), "test", SecurityClass{REIT: true}, rates)

	// 47% income rate instead of the 25% capital-gains rate.
	if got := h.Dividends[0].Tax; !got.Equal(usd(4.7)) {
		t.Errorf("Tax = %s, want 4.7", got)
	}
}

func TestDividendIgnoredWithoutPosition(t *testing.T) {
	p := testPortfolio(RealGain)
	rates := testRates()

	h := newTestHolding(p)
	h.applyDividend(p, dt("2024-06-01"), usd(1), "test", SecurityClass{}, rates)
	if len(h.Dividends) != 0 {
		t.Errorf("len(Dividends) = %d, want 0", len(h.Dividends))
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	p := testPortfolio(RealGain)
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2024-12-31")

	h := newTestHolding(p)
	b := buy("2024-01-10", 10, 100)
	b.Commission = dec(5)
	h.applyBuy(p, b, rates, cpi, now)
	h.applySell(p, sell("2024-06-01", 5, 180), rates, cpi)
	h.applyDividend(p, dt("2024-03-01"), usd(1), "test", SecurityClass{}, rates)
	h.Price = usd(150)

	h.CalculateSnapshot(p, rates, cpi, now)
	first := *h
	h.CalculateSnapshot(p, rates, cpi, now)

	if !h.RealizedGain.Equal(first.RealizedGain) ||
		!h.UnrealizedGain.Equal(first.UnrealizedGain) ||
		!h.Fees.Equal(first.Fees) ||
		!h.DividendsNet.Equal(first.DividendsNet) ||
		!h.QtyVested.Equal(first.QtyVested) {
		t.Error("CalculateSnapshot is not idempotent")
	}
}

func TestPendingFeesResetWhenPositionEmpties(t *testing.T) {
	p := testPortfolio(TaxFree)
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2024-12-31")

	h := newTestHolding(p)
	h.applyBuy(p, buy("2024-01-10", 10, 100), rates, cpi, now)

	fee := buy("2024-02-01", 0, 7)
	fee.Type = TxFee
	h.applyFee(p, fee, rates)
	h.CalculateSnapshot(p, rates, cpi, now)

	if !h.PendingFees().Equal(usd(7)) {
		t.Errorf("PendingFees = %s, want 7", h.PendingFees())
	}

	h.applySell(p, sell("2024-03-01", 10, 150), rates, cpi)
	h.CalculateSnapshot(p, rates, cpi, now)
	if !h.PendingFees().IsZero() {
		t.Errorf("PendingFees after emptying = %s, want 0", h.PendingFees())
	}
	// The charge itself still reduces realized gain.
	if !h.RealizedGain.Equal(usd(493)) {
		t.Errorf("RealizedGain = %s, want 493 (500 - 7 fee)", h.RealizedGain)
	}
}

func TestBuyPriceResolutionPriority(t *testing.T) {
	p := testPortfolio(TaxFree)
	p.Currency = ILS
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2024-12-31")

	h := newHolding(p, "AAPL", "NASDAQ", USD)

	// The loader pre-resolved the historical ILA price; it beats a live
	// conversion through today's table.
	tx := buy("2024-01-10", 10, 100)
	tx.OriginalPriceILA = dec(39000) // 390 ILS, not today's 350
	h.applyBuy(p, tx, rates, cpi, now)

	lot := h.Lots[0]
	if !lot.CostPerUnit.Amount().Equal(ils(390)) {
		t.Errorf("CostPerUnit = %s, want 390 ILS from the pre-resolved price", lot.CostPerUnit.Amount())
	}
	if !lot.Cost.Amount().Equal(ils(3900)) {
		t.Errorf("Cost = %s, want 3900 ILS", lot.Cost.Amount())
	}
}

func TestMissingPriceCarriesLotAtCost(t *testing.T) {
	p := testPortfolio(RealGain)
	rates := testRates()
	cpi := FlatCPI()
	now := dt("2024-12-31")

	h := newTestHolding(p)
	h.applyBuy(p, buy("2024-01-10", 10, 100), rates, cpi, now)
	h.CalculateSnapshot(p, rates, cpi, now)

	if !h.MarketValue.Equal(usd(1000)) {
		t.Errorf("MarketValue = %s, want cost 1000 without a quote", h.MarketValue)
	}
	if !h.UnrealizedGain.IsZero() {
		t.Errorf("UnrealizedGain = %s, want 0 without a quote", h.UnrealizedGain)
	}
}

package taxfolio

import (
	"testing"

	"github.com/shopspring/decimal"
)

func feePortfolio(interval FeeInterval) *Portfolio {
	p := testPortfolio(TaxFree)
	p.History[0].AnnualFeeRate = 0.012
	p.History[0].FeeInterval = interval
	return p
}

func TestGenerateRecurringFeesMonthly(t *testing.T) {
	e := New([]*Portfolio{feePortfolio(Monthly)}, testRates(), FlatCPI(), WithNow(dt("2024-04-15")))
	e.ProcessEvents([]Transaction{buy("2024-01-10", 10, 100)}, nil)

	e.GenerateRecurringFees(func(ticker, exchange string, on Date) (decimal.Decimal, bool) {
		return dec(100), true
	})
	e.CalculateSnapshots()

	h, _ := e.Holding("main", "AAPL")
	// Charges on Feb 10, Mar 10, Apr 10: 1000 x 0.012/12 each.
	if !h.Fees.Equal(usd(3)) {
		t.Errorf("Fees = %s, want 3", h.Fees)
	}
	if !h.RealizedGain.Equal(usd(-3)) {
		t.Errorf("RealizedGain = %s, want -3", h.RealizedGain)
	}
}

func TestGenerateRecurringFeesQuarterly(t *testing.T) {
	e := New([]*Portfolio{feePortfolio(Quarterly)}, testRates(), FlatCPI(), WithNow(dt("2024-12-31")))
	e.ProcessEvents([]Transaction{buy("2024-01-10", 10, 100)}, nil)

	e.GenerateRecurringFees(func(ticker, exchange string, on Date) (decimal.Decimal, bool) {
		return dec(100), true
	})
	e.CalculateSnapshots()

	h, _ := e.Holding("main", "AAPL")
	// Apr 10, Jul 10, Oct 10: 1000 x 0.012/4 each.
	if !h.Fees.Equal(usd(9)) {
		t.Errorf("Fees = %s, want 9", h.Fees)
	}
}

func TestRecurringFeesSkipUnpricedDates(t *testing.T) {
	e := New([]*Portfolio{feePortfolio(Monthly)}, testRates(), FlatCPI(), WithNow(dt("2024-04-15")))
	e.ProcessEvents([]Transaction{buy("2024-01-10", 10, 100)}, nil)

	e.GenerateRecurringFees(func(ticker, exchange string, on Date) (decimal.Decimal, bool) {
		if on.Month() == 3 {
			return dec(0), false
		}
		return dec(100), true
	})
	e.CalculateSnapshots()

	h, _ := e.Holding("main", "AAPL")
	if !h.Fees.Equal(usd(2)) {
		t.Errorf("Fees = %s, want 2 (March unpriced)", h.Fees)
	}
}

func TestRecurringFeesNilProviderUsesCost(t *testing.T) {
	e := New([]*Portfolio{feePortfolio(Monthly)}, testRates(), FlatCPI(), WithNow(dt("2024-03-15")))
	e.ProcessEvents([]Transaction{buy("2024-01-10", 10, 200)}, nil)

	e.GenerateRecurringFees(nil)
	e.CalculateSnapshots()

	h, _ := e.Holding("main", "AAPL")
	// Feb 10 and Mar 10: 2000 x 0.001 each.
	if !h.Fees.Equal(usd(4)) {
		t.Errorf("Fees = %s, want 4", h.Fees)
	}
}

func TestRecurringFeesStopAfterPositionCloses(t *testing.T) {
	e := New([]*Portfolio{feePortfolio(Monthly)}, testRates(), FlatCPI(), WithNow(dt("2024-06-15")))
	e.ProcessEvents([]Transaction{
		buy("2024-01-10", 10, 100),
		sell("2024-03-20", 10, 100),
	}, nil)

	e.GenerateRecurringFees(func(ticker, exchange string, on Date) (decimal.Decimal, bool) {
		return dec(100), true
	})
	e.CalculateSnapshots()

	h, _ := e.Holding("main", "AAPL")
	// Only Feb 10 and Mar 10 carry a position.
	if !h.Fees.Equal(usd(2)) {
		t.Errorf("Fees = %s, want 2", h.Fees)
	}
}

func TestRecurringFeesPhasedPerHolding(t *testing.T) {
	e := New([]*Portfolio{feePortfolio(Monthly)}, testRates(), FlatCPI(), WithNow(dt("2024-04-20")))
	late := buy("2024-04-01", 10, 100)
	late.Ticker = "GOOG"
	e.ProcessEvents([]Transaction{buy("2024-01-10", 10, 100), late}, nil)

	e.GenerateRecurringFees(func(ticker, exchange string, on Date) (decimal.Decimal, bool) {
		return dec(100), true
	})
	e.CalculateSnapshots()

	aapl, _ := e.Holding("main", "AAPL")
	if !aapl.Fees.Equal(usd(3)) {
		t.Errorf("AAPL Fees = %s, want 3 (Feb 10, Mar 10, Apr 10)", aapl.Fees)
	}
	// GOOG's first full interval ends May 1, past the as-of date; it is not
	// charged on AAPL's phase boundaries.
	goog, _ := e.Holding("main", "GOOG")
	if !goog.Fees.IsZero() {
		t.Errorf("GOOG Fees = %s, want 0", goog.Fees)
	}
}

func TestRecurringFeesPendingOnlySinceReopen(t *testing.T) {
	e := New([]*Portfolio{feePortfolio(Monthly)}, testRates(), FlatCPI(), WithNow(dt("2024-06-15")))
	e.ProcessEvents([]Transaction{
		buy("2024-01-10", 10, 100),
		sell("2024-03-20", 10, 100),
		buy("2024-04-01", 10, 100),
	}, nil)

	e.GenerateRecurringFees(func(ticker, exchange string, on Date) (decimal.Decimal, bool) {
		return dec(100), true
	})
	e.CalculateSnapshots()

	h, _ := e.Holding("main", "AAPL")
	// Feb 10 and Mar 10 on the first position, Apr 10 to Jun 10 on the second.
	if !h.Fees.Equal(usd(5)) {
		t.Errorf("Fees = %s, want 5", h.Fees)
	}
	if !h.PendingFees().Equal(usd(3)) {
		t.Errorf("PendingFees = %s, want 3 (charges since the reopen)", h.PendingFees())
	}
}

func TestNoFeesWithoutRate(t *testing.T) {
	e := New([]*Portfolio{testPortfolio(TaxFree)}, testRates(), FlatCPI(), WithNow(dt("2024-12-31")))
	e.ProcessEvents([]Transaction{buy("2024-01-10", 10, 100)}, nil)

	e.GenerateRecurringFees(nil)
	e.CalculateSnapshots()

	h, _ := e.Holding("main", "AAPL")
	if !h.Fees.IsZero() {
		t.Errorf("Fees = %s, want 0", h.Fees)
	}
}

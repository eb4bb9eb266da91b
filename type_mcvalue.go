package taxfolio

import (
	"github.com/shopspring/decimal"
)

// MCValue is a monetary amount carrying parallel USD and ILS projections of
// the same value, captured once, at the moment the authoritative rate for the
// amount is known. Re-deriving one currency view from another with whatever
// rate is current at read time is how phantom gains are made; consumers must
// use the stored projection and fall back to live conversion only when the
// projection was never captured.
type MCValue struct {
	amount Money
	usd    decimal.Decimal
	ils    decimal.Decimal
	hasUSD bool
	hasILS bool
}

// NewMCValue wraps an amount with no captured projections.
func NewMCValue(m Money) MCValue {
	return MCValue{amount: m}
}

// ZeroMCValue is a zero amount with zero projections captured: the additive
// identity for Add, so an accumulator seeded with it keeps the projections of
// whatever it sums.
func ZeroMCValue(cur Currency) MCValue {
	return MCValue{amount: M(0, cur), hasUSD: true, hasILS: true}
}

// CaptureValue wraps an amount and captures its USD and ILS projections from
// the given rate set. A projection whose rate is unavailable is simply not
// captured; consumers fall back to live conversion for it.
func CaptureValue(m Money, set RateSet) MCValue {
	v := MCValue{amount: m}
	if usd, err := Convert(m.value, m.cur, USD, set); err == nil {
		v.usd, v.hasUSD = usd, true
	}
	if ils, err := Convert(m.value, m.cur, ILS, set); err == nil {
		v.ils, v.hasILS = ils, true
	}
	return v
}

// WithUSD returns a copy with the USD projection overridden by an
// authoritative value (e.g. a pre-resolved historical conversion supplied by
// the data-loading layer).
func (v MCValue) WithUSD(usd decimal.Decimal) MCValue {
	v.usd, v.hasUSD = usd, true
	return v
}

// WithILS returns a copy with the ILS projection overridden.
func (v MCValue) WithILS(ils decimal.Decimal) MCValue {
	v.ils, v.hasILS = ils, true
	return v
}

// Amount returns the face amount.
func (v MCValue) Amount() Money { return v.amount }

// USD returns the captured USD projection.
func (v MCValue) USD() (Money, bool) { return M(v.usd, USD), v.hasUSD }

// ILS returns the captured ILS projection.
func (v MCValue) ILS() (Money, bool) { return M(v.ils, ILS), v.hasILS }

func (v MCValue) IsZero() bool { return v.amount.IsZero() }

// Add combines two values. A projection survives only when both operands
// captured it; mixing a captured with an uncaptured projection would silently
// reintroduce the reconversion it exists to prevent.
func (v MCValue) Add(o MCValue) MCValue {
	out := MCValue{amount: v.amount.Add(o.amount)}
	if v.hasUSD && o.hasUSD {
		out.usd, out.hasUSD = v.usd.Add(o.usd), true
	}
	if v.hasILS && o.hasILS {
		out.ils, out.hasILS = v.ils.Add(o.ils), true
	}
	return out
}

// Sub subtracts, with the same projection survival rule as Add.
func (v MCValue) Sub(o MCValue) MCValue {
	return v.Add(o.Neg())
}

// Neg negates the amount and every captured projection.
func (v MCValue) Neg() MCValue {
	v.amount = v.amount.Neg()
	v.usd = v.usd.Neg()
	v.ils = v.ils.Neg()
	return v
}

// Scale multiplies the amount AND every captured projection by the same
// ratio. This is the invariant lot splitting relies on: a sold chunk carries
// portion/originalQty of every nested currency view, never a reconverted one.
func (v MCValue) Scale(ratio Quantity) MCValue {
	v.amount = v.amount.Mul(ratio)
	v.usd = v.usd.Mul(ratio.value)
	v.ils = v.ils.Mul(ratio.value)
	return v
}

// projection returns the stored view of the value in cur, when captured.
func (v MCValue) projection(cur Currency) (decimal.Decimal, bool) {
	switch cur {
	case USD:
		return v.usd, v.hasUSD
	case ILS:
		return v.ils, v.hasILS
	case ILA:
		if v.hasILS {
			return v.ils.Mul(hundred), true
		}
	}
	return decimal.Zero, false
}

// In expresses the value in the requested currency, preferring the stored
// projection and converting the face amount only as a last resort.
func (v MCValue) In(cur Currency, set RateSet) (Money, error) {
	if cur == v.amount.cur {
		return v.amount, nil
	}
	if p, ok := v.projection(cur); ok {
		return Money{value: p, cur: cur}, nil
	}
	return ConvertMoney(v.amount, cur, set)
}

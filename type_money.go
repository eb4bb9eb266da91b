package taxfolio

import (
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value in a single currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   Currency
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency Currency) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// currency returns the money's go-money currency metadata (never nil).
func (m Money) currency() money.Currency {
	return *money.New(0, string(m.cur)).Currency()
}

// String returns the string representation of the money value.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() Currency               { return m.cur }
func (m Money) Amount() decimal.Decimal          { return m.value }
func (m Money) Equal(n Money) bool               { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                     { return m.value.IsZero() }
func (m Money) IsPositive() bool                 { return m.value.IsPositive() }
func (m Money) IsNegative() bool                 { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool            { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool     { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool         { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool  { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                       { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Mul(n Quantity) Money             { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) Div(n Quantity) Money             { return Money{value: m.value.Div(n.value), cur: m.cur} }
func (m Money) DivPrice(n Money) Quantity        { return Quantity{value: m.value.Div(n.value)} }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// MinMoney returns the smaller of two same-currency amounts.
func MinMoney(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return Money{value: b.value, cur: cur(a, b)}
}

// FloorZero clamps a negative amount to zero, keeping the currency.
func (m Money) FloorZero() Money {
	if m.IsNegative() {
		return Money{cur: m.cur}
	}
	return m
}

// makes the "" currency totally weak.
func cur(a, b Money) Currency {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + " != " + b.cur)
	}
	return a.cur
}

// AsFloat loses precision; only display-layer callers should use it.
func (m Money) AsFloat() float64 { return m.value.InexactFloat64() }

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", string(m.cur))
	w.Append("amount", m.value.Round(int32(m.currency().Fraction)))
	return w.MarshalJSON()
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var temp struct {
		Currency string          `json:"currency"`
		Amount   decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	m.value = temp.Amount
	if temp.Currency == "" {
		m.cur = ""
		return nil
	}
	c, err := NormalizeCurrency(temp.Currency)
	if err != nil {
		return fmt.Errorf("invalid money: %w", err)
	}
	m.cur = c
	return nil
}

package taxfolio

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is one of the closed set of currencies the engine understands.
// ILA (agorot) is the minor unit of the shekel: it is never a rate-table key,
// it is ILS scaled by 100.
type Currency string

const (
	USD Currency = "USD"
	ILS Currency = "ILS"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	ILA Currency = "ILA"
)

// CurrentRates is the rate-set key holding the latest known rates.
const CurrentRates = "current"

var (
	// ErrUnknownCurrency is returned by NormalizeCurrency for input it cannot
	// map; callers at the ingestion boundary decide whether to default or fail.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrRateUnavailable is returned by Convert when the rate table has no
	// usable rate for a requested currency. It lets callers distinguish a
	// genuine zero from a failed conversion.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
)

func init() {
	// Agorot are not an ISO currency; register them so Money formatting works.
	money.AddCurrency(string(ILA), "ag", "1 $", ".", ",", 0)
}

// currencyAliases maps every accepted spelling (symbols, Hebrew names, ISO
// variants) to its canonical currency.
var currencyAliases = map[string]Currency{
	"USD": USD, "US$": USD, "$": USD, "דולר": USD,
	"ILS": ILS, "NIS": ILS, "₪": ILS, "שקל": ILS, "ש\"ח": ILS,
	"ILA": ILA, "AGOROT": ILA, "אגורות": ILA,
	"EUR": EUR, "€": EUR, "יורו": EUR, "אירו": EUR,
	"GBP": GBP, "£": GBP,
}

// NormalizeCurrency maps a free-form currency designation to a canonical
// Currency. Unrecognized input returns ErrUnknownCurrency.
func NormalizeCurrency(input string) (Currency, error) {
	key := strings.ToUpper(strings.TrimSpace(input))
	if cur, ok := currencyAliases[key]; ok {
		return cur, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, input)
}

// RateSet maps a currency to its rate against the USD pivot: the number of
// units of that currency worth 1 USD. The USD rate is always 1.
type RateSet map[Currency]decimal.Decimal

// ExchangeRates is a time-keyed table of rate sets. Keys are either
// CurrentRates or an ISO date string for a historical set.
type ExchangeRates map[string]RateSet

// Current returns the latest known rate set.
func (r ExchangeRates) Current() RateSet {
	return r[CurrentRates]
}

// On returns the rate set effective for a historical date. When no exact
// date entry exists it falls back to the current set and reports false: the
// fallback is deliberate and visible, not a nearest-date search.
func (r ExchangeRates) On(on Date) (RateSet, bool) {
	if set, ok := r[on.String()]; ok {
		return set, true
	}
	return r.Current(), false
}

var hundred = decimal.NewFromInt(100)

// Convert converts an amount between two currencies. Same-currency
// conversions are the identity, ILA and ILS convert by the fixed factor of
// 100 without consulting the rate table, and everything else pivots through
// USD. A missing or zero rate returns ErrRateUnavailable.
func Convert(amount decimal.Decimal, from, to Currency, set RateSet) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	// Agorot are a fixed minor unit of the shekel.
	if from == ILA {
		return Convert(amount.Div(hundred), ILS, to, set)
	}
	if to == ILA {
		v, err := Convert(amount, from, ILS, set)
		if err != nil {
			return decimal.Zero, err
		}
		return v.Mul(hundred), nil
	}

	fromRate, err := usdRate(from, set)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := usdRate(to, set)
	if err != nil {
		return decimal.Zero, err
	}
	usd := amount.Div(fromRate)
	return usd.Mul(toRate), nil
}

func usdRate(cur Currency, set RateSet) (decimal.Decimal, error) {
	if cur == USD {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := set[cur]
	if !ok || rate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: no %s rate in set", ErrRateUnavailable, cur)
	}
	return rate, nil
}

// ConvertMoney converts a Money value into the target currency.
func ConvertMoney(m Money, to Currency, set RateSet) (Money, error) {
	v, err := Convert(m.value, m.cur, to, set)
	if err != nil {
		return M(0, to), err
	}
	return Money{value: v, cur: to}, nil
}

// ConvertMoneyOrZero is the total-function variant used on aggregation paths
// where a single bad input must degrade one figure, not abort the whole
// snapshot. A failed conversion is logged and contributes zero.
func ConvertMoneyOrZero(m Money, to Currency, set RateSet) Money {
	v, err := ConvertMoney(m, to, set)
	if err != nil {
		log.Printf("cannot convert %s to %s: %v", m, to, err)
		return M(0, to)
	}
	return v
}

package taxfolio

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FeeInterval is how often a percentage-based management fee is charged.
type FeeInterval int

const (
	Monthly FeeInterval = iota
	Quarterly
	Yearly
)

// PeriodsPerYear returns how many charges a year carries for the interval.
func (f FeeInterval) PeriodsPerYear() int {
	switch f {
	case Monthly:
		return 12
	case Quarterly:
		return 4
	case Yearly:
		return 1
	default:
		panic("unknown fee interval")
	}
}

// Months returns the interval length in months.
func (f FeeInterval) Months() int { return 12 / f.PeriodsPerYear() }

func (f FeeInterval) String() string {
	switch f {
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		return "unknown"
	}
}

// ParseFeeInterval parses a string into a FeeInterval.
func ParseFeeInterval(s string) (FeeInterval, error) {
	switch s {
	case "monthly":
		return Monthly, nil
	case "quarterly":
		return Quarterly, nil
	case "yearly":
		return Yearly, nil
	default:
		return 0, fmt.Errorf("unknown fee interval: %q", s)
	}
}

func (f FeeInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *FeeInterval) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseFeeInterval(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ReinvestPolicy decides how the reinvested (unvested) portion of a dividend
// is taxed.
type ReinvestPolicy int

const (
	// CashTaxed taxes the cashed and reinvested portions alike.
	CashTaxed ReinvestPolicy = iota
	// AccumulateTaxFree exempts the reinvested portion.
	AccumulateTaxFree
	// HybridRSU exempts the reinvested portion the way RSU grant accounts do.
	HybridRSU
)

func (p ReinvestPolicy) String() string {
	switch p {
	case CashTaxed:
		return "cash-taxed"
	case AccumulateTaxFree:
		return "accumulate-tax-free"
	case HybridRSU:
		return "hybrid-rsu"
	default:
		return "unknown"
	}
}

// ParseReinvestPolicy parses a string into a ReinvestPolicy.
func ParseReinvestPolicy(s string) (ReinvestPolicy, error) {
	switch s {
	case "cash-taxed":
		return CashTaxed, nil
	case "accumulate-tax-free":
		return AccumulateTaxFree, nil
	case "hybrid-rsu":
		return HybridRSU, nil
	default:
		return 0, fmt.Errorf("unknown reinvest policy: %q", s)
	}
}

func (p ReinvestPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *ReinvestPolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseReinvestPolicy(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// exemptsReinvested reports whether the reinvested dividend portion escapes tax.
func (p ReinvestPolicy) exemptsReinvested() bool {
	return p == AccumulateTaxFree || p == HybridRSU
}

// FeeRecord is one effective-dated entry of a portfolio's fee and tax-rate
// schedule. Lookups select the record in force on a given date; rates are
// never assumed constant over a portfolio's life.
type FeeRecord struct {
	EffectiveFrom Date `json:"effectiveFrom"`
	// AnnualFeeRate is the percentage-based management fee per year
	// (0.005 = 0.5%/y). Zero means no recurring fee.
	AnnualFeeRate float64     `json:"annualFeeRate,omitempty"`
	FeeInterval   FeeInterval `json:"feeInterval,omitempty"`
	// DividendCommissionRate is withheld from gross dividends.
	DividendCommissionRate float64 `json:"dividendCommissionRate,omitempty"`
	// CapitalGainsRate and IncomeTaxRate are the tax rates in force.
	CapitalGainsRate float64 `json:"capitalGainsRate"`
	IncomeTaxRate    float64 `json:"incomeTaxRate,omitempty"`
}

// Portfolio is the immutable configuration of one account: its display
// currency, tax regime, and the dated history of its fee and tax rates. It is
// loaded once per engine construction and never mutated during a run.
type Portfolio struct {
	ID             string         `json:"id"`
	Name           string         `json:"name,omitempty"`
	Currency       Currency       `json:"currency"`
	TaxPolicy      TaxPolicy      `json:"taxPolicy"`
	DividendPolicy ReinvestPolicy `json:"dividendPolicy,omitempty"`
	// TaxOnBase makes the entire market value, not the gain, the taxable
	// base (wealth-tax-style holdings).
	TaxOnBase bool `json:"taxOnBase,omitempty"`
	// History holds the fee/tax-rate records, each effective from its date.
	History []FeeRecord `json:"history"`
}

// RecordAt returns the fee/tax record in force on a date: the latest record
// whose effective date is not after it. Dates before the whole history get
// the earliest record, so early transactions are never taxed at zero by
// accident.
func (p *Portfolio) RecordAt(on Date) FeeRecord {
	if len(p.History) == 0 {
		return FeeRecord{}
	}
	sorted := make([]FeeRecord, len(p.History))
	copy(sorted, p.History)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})
	rec := sorted[0]
	for _, r := range sorted[1:] {
		if r.EffectiveFrom.After(on) {
			break
		}
		rec = r
	}
	return rec
}

// CapitalGainsRateAt returns the capital-gains rate in force on a date.
func (p *Portfolio) CapitalGainsRateAt(on Date) float64 {
	return p.RecordAt(on).CapitalGainsRate
}

// IncomeTaxRateAt returns the income-tax rate in force on a date.
func (p *Portfolio) IncomeTaxRateAt(on Date) float64 {
	return p.RecordAt(on).IncomeTaxRate
}

// DividendCommissionAt returns the dividend commission rate in force on a date.
func (p *Portfolio) DividendCommissionAt(on Date) float64 {
	return p.RecordAt(on).DividendCommissionRate
}

// domestic reports whether an instrument currency counts as domestic for this
// portfolio; the agorot/shekel pair is one currency for tax purposes.
func (p *Portfolio) domestic(stock Currency) bool {
	if stock == p.Currency {
		return true
	}
	shekels := func(c Currency) bool { return c == ILS || c == ILA }
	return shekels(stock) && shekels(p.Currency)
}

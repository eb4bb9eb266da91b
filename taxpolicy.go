package taxfolio

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxPolicy selects the tax regime applied to a portfolio's gains. The set is
// closed: the gain computation switches over it exhaustively, so a new policy
// is a compile-time change, not a silently-unhandled string.
type TaxPolicy int

const (
	// TaxFree portfolios owe no tax on gains or dividends.
	TaxFree TaxPolicy = iota
	// RealGain is the standard regime: domestic gains are inflation-adjusted,
	// foreign gains follow the never-lose nominal/real composition rule.
	RealGain
	// NominalGain taxes the gain measured strictly in the instrument's own
	// currency; FX movement against the portfolio currency is ignored.
	NominalGain
	// RSUAccount behaves like RealGain for capital gains and additionally
	// levies income tax on the cost basis of each sold portion.
	RSUAccount
	// Pension accounts defer all taxation past the engine's horizon; current
	// liability is zero, like TaxFree, but the distinction is kept for
	// reporting.
	Pension
)

func (p TaxPolicy) String() string {
	switch p {
	case TaxFree:
		return "tax-free"
	case RealGain:
		return "real-gain"
	case NominalGain:
		return "nominal-gain"
	case RSUAccount:
		return "rsu-account"
	case Pension:
		return "pension"
	default:
		return "unknown"
	}
}

// ParseTaxPolicy parses a string into a TaxPolicy.
func ParseTaxPolicy(s string) (TaxPolicy, error) {
	switch s {
	case "tax-free":
		return TaxFree, nil
	case "real-gain":
		return RealGain, nil
	case "nominal-gain":
		return NominalGain, nil
	case "rsu-account":
		return RSUAccount, nil
	case "pension":
		return Pension, nil
	default:
		return 0, fmt.Errorf("unknown tax policy: %q", s)
	}
}

func (p TaxPolicy) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", p.String())), nil
}

func (p *TaxPolicy) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseTaxPolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// GainBasis is everything a policy needs to derive the taxable portion of one
// gain, realized or mark-to-market. All amounts are in the portfolio
// currency.
type GainBasis struct {
	// Nominal is the raw portfolio-currency gain, FX drift included.
	Nominal Money
	// OwnCurrency is the gain measured in the instrument's own currency,
	// converted to the portfolio currency at evaluation time.
	OwnCurrency Money
	// Cost is the cost basis of the evaluated portion.
	Cost Money
	// Domestic is true when the instrument trades in the portfolio currency
	// (the agorot/shekel pair counts as domestic).
	Domestic bool
	// CPIStart and CPIEnd bracket the holding period for domestic inflation
	// adjustment.
	CPIStart, CPIEnd decimal.Decimal
}

// inflationAdjustment is the amount by which inflation erodes a domestic cost
// basis: cost x (cpiEnd/cpiStart - 1), floored at zero. Deflation never
// increases taxable gain beyond nominal.
func inflationAdjustment(cost Money, cpiStart, cpiEnd decimal.Decimal) Money {
	if cpiStart.IsZero() {
		return M(0, cost.cur)
	}
	ratio := cpiEnd.Div(cpiStart).Sub(decimal.NewFromInt(1))
	if ratio.IsNegative() {
		return M(0, cost.cur)
	}
	return cost.Mul(Q(ratio))
}

// composeTaxable applies the never-lose rule to a nominal and a real reading
// of the same gain: same sign takes the smaller magnitude interpretation,
// mixed signs are tax-neutral, and losses are always the nominal loss.
func composeTaxable(nominal, real Money) Money {
	switch {
	case !nominal.IsNegative() && !real.IsNegative():
		return MinMoney(nominal, real)
	case nominal.IsNegative() && real.IsNegative():
		return nominal
	default:
		return M(0, cur(nominal, real))
	}
}

// TaxableGain derives the taxable portion of a gain under a policy. It is
// applied identically to completed sales and to mark-to-market valuations of
// vested lots.
func TaxableGain(policy TaxPolicy, b GainBasis) Money {
	switch policy {
	case TaxFree, Pension:
		return M(0, b.Nominal.cur)
	case NominalGain:
		return b.OwnCurrency
	case RealGain, RSUAccount:
		if b.Domestic {
			return b.Nominal.Sub(inflationAdjustment(b.Cost, b.CPIStart, b.CPIEnd))
		}
		return composeTaxable(b.Nominal, b.OwnCurrency)
	default:
		panic("unknown tax policy")
	}
}

// IncomeTax is the additional levy RSU accounts owe on the grant value of a
// sold portion. Other policies never owe it, even with a non-zero rate
// configured.
func IncomeTax(policy TaxPolicy, costOfSold Money, rate float64) Money {
	if policy != RSUAccount || rate == 0 {
		return M(0, costOfSold.cur)
	}
	return costOfSold.Mul(Q(rate))
}

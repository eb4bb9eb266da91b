package taxfolio

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// TxType identifies what a transaction does to a holding. The set is closed
// and matched exhaustively by the event pipeline.
type TxType int

const (
	TxBuy TxType = iota + 1
	TxSell
	TxDividend
	TxFee
)

func (t TxType) String() string {
	switch t {
	case TxBuy:
		return "buy"
	case TxSell:
		return "sell"
	case TxDividend:
		return "dividend"
	case TxFee:
		return "fee"
	default:
		return "unknown"
	}
}

// ParseTxType parses a string into a TxType.
func ParseTxType(s string) (TxType, error) {
	switch s {
	case "buy":
		return TxBuy, nil
	case "sell":
		return TxSell, nil
	case "dividend":
		return TxDividend, nil
	case "fee":
		return TxFee, nil
	default:
		return 0, fmt.Errorf("unknown transaction type: %q", s)
	}
}

func (t TxType) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

func (t *TxType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTxType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Transaction is one immutable event in a holding's history. The price is
// per-unit in the transaction currency. OriginalPriceUSD and
// OriginalPriceILA, when present, are authoritative historical conversions
// supplied by the data-loading layer; the engine prefers them over
// re-deriving values from possibly-stale current rates.
type Transaction struct {
	Date        Date            `json:"date"`
	PortfolioID string          `json:"portfolioId"`
	Ticker      string          `json:"ticker"`
	Exchange    string          `json:"exchange,omitempty"`
	Type        TxType          `json:"type"`
	Quantity    Quantity        `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Currency    Currency        `json:"currency"`
	VestDate    Date            `json:"vestDate,omitzero"`
	Commission  decimal.Decimal `json:"commission,omitempty"`

	// Pre-resolved per-unit historical conversions; ILA is in agorot.
	OriginalPriceUSD decimal.Decimal `json:"originalPriceUSD,omitempty"`
	OriginalPriceILA decimal.Decimal `json:"originalPriceILA,omitempty"`
}

// Key returns the holding key this transaction belongs to.
func (t Transaction) Key() string {
	return holdingKey(t.PortfolioID, t.Ticker)
}

// PriceMoney returns the per-unit price as Money in the transaction currency.
func (t Transaction) PriceMoney() Money {
	return M(t.Price, t.Currency)
}

// CommissionMoney returns the transaction-level commission as Money.
func (t Transaction) CommissionMoney() Money {
	return M(t.Commission, t.Currency)
}

// DividendEvent is a per-unit dividend distribution announced for an
// instrument. It is not tied to a portfolio: the pipeline fans it out to
// every holding of the instrument with a positive quantity at the ex-date.
type DividendEvent struct {
	Ticker   string          `json:"ticker"`
	Exchange string          `json:"exchange,omitempty"`
	Date     Date            `json:"date"`
	Amount   decimal.Decimal `json:"amount"` // per unit, in the instrument currency
	Currency Currency        `json:"currency"`
	Source   string          `json:"source,omitempty"`
}

// LivePrice is a current market quote injected between ProcessEvents and
// CalculateSnapshot.
type LivePrice struct {
	Price     decimal.Decimal `json:"price"`
	Currency  Currency        `json:"currency"`
	DayChange Percent         `json:"dayChange"`
}

// PriceKey builds the "EXCHANGE:TICKER" key used by live-price and
// classification maps.
func PriceKey(exchange, ticker string) string {
	return exchange + ":" + ticker
}

// SecurityClass carries collaborator-supplied instrument classification. It
// is passed into the engine explicitly, never read from package state.
type SecurityClass struct {
	REIT bool `json:"reit,omitempty"`
}

// PriceProvider supplies a historical per-unit price in the instrument's own
// currency, or reports that none is known.
type PriceProvider func(ticker, exchange string, on Date) (decimal.Decimal, bool)

func holdingKey(portfolioID, ticker string) string {
	return portfolioID + "_" + ticker
}

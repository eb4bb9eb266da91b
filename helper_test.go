package taxfolio

import (
	"github.com/shopspring/decimal"
)

func usd(v float64) Money { return M(v, USD) }
func ils(v float64) Money { return M(v, ILS) }
func eur(v float64) Money { return M(v, EUR) }

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func dt(s string) Date { return MustParseDate(s) }

// testRates is the fixture rate table: 3.5 ILS and 0.9 EUR per USD today,
// and one historical set where the shekel was weaker.
func testRates() ExchangeRates {
	return ExchangeRates{
		CurrentRates: RateSet{ILS: dec(3.5), EUR: dec(0.9), GBP: dec(0.8)},
		"2024-01-15": RateSet{ILS: dec(4.0), EUR: dec(0.95)},
	}
}

func testPortfolio(policy TaxPolicy) *Portfolio {
	return &Portfolio{
		ID:        "main",
		Name:      "Main",
		Currency:  USD,
		TaxPolicy: policy,
		History: []FeeRecord{{
			EffectiveFrom:          dt("2020-01-01"),
			CapitalGainsRate:       0.25,
			IncomeTaxRate:          0.47,
			DividendCommissionRate: 0.04,
		}},
	}
}

func buy(on string, qty, price float64) Transaction {
	return Transaction{
		Date:        dt(on),
		PortfolioID: "main",
		Ticker:      "AAPL",
		Type:        TxBuy,
		Quantity:    Q(qty),
		Price:       dec(price),
		Currency:    USD,
	}
}

func sell(on string, qty, price float64) Transaction {
	tx := buy(on, qty, price)
	tx.Type = TxSell
	return tx
}

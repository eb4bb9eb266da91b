package taxfolio

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lot is a discrete batch of units acquired in one buy transaction, tracked
// separately for FIFO cost-basis purposes. Monetary fields are MCValues whose
// USD/ILS projections were captured at transaction time; once sold, a lot is
// immutable except for pro-rata splitting.
type Lot struct {
	ID       uuid.UUID
	BuyDate  Date
	Quantity Quantity

	// Cost fields are in the portfolio currency, with projections.
	CostPerUnit MCValue
	Cost        MCValue
	BuyFee      MCValue

	CPIAtBuy decimal.Decimal

	VestDate Date
	Vested   bool

	// Set when the lot (or this split chunk of it) is sold.
	SoldDate          Date
	SellFee           MCValue
	Proceeds          MCValue
	RealizedGain      Money
	RealizedTaxable   Money
	RealizedTax       Money
	RealizedIncomeTax Money
}

// Active reports whether the lot still holds units: no sold date and a
// positive quantity.
func (l *Lot) Active() bool {
	return l.SoldDate.IsZero() && l.Quantity.IsPositive()
}

// Sold reports whether the lot records a completed sale.
func (l *Lot) Sold() bool {
	return !l.SoldDate.IsZero()
}

// vestedOn reports whether the lot is vested as of a date.
func (l *Lot) vestedOn(on Date) bool {
	return l.VestDate.IsZero() || !l.VestDate.After(on)
}

// split carves a chunk of `portion` units out of the lot for a partial sell.
// Every nested monetary field of the chunk is portion/quantity of the
// original, and the original is decremented by exactly the same scaled
// amounts: quantities and all currency projections stay internally
// consistent, and nothing is ever recomputed through a fresh currency
// conversion.
func (l *Lot) split(portion Quantity) *Lot {
	ratio := portion.Div(l.Quantity)
	chunk := &Lot{
		ID:          uuid.New(),
		BuyDate:     l.BuyDate,
		Quantity:    portion,
		CostPerUnit: l.CostPerUnit,
		Cost:        l.Cost.Scale(ratio),
		BuyFee:      l.BuyFee.Scale(ratio),
		CPIAtBuy:    l.CPIAtBuy,
		VestDate:    l.VestDate,
		Vested:      l.Vested,
	}
	l.Quantity = l.Quantity.Sub(portion)
	l.Cost = l.Cost.Sub(chunk.Cost)
	l.BuyFee = l.BuyFee.Sub(chunk.BuyFee)
	return chunk
}

// sortLotsFIFO orders lots ascending by buy date; ties keep insertion order
// so same-day buys are consumed in the order they were applied.
func sortLotsFIFO(lots []*Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		return lots[i].BuyDate.Before(lots[j].BuyDate)
	})
}

package taxfolio

import (
	"log"
	"sort"
)

// Engine folds transaction and dividend histories into per-holding state and
// recomputes derived figures on demand. It performs no I/O: rate tables, CPI
// series, and live prices are injected by the caller.
type Engine struct {
	portfolios   map[string]*Portfolio
	order        []string // portfolio iteration order, as given
	holdings     map[string]*Holding
	holdingOrder []string

	rates   ExchangeRates
	cpi     *CPISeries
	classes map[string]SecurityClass
	now     Date
}

// Option customizes a new Engine.
type Option func(*Engine)

// WithNow fixes the evaluation date. The default is today.
func WithNow(on Date) Option {
	return func(e *Engine) { e.now = on }
}

// WithClassifications supplies per-ticker security classes, keyed by
// PriceKey(exchange, ticker).
func WithClassifications(classes map[string]SecurityClass) Option {
	return func(e *Engine) { e.classes = classes }
}

// New builds an engine over the given portfolios. Rate and CPI tables may be
// empty; conversions then degrade per ConvertMoneyOrZero and inflation
// adjustments are neutral.
func New(portfolios []*Portfolio, rates ExchangeRates, cpi *CPISeries, opts ...Option) *Engine {
	e := &Engine{
		portfolios: make(map[string]*Portfolio, len(portfolios)),
		holdings:   make(map[string]*Holding),
		rates:      rates,
		cpi:        cpi,
		now:        Today(),
	}
	if e.cpi == nil {
		e.cpi = FlatCPI()
	}
	for _, p := range portfolios {
		if _, dup := e.portfolios[p.ID]; dup {
			log.Printf("engine: duplicate portfolio id %q, keeping the first", p.ID)
			continue
		}
		e.portfolios[p.ID] = p
		e.order = append(e.order, p.ID)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's evaluation date.
func (e *Engine) Now() Date { return e.now }

// Portfolio returns a portfolio by id.
func (e *Engine) Portfolio(id string) (*Portfolio, bool) {
	p, ok := e.portfolios[id]
	return p, ok
}

// Portfolios returns the portfolios in their original order.
func (e *Engine) Portfolios() []*Portfolio {
	out := make([]*Portfolio, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.portfolios[id])
	}
	return out
}

// Holdings returns every holding, grouped by portfolio order and, within a
// portfolio, by first appearance in the transaction history.
func (e *Engine) Holdings() []*Holding {
	out := make([]*Holding, 0, len(e.holdingOrder))
	for _, id := range e.order {
		for _, key := range e.holdingOrder {
			h := e.holdings[key]
			if h.PortfolioID == id {
				out = append(out, h)
			}
		}
	}
	return out
}

// HoldingsOf returns one portfolio's holdings.
func (e *Engine) HoldingsOf(portfolioID string) []*Holding {
	var out []*Holding
	for _, key := range e.holdingOrder {
		h := e.holdings[key]
		if h.PortfolioID == portfolioID {
			out = append(out, h)
		}
	}
	return out
}

// Holding returns the holding for a (portfolio, ticker) pair.
func (e *Engine) Holding(portfolioID, ticker string) (*Holding, bool) {
	h, ok := e.holdings[holdingKey(portfolioID, ticker)]
	return h, ok
}

// ProcessEvents folds transactions and dividend events into holding state.
// Transactions are applied first, in date order (stable for same-day events,
// preserving input order), then dividends; a dividend's quantity is
// reconstructed by date-bounded replay, so it sees same-day buys either way.
// A transaction naming an unknown portfolio is logged and skipped, never
// fatal.
func (e *Engine) ProcessEvents(txns []Transaction, dividends []DividendEvent) {
	sorted := make([]Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, tx := range sorted {
		p, ok := e.portfolios[tx.PortfolioID]
		if !ok {
			log.Printf("engine: transaction %s names unknown portfolio %q, skipped", tx.Key(), tx.PortfolioID)
			continue
		}
		h := e.holdingFor(p, tx)
		switch tx.Type {
		case TxBuy:
			h.applyBuy(p, tx, e.rates, e.cpi, e.now)
		case TxSell:
			h.applySell(p, tx, e.rates, e.cpi)
		case TxFee:
			h.applyFee(p, tx, e.rates)
		case TxDividend:
			// Inline dividend transactions carry a per-unit amount, like
			// external dividend events.
			h.applyDividend(p, tx.Date, tx.PriceMoney(), "transaction", e.classOf(h), e.rates)
		default:
			log.Printf("engine: transaction %s has unknown type, skipped", tx.Key())
		}
	}

	sortedDivs := make([]DividendEvent, len(dividends))
	copy(sortedDivs, dividends)
	sort.SliceStable(sortedDivs, func(i, j int) bool { return sortedDivs[i].Date.Before(sortedDivs[j].Date) })

	for _, ev := range sortedDivs {
		e.fanOutDividend(ev)
	}
}

// fanOutDividend applies one dividend event to every holding of the ticker,
// across all portfolios. Holdings with no position at the ex-date ignore it.
func (e *Engine) fanOutDividend(ev DividendEvent) {
	matched := false
	for _, key := range e.holdingOrder {
		h := e.holdings[key]
		if h.Ticker != ev.Ticker {
			continue
		}
		if ev.Exchange != "" && h.Exchange != "" && h.Exchange != ev.Exchange {
			continue
		}
		cur := ev.Currency
		if cur == "" {
			// A bare per-unit amount is quoted in the instrument's currency.
			cur = h.StockCurrency
		}
		p := e.portfolios[h.PortfolioID]
		h.applyDividend(p, ev.Date, M(ev.Amount, cur), ev.Source, e.classOf(h), e.rates)
		matched = true
	}
	if !matched {
		log.Printf("engine: dividend for %s on %s matches no holding", ev.Ticker, ev.Date)
	}
}

func (e *Engine) holdingFor(p *Portfolio, tx Transaction) *Holding {
	key := holdingKey(p.ID, tx.Ticker)
	if h, ok := e.holdings[key]; ok {
		if h.Exchange == "" && tx.Exchange != "" {
			h.Exchange = tx.Exchange
		}
		return h
	}
	h := newHolding(p, tx.Ticker, tx.Exchange, tx.Currency)
	e.holdings[key] = h
	e.holdingOrder = append(e.holdingOrder, key)
	return h
}

func (e *Engine) classOf(h *Holding) SecurityClass {
	if e.classes == nil {
		return SecurityClass{}
	}
	return e.classes[PriceKey(h.Exchange, h.Ticker)]
}

// HydrateLivePrices injects current quotes, keyed by PriceKey. It changes no
// derived figure by itself; call CalculateSnapshots afterwards.
func (e *Engine) HydrateLivePrices(prices map[string]LivePrice) {
	for _, key := range e.holdingOrder {
		h := e.holdings[key]
		lp, ok := prices[PriceKey(h.Exchange, h.Ticker)]
		if !ok {
			continue
		}
		h.Price = M(lp.Price, lp.Currency)
		h.DayChange = lp.DayChange
	}
}

// CalculateSnapshots recomputes every holding's derived fields. Idempotent.
func (e *Engine) CalculateSnapshots() {
	for _, key := range e.holdingOrder {
		h := e.holdings[key]
		h.CalculateSnapshot(e.portfolios[h.PortfolioID], e.rates, e.cpi, e.now)
	}
}

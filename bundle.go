package taxfolio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// A bundle is a directory of plain JSON/JSONL files holding everything one
// engine run consumes. The layout is human-readable and git-friendly; event
// streams are JSONL, one event per line, so diffs stay line-per-event.
const (
	portfoliosFilename   = "portfolios.json"
	transactionsFilename = "transactions.jsonl"
	dividendsFilename    = "dividends.jsonl"
	ratesFilename        = "rates.json"
	cpiFilename          = "cpi.json"
	pricesFilename       = "prices.json"
	securitiesFilename   = "securities.json"
)

// Bundle is the loaded input set for an engine run.
type Bundle struct {
	Portfolios   []*Portfolio
	Transactions []Transaction
	Dividends    []DividendEvent
	Rates        ExchangeRates
	CPI          *CPISeries
	Prices       map[string]LivePrice
	Securities   map[string]SecurityClass
}

// LoadBundle reads a bundle directory. portfolios.json is required; every
// other file is optional and its absence loads as empty, degrading the
// corresponding figures rather than failing the run.
func LoadBundle(dir string) (*Bundle, error) {
	b := &Bundle{
		Rates:      make(ExchangeRates),
		CPI:        FlatCPI(),
		Prices:     make(map[string]LivePrice),
		Securities: make(map[string]SecurityClass),
	}

	if err := readJSONFile(filepath.Join(dir, portfoliosFilename), &b.Portfolios); err != nil {
		return nil, err
	}
	if len(b.Portfolios) == 0 {
		return nil, fmt.Errorf("bundle %q: no portfolios defined", dir)
	}

	if err := decodeJSONL(filepath.Join(dir, transactionsFilename), &b.Transactions); err != nil {
		return nil, err
	}
	if err := decodeJSONL(filepath.Join(dir, dividendsFilename), &b.Dividends); err != nil {
		return nil, err
	}

	if err := readOptionalJSONFile(filepath.Join(dir, ratesFilename), &b.Rates); err != nil {
		return nil, err
	}
	if err := readOptionalJSONFile(filepath.Join(dir, pricesFilename), &b.Prices); err != nil {
		return nil, err
	}
	if err := readOptionalJSONFile(filepath.Join(dir, securitiesFilename), &b.Securities); err != nil {
		return nil, err
	}

	var points []CPIPoint
	if err := readOptionalJSONFile(filepath.Join(dir, cpiFilename), &points); err != nil {
		return nil, err
	}
	if len(points) > 0 {
		b.CPI = NewCPISeries(points)
	}
	return b, nil
}

// NewEngine builds an engine over the bundle's data: events folded, recurring
// fees generated (cost-carried, since a bundle has no price history), live
// prices hydrated, and snapshots computed. Callers needing a historical price
// provider should drive New and the pipeline steps themselves.
func (b *Bundle) NewEngine(opts ...Option) *Engine {
	e := New(b.Portfolios, b.Rates, b.CPI, opts...)
	if e.classes == nil && len(b.Securities) > 0 {
		e.classes = b.Securities
	}
	e.ProcessEvents(b.Transactions, b.Dividends)
	e.GenerateRecurringFees(nil)
	e.HydrateLivePrices(b.Prices)
	e.CalculateSnapshots()
	return e
}

func readJSONFile(filename string, v any) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("cannot read %q: %w", filename, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("format error in %q: %w", filename, err)
	}
	return nil
}

func readOptionalJSONFile(filename string, v any) error {
	err := readJSONFile(filename, v)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// decodeJSONL reads a JSONL file into a slice, one element per non-empty
// line, reporting parse errors with the filename and line number. A missing
// file decodes as empty.
func decodeJSONL[T any](filename string, out *[]T) error {
	r, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open %q for reading: %w", filename, err)
	}
	defer r.Close()
	return decodeJSONLFrom(filename, r, out)
}

func decodeJSONLFrom[T any](filename string, r io.Reader, out *[]T) error {
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			return fmt.Errorf("parse error %s:%v: %w", filename, i, err)
		}
		*out = append(*out, v)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cannot read %q: %w", filename, err)
	}
	return nil
}

// ExtractRate pulls one numeric value out of an arbitrary provider JSON
// document with a JSONPath expression. Providers disagree on document shape;
// the path keeps that knowledge in configuration instead of code.
func ExtractRate(doc []byte, path string) (decimal.Decimal, error) {
	var jobj any
	if err := json.Unmarshal(doc, &jobj); err != nil {
		return decimal.Zero, fmt.Errorf("rate document is not valid json: %w", err)
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// jsonpath may return a single-element list for a filter expression;
	// keep the first answer if so.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Zero, fmt.Errorf("path %q: not a number: %v", path, jval)
	}
}

// ExtractRates builds a rate set from a provider document, one JSONPath per
// currency. A path that fails leaves that currency absent; the caller
// decides whether a partial set is acceptable.
func ExtractRates(doc []byte, paths map[Currency]string) (RateSet, error) {
	set := make(RateSet, len(paths)+1)
	set[USD] = decimal.NewFromInt(1)
	var firstErr error
	for cur, path := range paths {
		rate, err := ExtractRate(doc, path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		set[cur] = rate
	}
	return set, firstErr
}

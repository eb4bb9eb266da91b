package taxfolio

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrCPIChainBroken reports a missing linking point between two CPI base
// periods. It is intentionally fatal: silently mis-chaining a price index
// would corrupt every downstream real-gain calculation.
var ErrCPIChainBroken = errors.New("cpi chain broken")

// flatCPIValue is the neutral index level. A series pinned at this level
// yields a zero inflation adjustment, which the tax engine reads as
// "no adjustment" rather than an error.
var flatCPIValue = decimal.NewFromInt(100)

// CPIPoint is a single observation of the consumer price index.
type CPIPoint struct {
	Date  Date            `json:"date"`
	Value decimal.Decimal `json:"price"`
}

// CPISeries is a chronologically sorted consumer price index. Lookups between
// observations interpolate linearly; lookups outside the series clamp to the
// nearest end.
type CPISeries struct {
	points []CPIPoint
}

// NewCPISeries builds a series from observations in any order. Duplicate
// dates keep the last value given.
func NewCPISeries(points []CPIPoint) *CPISeries {
	byDate := make(map[Date]decimal.Decimal, len(points))
	for _, p := range points {
		byDate[p.Date] = p.Value
	}
	sorted := make([]CPIPoint, 0, len(byDate))
	for on, v := range byDate {
		sorted = append(sorted, CPIPoint{Date: on, Value: v})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return &CPISeries{points: sorted}
}

// FlatCPI returns the degraded-mode series: a constant index of 100, meaning
// no inflation adjustment anywhere.
func FlatCPI() *CPISeries {
	return &CPISeries{}
}

// Len returns the number of observations.
func (s *CPISeries) Len() int { return len(s.points) }

// At returns the index level on a date, interpolating linearly between the
// bracketing observations and clamping at both ends. An empty series is the
// flat index.
func (s *CPISeries) At(on Date) decimal.Decimal {
	if len(s.points) == 0 {
		return flatCPIValue
	}
	first, last := s.points[0], s.points[len(s.points)-1]
	if !on.After(first.Date) {
		return first.Value
	}
	if !on.Before(last.Date) {
		return last.Value
	}
	// on is strictly inside the series: find the bracketing pair.
	i := sort.Search(len(s.points), func(i int) bool { return !s.points[i].Date.Before(on) })
	hi := s.points[i]
	if hi.Date == on {
		return hi.Value
	}
	lo := s.points[i-1]
	span := decimal.NewFromInt(int64(lo.Date.DaysBetween(hi.Date)))
	elapsed := decimal.NewFromInt(int64(lo.Date.DaysBetween(on)))
	return lo.Value.Add(hi.Value.Sub(lo.Value).Mul(elapsed).Div(span))
}

// ChainSegments links CPI segments published against successive index bases
// into one continuous series. Each segment after the first must contain an
// observation on the previous segment's last date; that shared point fixes
// the rebasing factor. A missing link fails hard with ErrCPIChainBroken.
func ChainSegments(segments ...[]CPIPoint) (*CPISeries, error) {
	var chained []CPIPoint
	factor := decimal.NewFromInt(1)
	for i, seg := range segments {
		if len(seg) == 0 {
			return nil, fmt.Errorf("%w: segment %d is empty", ErrCPIChainBroken, i)
		}
		seg = append([]CPIPoint(nil), seg...)
		sort.Slice(seg, func(a, b int) bool { return seg[a].Date.Before(seg[b].Date) })

		if i > 0 {
			link := chained[len(chained)-1]
			linked := false
			for _, p := range seg {
				if p.Date == link.Date {
					if p.Value.IsZero() {
						return nil, fmt.Errorf("%w: zero value at linking point %s", ErrCPIChainBroken, p.Date)
					}
					factor = link.Value.Div(p.Value)
					linked = true
					break
				}
			}
			if !linked {
				return nil, fmt.Errorf("%w: segment %d has no observation on %s", ErrCPIChainBroken, i, link.Date)
			}
		}

		for _, p := range seg {
			if i > 0 && !p.Date.After(chained[len(chained)-1].Date) {
				continue // the linking point itself is already present
			}
			chained = append(chained, CPIPoint{Date: p.Date, Value: p.Value.Mul(factor)})
		}
	}
	return NewCPISeries(chained), nil
}

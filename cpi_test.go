package taxfolio

import (
	"errors"
	"testing"
)

func TestCPISeriesAt(t *testing.T) {
	s := NewCPISeries([]CPIPoint{
		{Date: dt("2024-01-01"), Value: dec(100)},
		{Date: dt("2024-01-11"), Value: dec(110)},
		{Date: dt("2024-02-10"), Value: dec(110)},
	})

	tests := []struct {
		name string
		on   string
		want float64
	}{
		{"exact point", "2024-01-01", 100},
		{"midpoint interpolation", "2024-01-06", 105},
		{"flat segment", "2024-01-20", 110},
		{"clamp before", "2023-06-01", 100},
		{"clamp after", "2024-06-01", 110},
	}
	for _, tt := range tests {
		if got := s.At(dt(tt.on)); !got.Equal(dec(tt.want)) {
			t.Errorf("%s: At(%s) = %s, want %v", tt.name, tt.on, got, tt.want)
		}
	}
}

func TestCPISeriesEmptyIsFlat(t *testing.T) {
	s := FlatCPI()
	if got := s.At(dt("2024-01-01")); !got.Equal(dec(100)) {
		t.Errorf("FlatCPI().At() = %s, want 100", got)
	}
}

func TestCPISeriesDuplicateDatesKeepLast(t *testing.T) {
	s := NewCPISeries([]CPIPoint{
		{Date: dt("2024-01-01"), Value: dec(100)},
		{Date: dt("2024-01-01"), Value: dec(102)},
	})
	if got := s.At(dt("2024-01-01")); !got.Equal(dec(102)) {
		t.Errorf("At() = %s, want 102", got)
	}
}

func TestChainSegments(t *testing.T) {
	// The second segment is published on a new base where the linking
	// observation reads 50; the factor of 2 rebases it onto the first.
	old := []CPIPoint{
		{Date: dt("2020-01-01"), Value: dec(90)},
		{Date: dt("2021-01-01"), Value: dec(100)},
	}
	rebased := []CPIPoint{
		{Date: dt("2021-01-01"), Value: dec(50)},
		{Date: dt("2022-01-01"), Value: dec(55)},
	}

	s, err := ChainSegments(old, rebased)
	if err != nil {
		t.Fatalf("ChainSegments() error = %v", err)
	}
	if got := s.At(dt("2022-01-01")); !got.Equal(dec(110)) {
		t.Errorf("At(2022-01-01) = %s, want 110", got)
	}
	if got := s.At(dt("2020-01-01")); !got.Equal(dec(90)) {
		t.Errorf("At(2020-01-01) = %s, want 90", got)
	}
}

func TestChainSegmentsBrokenLink(t *testing.T) {
	old := []CPIPoint{{Date: dt("2021-01-01"), Value: dec(100)}}
	disjoint := []CPIPoint{{Date: dt("2021-06-01"), Value: dec(50)}}

	if _, err := ChainSegments(old, disjoint); !errors.Is(err, ErrCPIChainBroken) {
		t.Errorf("ChainSegments() error = %v, want ErrCPIChainBroken", err)
	}
}

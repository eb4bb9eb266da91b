package taxfolio

import (
	"errors"
	"testing"
)

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  Currency
	}{
		{"USD", USD},
		{"usd", USD},
		{" $ ", USD},
		{"דולר", USD},
		{"NIS", ILS},
		{"₪", ILS},
		{"שקל", ILS},
		{"ש\"ח", ILS},
		{"agorot", ILA},
		{"אגורות", ILA},
		{"€", EUR},
		{"יורו", EUR},
		{"£", GBP},
	}
	for _, tt := range tests {
		got, err := NormalizeCurrency(tt.input)
		if err != nil {
			t.Errorf("NormalizeCurrency(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeCurrency(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}

	if _, err := NormalizeCurrency("DOGE"); !errors.Is(err, ErrUnknownCurrency) {
		t.Errorf("NormalizeCurrency(DOGE) error = %v, want ErrUnknownCurrency", err)
	}
}

func TestConvertPivotsThroughUSD(t *testing.T) {
	set := testRates().Current()

	// 90 EUR -> 100 USD -> 350 ILS.
	got, err := Convert(dec(90), EUR, ILS, set)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !got.Equal(dec(350)) {
		t.Errorf("Convert(90 EUR -> ILS) = %s, want 350", got)
	}
}

func TestConvertIdentity(t *testing.T) {
	got, err := Convert(dec(42), EUR, EUR, nil)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !got.Equal(dec(42)) {
		t.Errorf("Convert(42 EUR -> EUR) = %s, want 42", got)
	}
}

func TestConvertAgorotNeedsNoRateTable(t *testing.T) {
	// ILA <-> ILS is a fixed x100, even with an empty rate set.
	got, err := Convert(dec(250), ILA, ILS, nil)
	if err != nil {
		t.Fatalf("Convert(ILA -> ILS) error = %v", err)
	}
	if !got.Equal(dec(2.5)) {
		t.Errorf("Convert(250 ILA -> ILS) = %s, want 2.5", got)
	}

	got, err = Convert(dec(2.5), ILS, ILA, nil)
	if err != nil {
		t.Fatalf("Convert(ILS -> ILA) error = %v", err)
	}
	if !got.Equal(dec(250)) {
		t.Errorf("Convert(2.5 ILS -> ILA) = %s, want 250", got)
	}
}

func TestConvertAgorotThroughUSD(t *testing.T) {
	set := testRates().Current()

	// 100 USD -> 350 ILS -> 35000 ILA.
	got, err := Convert(dec(100), USD, ILA, set)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !got.Equal(dec(35000)) {
		t.Errorf("Convert(100 USD -> ILA) = %s, want 35000", got)
	}

	// Round trip back.
	back, err := Convert(got, ILA, USD, set)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !back.Equal(dec(100)) {
		t.Errorf("round trip = %s, want 100", back)
	}
}

func TestConvertMissingRate(t *testing.T) {
	set := RateSet{ILS: dec(3.5)}
	if _, err := Convert(dec(1), GBP, ILS, set); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("Convert with missing GBP rate: error = %v, want ErrRateUnavailable", err)
	}
	// A zero rate is as unusable as a missing one.
	set[GBP] = dec(0)
	if _, err := Convert(dec(1), GBP, ILS, set); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("Convert with zero GBP rate: error = %v, want ErrRateUnavailable", err)
	}
}

func TestConvertMoneyOrZeroDegrades(t *testing.T) {
	got := ConvertMoneyOrZero(M(10, GBP), ILS, RateSet{})
	if !got.IsZero() || got.Currency() != ILS {
		t.Errorf("ConvertMoneyOrZero = %s, want zero ILS", got)
	}
}

func TestExchangeRatesOn(t *testing.T) {
	rates := testRates()

	set, exact := rates.On(dt("2024-01-15"))
	if !exact {
		t.Error("On(2024-01-15) exact = false, want true")
	}
	if !set[ILS].Equal(dec(4.0)) {
		t.Errorf("On(2024-01-15)[ILS] = %s, want 4.0", set[ILS])
	}

	// No entry for this date: the current set stands in, visibly.
	set, exact = rates.On(dt("2024-01-16"))
	if exact {
		t.Error("On(2024-01-16) exact = true, want false")
	}
	if !set[ILS].Equal(dec(3.5)) {
		t.Errorf("On(2024-01-16)[ILS] = %s, want 3.5 (current)", set[ILS])
	}
}

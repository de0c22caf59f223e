package core

import (
	"math"
	"testing"
)

var sample = []RawRevenuePoint{
	{Timestamp: "2024-01-01T00:00:00Z", USD: 200, BTC: 0.01},
	{Timestamp: "2024-01-01T01:00:00Z", USD: 300, BTC: 0.015},
}

func TestDeriveUSD(t *testing.T) {
	series, total := Derive(sample, UnitUSD)
	if total != 500 {
		t.Fatalf("expected 500, got %v", total)
	}
	if len(series) != 2 || series[0].Value != 200 || series[1].Timestamp != "2024-01-01T01:00:00Z" {
		t.Fatalf("unexpected series %+v", series)
	}
}

func TestDeriveBTC(t *testing.T) {
	series, total := Derive(sample, UnitBTC)
	if math.Abs(total-0.025) > 1e-12 {
		t.Fatalf("expected ~0.025, got %v", total)
	}
	if series[1].Value != 0.015 {
		t.Fatalf("unexpected series %+v", series)
	}
}

func TestDeriveTotalMatchesSeries(t *testing.T) {
	for _, u := range []Unit{UnitUSD, UnitBTC} {
		series, total := Derive(sample, u)
		var sum float64
		for _, p := range series {
			sum += p.Value
		}
		if sum != total {
			t.Fatalf("%s: total %v does not match series sum %v", u, total, sum)
		}
	}
}

func TestDeriveEmpty(t *testing.T) {
	series, total := Derive(nil, UnitUSD)
	if len(series) != 0 || total != 0 {
		t.Fatalf("expected empty result, got %v %v", series, total)
	}
}

func TestDerivePropagatesNaN(t *testing.T) {
	raw := append([]RawRevenuePoint{}, sample...)
	raw = append(raw, RawRevenuePoint{Timestamp: "t3", USD: math.NaN()})
	_, total := Derive(raw, UnitUSD)
	if !math.IsNaN(total) {
		t.Fatalf("expected NaN total, got %v", total)
	}
	raw[0].BTC = math.Inf(1)
	_, total = Derive(raw, UnitBTC)
	if !math.IsInf(total, 1) {
		t.Fatalf("expected +Inf total, got %v", total)
	}
}

func TestUnitToggle(t *testing.T) {
	if UnitUSD.Toggle() != UnitBTC || UnitBTC.Toggle() != UnitUSD {
		t.Fatalf("toggle did not flip")
	}
	if UnitUSD.String() != "USD" || UnitBTC.String() != "BTC" {
		t.Fatalf("unexpected unit names")
	}
}

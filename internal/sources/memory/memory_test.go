package memory

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"asicrev/internal/core"
)

var anchor = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestMemoryStoreListDedupes(t *testing.T) {
	s := New([]core.ASIC{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "a", Name: "dup"}, {ID: " "}})
	asics, err := s.ListASICs(context.Background())
	if err != nil || len(asics) != 2 || asics[0].Name != "A" {
		t.Fatalf("unexpected list: %v err=%v", asics, err)
	}
	asics[0].Name = "changed"
	again, _ := s.ListASICs(context.Background())
	if again[0].Name != "A" {
		t.Fatalf("list returned internal slice")
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	asics, _ := s.ListASICs(context.Background())
	if len(asics) == 0 {
		t.Fatalf("expected defaults when file missing")
	}
	if s.chain != DefaultChain() {
		t.Fatalf("expected default chain when file missing, got %+v", s.chain)
	}

	seed := `[{"id":"x1","asic_slug":"x","asic_name":"X One","asic_hash_rate":100000000000000,"asic_power":120}]`
	if err := os.WriteFile(filepath.Join(dir, "seed_asics.json"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	chain := `{"anchor_height":100,"anchor_time":"2024-01-01T00:00:00Z","block_interval_seconds":300,"network_hash_rate":1000,"fees_per_block":0,"price_usd":10}`
	if err := os.WriteFile(filepath.Join(dir, "seed_chain.json"), []byte(chain), 0o644); err != nil {
		t.Fatal(err)
	}
	s = NewFromFiles(dir)
	asics, _ = s.ListASICs(context.Background())
	if len(asics) != 1 || asics[0].ID != "x1" || asics[0].Power != 120 || asics[0].HashRate != 100e12 {
		t.Fatalf("unexpected seeded list: %v", asics)
	}
	want := Chain{AnchorHeight: 100, AnchorTime: anchor, BlockInterval: 5 * time.Minute, NetworkHashRate: 1000, FeesPerBlock: 0, PriceUSD: 10}
	if !s.chain.AnchorTime.Equal(want.AnchorTime) || s.chain.AnchorHeight != 100 || s.chain.BlockInterval != want.BlockInterval ||
		s.chain.NetworkHashRate != 1000 || s.chain.FeesPerBlock != 0 || s.chain.PriceUSD != 10 {
		t.Fatalf("unexpected seeded chain: %+v", s.chain)
	}
}

func TestBlockSubsidy(t *testing.T) {
	tests := []struct {
		height int64
		want   float64
	}{
		{0, 50},
		{209_999, 50},
		{210_000, 25},
		{420_000, 12.5},
		{630_000, 6.25},
		{840_000, 3.125},
		{33 * 210_000, 0},
		{64 * 210_000, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := BlockSubsidy(tt.height); got != tt.want {
			t.Errorf("BlockSubsidy(%d) = %v, want %v", tt.height, got, tt.want)
		}
	}
	// The last non-zero subsidy is one satoshi.
	if got := BlockSubsidy(32 * 210_000); got != 1e-8 {
		t.Errorf("expected one satoshi at the 32nd halving, got %v", got)
	}
}

func TestBlockRevenueShareOfReward(t *testing.T) {
	chain := Chain{AnchorTime: anchor, BlockInterval: 10 * time.Minute, NetworkHashRate: 999, FeesPerBlock: 0.5, PriceUSD: 100}
	// One unit of 1 MW draws the reference energy, so the fleet hashes at 1 H/s
	// and holds 1/1000 of the network.
	asic := core.ASIC{ID: "a", HashRate: 1, Power: 1_000_000}

	btc, usd := chain.BlockRevenue(asic, 0)
	if math.Abs(btc-0.0505) > 1e-12 || math.Abs(usd-5.05) > 1e-9 {
		t.Fatalf("expected 0.0505 BTC / 5.05 USD, got %v / %v", btc, usd)
	}

	// Twice as many units for half the power.
	half := core.ASIC{ID: "b", HashRate: 1, Power: 500_000}
	btc, _ = chain.BlockRevenue(half, 0)
	if math.Abs(btc-50.5*2/1001) > 1e-12 {
		t.Fatalf("unexpected share for 2 units: %v", btc)
	}

	if btc, usd := chain.BlockRevenue(core.ASIC{ID: "z", HashRate: 1}, 0); btc != 0 || usd != 0 {
		t.Fatalf("zero power must earn nothing, got %v / %v", btc, usd)
	}
}

func TestHeightAt(t *testing.T) {
	chain := Chain{AnchorHeight: 100, AnchorTime: anchor, BlockInterval: 10 * time.Minute}
	cases := []struct {
		at   time.Time
		want int64
	}{
		{anchor, 100},
		{anchor.Add(9 * time.Minute), 100},
		{anchor.Add(10 * time.Minute), 101},
		{anchor.Add(-time.Minute), 99},
		{anchor.Add(-10 * time.Minute), 99},
	}
	for _, c := range cases {
		if got := chain.HeightAt(c.at); got != c.want {
			t.Errorf("HeightAt(%s) = %d, want %d", c.at, got, c.want)
		}
	}
	if !chain.TimeOf(103).Equal(anchor.Add(30 * time.Minute)) {
		t.Fatalf("unexpected block time %s", chain.TimeOf(103))
	}
}

func TestRevenueOnePointPerBlock(t *testing.T) {
	chain := Chain{AnchorHeight: 100, AnchorTime: anchor, BlockInterval: 10 * time.Minute, NetworkHashRate: 600e18, FeesPerBlock: 0.1, PriceUSD: 60_000}
	s := NewWithChain([]core.ASIC{{ID: "a", Name: "A", HashRate: 234e12, Power: 3510}}, chain)
	q := core.RevenueQuery{Start: "2024-01-01T00:05", End: "2024-01-01T01:00", ASICID: "a"}

	points, err := s.Revenue(context.Background(), q)
	if err != nil {
		t.Fatalf("Revenue: %v", err)
	}
	if len(points) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(points))
	}
	if points[0].Timestamp != "2024-01-01T00:10:00Z" || points[5].Timestamp != "2024-01-01T01:00:00Z" {
		t.Fatalf("unexpected timestamps %s..%s", points[0].Timestamp, points[5].Timestamp)
	}
	for _, p := range points {
		if p.USD <= 0 || p.BTC <= 0 || math.Abs(p.USD-p.BTC*60_000) > 1e-9 {
			t.Fatalf("unexpected point %+v", p)
		}
	}

	again, _ := s.Revenue(context.Background(), q)
	if again[3] != points[3] {
		t.Fatalf("series not stable across calls")
	}
}

func TestRevenueAcrossHalving(t *testing.T) {
	chain := Chain{AnchorHeight: 209_999, AnchorTime: anchor, BlockInterval: 10 * time.Minute, NetworkHashRate: 1e18, FeesPerBlock: 1, PriceUSD: 1}
	s := NewWithChain([]core.ASIC{{ID: "a", HashRate: 100e12, Power: 3000}}, chain)

	points, err := s.Revenue(context.Background(), core.RevenueQuery{Start: "2024-01-01T00:00", End: "2024-01-01T00:10", ASICID: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(points))
	}
	if ratio := points[1].BTC / points[0].BTC; math.Abs(ratio-26.0/51.0) > 1e-12 {
		t.Fatalf("reward should drop with the halving, ratio %v", ratio)
	}
}

func TestRevenueErrors(t *testing.T) {
	s := New([]core.ASIC{{ID: "a", Power: 100}})
	cases := []core.RevenueQuery{
		{Start: "", End: "2024-01-01", ASICID: "a"},
		{Start: "yesterday", End: "2024-01-01", ASICID: "a"},
		{Start: "2024-01-01", End: "2024-01-02", ASICID: "missing"},
	}
	for i, q := range cases {
		if _, err := s.Revenue(context.Background(), q); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestRevenueCapsLength(t *testing.T) {
	s := New([]core.ASIC{{ID: "a", HashRate: 1, Power: 1}})
	points, err := s.Revenue(context.Background(), core.RevenueQuery{Start: "2020-01-01", End: "2024-01-01", ASICID: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != maxPoints {
		t.Fatalf("expected %d points, got %d", maxPoints, len(points))
	}
}

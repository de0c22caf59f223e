package memory

import (
	"encoding/json"
	"os"
	"time"

	"asicrev/internal/core"
)

const (
	satoshisPerBTC   = 100_000_000
	halvingInterval  = 210_000
	initialSubsidy   = 50 * satoshisPerBTC
	maxHalvings      = 64
	defaultBlockTime = 10 * time.Minute
)

// Chain holds the network parameters a generated series is priced against.
// Block heights advance from AnchorHeight at AnchorTime, one per BlockInterval.
type Chain struct {
	AnchorHeight    int64
	AnchorTime      time.Time
	BlockInterval   time.Duration
	NetworkHashRate float64 // H/s
	FeesPerBlock    float64 // BTC
	PriceUSD        float64 // USD per BTC
}

// DefaultChain is anchored at the fourth halving.
func DefaultChain() Chain {
	return Chain{
		AnchorHeight:    840_000,
		AnchorTime:      time.Date(2024, 4, 20, 0, 9, 27, 0, time.UTC),
		BlockInterval:   defaultBlockTime,
		NetworkHashRate: 600e18,
		FeesPerBlock:    0.15,
		PriceUSD:        65_000,
	}
}

// BlockSubsidy returns the coinbase subsidy in BTC at height.
func BlockSubsidy(height int64) float64 {
	if height < 0 {
		return 0
	}
	halvings := height / halvingInterval
	if halvings >= maxHalvings {
		return 0
	}
	return float64(int64(initialSubsidy)>>halvings) / satoshisPerBTC
}

// HeightAt returns the height of the last block mined at or before t.
func (c Chain) HeightAt(t time.Time) int64 {
	d := t.Sub(c.AnchorTime)
	n := int64(d / c.BlockInterval)
	if d < 0 && d%c.BlockInterval != 0 {
		n--
	}
	return c.AnchorHeight + n
}

// TimeOf returns when the block at height was mined.
func (c Chain) TimeOf(height int64) time.Time {
	return c.AnchorTime.Add(time.Duration(height-c.AnchorHeight) * c.BlockInterval)
}

// BlockRevenue is the share of one block's reward earned by the fleet of asic
// units that draws one MW, priced in BTC and USD. The fleet's hash rate is added
// to the network's before taking its share.
func (c Chain) BlockRevenue(asic core.ASIC, height int64) (btc, usd float64) {
	fleet := asic.HashRate * core.UnitsPerReferenceEnergy(asic.Power)
	if fleet <= 0 {
		return 0, 0
	}
	share := fleet / (c.NetworkHashRate + fleet)
	btc = (BlockSubsidy(height) + c.FeesPerBlock) * share
	return btc, btc * c.PriceUSD
}

// withDefaults fills zero parameters from DefaultChain.
func (c Chain) withDefaults() Chain {
	def := DefaultChain()
	if c.AnchorTime.IsZero() {
		c.AnchorTime, c.AnchorHeight = def.AnchorTime, def.AnchorHeight
	}
	if c.BlockInterval <= 0 {
		c.BlockInterval = def.BlockInterval
	}
	if c.NetworkHashRate <= 0 {
		c.NetworkHashRate = def.NetworkHashRate
	}
	if c.FeesPerBlock < 0 {
		c.FeesPerBlock = def.FeesPerBlock
	}
	if c.PriceUSD <= 0 {
		c.PriceUSD = def.PriceUSD
	}
	return c
}

// readChain loads chain parameters from a JSON seed file. A missing or
// malformed file yields DefaultChain.
func readChain(path string) Chain {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultChain()
	}
	var raw struct {
		AnchorHeight    int64     `json:"anchor_height"`
		AnchorTime      time.Time `json:"anchor_time"`
		BlockSeconds    int       `json:"block_interval_seconds"`
		NetworkHashRate float64   `json:"network_hash_rate"`
		FeesPerBlock    *float64  `json:"fees_per_block"`
		PriceUSD        float64   `json:"price_usd"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return DefaultChain()
	}
	c := Chain{
		AnchorHeight:    raw.AnchorHeight,
		AnchorTime:      raw.AnchorTime,
		BlockInterval:   time.Duration(raw.BlockSeconds) * time.Second,
		NetworkHashRate: raw.NetworkHashRate,
		FeesPerBlock:    -1,
		PriceUSD:        raw.PriceUSD,
	}
	if raw.FeesPerBlock != nil {
		c.FeesPerBlock = *raw.FeesPerBlock
	}
	return c.withDefaults()
}

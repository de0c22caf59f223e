package api

import "asicrev/internal/core"

// wireASIC is the JSON shape of GET /asic items.
type wireASIC struct {
	ID       string  `json:"id"`
	Slug     string  `json:"asic_slug"`
	Name     string  `json:"asic_name"`
	HashRate float64 `json:"asic_hash_rate"` // H/s
	Power    float64 `json:"asic_power"`
}

// wireRevenuePoint is the JSON shape of GET /mwh_revenue items.
type wireRevenuePoint struct {
	Timestamp string  `json:"mwh_revenue_timestamp"`
	USD       float64 `json:"mwh_usd_revenue"`
	BTC       float64 `json:"mwh_btc_revenue"`
}

func toASIC(w wireASIC) core.ASIC {
	return core.ASIC{
		ID:       w.ID,
		Name:     w.Name,
		HashRate: w.HashRate,
		Power:    w.Power,
	}
}

func toRawPoint(w wireRevenuePoint) core.RawRevenuePoint {
	return core.RawRevenuePoint{
		Timestamp: w.Timestamp,
		USD:       w.USD,
		BTC:       w.BTC,
	}
}

package core

import (
	"errors"
	"strings"
)

// ReferenceEnergyConstant is the number of watts in one megawatt. Dividing it by
// a miner's power draw gives how many miners consume one MWh per hour.
const ReferenceEnergyConstant = 1_000_000

type (
	// ASIC is a mining hardware configuration as offered by the revenue API.
	ASIC struct {
		ID       string
		Name     string
		HashRate float64 // H/s, as sent by the API
		Power    float64 // W
	}

	// RawRevenuePoint is one sample of the per-MWh revenue series.
	RawRevenuePoint struct {
		Timestamp string // ISO8601, as sent by the API
		USD       float64
		BTC       float64
	}

	// DisplayPoint is a RawRevenuePoint projected onto a single unit.
	DisplayPoint struct {
		Timestamp string
		Value     float64
	}

	// RevenueQuery identifies one revenue series request.
	RevenueQuery struct {
		Start  string
		End    string
		ASICID string
	}
)

var (
	ErrEmptyStart = errors.New("start is required")
	ErrEmptyEnd   = errors.New("end is required")
	ErrEmptyASIC  = errors.New("asic is required")
)

// Validate checks that every field of the query is set. Timestamps are passed to
// the API verbatim, so their format is not checked here.
func (q RevenueQuery) Validate() error {
	if strings.TrimSpace(q.Start) == "" {
		return ErrEmptyStart
	}
	if strings.TrimSpace(q.End) == "" {
		return ErrEmptyEnd
	}
	if strings.TrimSpace(q.ASICID) == "" {
		return ErrEmptyASIC
	}
	return nil
}

// Key returns a stable identifier for the query, used to coalesce identical requests.
func (q RevenueQuery) Key() string {
	return q.Start + "|" + q.End + "|" + q.ASICID
}

// FindASIC returns the config with the given id.
func FindASIC(asics []ASIC, id string) (ASIC, bool) {
	for _, a := range asics {
		if a.ID == id {
			return a, true
		}
	}
	return ASIC{}, false
}

// UnitsPerReferenceEnergy returns how many miners drawing power watts are needed
// to consume one MWh per hour. A zero power rating yields 0.
func UnitsPerReferenceEnergy(power float64) float64 {
	if power == 0 {
		return 0
	}
	return ReferenceEnergyConstant / power
}

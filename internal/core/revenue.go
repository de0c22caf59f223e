package core

// Unit selects which currency field of a RawRevenuePoint is displayed and totalled.
type Unit bool

const (
	UnitUSD Unit = false
	UnitBTC Unit = true
)

// Toggle returns the other unit.
func (u Unit) Toggle() Unit {
	return !u
}

func (u Unit) String() string {
	if u == UnitBTC {
		return "BTC"
	}
	return "USD"
}

// Value picks the field of p matching the unit.
func (u Unit) Value(p RawRevenuePoint) float64 {
	if u == UnitBTC {
		return p.BTC
	}
	return p.USD
}

// Derive projects raw onto unit and sums the result in sequence order.
// NaN and Inf values are summed like any other and propagate into the total.
func Derive(raw []RawRevenuePoint, unit Unit) ([]DisplayPoint, float64) {
	series := make([]DisplayPoint, 0, len(raw))
	var total float64
	for _, p := range raw {
		v := unit.Value(p)
		series = append(series, DisplayPoint{Timestamp: p.Timestamp, Value: v})
		total += v
	}
	return series, total
}

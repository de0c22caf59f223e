// Package form holds the state of one revenue calculator form and the
// transitions user actions and fetch completions apply to it.
package form

import (
	"context"
	"errors"
	"sync"

	"asicrev/internal/core"
	"asicrev/internal/sources"
)

// Status is the lifecycle state of the form's revenue query.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

var (
	// ErrMissingField is returned by Submit when start, end or config is not set.
	ErrMissingField = errors.New("missing required field")
	// ErrSuperseded is returned by Submit when a newer submit was issued before
	// this one completed. Its outcome is discarded.
	ErrSuperseded = errors.New("superseded by a newer submit")
)

// Form is the mutable state of one session's form. It is safe for concurrent use.
type Form struct {
	mu sync.Mutex

	asics       []core.ASIC
	selectedID  string
	unitsPerMWh float64
	start, end  string
	unit        core.Unit
	status      Status
	errMsg      string
	raw         []core.RawRevenuePoint
	series      []core.DisplayPoint
	total       float64
	generation  uint64
}

// New mounts a form over asics. The first config is selected; an empty list
// leaves the selection empty and the computed field at 0.
func New(asics []core.ASIC) *Form {
	f := &Form{asics: append([]core.ASIC(nil), asics...)}
	if len(f.asics) > 0 {
		f.selectedID = f.asics[0].ID
		f.unitsPerMWh = core.UnitsPerReferenceEnergy(f.asics[0].Power)
	}
	return f
}

// ChangeConfig selects the config with the given id. An unknown id is recorded
// but leaves the computed field unchanged.
func (f *Form) ChangeConfig(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.selectedID = id
	if a, ok := core.FindASIC(f.asics, id); ok {
		f.unitsPerMWh = core.UnitsPerReferenceEnergy(a.Power)
	}
}

// SetRange records the user-entered bounds verbatim.
func (f *Form) SetRange(start, end string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.start, f.end = start, end
}

// ToggleUnit flips between USD and BTC, re-deriving the series from the held raw
// response when there is one.
func (f *Form) ToggleUnit() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.unit = f.unit.Toggle()
	if len(f.raw) > 0 {
		f.series, f.total = core.Derive(f.raw, f.unit)
	}
}

// Submit fetches the revenue series for the current selection and range.
//
// The form is Loading while the fetch runs; the lock is not held during it.
// On success the raw series is stored and the display series and total are
// derived with the unit current at completion time. On failure the error message
// is recorded and the previously displayed series and total are kept.
// If another Submit starts before this one completes, this one's outcome is
// dropped and ErrSuperseded is returned.
func (f *Form) Submit(ctx context.Context, src sources.RevenueReader) error {
	f.mu.Lock()
	q := core.RevenueQuery{Start: f.start, End: f.end, ASICID: f.selectedID}
	if err := q.Validate(); err != nil {
		f.mu.Unlock()
		return errors.Join(ErrMissingField, err)
	}
	f.generation++
	gen := f.generation
	f.status = StatusLoading
	f.errMsg = ""
	f.mu.Unlock()

	raw, err := src.Revenue(ctx, q)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.generation {
		return ErrSuperseded
	}
	if err != nil {
		f.status = StatusFailed
		f.errMsg = err.Error()
		return err
	}

	f.raw = raw
	f.series, f.total = core.Derive(raw, f.unit)
	f.status = StatusSucceeded
	return nil
}

// Snapshot is a read-only copy of the form state.
type Snapshot struct {
	ASICs       []core.ASIC
	SelectedID  string
	UnitsPerMWh float64
	Start, End  string
	Unit        core.Unit
	Status      Status
	Loading     bool
	Error       string
	Series      []core.DisplayPoint
	Total       float64
	Generation  uint64
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return Snapshot{
		ASICs:       append([]core.ASIC(nil), f.asics...),
		SelectedID:  f.selectedID,
		UnitsPerMWh: f.unitsPerMWh,
		Start:       f.start,
		End:         f.end,
		Unit:        f.unit,
		Status:      f.status,
		Loading:     f.status == StatusLoading,
		Error:       f.errMsg,
		Series:      append([]core.DisplayPoint(nil), f.series...),
		Total:       f.total,
		Generation:  f.generation,
	}
}

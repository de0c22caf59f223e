// Package memory is an in-process revenue source seeded from local files, used
// for development without a running revenue API.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"asicrev/internal/core"
	"asicrev/internal/sources"
)

// maxPoints caps generated series at one month of blocks.
const maxPoints = 6 * 24 * 31

// inputLayouts are the timestamp formats accepted for query bounds.
var inputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Store serves seeded configs and prices one revenue point per block of a
// simulated chain.
type Store struct {
	mu    sync.Mutex
	asics []core.ASIC
	chain Chain
}

var _ sources.Source = (*Store)(nil)

// New returns a store over asics priced against DefaultChain.
func New(asics []core.ASIC) *Store {
	return NewWithChain(asics, DefaultChain())
}

// NewWithChain returns a store over asics priced against chain. Zero chain
// parameters take their DefaultChain values.
func NewWithChain(asics []core.ASIC, chain Chain) *Store {
	return &Store{
		asics: dedupe(asics),
		chain: chain.withDefaults(),
	}
}

// NewFromFiles seeds the store from base/seed_asics.json and
// base/seed_chain.json, falling back to built-in values when either file is
// missing or unreadable.
func NewFromFiles(base string) *Store {
	asics := readASICs(filepath.Join(base, "seed_asics.json"))
	if len(asics) == 0 {
		asics = []core.ASIC{
			{ID: "s21-pro", Name: "Antminer S21 Pro", HashRate: 234e12, Power: 3510},
			{ID: "s19j-xp", Name: "Antminer S19j XP", HashRate: 151e12, Power: 3247},
			{ID: "m60s", Name: "Whatsminer M60S", HashRate: 186e12, Power: 3441},
		}
	}
	return &Store{
		asics: dedupe(asics),
		chain: readChain(filepath.Join(base, "seed_chain.json")),
	}
}

// ListASICs returns a copy of the seeded configs.
func (s *Store) ListASICs(_ context.Context) ([]core.ASIC, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ASIC(nil), s.asics...), nil
}

// Revenue returns one point per block mined between q.Start and q.End, both
// inclusive. Each point is the block reward share earned by one MW of the
// selected ASIC, so repeated queries are stable.
func (s *Store) Revenue(_ context.Context, q core.RevenueQuery) ([]core.RawRevenuePoint, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	start, err := parseBound(q.Start)
	if err != nil {
		return nil, fmt.Errorf("timestamp_start: %w", err)
	}
	end, err := parseBound(q.End)
	if err != nil {
		return nil, fmt.Errorf("timestamp_end: %w", err)
	}

	s.mu.Lock()
	asic, ok := core.FindASIC(s.asics, q.ASICID)
	chain := s.chain
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown asic %q", q.ASICID)
	}

	h := chain.HeightAt(start)
	if chain.TimeOf(h).Before(start) {
		h++
	}
	if h < 0 {
		h = 0
	}

	var points []core.RawRevenuePoint
	for ; !chain.TimeOf(h).After(end) && len(points) < maxPoints; h++ {
		btc, usd := chain.BlockRevenue(asic, h)
		points = append(points, core.RawRevenuePoint{
			Timestamp: chain.TimeOf(h).UTC().Format(time.RFC3339),
			USD:       usd,
			BTC:       btc,
		})
	}
	return points, nil
}

func parseBound(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}

func readASICs(path string) []core.ASIC {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var raw []struct {
		ID       string  `json:"id"`
		Name     string  `json:"asic_name"`
		HashRate float64 `json:"asic_hash_rate"`
		Power    float64 `json:"asic_power"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make([]core.ASIC, 0, len(raw))
	for _, r := range raw {
		out = append(out, core.ASIC{ID: r.ID, Name: r.Name, HashRate: r.HashRate, Power: r.Power})
	}
	return out
}

func dedupe(in []core.ASIC) []core.ASIC {
	seen := map[string]struct{}{}
	out := make([]core.ASIC, 0, len(in))
	for _, a := range in {
		id := strings.TrimSpace(a.ID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, a)
	}
	// Preserve input order: the first entry is the form's default selection.
	return out
}

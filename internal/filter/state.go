// Package filter holds the per-session filter state and applies it to the
// base table.
package filter

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/esgdash/esgdash/internal/dataset"
)

// Update rejection kinds. A rejected update leaves the previous state fully
// intact.
var (
	ErrInvalidRange  = eris.New("filter: range min exceeds max")
	ErrUnknownRegion = eris.New("filter: region not present in dataset")
)

// State is one committed filter configuration. All bounds are inclusive.
// Regions is kept sorted; the zero Regions slice selects nothing.
type State struct {
	YearMin    int      `json:"year_min"`
	YearMax    int      `json:"year_max"`
	Regions    []string `json:"regions"`
	RevenueMin float64  `json:"revenue_min"`
	RevenueMax float64  `json:"revenue_max"`
	MarginMin  float64  `json:"margin_min"`
	MarginMax  float64  `json:"margin_max"`
}

// clone deep-copies the state so callers can never alias the store's slices.
func (s State) clone() State {
	out := s
	out.Regions = make([]string, len(s.Regions))
	copy(out.Regions, s.Regions)
	return out
}

// Patch is a partial filter update. Nil fields keep their current value.
// Validation covers the whole patch before anything is committed, so a patch
// either applies completely or not at all.
type Patch struct {
	YearMin    *int      `json:"year_min,omitempty"`
	YearMax    *int      `json:"year_max,omitempty"`
	Regions    *[]string `json:"regions,omitempty"`
	RevenueMin *float64  `json:"revenue_min,omitempty"`
	RevenueMax *float64  `json:"revenue_max,omitempty"`
	MarginMin  *float64  `json:"margin_min,omitempty"`
	MarginMax  *float64  `json:"margin_max,omitempty"`
}

// Store owns the live filter state and the immutable baseline snapshot taken
// from the base table's extrema at session start.
type Store struct {
	baseline State
	current  State
	known    map[string]bool
}

// NewStore computes the baseline from the table and starts the live state as
// a copy of it. An empty table yields a zero baseline with no regions; the
// degraded dashboard still functions.
func NewStore(t *dataset.Table) *Store {
	var base State
	if t.Len() > 0 {
		base.YearMin, base.YearMax = t.YearRange()
		base.RevenueMin, base.RevenueMax = t.RevenueRange()
		base.MarginMin, base.MarginMax = t.MarginRange()
		base.Regions = t.Regions()
	}

	known := make(map[string]bool, len(base.Regions))
	for _, r := range base.Regions {
		known[r] = true
	}

	return &Store{
		baseline: base,
		current:  base.clone(),
		known:    known,
	}
}

// State returns a copy of the live filter state.
func (s *Store) State() State { return s.current.clone() }

// Baseline returns a copy of the baseline snapshot.
func (s *Store) Baseline() State { return s.baseline.clone() }

// Reset replaces the live state with a fresh copy of the baseline and
// returns it.
func (s *Store) Reset() State {
	s.current = s.baseline.clone()
	return s.State()
}

// Apply validates a patch against the current state and commits it atomically.
// On error the previous state is retained and returned.
func (s *Store) Apply(p Patch) (State, error) {
	next := s.current.clone()

	if p.YearMin != nil {
		next.YearMin = *p.YearMin
	}
	if p.YearMax != nil {
		next.YearMax = *p.YearMax
	}
	if p.RevenueMin != nil {
		next.RevenueMin = *p.RevenueMin
	}
	if p.RevenueMax != nil {
		next.RevenueMax = *p.RevenueMax
	}
	if p.MarginMin != nil {
		next.MarginMin = *p.MarginMin
	}
	if p.MarginMax != nil {
		next.MarginMax = *p.MarginMax
	}
	if p.Regions != nil {
		next.Regions = normalizeRegions(*p.Regions)
	}

	if err := s.validate(next); err != nil {
		return s.State(), err
	}

	s.current = next
	return s.State(), nil
}

// SetYearRange updates the year bounds.
func (s *Store) SetYearRange(min, max int) (State, error) {
	return s.Apply(Patch{YearMin: &min, YearMax: &max})
}

// SetRegions replaces the region selection.
func (s *Store) SetRegions(regions []string) (State, error) {
	return s.Apply(Patch{Regions: &regions})
}

// SetRevenueRange updates the revenue bounds.
func (s *Store) SetRevenueRange(min, max float64) (State, error) {
	return s.Apply(Patch{RevenueMin: &min, RevenueMax: &max})
}

// SetMarginRange updates the profit margin bounds.
func (s *Store) SetMarginRange(min, max float64) (State, error) {
	return s.Apply(Patch{MarginMin: &min, MarginMax: &max})
}

func (s *Store) validate(next State) error {
	if next.YearMin > next.YearMax {
		return eris.Wrapf(ErrInvalidRange, "year %d..%d", next.YearMin, next.YearMax)
	}
	if next.RevenueMin > next.RevenueMax {
		return eris.Wrapf(ErrInvalidRange, "revenue %.2f..%.2f", next.RevenueMin, next.RevenueMax)
	}
	if next.MarginMin > next.MarginMax {
		return eris.Wrapf(ErrInvalidRange, "margin %.2f..%.2f", next.MarginMin, next.MarginMax)
	}
	for _, r := range next.Regions {
		if !s.known[r] {
			return eris.Wrapf(ErrUnknownRegion, "%q", r)
		}
	}
	return nil
}

// normalizeRegions trims, deduplicates and sorts a region selection.
func normalizeRegions(regions []string) []string {
	seen := make(map[string]bool, len(regions))
	out := make([]string, 0, len(regions))
	for _, r := range regions {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

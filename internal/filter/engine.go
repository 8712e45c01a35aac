package filter

import (
	"github.com/esgdash/esgdash/internal/dataset"
)

// Row is a base-table record with the derived emission intensity appended.
// Intensity is undefined when emissions are missing or revenue is zero; it is
// never NaN or infinite.
type Row struct {
	dataset.Record
	Intensity dataset.NullFloat `json:"emission_intensity"`
}

// View is the filtered subset of the base table, in base-table order. Views
// are pure derivations: recomputed from scratch on every state change, never
// mutated in place.
type View struct {
	rows []Row
}

// Apply filters the table with the given state. The four predicates are
// AND-combined; records whose margin is undefined never satisfy the margin
// range. An empty result is a valid view.
func Apply(t *dataset.Table, s State) *View {
	selected := make(map[string]bool, len(s.Regions))
	for _, r := range s.Regions {
		selected[r] = true
	}

	rows := make([]Row, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		rec := t.At(i)
		if rec.Year < s.YearMin || rec.Year > s.YearMax {
			continue
		}
		if !selected[rec.Region] {
			continue
		}
		if rec.Revenue < s.RevenueMin || rec.Revenue > s.RevenueMax {
			continue
		}
		if !rec.Margin.Valid || rec.Margin.Float64 < s.MarginMin || rec.Margin.Float64 > s.MarginMax {
			continue
		}
		rows = append(rows, Row{Record: rec, Intensity: intensity(rec)})
	}
	return &View{rows: rows}
}

// intensity derives emissions per unit revenue.
func intensity(rec dataset.Record) dataset.NullFloat {
	if !rec.Emissions.Valid || rec.Revenue == 0 {
		return dataset.NullFloat{}
	}
	return dataset.Float(rec.Emissions.Float64 / rec.Revenue)
}

// Len returns the number of rows in the view.
func (v *View) Len() int { return len(v.rows) }

// At returns the row at index i.
func (v *View) At(i int) Row { return v.rows[i] }

// Rows returns the backing slice. Callers must treat it as read-only.
func (v *View) Rows() []Row { return v.rows }

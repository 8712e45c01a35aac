// Package dataset loads the ESG source table and exposes it as an immutable,
// typed record collection.
package dataset

import (
	"encoding/json"
	"sort"
)

// NullFloat is a float64 that may be undefined. It mirrors sql.NullFloat64 so
// SQL sources can scan into it directly, and marshals to JSON null when
// invalid. Undefined values are skipped by aggregations, never zero-filled.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a valid NullFloat holding v.
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Scan implements sql.Scanner.
func (n *NullFloat) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		n.Float64, n.Valid = 0, false
	case float64:
		n.Float64, n.Valid = v, true
	case int64:
		n.Float64, n.Valid = float64(v), true
	default:
		n.Float64, n.Valid = 0, false
	}
	return nil
}

// MarshalJSON renders undefined values as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON accepts a number or null.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Float64, n.Valid = 0, false
		return nil
	}
	if err := json.Unmarshal(data, &n.Float64); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Record is one company-year observation. Revenue and ESGOverall are
// guaranteed present after loading; rows missing either are dropped. The
// remaining numerics stay optional: a non-numeric source cell becomes an
// invalid NullFloat rather than poisoning the row.
type Record struct {
	Company          string    `json:"company"`
	Region           string    `json:"region"`
	Year             int       `json:"year"`
	Revenue          float64   `json:"revenue"`
	Margin           NullFloat `json:"margin"`
	Emissions        NullFloat `json:"emissions"`
	ESGOverall       float64   `json:"esg_overall"`
	ESGEnvironmental NullFloat `json:"esg_environmental"`
	ESGSocial        NullFloat `json:"esg_social"`
	ESGGovernance    NullFloat `json:"esg_governance"`
}

// Table is the loaded base table: an ordered record collection, immutable for
// the session lifetime. Extrema and distinct regions are computed once at
// construction since they seed every filter baseline.
type Table struct {
	records []Record
	regions []string

	yearMin, yearMax       int
	revenueMin, revenueMax float64
	marginMin, marginMax   float64
}

// NewTable builds a Table from records, taking ownership of the slice.
func NewTable(records []Record) *Table {
	t := &Table{records: records}

	seen := make(map[string]bool)
	for i, r := range records {
		if r.Region != "" && !seen[r.Region] {
			seen[r.Region] = true
			t.regions = append(t.regions, r.Region)
		}

		if i == 0 || r.Year < t.yearMin {
			t.yearMin = r.Year
		}
		if i == 0 || r.Year > t.yearMax {
			t.yearMax = r.Year
		}
		if i == 0 || r.Revenue < t.revenueMin {
			t.revenueMin = r.Revenue
		}
		if i == 0 || r.Revenue > t.revenueMax {
			t.revenueMax = r.Revenue
		}
	}

	// Margin extrema skip undefined values, matching the skip-don't-zero rule
	// used everywhere else.
	first := true
	for _, r := range records {
		if !r.Margin.Valid {
			continue
		}
		if first || r.Margin.Float64 < t.marginMin {
			t.marginMin = r.Margin.Float64
		}
		if first || r.Margin.Float64 > t.marginMax {
			t.marginMax = r.Margin.Float64
		}
		first = false
	}

	sort.Strings(t.regions)
	return t
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// At returns the record at index i.
func (t *Table) At(i int) Record { return t.records[i] }

// Regions returns the distinct regions present, sorted. The returned slice is
// a copy.
func (t *Table) Regions() []string {
	out := make([]string, len(t.regions))
	copy(out, t.regions)
	return out
}

// YearRange returns the observed min and max year.
func (t *Table) YearRange() (int, int) { return t.yearMin, t.yearMax }

// RevenueRange returns the observed min and max revenue.
func (t *Table) RevenueRange() (float64, float64) { return t.revenueMin, t.revenueMax }

// MarginRange returns the observed min and max profit margin, skipping
// records whose margin is undefined.
func (t *Table) MarginRange() (float64, float64) { return t.marginMin, t.marginMax }

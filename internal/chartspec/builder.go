// Package chartspec turns aggregated and ranked data into renderer-neutral
// chart descriptions. No chart-library calls live here; a frontend (or a
// test) consumes the specs as plain data.
package chartspec

import (
	"fmt"

	"github.com/esgdash/esgdash/internal/analytics"
	"github.com/esgdash/esgdash/internal/dataset"
	"github.com/esgdash/esgdash/internal/filter"
)

// Kind is the chart family a renderer should use.
type Kind string

const (
	KindBar   Kind = "bar"
	KindLine  Kind = "line"
	KindArea  Kind = "area"
	KindRadar Kind = "radar"
)

// Point is one labeled value in a series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is a named sequence of points, typically one per region.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Spec describes one chart: what kind it is, which fields feed its axes, how
// values should be formatted, and the data itself.
type Spec struct {
	Kind        Kind              `json:"kind"`
	Title       string            `json:"title"`
	XField      string            `json:"x_field"`
	YFields     []string          `json:"y_fields"`
	SeriesField string            `json:"series_field,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Format      string            `json:"format,omitempty"`
	Series      []Series          `json:"series"`
}

// TopCompanies builds a leaderboard bar chart for the given metric, one
// series per region so renderers can color by region.
func TopCompanies(view *filter.View, metric analytics.Metric, n int) (Spec, error) {
	rows, err := analytics.TopN(view, metric, n)
	if err != nil {
		return Spec{}, err
	}

	spec := Spec{
		Kind:        KindBar,
		Title:       topTitle(metric, n),
		XField:      "company",
		YFields:     []string{string(metric)},
		SeriesField: "region",
		Labels:      metricLabels(metric),
		Format:      metricFormat(metric),
	}

	// One series per region, regions in first-appearance (rank) order.
	byRegion := make(map[string]int)
	for _, row := range rows {
		v := metricOf(row, metric)
		idx, ok := byRegion[row.Region]
		if !ok {
			idx = len(spec.Series)
			byRegion[row.Region] = idx
			spec.Series = append(spec.Series, Series{Name: row.Region})
		}
		spec.Series[idx].Points = append(spec.Series[idx].Points, Point{Label: row.Company, Value: v})
	}
	return spec, nil
}

// TrendLines charts mean ESG and mean revenue over time, one series per
// region and measure.
func TrendLines(rows []analytics.TrendRow) Spec {
	spec := Spec{
		Kind:        KindLine,
		Title:       "Evolução do ESG e Receita por Região",
		XField:      "year",
		YFields:     []string{"mean_esg", "mean_revenue"},
		SeriesField: "region",
		Labels: map[string]string{
			"year":         "Ano",
			"mean_esg":     "Score ESG",
			"mean_revenue": "Receita (US$ milhões)",
		},
		Format: "%.1f",
	}

	esg := seriesIndex{}
	rev := seriesIndex{}
	for _, r := range rows {
		year := fmt.Sprintf("%d", r.Year)
		esg.add(&spec, r.Region+" — ESG", year, r.MeanESG)
		rev.add(&spec, r.Region+" — Receita", year, r.MeanRevenue)
	}
	return spec
}

// EmissionsArea charts summed emissions over time, stacked by region.
func EmissionsArea(rows []analytics.TrendRow) Spec {
	spec := Spec{
		Kind:        KindArea,
		Title:       "Emissões de Carbono ao Longo do Tempo",
		XField:      "year",
		YFields:     []string{"total_emissions"},
		SeriesField: "region",
		Labels: map[string]string{
			"year":            "Ano",
			"total_emissions": "Emissões (tCO2)",
		},
		Format: "%.0f",
	}

	idx := seriesIndex{}
	for _, r := range rows {
		idx.add(&spec, r.Region, fmt.Sprintf("%d", r.Year), r.TotalEmissions)
	}
	return spec
}

// RegionRadars builds one radar per region over the mean ESG sub-scores.
// Undefined sub-scores are skipped; a region with no defined sub-score at all
// produces no radar.
func RegionRadars(view *filter.View) []Spec {
	type acc struct {
		sum   [3]float64
		count [3]int
	}
	axes := [3]string{"ESG Ambiental", "ESG Social", "ESG Governança"}

	order := make([]string, 0)
	byRegion := make(map[string]*acc)
	for i := 0; i < view.Len(); i++ {
		row := view.At(i)
		a := byRegion[row.Region]
		if a == nil {
			a = &acc{}
			byRegion[row.Region] = a
			order = append(order, row.Region)
		}
		for j, v := range []dataset.NullFloat{row.ESGEnvironmental, row.ESGSocial, row.ESGGovernance} {
			if v.Valid {
				a.sum[j] += v.Float64
				a.count[j]++
			}
		}
	}

	specs := make([]Spec, 0, len(order))
	for _, region := range order {
		a := byRegion[region]
		s := Series{Name: region}
		for j, axis := range axes {
			if a.count[j] == 0 {
				continue
			}
			s.Points = append(s.Points, Point{Label: axis, Value: a.sum[j] / float64(a.count[j])})
		}
		if len(s.Points) == 0 {
			continue
		}
		specs = append(specs, Spec{
			Kind:    KindRadar,
			Title:   "Desempenho ESG — " + region,
			XField:  "component",
			YFields: []string{"mean_score"},
			Format:  "%.1f",
			Series:  []Series{s},
		})
	}
	return specs
}

// Dashboard assembles the standard chart set for a filtered view. An empty
// view yields an empty, non-nil slice so the payload marshals as [] rather
// than null.
func Dashboard(view *filter.View, trend []analytics.TrendRow) ([]Spec, error) {
	if view.Len() == 0 {
		return []Spec{}, nil
	}

	specs := make([]Spec, 0, 8)
	for _, metric := range []analytics.Metric{
		analytics.MetricESG, analytics.MetricEmissions, analytics.MetricRevenue,
	} {
		s, err := TopCompanies(view, metric, 5)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}

	specs = append(specs, TrendLines(trend), EmissionsArea(trend))
	specs = append(specs, RegionRadars(view)...)
	return specs, nil
}

// seriesIndex appends points to a spec's series, keyed by name, preserving
// first-appearance order.
type seriesIndex map[string]int

func (si seriesIndex) add(spec *Spec, name, label string, value float64) {
	idx, ok := si[name]
	if !ok {
		idx = len(spec.Series)
		si[name] = idx
		spec.Series = append(spec.Series, Series{Name: name})
	}
	spec.Series[idx].Points = append(spec.Series[idx].Points, Point{Label: label, Value: value})
}

func metricOf(row filter.Row, metric analytics.Metric) float64 {
	switch metric {
	case analytics.MetricESG:
		return row.ESGOverall
	case analytics.MetricEmissions:
		return row.Emissions.Float64
	case analytics.MetricRevenue:
		return row.Revenue
	}
	return 0
}

func topTitle(metric analytics.Metric, n int) string {
	switch metric {
	case analytics.MetricESG:
		return fmt.Sprintf("Top %d — Melhor ESG", n)
	case analytics.MetricEmissions:
		return fmt.Sprintf("Top %d — Maiores Emissões", n)
	case analytics.MetricRevenue:
		return fmt.Sprintf("Top %d — Maiores Receitas", n)
	}
	return fmt.Sprintf("Top %d", n)
}

func metricLabels(metric analytics.Metric) map[string]string {
	labels := map[string]string{"company": "Empresa", "region": "Região"}
	switch metric {
	case analytics.MetricESG:
		labels[string(metric)] = "Score ESG"
	case analytics.MetricEmissions:
		labels[string(metric)] = "Emissões (tCO2)"
	case analytics.MetricRevenue:
		labels[string(metric)] = "Receita (US$ milhões)"
	}
	return labels
}

func metricFormat(metric analytics.Metric) string {
	switch metric {
	case analytics.MetricESG:
		return "%.1f"
	case analytics.MetricEmissions:
		return "%.0f"
	case analytics.MetricRevenue:
		return "US$ %.0fM"
	}
	return "%.2f"
}

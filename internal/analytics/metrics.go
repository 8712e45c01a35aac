// Package analytics computes the dashboard KPIs, time-series aggregates and
// leaderboards from a filtered view.
package analytics

import (
	"github.com/esgdash/esgdash/internal/dataset"
	"github.com/esgdash/esgdash/internal/filter"
)

// DeltaState distinguishes why a delta is or is not shown. Zero change and
// missing data are deliberately separate states: collapsing them (as the
// pre-redesign dashboard did) hides whether a filter genuinely changed
// nothing or simply matched nothing.
type DeltaState string

const (
	// DeltaOmitted means the view covers the whole base table, so there is
	// nothing to compare against.
	DeltaOmitted DeltaState = "omitted"
	// DeltaNoData means the view is empty and the statistic is undefined.
	DeltaNoData DeltaState = "no_data"
	// DeltaZero means the view is narrower than the base but the statistic
	// did not move.
	DeltaZero DeltaState = "zero"
	// DeltaChanged carries a non-zero filtered-minus-base difference.
	DeltaChanged DeltaState = "changed"
)

// Delta is a filtered-minus-base difference for one KPI. Value is meaningful
// only for DeltaZero and DeltaChanged.
type Delta struct {
	Value float64    `json:"value"`
	State DeltaState `json:"state"`
}

// KPI pairs a statistic over the filtered view with the same statistic over
// the base table. Value is undefined (null) when the view has no data to
// support it; it is never a NaN or a silent zero.
type KPI struct {
	Value dataset.NullFloat `json:"value"`
	Base  dataset.NullFloat `json:"base"`
	Delta Delta             `json:"delta"`
}

// Metrics are the four summary KPIs the dashboard header shows.
type Metrics struct {
	Companies      KPI `json:"companies"`
	MeanESG        KPI `json:"mean_esg"`
	MeanRevenue    KPI `json:"mean_revenue"`
	TotalEmissions KPI `json:"total_emissions"`
}

// Summarize computes the KPIs for the view and the base table. The mean of an
// empty view is undefined, and its delta reports no-data rather than a
// numeric artifact.
func Summarize(view *filter.View, base *dataset.Table) Metrics {
	full := view.Len() == base.Len()

	var (
		viewESG, viewRevenue, viewEmissions float64
	)
	for i := 0; i < view.Len(); i++ {
		row := view.At(i)
		viewESG += row.ESGOverall
		viewRevenue += row.Revenue
		if row.Emissions.Valid {
			viewEmissions += row.Emissions.Float64
		}
	}

	var baseESG, baseRevenue, baseEmissions float64
	for i := 0; i < base.Len(); i++ {
		rec := base.At(i)
		baseESG += rec.ESGOverall
		baseRevenue += rec.Revenue
		if rec.Emissions.Valid {
			baseEmissions += rec.Emissions.Float64
		}
	}

	m := Metrics{
		Companies: kpi(
			dataset.Float(float64(view.Len())),
			dataset.Float(float64(base.Len())),
			full,
		),
		MeanESG: kpi(
			mean(viewESG, view.Len()),
			mean(baseESG, base.Len()),
			full,
		),
		MeanRevenue: kpi(
			mean(viewRevenue, view.Len()),
			mean(baseRevenue, base.Len()),
			full,
		),
		TotalEmissions: kpi(
			sumStat(viewEmissions, view.Len()),
			sumStat(baseEmissions, base.Len()),
			full,
		),
	}
	return m
}

// mean is undefined over an empty set.
func mean(total float64, n int) dataset.NullFloat {
	if n == 0 {
		return dataset.NullFloat{}
	}
	return dataset.Float(total / float64(n))
}

// sumStat treats a sum over an empty view as undefined for delta purposes,
// matching the mean KPIs: an empty view has nothing to report.
func sumStat(total float64, n int) dataset.NullFloat {
	if n == 0 {
		return dataset.NullFloat{}
	}
	return dataset.Float(total)
}

func kpi(value, base dataset.NullFloat, full bool) KPI {
	k := KPI{Value: value, Base: base}
	switch {
	case full:
		k.Delta = Delta{State: DeltaOmitted}
	case !value.Valid || !base.Valid:
		k.Delta = Delta{State: DeltaNoData}
	default:
		d := value.Float64 - base.Float64
		if d == 0 {
			k.Delta = Delta{State: DeltaZero}
		} else {
			k.Delta = Delta{Value: d, State: DeltaChanged}
		}
	}
	return k
}

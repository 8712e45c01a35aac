package analytics

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/esgdash/esgdash/internal/dataset"
	"github.com/esgdash/esgdash/internal/filter"
)

// Metric names a rankable field.
type Metric string

const (
	MetricESG       Metric = "esg_overall"
	MetricEmissions Metric = "emissions"
	MetricRevenue   Metric = "revenue"
)

// ErrUnknownMetric reports a ranking request for a field that cannot be
// ranked.
var ErrUnknownMetric = eris.New("analytics: unknown ranking metric")

// TopN returns the n highest rows by metric, descending, with ties broken by
// original table order. Rows where the metric is undefined are excluded
// before ranking. Fewer than n rows come back when the view is smaller; an
// empty view yields an empty slice.
func TopN(view *filter.View, metric Metric, n int) ([]filter.Row, error) {
	value, err := metricValue(metric)
	if err != nil {
		return nil, err
	}

	ranked := make([]filter.Row, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := view.At(i)
		if v := value(row); v.Valid {
			ranked = append(ranked, row)
		}
	}

	// SliceStable keeps base-table order among equal values, so repeated
	// calls on identical input return identical leaderboards.
	sort.SliceStable(ranked, func(i, j int) bool {
		return value(ranked[i]).Float64 > value(ranked[j]).Float64
	})

	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// metricValue resolves a metric to its accessor. Always-present fields are
// wrapped as valid NullFloats so ranking shares one path.
func metricValue(metric Metric) (func(filter.Row) dataset.NullFloat, error) {
	switch metric {
	case MetricESG:
		return func(r filter.Row) dataset.NullFloat { return dataset.Float(r.ESGOverall) }, nil
	case MetricEmissions:
		return func(r filter.Row) dataset.NullFloat { return r.Emissions }, nil
	case MetricRevenue:
		return func(r filter.Row) dataset.NullFloat { return dataset.Float(r.Revenue) }, nil
	default:
		return nil, eris.Wrapf(ErrUnknownMetric, "%q", string(metric))
	}
}

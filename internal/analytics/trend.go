package analytics

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/esgdash/esgdash/internal/dataset"
	"github.com/esgdash/esgdash/internal/filter"
)

// TrendRow is one (year, region) group. Groups are sparse: a pair absent from
// the view produces no row.
type TrendRow struct {
	Year           int               `json:"year"`
	Region         string            `json:"region"`
	Companies      int               `json:"companies"`
	MeanESG        float64           `json:"mean_esg"`
	MeanRevenue    float64           `json:"mean_revenue"`
	TotalEmissions float64           `json:"total_emissions"`
	MeanIntensity  dataset.NullFloat `json:"mean_intensity"`
}

// regionCollator orders region names. The dataset carries Portuguese region
// labels ("América do Norte"), which byte-order sorting scrambles.
var regionCollator = collate.New(language.BrazilianPortuguese)

// Trend groups the view by (year, region) and aggregates each group. Rows
// come back ordered by year ascending, then region ascending, so chart
// rendering and tests are deterministic. Undefined emissions and intensities
// are skipped, not zero-filled; a group with no defined intensity reports an
// undefined mean.
func Trend(view *filter.View) []TrendRow {
	type key struct {
		year   int
		region string
	}
	type acc struct {
		n              int
		esg            float64
		revenue        float64
		emissions      float64
		intensity      float64
		intensityCount int
	}

	groups := make(map[key]*acc)
	for i := 0; i < view.Len(); i++ {
		row := view.At(i)
		k := key{year: row.Year, region: row.Region}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.n++
		a.esg += row.ESGOverall
		a.revenue += row.Revenue
		if row.Emissions.Valid {
			a.emissions += row.Emissions.Float64
		}
		if row.Intensity.Valid {
			a.intensity += row.Intensity.Float64
			a.intensityCount++
		}
	}

	rows := make([]TrendRow, 0, len(groups))
	for k, a := range groups {
		r := TrendRow{
			Year:           k.year,
			Region:         k.region,
			Companies:      a.n,
			MeanESG:        a.esg / float64(a.n),
			MeanRevenue:    a.revenue / float64(a.n),
			TotalEmissions: a.emissions,
		}
		if a.intensityCount > 0 {
			r.MeanIntensity = dataset.Float(a.intensity / float64(a.intensityCount))
		}
		rows = append(rows, r)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return regionCollator.CompareString(rows[i].Region, rows[j].Region) < 0
	})
	return rows
}

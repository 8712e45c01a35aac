package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource feeds in-memory rows to the loader.
type stubSource struct {
	header []string
	rows   [][]string
	err    error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Read(context.Context) ([]string, [][]string, error) {
	return s.header, s.rows, s.err
}

func fullRow(company, region, year, revenue, margin, emissions, esg, env, soc, gov string) []string {
	return []string{company, region, year, revenue, margin, emissions, esg, env, soc, gov}
}

func TestLoad_CoercesAndKeepsValidRows(t *testing.T) {
	src := &stubSource{
		header: RequiredColumns,
		rows: [][]string{
			fullRow("Acme", "América do Norte", "2020", "100.5", "12.5", "340", "50", "40", "55", "60"),
			fullRow("Beta", "Europa", "2021.0", "200", "8,25", "510.2", "80", "70", "85", "82"),
		},
	}

	table, err := NewLoader(src, 0).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	acme := table.At(0)
	assert.Equal(t, "Acme", acme.Company)
	assert.Equal(t, 2020, acme.Year)
	assert.Equal(t, 100.5, acme.Revenue)
	assert.Equal(t, 50.0, acme.ESGOverall)
	require.True(t, acme.Margin.Valid)
	assert.Equal(t, 12.5, acme.Margin.Float64)

	// "2021.0" year and "8,25" comma-decimal margin both coerce.
	beta := table.At(1)
	assert.Equal(t, 2021, beta.Year)
	require.True(t, beta.Margin.Valid)
	assert.Equal(t, 8.25, beta.Margin.Float64)
}

func TestLoad_DropsRowsMissingESGOrRevenue(t *testing.T) {
	src := &stubSource{
		header: RequiredColumns,
		rows: [][]string{
			fullRow("Acme", "Europa", "2020", "100", "1", "2", "50", "", "", ""),
			fullRow("NoESG", "Europa", "2020", "100", "1", "2", "", "", "", ""),
			fullRow("NoRevenue", "Europa", "2020", "n/a", "1", "2", "50", "", "", ""),
		},
	}

	table, err := NewLoader(src, 0).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Acme", table.At(0).Company)
}

func TestLoad_NonNumericCellsBecomeUndefined(t *testing.T) {
	src := &stubSource{
		header: RequiredColumns,
		rows: [][]string{
			fullRow("Acme", "Europa", "2020", "100", "oops", "-", "50", "", "44", ""),
		},
	}

	table, err := NewLoader(src, 0).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	rec := table.At(0)
	assert.False(t, rec.Margin.Valid)
	assert.False(t, rec.Emissions.Valid)
	assert.False(t, rec.ESGEnvironmental.Valid)
	require.True(t, rec.ESGSocial.Valid)
	assert.Equal(t, 44.0, rec.ESGSocial.Float64)
}

func TestLoad_SchemaMismatch(t *testing.T) {
	src := &stubSource{
		header: []string{"Nome_Compania", "Regiao", "Ano"},
	}

	_, err := NewLoader(src, 0).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))
	assert.Contains(t, err.Error(), "Receita")
}

func TestLoad_HeaderMatchingIsCaseInsensitive(t *testing.T) {
	header := []string{
		"nome_compania", "regiao", "ano", "receita", "margemlucro",
		"emissao_carbono", "esg_geral", "esg_ambiental", "esg_social", "esg_governanca",
	}
	src := &stubSource{
		header: header,
		rows: [][]string{
			fullRow("Acme", "Europa", "2020", "100", "1", "2", "50", "", "", ""),
		},
	}

	table, err := NewLoader(src, 0).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestLoad_BadYearFailsParse(t *testing.T) {
	src := &stubSource{
		header: RequiredColumns,
		rows: [][]string{
			fullRow("Acme", "Europa", "not-a-year", "100", "1", "2", "50", "", "", ""),
		},
	}

	_, err := NewLoader(src, 0).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestLoad_SourceFailureIsIOError(t *testing.T) {
	src := &stubSource{err: errors.New("disk on fire")}

	_, err := NewLoader(src, 0).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestLoad_MaxRowsCap(t *testing.T) {
	rows := make([][]string, 10)
	for i := range rows {
		rows[i] = fullRow("Acme", "Europa", "2020", "100", "1", "2", "50", "", "", "")
	}
	src := &stubSource{header: RequiredColumns, rows: rows}

	table, err := NewLoader(src, 3).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
}

func TestNewTable_ExtremaAndRegions(t *testing.T) {
	table := NewTable([]Record{
		{Company: "A", Region: "Europa", Year: 2021, Revenue: 300, Margin: Float(5), ESGOverall: 70},
		{Company: "B", Region: "Ásia", Year: 2019, Revenue: 120, Margin: NullFloat{}, ESGOverall: 40},
		{Company: "C", Region: "Europa", Year: 2020, Revenue: 80, Margin: Float(-3), ESGOverall: 55},
	})

	yearMin, yearMax := table.YearRange()
	assert.Equal(t, 2019, yearMin)
	assert.Equal(t, 2021, yearMax)

	revMin, revMax := table.RevenueRange()
	assert.Equal(t, 80.0, revMin)
	assert.Equal(t, 300.0, revMax)

	// Undefined margins are skipped, not treated as zero.
	marginMin, marginMax := table.MarginRange()
	assert.Equal(t, -3.0, marginMin)
	assert.Equal(t, 5.0, marginMax)

	assert.Equal(t, []string{"Europa", "Ásia"}, table.Regions())
}

func TestNewTable_Empty(t *testing.T) {
	table := NewTable(nil)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Regions())
}

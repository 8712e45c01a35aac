package dataset

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// Source column names as they appear in the ESG dataset.
const (
	ColCompany          = "Nome_Compania"
	ColRegion           = "Regiao"
	ColYear             = "Ano"
	ColRevenue          = "Receita"
	ColMargin           = "MargemLucro"
	ColEmissions        = "Emissao_Carbono"
	ColESGOverall       = "ESG_Geral"
	ColESGEnvironmental = "ESG_Ambiental"
	ColESGSocial        = "ESG_Social"
	ColESGGovernance    = "ESG_Governanca"
)

// RequiredColumns is the full set of columns a source must provide.
var RequiredColumns = []string{
	ColCompany, ColRegion, ColYear, ColRevenue, ColMargin,
	ColEmissions, ColESGOverall, ColESGEnvironmental, ColESGSocial, ColESGGovernance,
}

// Source supplies raw tabular data: a header row followed by string-valued
// data rows. Implementations exist for XLSX, CSV, SQLite and Postgres; the
// Loader owns type coercion so every backend shares one cleaning path.
type Source interface {
	// Name identifies the source for logs and error messages.
	Name() string
	// Read returns the header and all data rows.
	Read(ctx context.Context) (header []string, rows [][]string, err error)
}

// columnIndex maps each required column to its position in the header.
// Matching is case-insensitive and whitespace-tolerant.
func columnIndex(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	idx := make(map[string]int, len(RequiredColumns))
	var missing []string
	for _, col := range RequiredColumns {
		i, ok := byName[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, eris.Wrapf(ErrSchema, "missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

package dataset

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Load error kinds. Callers classify with errors.Is and degrade to an empty
// table plus a user-visible message; a bad source file never crashes the
// process.
var (
	ErrIO     = eris.New("dataset: source unreadable")
	ErrParse  = eris.New("dataset: value cannot be parsed")
	ErrSchema = eris.New("dataset: schema mismatch")
)

// Loader reads a Source and produces the cleaned base table.
type Loader struct {
	src     Source
	maxRows int
}

// NewLoader creates a Loader. maxRows caps the table size to keep
// recomputation latency predictable; 0 means unbounded.
func NewLoader(src Source, maxRows int) *Loader {
	return &Loader{src: src, maxRows: maxRows}
}

// Load reads all rows, coerces types and drops invalid records.
//
// Cleaning rules:
//   - Year must parse as an integer for every row, otherwise the whole load
//     fails with ErrParse.
//   - Revenue, margin, emissions and the ESG scores are coerced to numeric;
//     unparseable cells become undefined, not zero.
//   - Rows missing the overall ESG score or revenue are dropped.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	header, rows, err := l.src.Read(ctx)
	if err != nil {
		return nil, eris.Wrapf(ErrIO, "read %s: %v", l.src.Name(), err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	dropped := 0
	for n, row := range rows {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}

		year, err := parseYear(row[idx[ColYear]])
		if err != nil {
			return nil, eris.Wrapf(ErrParse, "row %d: column %s: %q", n+1, ColYear, row[idx[ColYear]])
		}

		esg := parseFloat(row[idx[ColESGOverall]])
		revenue := parseFloat(row[idx[ColRevenue]])
		if !esg.Valid || !revenue.Valid {
			dropped++
			continue
		}

		records = append(records, Record{
			Company:          strings.TrimSpace(row[idx[ColCompany]]),
			Region:           strings.TrimSpace(row[idx[ColRegion]]),
			Year:             year,
			Revenue:          revenue.Float64,
			Margin:           parseFloat(row[idx[ColMargin]]),
			Emissions:        parseFloat(row[idx[ColEmissions]]),
			ESGOverall:       esg.Float64,
			ESGEnvironmental: parseFloat(row[idx[ColESGEnvironmental]]),
			ESGSocial:        parseFloat(row[idx[ColESGSocial]]),
			ESGGovernance:    parseFloat(row[idx[ColESGGovernance]]),
		})
	}

	if l.maxRows > 0 && len(records) > l.maxRows {
		zap.L().Warn("dataset truncated to row cap",
			zap.Int("rows", len(records)),
			zap.Int("max_rows", l.maxRows),
		)
		records = records[:l.maxRows]
	}

	zap.L().Info("dataset loaded",
		zap.String("source", l.src.Name()),
		zap.Int("rows", len(records)),
		zap.Int("dropped", dropped),
	)
	return NewTable(records), nil
}

// parseFloat coerces a source cell to numeric. Accepts comma decimal
// separators since the dataset originates from Brazilian sources. Anything
// unparseable is undefined.
func parseFloat(s string) NullFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullFloat{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return Float(f)
	}
	return NullFloat{}
}

// parseYear accepts plain integers and float renderings like "2020.0" that
// spreadsheet cells produce.
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

package dataset

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
)

// CSVSource reads the dataset from a CSV export.
type CSVSource struct {
	Path  string
	Comma rune // zero defaults to ','
}

// NewCSVSource creates a source for the CSV file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Name() string { return "csv:" + s.Path }

// Read returns the first record as the header and the rest as data rows.
func (s *CSVSource) Read(_ context.Context) ([]string, [][]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	if s.Comma != 0 {
		r.Comma = s.Comma
	}
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: read")
	}
	if len(all) == 0 {
		return nil, nil, eris.New("csv: empty file")
	}

	return all[0], all[1:], nil
}

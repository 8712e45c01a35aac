package dataset

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// identPattern guards table names interpolated into queries.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads the dataset from a SQLite table with the standard ESG
// columns.
type SQLiteSource struct {
	DSN   string
	Table string
}

// NewSQLiteSource creates a source reading from table in the database at dsn.
func NewSQLiteSource(dsn, table string) *SQLiteSource {
	return &SQLiteSource{DSN: dsn, Table: table}
}

func (s *SQLiteSource) Name() string { return "sqlite:" + s.DSN + "#" + s.Table }

// Read selects every required column from the table, in declaration order.
func (s *SQLiteSource) Read(ctx context.Context) ([]string, [][]string, error) {
	if !identPattern.MatchString(s.Table) {
		return nil, nil, eris.Errorf("sqlite: invalid table name %q", s.Table)
	}

	db, err := sql.Open("sqlite", s.DSN)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: open")
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, selectAll(s.Table))
	if err != nil {
		return nil, nil, eris.Wrapf(err, "sqlite: query %s", s.Table)
	}
	defer rows.Close()

	data, err := scanRows(rows)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: scan")
	}
	return RequiredColumns, data, nil
}

// selectAll builds the column-explicit select shared by the SQL sources.
func selectAll(table string) string {
	return "SELECT " + strings.Join(RequiredColumns, ", ") + " FROM " + table
}

// scanRows converts a result set into string cells, preserving NULL as the
// empty string so the loader's coercion treats it as undefined.
func scanRows(rows *sql.Rows) ([][]string, error) {
	var out [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(RequiredColumns))
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		row := make([]string, len(cells))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

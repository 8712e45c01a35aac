package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the source needs. pgxmock satisfies it
// in tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresSource reads the dataset from a Postgres table with the standard
// ESG columns.
type PostgresSource struct {
	pool    Pool
	table   string
	closeFn func()
}

// NewPostgresSource connects a pool to the database at connString and reads
// from table.
func NewPostgresSource(ctx context.Context, connString, table string) (*PostgresSource, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresSource{pool: pool, table: table, closeFn: pool.Close}, nil
}

// NewPostgresSourceFromPool wraps an existing pool. Used by tests.
func NewPostgresSourceFromPool(pool Pool, table string) *PostgresSource {
	return &PostgresSource{pool: pool, table: table}
}

func (s *PostgresSource) Name() string { return "postgres:" + s.table }

// Close releases the connection pool.
func (s *PostgresSource) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// Read selects every required column from the table, in declaration order.
func (s *PostgresSource) Read(ctx context.Context) ([]string, [][]string, error) {
	if !identPattern.MatchString(s.table) {
		return nil, nil, eris.Errorf("postgres: invalid table name %q", s.table)
	}

	rows, err := s.pool.Query(ctx, selectAll(s.table))
	if err != nil {
		return nil, nil, eris.Wrapf(err, "postgres: query %s", s.table)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, nil, eris.Wrap(err, "postgres: read row")
		}

		row := make([]string, len(RequiredColumns))
		for i := range row {
			if i < len(vals) && vals[i] != nil {
				row[i] = fmt.Sprint(vals[i])
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "postgres: rows")
	}
	return RequiredColumns, out, nil
}

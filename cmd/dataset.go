package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/esgdash/esgdash/internal/dataset"
)

// openSource builds the configured dataset source. The returned closer is a
// no-op for file-backed sources.
func openSource(ctx context.Context) (dataset.Source, func(), error) {
	noop := func() {}
	d := cfg.Dataset

	switch d.Source {
	case "xlsx":
		src := dataset.NewXLSXSource(d.Path)
		src.SheetName = d.Sheet
		return src, noop, nil
	case "csv":
		return dataset.NewCSVSource(d.Path), noop, nil
	case "sqlite":
		return dataset.NewSQLiteSource(d.Path, d.Table), noop, nil
	case "postgres":
		src, err := dataset.NewPostgresSource(ctx, d.DatabaseURL, d.Table)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	default:
		return nil, nil, eris.Errorf("unknown dataset source %q", d.Source)
	}
}

// loadTable loads the base table, degrading to an empty table on failure. The
// returned message is the user-visible load error, empty on success. The
// dashboard must keep running on a bad source file.
func loadTable(ctx context.Context) (*dataset.Table, string) {
	src, closeSrc, err := openSource(ctx)
	if err != nil {
		zap.L().Error("dataset source unavailable", zap.Error(err))
		return dataset.NewTable(nil), err.Error()
	}
	defer closeSrc()

	table, err := dataset.NewLoader(src, cfg.Dataset.MaxRows).Load(ctx)
	if err != nil {
		zap.L().Error("dataset load failed", zap.Error(err))
		return dataset.NewTable(nil), err.Error()
	}
	return table, ""
}

package main

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/esgdash/esgdash/internal/filter"
	"github.com/esgdash/esgdash/internal/session"
)

var (
	reportYears   string
	reportRegions []string
	reportRevenue string
	reportMargin  string
	reportFormat  string
	reportOut     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute the dashboard once and write it to a file or stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		table, dataErr := loadTable(ctx)
		if dataErr != "" {
			return eris.New(dataErr)
		}

		sess := session.NewManager(table, 0).Create()

		patch, err := reportPatch()
		if err != nil {
			return err
		}

		snap, err := sess.UpdateFilters(patch)
		if err != nil {
			return eris.Wrap(err, "apply filters")
		}

		var out []byte
		switch reportFormat {
		case "json":
			out, err = json.MarshalIndent(snap, "", "  ")
		case "yaml":
			out, err = yaml.Marshal(snap)
		default:
			return eris.Errorf("unknown format %q (want json or yaml)", reportFormat)
		}
		if err != nil {
			return eris.Wrap(err, "encode report")
		}
		out = append(out, '\n')

		if reportOut == "" || reportOut == "-" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		if err := os.WriteFile(reportOut, out, 0o644); err != nil {
			return eris.Wrap(err, "write report")
		}

		zap.L().Info("report written",
			zap.String("path", reportOut),
			zap.Int("rows", table.Len()),
			zap.Int("charts", len(snap.Charts)),
		)
		return nil
	},
}

// reportPatch turns the CLI range flags into a filter patch. Unset flags keep
// the baseline.
func reportPatch() (filter.Patch, error) {
	var p filter.Patch

	if reportYears != "" {
		lo, hi, err := splitRange(reportYears)
		if err != nil {
			return p, eris.Wrap(err, "--years")
		}
		yearMin, err1 := strconv.Atoi(lo)
		yearMax, err2 := strconv.Atoi(hi)
		if err1 != nil || err2 != nil {
			return p, eris.Errorf("--years: %q is not an integer range", reportYears)
		}
		p.YearMin, p.YearMax = &yearMin, &yearMax
	}
	if len(reportRegions) > 0 {
		regions := reportRegions
		p.Regions = &regions
	}
	if reportRevenue != "" {
		lo, hi, err := parseFloatRange(reportRevenue)
		if err != nil {
			return p, eris.Wrap(err, "--revenue")
		}
		p.RevenueMin, p.RevenueMax = &lo, &hi
	}
	if reportMargin != "" {
		lo, hi, err := parseFloatRange(reportMargin)
		if err != nil {
			return p, eris.Wrap(err, "--margin")
		}
		p.MarginMin, p.MarginMax = &lo, &hi
	}
	return p, nil
}

func splitRange(s string) (string, string, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return "", "", eris.Errorf("%q is not a min:max range", s)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

func parseFloatRange(s string) (float64, float64, error) {
	lo, hi, err := splitRange(s)
	if err != nil {
		return 0, 0, err
	}
	min, err1 := strconv.ParseFloat(lo, 64)
	max, err2 := strconv.ParseFloat(hi, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, eris.Errorf("%q is not a numeric range", s)
	}
	return min, max, nil
}

func init() {
	reportCmd.Flags().StringVar(&reportYears, "years", "", "year range as min:max")
	reportCmd.Flags().StringSliceVar(&reportRegions, "regions", nil, "regions to include (default all)")
	reportCmd.Flags().StringVar(&reportRevenue, "revenue", "", "revenue range as min:max")
	reportCmd.Flags().StringVar(&reportMargin, "margin", "", "profit margin range as min:max")
	reportCmd.Flags().StringVar(&reportFormat, "format", "json", "output format: json or yaml")
	reportCmd.Flags().StringVar(&reportOut, "out", "-", "output path, - for stdout")
	rootCmd.AddCommand(reportCmd)
}

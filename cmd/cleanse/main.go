// Command cleanse runs a configured cleaning pipeline over a CSV file
// and writes the cleaned table plus every step report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"tabclean/internal/config"
	"tabclean/internal/exporter"
	"tabclean/internal/ingest"
	"tabclean/internal/pipeline"
	"tabclean/pkg/contracts/domain"
)

func main() {
	cfgPath := flag.String("config", "pipeline.yaml", "pipeline configuration file")
	inPath := flag.String("in", "", "input CSV file (omit with -demo)")
	outDir := flag.String("out", "", "output directory (overrides export.dir)")
	demo := flag.Bool("demo", false, "run against a built-in dirty sample instead of -in")
	normalizeNames := flag.Bool("normalize-names", true, "normalize column names before cleaning")
	flag.Parse()

	if err := run(*cfgPath, *inPath, *outDir, *demo, *normalizeNames); err != nil {
		slog.Error("cleaning failed", "error", err)
		os.Exit(1)
	}
}

func run(cfgPath, inPath, outDir string, demo, normalizeNames bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger := cfg.Logging.BuildLogger(os.Stderr)
	if outDir != "" {
		cfg.Export.Dir = outDir
	}

	steps, err := cfg.BuildSteps(logger)
	if err != nil {
		return err
	}

	var table *domain.Table
	switch {
	case demo:
		table = demoTable()
	case inPath == "":
		return fmt.Errorf("either -in or -demo is required")
	default:
		table, err = ingest.ReadCSVFile(inPath, logger)
		if err != nil {
			return err
		}
	}

	if normalizeNames {
		table, err = table.NormalizeColumnNames()
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	mgr := pipeline.NewManager(logger, steps...)
	state, err := mgr.Run(ctx, table)
	if err != nil {
		return err
	}

	for _, report := range state.Reports() {
		fmt.Println(report.String())
		fmt.Println()
	}

	exp := exporter.New(cfg.Export.Dir, logger)
	if _, err := exp.WriteTableCSV("cleaned.csv", state.Table(), exporter.CSVOptions{BOMPrefix: true}); err != nil {
		return err
	}

	extra := map[string]any{}
	if params, ok := state.Artifact(pipeline.ArtifactNormalizeParams); ok {
		extra["normalize_params"] = params
	}
	if _, err := exp.WriteReportsJSON("run.json", state.ID, state.Reports(), extra); err != nil {
		return err
	}
	if _, err := exp.WriteReportsXLSX("run.xlsx", state.Reports()); err != nil {
		return err
	}

	logger.Info("cleaning run exported",
		slog.String("run_id", state.ID),
		slog.String("dir", cfg.Export.Dir),
		slog.Int("rows", state.Table().NumRows()))
	return nil
}

// demoTable is a deliberately dirty order sample: mixed currency and
// percent notation, ambiguous dates, loose booleans, rare categories
// and missing cells.
func demoTable() *domain.Table {
	return domain.MustNewTable(
		domain.NewTextColumn("Order ID", []string{"A-001", "A-002", "A-003", "A-004", "A-005", "A-006"}, nil),
		domain.NewTextColumn("Amount", []string{"₩1,200", "(3,500)", "12.5%", "N/A", "$2,400", "1.5e3"}, nil),
		domain.NewTextColumn("Order Date", []string{"2026-01-01", "01/02/2026", "2026.03.05", "invalid-date", "2026-02-14", "2026-02-20"}, nil),
		domain.NewTextColumn("Is Member", []string{"Y", "no", "1", "unknown", "true", "off"}, nil),
		domain.NewTextColumn("City", []string{"Seoul", "Seoul", "Busan", "Busan", "Jeju", ""}, []bool{false, false, false, false, false, true}),
	)
}

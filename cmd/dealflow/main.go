package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"dealflow/internal/config"
	"dealflow/internal/exporter"
	"dealflow/internal/geo"
	"dealflow/internal/infrastructure"
	"dealflow/internal/merge"
	"dealflow/internal/pipeline"
	"dealflow/internal/sic"
	"dealflow/internal/source"
	"dealflow/pkg/contracts"
)

func main() {
	configPath := flag.String("config", "dealflow.yaml", "path to the YAML configuration file")
	outPath := flag.String("out", "", "output CSV path (overrides configuration)")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *outPath != "" {
		cfg.Output.Path = *outPath
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if len(cfg.Partners) == 0 {
		logger.Error("No partners configured", slog.String("config", *configPath))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.WithTraceID(ctx, infrastructure.GenerateTraceID())
	logger = infrastructure.LoggerWithContext(ctx)

	logger.Info("Starting deal pipeline run",
		slog.Int("partners", len(cfg.Partners)),
		slog.String("sic_table", cfg.Reference.SicPath),
		slog.String("geo_table", cfg.Reference.GeoPath),
		slog.String("output", cfg.Output.Path))

	sicTable, err := loadSicTable(cfg.Reference.SicPath)
	if err != nil {
		logger.Error("Failed to load SIC reference table", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("SIC reference table loaded", slog.Int("codes", len(sicTable)))

	geoLookup, err := geo.LoadCSV(cfg.Reference.GeoPath)
	if err != nil {
		logger.Error("Failed to load geography reference table", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Geography reference table loaded", slog.Int("area_codes", len(geoLookup)))

	partners := make([]pipeline.Partner, 0, len(cfg.Partners))
	for _, p := range cfg.Partners {
		partners = append(partners, pipeline.Partner{
			Name:   p.Name,
			Source: source.NewExcelSource(p.Workbook, p.Sheet, logger),
		})
	}

	runner := pipeline.NewRunner(logger, sicTable, geoLookup, cfg.Pipeline.Workers)
	results, report, err := runner.RunAll(ctx, partners)
	if err != nil {
		logger.Error("Run cancelled", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, failure := range report.Failures() {
		logger.Warn("Partner pipeline failed",
			slog.String("partner", failure.Partner),
			slog.String("error", failure.Error()))
	}
	if report.Succeeded() == 0 {
		logger.Error("All partner pipelines failed", slog.Int("partners", len(partners)))
		os.Exit(1)
	}

	merged := merge.Merge(results...)
	if err := exporter.NewCSVWriter(logger).WriteDeals(cfg.Output.Path, merged); err != nil {
		logger.Error("Failed to write output table", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Run complete",
		slog.String("run_id", report.RunID),
		slog.Int("partners_succeeded", report.Succeeded()),
		slog.Int("partners_failed", len(report.Failures())),
		slog.Int("total_deals", report.TotalDeals),
		slog.String("output", cfg.Output.Path),
		slog.Duration("duration", report.Duration()))
}

// loadSicTable picks the loader from the file extension: the ONS structure
// workbook for .xlsx, the corrected two-column lookup otherwise.
func loadSicTable(path string) (sic.Table, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
		return sic.LoadXLSX(path)
	}
	return sic.LoadCSV(path)
}

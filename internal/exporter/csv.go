// Package exporter persists the merged deal table. CSV is the one format
// the storage collaborator currently asks for; list-valued classification
// cells are JSON-encoded so they survive the flat layout.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dealflow/pkg/contracts/domain"
)

// Header is the fixed column order of the output table.
var Header = []string{
	"partner", "id", "status", "value", "estimatedValue", "dealDate",
	"deal_year", "classification", "recipient_id", "recipient_name",
	"recipient_postcode", "recipient_area_code", "latitude", "longitude",
	"arranging_org_id", "arranging_org_name",
	"credit_count", "credit_value", "count_with_credit",
	"equity_count", "equity_value", "count_with_equity",
	"grants_count", "grants_value", "count_with_grants",
	"multi_instrument", "deal_count",
	"region", "local_authority", "imd_decile",
}

// CSVWriter writes merged deal tables.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a writer. A nil logger falls back to slog.Default.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "exporter"))}
}

// WriteDeals writes the merged table to path, creating parent directories
// as needed. The file starts with a UTF-8 BOM so spreadsheet tools pick up
// the encoding.
func (w *CSVWriter) WriteDeals(path string, deals []domain.DealRecord) error {
	w.logger.Info("writing deals table",
		slog.String("path", path),
		slog.Int("records", len(deals)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range deals {
		record, err := dealRecord(&deals[i])
		if err != nil {
			return fmt.Errorf("failed to format deal %q: %w", deals[i].ID, err)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write deal %q: %w", deals[i].ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

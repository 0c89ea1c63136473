// Package source acquires raw deal rows for the pipeline. The core consumes
// only the RowSource interface; the Excel implementation here is the default
// collaborator for partners that deliver workbook extracts.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"dealflow/pkg/contracts/domain"
)

// preambleRows is the number of metadata rows partner sheets carry between
// the header and the data proper.
const preambleRows = 5

// DefaultSheet is the worksheet partner extracts use for deal rows.
const DefaultSheet = "Deals"

// RowSource produces the raw rows for one partner run.
type RowSource interface {
	Rows(ctx context.Context) ([]domain.RawRow, error)
}

// ExcelSource reads a partner workbook into raw rows. The first sheet row is
// the header of canonical column paths; the preamble rows after it and any
// row without a deal ID are dropped, as are columns with a blank header.
type ExcelSource struct {
	path   string
	sheet  string
	logger *slog.Logger
}

// NewExcelSource creates a source for one workbook. An empty sheet name
// falls back to DefaultSheet; a nil logger falls back to slog.Default.
func NewExcelSource(path, sheet string, logger *slog.Logger) *ExcelSource {
	if sheet == "" {
		sheet = DefaultSheet
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelSource{
		path:   path,
		sheet:  sheet,
		logger: logger.With(slog.String("component", "excel_source")),
	}
}

// Rows reads and cleans the sheet.
func (s *ExcelSource) Rows(ctx context.Context) ([]domain.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", s.sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", s.sheet)
	}

	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = strings.TrimSpace(col)
	}

	out := make([]domain.RawRow, 0, len(rows))
	skipped := 0
	for i, row := range rows[1:] {
		if i < preambleRows {
			continue
		}

		rr := make(domain.RawRow, len(header))
		for j, col := range header {
			if col == "" || j >= len(row) {
				continue
			}
			rr[col] = row[j]
		}
		if strings.TrimSpace(rr[domain.ColID]) == "" {
			skipped++
			continue
		}
		out = append(out, rr)
	}

	s.logger.Info("workbook loaded",
		slog.String("path", s.path),
		slog.String("sheet", s.sheet),
		slog.Int("rows", len(out)),
		slog.Int("skipped_no_id", skipped))
	return out, nil
}

// StaticSource serves a fixed row set; used in tests and for callers that
// acquire rows through other means.
type StaticSource struct {
	rows []domain.RawRow
	err  error
}

// NewStaticSource creates a source over the given rows.
func NewStaticSource(rows []domain.RawRow) *StaticSource {
	return &StaticSource{rows: rows}
}

// NewFailingSource creates a source that always fails; used to test partner
// failure isolation.
func NewFailingSource(err error) *StaticSource {
	return &StaticSource{err: err}
}

// Rows implements RowSource.
func (s *StaticSource) Rows(ctx context.Context) ([]domain.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.rows, s.err
}

package sic

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadCSV reads a SIC reference table from a CSV file with siccode and name
// columns (the corrected lookup file published alongside the dashboard).
func LoadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SIC reference: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a SIC reference table from CSV data.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read SIC header: %w", err)
	}

	codeIdx, nameIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "siccode":
			codeIdx = i
		case "name":
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("SIC reference missing siccode/name columns: %v", header)
	}

	table := make(Table)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read SIC record: %w", err)
		}
		if codeIdx >= len(record) || nameIdx >= len(record) {
			continue
		}
		code := strings.TrimSpace(record[codeIdx])
		if code == "" {
			continue
		}
		table[code] = strings.TrimSpace(record[nameIdx])
	}

	slog.Debug("SIC reference loaded", slog.Int("entries", len(table)))
	return table, nil
}

// LoadXLSX reads the ONS SIC 2007 summary-of-structure workbook. The sheet
// interleaves section, division, group, class and subclass rows with blank
// cells carried down from the row above, so section and class values are
// forward-filled while scanning. Each class or subclass row yields one
// 5-character code mapped to its section name.
func LoadXLSX(path string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SIC workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("SIC workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read SIC sheet: %w", err)
	}

	// Fixed column layout: section, division, group, class, subclass, each
	// as a code/name pair. Row 0 is a title, row 1 the header.
	const (
		colSectionName  = 1
		colClassCode    = 6
		colSubclassCode = 8
	)

	table := make(Table)
	var sectionName, classCode string

	for i, row := range rows {
		if i < 2 {
			continue
		}
		if v := cellAt(row, colSectionName); v != "" {
			sectionName = v
		}

		class := digits(cellAt(row, colClassCode))
		subclass := digits(cellAt(row, colSubclassCode))
		if class == "" && subclass == "" {
			continue
		}
		if class != "" {
			classCode = class
		}

		code := subclass
		if code == "" {
			code = classCode + "0"
		}
		if code == "" || sectionName == "" {
			continue
		}
		table[code] = sectionName
	}

	slog.Debug("SIC workbook loaded", slog.Int("entries", len(table)))
	return table, nil
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

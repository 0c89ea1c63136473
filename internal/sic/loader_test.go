package sic

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sic.xlsx")
	writeStructureSheet(t, path, [][]string{
		// title and header rows are skipped
		{"SIC 2007 summary of structure"},
		{"Section", "Description", "Division", "Description", "Group", "Description", "Class", "Description", "Sub Class", "Description"},
		{"A", "Agriculture, forestry and fishing", "01", "Crop and animal production", "", "", "", "", "", ""},
		{"", "", "", "", "01.1", "Growing of non-perennial crops", "", "", "", ""},
		// class row: code derives from class digits + "0"
		{"", "", "", "", "", "", "01.11", "Growing of cereals", "", ""},
		// subclass rows carry the section forward from above
		{"", "", "", "", "", "", "01.49", "Raising of other animals", "01.49/1", "Bee keeping"},
		{"", "", "", "", "", "", "", "", "01.49/9", "Other animals n.e.c."},
		{"M", "Professional, scientific and technical activities", "70", "Head office activities", "", "", "", "", "", ""},
		{"", "", "", "", "", "", "70.22", "Business consultancy", "", ""},
	})

	table, err := LoadXLSX(path)
	require.NoError(t, err)

	assert.Equal(t, "Agriculture, forestry and fishing", table["01110"])
	assert.Equal(t, "Agriculture, forestry and fishing", table["01491"])
	assert.Equal(t, "Agriculture, forestry and fishing", table["01499"])
	assert.Equal(t, "Professional, scientific and technical activities", table["70220"])

	// Group rows produce no code of their own.
	_, ok := table["01100"]
	assert.False(t, ok)
}

func TestLoadXLSX_MissingFile(t *testing.T) {
	_, err := LoadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}

func writeStructureSheet(t *testing.T, path string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			if cell == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, name, cell))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

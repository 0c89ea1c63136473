package geo

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"dealflow/pkg/contracts/domain"
)

// Column headers accepted for each field of the LSOA lookup. The published
// ONS extract uses the coded names; re-exported files tend to use the plain
// ones.
var columnAliases = map[string][]string{
	"area_code":       {"LSOA11CD", "area_code", "areacode"},
	"region":          {"RGN18NM", "region"},
	"local_authority": {"LAD18NM", "local_authority"},
	"imd_decile":      {"imd_decile", "IMD_Decile"},
	"latitude":        {"latitude"},
	"longitude":       {"longitude"},
}

// LoadCSV reads the small-area lookup from a CSV file.
func LoadCSV(path string) (Lookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geo reference: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses the small-area lookup. Welsh, Scottish and Northern Irish
// area codes get their country as region, since the English region column is
// blank for them in the source data.
func ReadCSV(r io.Reader) (Lookup, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read geo header: %w", err)
	}

	idx := make(map[string]int)
	for i, col := range header {
		col = strings.TrimSpace(col)
		for field, aliases := range columnAliases {
			for _, alias := range aliases {
				if strings.EqualFold(col, alias) {
					idx[field] = i
				}
			}
		}
	}
	if _, ok := idx["area_code"]; !ok {
		return nil, fmt.Errorf("geo reference missing area code column: %v", header)
	}

	lookup := make(Lookup)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read geo record: %w", err)
		}

		code := field(record, idx, "area_code")
		if code == "" {
			continue
		}

		entry := domain.GeoEntry{
			AreaCode:       code,
			Region:         regionFor(code, field(record, idx, "region")),
			LocalAuthority: field(record, idx, "local_authority"),
			IMDDecile:      intField(record, idx, "imd_decile"),
			Latitude:       floatField(record, idx, "latitude"),
			Longitude:      floatField(record, idx, "longitude"),
		}
		lookup[code] = entry
	}

	slog.Debug("geo reference loaded", slog.Int("entries", len(lookup)))
	return lookup, nil
}

// regionFor substitutes the country for area codes outside England.
func regionFor(areaCode, region string) string {
	switch {
	case strings.HasPrefix(areaCode, "W"):
		return "Wales"
	case strings.HasPrefix(areaCode, "S"):
		return "Scotland"
	case strings.HasPrefix(areaCode, "N"):
		return "Northern Ireland"
	}
	return region
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func intField(record []string, idx map[string]int, name string) *int {
	s := field(record, idx, name)
	if s == "" {
		return nil
	}
	// Some extracts label the decile, e.g. "1 most deprived".
	v, err := strconv.Atoi(strings.Fields(s)[0])
	if err != nil {
		return nil
	}
	return &v
}

func floatField(record []string, idx map[string]int, name string) *float64 {
	s := field(record, idx, name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

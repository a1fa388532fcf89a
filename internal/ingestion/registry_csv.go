package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/levilina/marine-data-backend/internal/normalization"
	"github.com/levilina/marine-data-backend/internal/types"
)

// ImportStats summarizes one registry CSV parse.
type ImportStats struct {
	Rows    int `json:"rows"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

// column aliases seen across registry exports
var (
	imoAliases      = []string{"imo", "imo number", "imo_no"}
	nameAliases     = []string{"vessel name", "name", "shipname", "vessel"}
	callAliases     = []string{"call sign", "callsign", "ircs"}
	flagAliases     = []string{"flag", "flag state", "country"}
	externalAliases = []string{"vessel id", "vessel_id", "ssid", "gfw id", "gfw_id"}
)

func headerIndex(header []string, aliases []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, a := range aliases {
			if h == a {
				return i
			}
		}
	}
	return -1
}

// ParseRegistryCSV reads a registry export and returns normalized records.
// Rows missing both an IMO and a name are dropped; everything else is kept so
// name-only vessels still get a resolution attempt.
func ParseRegistryCSV(source string, r io.Reader) ([]*types.RegistryRecord, ImportStats, error) {
	stats := ImportStats{}
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, stats, fmt.Errorf("empty registry source name")
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read csv header: %w", err)
	}

	imoIdx := headerIndex(header, imoAliases)
	nameIdx := headerIndex(header, nameAliases)
	callIdx := headerIndex(header, callAliases)
	flagIdx := headerIndex(header, flagAliases)
	extIdx := headerIndex(header, externalAliases)

	if imoIdx < 0 && nameIdx < 0 {
		return nil, stats, fmt.Errorf("csv has neither an IMO nor a vessel name column (header: %s)", strings.Join(header, ","))
	}

	field := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []*types.RegistryRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read csv row: %w", err)
		}
		stats.Rows++

		imo := normalization.NormalizeIMO(field(row, imoIdx))
		name := field(row, nameIdx)
		if imo == "" && name == "" {
			stats.Dropped++
			continue
		}

		records = append(records, &types.RegistryRecord{
			Source:         source,
			IMO:            imo,
			Name:           name,
			NormalizedName: normalization.NormalizeName(name),
			CallSign:       normalization.NormalizeCallSign(field(row, callIdx)),
			Flag:           normalization.NormalizeFlag(field(row, flagIdx)),
			ExternalID:     field(row, extIdx),
		})
		stats.Kept++
	}
	return records, stats, nil
}

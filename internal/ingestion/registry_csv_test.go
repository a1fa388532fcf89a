package ingestion

import (
	"strings"
	"testing"
)

func TestParseRegistryCSV(t *testing.T) {
	csvData := `IMO Number,Vessel Name,Call Sign,Flag State
9123456,F/V Ndar,6VAB,SEN
IMO 9223344, Atlantic Star ,EA5X,esp
,,
,NAMEONLY,,SEN
`
	records, stats, err := ParseRegistryCSV("senegal-2023", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseRegistryCSV: %v", err)
	}
	if stats.Rows != 4 || stats.Kept != 3 || stats.Dropped != 1 {
		t.Fatalf("stats: %+v", stats)
	}

	if records[0].IMO != "9123456" || records[0].NormalizedName != "F V NDAR" || records[0].Flag != "SEN" {
		t.Fatalf("record 0: %+v", records[0])
	}
	if records[1].IMO != "9223344" || records[1].Name != "Atlantic Star" || records[1].Flag != "ESP" {
		t.Fatalf("record 1: %+v", records[1])
	}
	// Name-only rows are kept for a name-based resolution attempt.
	if records[2].IMO != "" || records[2].Name != "NAMEONLY" {
		t.Fatalf("record 2: %+v", records[2])
	}
	for _, r := range records {
		if r.Source != "senegal-2023" {
			t.Fatalf("source not set: %+v", r)
		}
	}
}

func TestParseRegistryCSVHeaderAliases(t *testing.T) {
	csvData := "imo,shipname,ircs,country,ssid\n9123456,NDAR,6VAB,SEN,abc123\n"
	records, _, err := ParseRegistryCSV("alt", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseRegistryCSV: %v", err)
	}
	if len(records) != 1 || records[0].ExternalID != "abc123" || records[0].CallSign != "6VAB" {
		t.Fatalf("records: %+v", records)
	}
}

func TestParseRegistryCSVMissingColumns(t *testing.T) {
	if _, _, err := ParseRegistryCSV("bad", strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Fatal("expected error for csv without imo or name columns")
	}
}

func TestParseRegistryCSVEmptySource(t *testing.T) {
	if _, _, err := ParseRegistryCSV("  ", strings.NewReader("imo\n1\n")); err == nil {
		t.Fatal("expected error for empty source")
	}
}

package services

import (
	"testing"

	"github.com/levilina/marine-data-backend/internal/clients/gfw"
	"github.com/levilina/marine-data-backend/internal/types"
)

func f(v float64) *float64 { return &v }

func TestPickByIMO(t *testing.T) {
	entries := []gfw.VesselEntry{
		{
			SelfReportedInfo: []gfw.SelfReportedInfo{{ID: "wrong", IMO: "1111111"}},
		},
		{
			SelfReportedInfo: []gfw.SelfReportedInfo{{ID: "right", IMO: "9123456"}},
			RegistryInfo:     []gfw.RegistryInfo{{IMO: "9123456"}},
		},
	}
	got := pickByIMO(entries, "9123456")
	if got == nil || got.GFWID() != "right" {
		t.Fatalf("pickByIMO = %v", got)
	}
	if pickByIMO(entries, "7777777") != nil {
		t.Fatal("pickByIMO matched an absent IMO")
	}
}

func TestPickByNameVerifiesIMO(t *testing.T) {
	entries := []gfw.VesselEntry{
		{
			SelfReportedInfo: []gfw.SelfReportedInfo{{ID: "imposter", ShipName: "NDAR"}},
			RegistryInfo:     []gfw.RegistryInfo{{VesselName: "NDAR", IMO: "1111111"}},
		},
		{
			SelfReportedInfo: []gfw.SelfReportedInfo{{ID: "real", ShipName: "NDAR"}},
			RegistryInfo:     []gfw.RegistryInfo{{VesselName: "NDAR", IMO: "9123456"}},
		},
	}
	rec := &types.RegistryRecord{IMO: "9123456", Name: "NDAR", NormalizedName: "NDAR"}
	got := pickByName(entries, rec)
	if got == nil || got.GFWID() != "real" {
		t.Fatalf("pickByName = %v", got)
	}

	// Without an IMO an exact normalized-name hit is accepted.
	noIMO := &types.RegistryRecord{Name: "Ndar", NormalizedName: "NDAR"}
	if got := pickByName(entries, noIMO); got == nil {
		t.Fatal("pickByName rejected exact name match")
	}

	// A record whose IMO no entry confirms stays unmatched.
	mismatched := &types.RegistryRecord{IMO: "5555555", Name: "NDAR", NormalizedName: "NDAR"}
	if got := pickByName(entries, mismatched); got != nil {
		t.Fatalf("pickByName accepted unconfirmed IMO: %v", got)
	}
}

func TestMergeEntryPrefersRegistryInfo(t *testing.T) {
	entry := &gfw.VesselEntry{
		SelfReportedInfo: []gfw.SelfReportedInfo{{
			ID:       "ssid-1",
			ShipName: "NDAR SELF",
			Flag:     "sen",
			IMO:      "9123456",
			ShipType: "FISHING",
		}},
		RegistryInfo: []gfw.RegistryInfo{{
			VesselName:    "NDAR",
			Flag:          "SEN",
			IMO:           "9123456",
			LengthMeters:  f(62),
			EnginePowerKW: f(3500),
			GrossTonnage:  f(900),
		}},
		CombinedSourcesInfo: []gfw.CombinedSourceInfo{{
			GearTypes: []gfw.GearType{{Name: "trawlers"}, {Name: "TRAWLERS"}},
		}},
		OwnerOperatorInfo: []gfw.OwnerOperatorInfo{{
			Owner: &gfw.Owner{Name: "Ocean Corp", Country: "CHN"},
		}},
	}
	rec := &types.RegistryRecord{IMO: "9123456", Name: "NDAR", NormalizedName: "NDAR"}

	v := mergeEntry(entry, rec, MatchStrategyIMO)
	if v.GFWVesselID == nil || *v.GFWVesselID != "ssid-1" {
		t.Fatalf("gfw id: %+v", v.GFWVesselID)
	}
	if v.Name != "NDAR" || v.Flag != "SEN" {
		t.Fatalf("registry values should win: name=%q flag=%q", v.Name, v.Flag)
	}
	if v.LengthM == nil || *v.LengthM != 62 || v.EnginePowerKW == nil || *v.EnginePowerKW != 3500 {
		t.Fatalf("dimensions not merged: %+v", v)
	}
	if v.GearTypes != "TRAWLERS" {
		t.Fatalf("gear types not deduplicated: %q", v.GearTypes)
	}
	if v.Ownership != "Ocean Corp" || v.OwnerCountry != "CHN" {
		t.Fatalf("ownership not merged: %q %q", v.Ownership, v.OwnerCountry)
	}
	if v.MatchStrategy != MatchStrategyIMO {
		t.Fatalf("strategy: %q", v.MatchStrategy)
	}
	if v.ShipType != "FISHING" {
		t.Fatalf("self-reported ship type lost: %q", v.ShipType)
	}
}

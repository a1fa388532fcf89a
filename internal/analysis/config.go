package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/utils"
)

// Thresholds tune the classification and supertrawler rules. Defaults mirror
// the values the Senegal fleet study settled on.
type Thresholds struct {
	HomeFlag string `yaml:"home_flag"`

	FishingHoursMin   float64 `yaml:"fishing_hours_min"`    // below this a vessel is suspiciously idle
	EnginePowerMaxKW  float64 `yaml:"engine_power_max_kw"`  // above this a vessel is industrial scale
	VesselLengthMaxM  float64 `yaml:"vessel_length_max_m"`  // above this a vessel is large
	GrossTonnageMax   float64 `yaml:"gross_tonnage_max"`    // supertrawler tonnage bar
	ForeignPortPctMax float64 `yaml:"foreign_port_pct_max"` // foreign port visit share
	AISGapHoursMax    float64 `yaml:"ais_gap_hours_max"`    // gaps longer than this are suspicious

	SupertrawlerScoreMin int `yaml:"supertrawler_score_min"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HomeFlag:             "SEN",
		FishingHoursMin:      200,
		EnginePowerMaxKW:     3000,
		VesselLengthMaxM:     50,
		GrossTonnageMax:      500,
		ForeignPortPctMax:    0.3,
		AISGapHoursMax:       48,
		SupertrawlerScoreMin: 2,
	}
}

// LoadThresholds starts from defaults, overlays an optional YAML file
// (ANALYSIS_CONFIG_PATH), then environment overrides.
func LoadThresholds(log *logger.Logger) (Thresholds, error) {
	t := DefaultThresholds()

	path := utils.GetEnv("ANALYSIS_CONFIG_PATH", "", log)
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return t, fmt.Errorf("read analysis config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &t); err != nil {
			return t, fmt.Errorf("parse analysis config %s: %w", path, err)
		}
		log.Info("Loaded analysis thresholds from file", "path", path)
	}

	t.HomeFlag = utils.GetEnv("ANALYSIS_HOME_FLAG", t.HomeFlag, log)
	t.FishingHoursMin = utils.GetEnvAsFloat("ANALYSIS_FISHING_HOURS_MIN", t.FishingHoursMin, log)
	t.EnginePowerMaxKW = utils.GetEnvAsFloat("ANALYSIS_ENGINE_POWER_MAX_KW", t.EnginePowerMaxKW, log)
	t.VesselLengthMaxM = utils.GetEnvAsFloat("ANALYSIS_VESSEL_LENGTH_MAX_M", t.VesselLengthMaxM, log)
	t.GrossTonnageMax = utils.GetEnvAsFloat("ANALYSIS_GROSS_TONNAGE_MAX", t.GrossTonnageMax, log)
	t.ForeignPortPctMax = utils.GetEnvAsFloat("ANALYSIS_FOREIGN_PORT_PCT_MAX", t.ForeignPortPctMax, log)
	t.AISGapHoursMax = utils.GetEnvAsFloat("ANALYSIS_AIS_GAP_HOURS_MAX", t.AISGapHoursMax, log)
	t.SupertrawlerScoreMin = utils.GetEnvAsInt("ANALYSIS_SUPERTRAWLER_SCORE_MIN", t.SupertrawlerScoreMin, log)

	return t, nil
}

package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/levilina/marine-data-backend/internal/logger"
)

func TestLoadThresholdsDefaults(t *testing.T) {
	t.Setenv("ANALYSIS_CONFIG_PATH", "")
	log, _ := logger.New("test")

	got, err := LoadThresholds(log)
	if err != nil {
		t.Fatalf("LoadThresholds: %v", err)
	}
	want := DefaultThresholds()
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLoadThresholdsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analysis.yaml")
	content := "home_flag: MRT\nfishing_hours_min: 100\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ANALYSIS_CONFIG_PATH", path)
	t.Setenv("ANALYSIS_FISHING_HOURS_MIN", "150")
	log, _ := logger.New("test")

	got, err := LoadThresholds(log)
	if err != nil {
		t.Fatalf("LoadThresholds: %v", err)
	}
	if got.HomeFlag != "MRT" {
		t.Fatalf("file override lost: %q", got.HomeFlag)
	}
	// Env wins over the file.
	if got.FishingHoursMin != 150 {
		t.Fatalf("env override lost: %.0f", got.FishingHoursMin)
	}
	// Untouched values keep their defaults.
	if got.AISGapHoursMax != DefaultThresholds().AISGapHoursMax {
		t.Fatalf("default lost: %.0f", got.AISGapHoursMax)
	}
}

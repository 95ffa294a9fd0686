package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ITSA_DATA_SOURCE", "csv")
	t.Setenv("ITSA_CSV_PATH", "/data/series.csv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analysis.HarmonicPairs != 2 {
		t.Errorf("default harmonic pairs: got %d", cfg.Analysis.HarmonicPairs)
	}
	if cfg.Analysis.MaxLag != 24 {
		t.Errorf("default max lag: got %d", cfg.Analysis.MaxLag)
	}
	if cfg.Analysis.ConfLevel != 0.95 {
		t.Errorf("default confidence level: got %f", cfg.Analysis.ConfLevel)
	}
	if cfg.Report.MarkdownPath != "report.md" {
		t.Errorf("default markdown path: got %s", cfg.Report.MarkdownPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ITSA_DATA_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/itsa")
	t.Setenv("ITSA_HARMONIC_PAIRS", "3")
	t.Setenv("ITSA_REFERENCE_POP", "10000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Data.Source != "postgres" {
		t.Errorf("source: got %s", cfg.Data.Source)
	}
	if cfg.Analysis.HarmonicPairs != 3 {
		t.Errorf("harmonic pairs override: got %d", cfg.Analysis.HarmonicPairs)
	}
	if cfg.Analysis.ReferencePop != 10000 {
		t.Errorf("reference pop override: got %f", cfg.Analysis.ReferencePop)
	}
}

func TestLoadSyntheticSource(t *testing.T) {
	t.Setenv("ITSA_DATA_SOURCE", "synthetic")
	t.Setenv("ITSA_SEED", "123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Data.Source != "synthetic" {
		t.Errorf("source: got %s", cfg.Data.Source)
	}
	if cfg.Data.Seed != 123 {
		t.Errorf("seed: got %d", cfg.Data.Seed)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"csv without path", map[string]string{"ITSA_DATA_SOURCE": "csv", "ITSA_CSV_PATH": ""}},
		{"postgres without url", map[string]string{"ITSA_DATA_SOURCE": "postgres", "DATABASE_URL": ""}},
		{"unknown source", map[string]string{"ITSA_DATA_SOURCE": "kafka"}},
		{"bad harmonic pairs", map[string]string{"ITSA_DATA_SOURCE": "csv", "ITSA_CSV_PATH": "x.csv", "ITSA_HARMONIC_PAIRS": "9"}},
		{"bad confidence level", map[string]string{"ITSA_DATA_SOURCE": "csv", "ITSA_CSV_PATH": "x.csv", "ITSA_CONF_LEVEL": "1.5"}},
		{"bad reference month", map[string]string{"ITSA_DATA_SOURCE": "csv", "ITSA_CSV_PATH": "x.csv", "ITSA_REFERENCE_MONTH": "13"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected a configuration error")
			}
		})
	}
}

package config

import (
	"os"
	"strconv"

	"itsa/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
	Report   ReportConfig
}

// DataConfig selects where observations come from
type DataConfig struct {
	// Source is "csv", "postgres", or "synthetic"
	Source  string
	CSVPath string
	Table   string
	// Seed drives the generator when Source is "synthetic"
	Seed uint64
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// AnalysisConfig holds the modeling knobs
type AnalysisConfig struct {
	HarmonicPairs  int
	MaxLag         int
	ReferencePop   float64
	ReferenceMonth int
	PointsPerMonth int
	ConfLevel      float64
}

// ReportConfig holds output paths; empty paths disable that writer
type ReportConfig struct {
	MarkdownPath string
	HTMLPath     string
	WorkbookPath string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Data: DataConfig{
			Source:  getEnv("ITSA_DATA_SOURCE", "csv"),
			CSVPath: getEnv("ITSA_CSV_PATH", ""),
			Table:   getEnv("ITSA_PG_TABLE", "observations"),
			Seed:    uint64(getEnvInt("ITSA_SEED", 42)),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Analysis: AnalysisConfig{
			HarmonicPairs:  getEnvInt("ITSA_HARMONIC_PAIRS", 2),
			MaxLag:         getEnvInt("ITSA_MAX_LAG", 24),
			ReferencePop:   getEnvFloat("ITSA_REFERENCE_POP", 100_000),
			ReferenceMonth: getEnvInt("ITSA_REFERENCE_MONTH", 6),
			PointsPerMonth: getEnvInt("ITSA_POINTS_PER_MONTH", 10),
			ConfLevel:      getEnvFloat("ITSA_CONF_LEVEL", 0.95),
		},
		Report: ReportConfig{
			MarkdownPath: getEnv("ITSA_REPORT_MD", "report.md"),
			HTMLPath:     getEnv("ITSA_REPORT_HTML", ""),
			WorkbookPath: getEnv("ITSA_REPORT_XLSX", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Data.Source {
	case "csv":
		if c.Data.CSVPath == "" {
			return errors.New("CONFIG_ERROR", "ITSA_CSV_PATH is required when ITSA_DATA_SOURCE=csv")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("CONFIG_ERROR", "DATABASE_URL is required when ITSA_DATA_SOURCE=postgres")
		}
	case "synthetic":
	default:
		return errors.New("CONFIG_ERROR", "ITSA_DATA_SOURCE must be csv, postgres, or synthetic")
	}

	if c.Analysis.HarmonicPairs < 0 || c.Analysis.HarmonicPairs > 6 {
		return errors.New("CONFIG_ERROR", "ITSA_HARMONIC_PAIRS must be in 0..6")
	}
	if c.Analysis.ConfLevel <= 0 || c.Analysis.ConfLevel >= 1 {
		return errors.New("CONFIG_ERROR", "ITSA_CONF_LEVEL must be in (0, 1)")
	}
	if c.Analysis.ReferenceMonth < 1 || c.Analysis.ReferenceMonth > 12 {
		return errors.New("CONFIG_ERROR", "ITSA_REFERENCE_MONTH must be in 1..12")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

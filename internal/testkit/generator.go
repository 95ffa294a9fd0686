// Package testkit generates synthetic monthly count series from a known
// Poisson process, for tests and for the simulate command. The generating
// process is log-linear: baseline, optional secular trend, a step rate ratio
// at the intervention month, and optional first-harmonic seasonality.
package testkit

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"itsa/domain/timeseries"
)

type Config struct {
	Months int
	Seed   uint64

	StartYear  int
	StartMonth int

	// InterventionAt is the 1-based time index of the first month with the
	// intervention in force. Zero disables the intervention entirely.
	InterventionAt int

	// BaselineMean is the expected pre-intervention monthly count.
	BaselineMean float64
	// StepRR multiplies the rate from InterventionAt on. 1 means no effect.
	StepRR float64
	// TrendRR multiplies the rate per elapsed month. 1 means no trend.
	TrendRR float64
	// SeasonalAmplitude scales a sin(2*pi*month/12) term on the log scale.
	// Zero means no seasonality.
	SeasonalAmplitude float64

	Population float64
	StdPop     float64
}

func DefaultConfig() Config {
	return Config{
		Months:            60,
		Seed:              42,
		StartYear:         2018,
		StartMonth:        1,
		InterventionAt:    37,
		BaselineMean:      200,
		StepRR:            1,
		TrendRR:           1,
		SeasonalAmplitude: 0,
		Population:        400_000,
		StdPop:            380_000,
	}
}

// Generate draws the series and returns it as a validated dataset.
func Generate(cfg Config) (*timeseries.Dataset, error) {
	if cfg.Months <= 0 {
		return nil, fmt.Errorf("months must be > 0")
	}
	if cfg.BaselineMean <= 0 {
		return nil, fmt.Errorf("baseline mean must be > 0")
	}
	if cfg.StepRR <= 0 || cfg.TrendRR <= 0 {
		return nil, fmt.Errorf("rate ratios must be > 0")
	}
	if cfg.Population <= 0 || cfg.StdPop <= 0 {
		return nil, fmt.Errorf("populations must be > 0")
	}

	src := rand.NewSource(cfg.Seed)
	obs := make([]timeseries.Observation, cfg.Months)

	year := cfg.StartYear
	month := cfg.StartMonth
	for i := 0; i < cfg.Months; i++ {
		t := i + 1

		logMu := math.Log(cfg.BaselineMean)
		logMu += math.Log(cfg.TrendRR) * float64(t)
		step := 0
		if cfg.InterventionAt > 0 && t >= cfg.InterventionAt {
			step = 1
			logMu += math.Log(cfg.StepRR)
		}
		logMu += cfg.SeasonalAmplitude * math.Sin(2*math.Pi*float64(month)/12)

		draw := distuv.Poisson{Lambda: math.Exp(logMu), Src: src}
		obs[i] = timeseries.Observation{
			Year:         year,
			Month:        month,
			TimeIndex:    t,
			OutcomeCount: int(draw.Rand()),
			Intervention: step,
			Population:   cfg.Population,
			StdPop:       cfg.StdPop,
		}

		month++
		if month > 12 {
			month = 1
			year++
		}
	}

	return timeseries.New(obs)
}

package testkit

import (
	"context"

	"itsa/domain/timeseries"
	"itsa/ports"
)

// Source serves a generated dataset through the observation source port, so
// the full pipeline can run without external data.
type Source struct {
	cfg Config
}

// NewSource creates a synthetic observation source over a generator config.
func NewSource(cfg Config) *Source {
	return &Source{cfg: cfg}
}

var _ ports.ObservationSource = (*Source)(nil)

func (s *Source) Load(ctx context.Context) (*timeseries.Dataset, error) {
	return Generate(s.cfg)
}

// Seed exposes the generator seed so the run manifest can record it.
func (s *Source) Seed() uint64 {
	return s.cfg.Seed
}

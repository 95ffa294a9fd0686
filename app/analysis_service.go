// Package app wires the analysis pipeline: load, summarize, fit the model
// ladder, diagnose, predict, compare, report.
package app

import (
	"context"
	"log"
	"math"

	"golang.org/x/sync/errgroup"

	"itsa/domain/core"
	"itsa/domain/model"
	"itsa/domain/run"
	"itsa/domain/stats"
	"itsa/domain/timeseries"
	"itsa/internal/analysis/describe"
	"itsa/internal/analysis/diagnose"
	"itsa/internal/analysis/glm"
	"itsa/internal/analysis/infer"
	"itsa/internal/config"
	"itsa/internal/errors"
	"itsa/ports"
)

// AnalysisService runs the full interrupted time-series pipeline once.
type AnalysisService struct {
	source  ports.ObservationSource
	writers []ports.ReportWriter
	cfg     config.AnalysisConfig
}

// NewAnalysisService creates the service. Writers may be empty; the report
// is still returned to the caller.
func NewAnalysisService(source ports.ObservationSource, writers []ports.ReportWriter, cfg config.AnalysisConfig) *AnalysisService {
	return &AnalysisService{source: source, writers: writers, cfg: cfg}
}

// ladderRung names one model of the fixed four-rung ladder.
type ladderRung struct {
	name   string
	family model.Family
	spec   model.FormulaSpec
}

// ladder returns the model sequence, each rung adding one refinement:
// offset-adjusted Poisson, quasi-Poisson dispersion, harmonic seasonality,
// then the step:time slope change.
func (s *AnalysisService) ladder() []ladderRung {
	base := model.FormulaSpec{Step: true, Trend: true}
	seasonal := base
	seasonal.HarmonicPairs = s.cfg.HarmonicPairs
	slope := seasonal
	slope.Interaction = true

	return []ladderRung{
		{"poisson", model.Poisson, base},
		{"quasipoisson", model.QuasiPoisson, base},
		{"quasipoisson-seasonal", model.QuasiPoisson, seasonal},
		{"quasipoisson-seasonal-slope", model.QuasiPoisson, slope},
	}
}

// Describe loads the dataset and returns only the descriptive table.
func (s *AnalysisService) Describe(ctx context.Context) ([]stats.VariableSummary, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, wrapLoadErr(err)
	}
	return describe.Summarize(ds, s.cfg.ReferencePop)
}

// wrapLoadErr tags dataset validation failures with a stable error code so
// callers can tell bad input apart from infrastructure trouble.
func wrapLoadErr(err error) error {
	wrapped := errors.Wrap(err, "failed to load observations")
	if core.IsValidationError(err) {
		wrapped = errors.WithCode("INVALID_INPUT", wrapped)
	}
	return wrapped
}

// Run executes the whole pipeline and hands the report to every writer.
func (s *AnalysisService) Run(ctx context.Context) (*run.Report, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, wrapLoadErr(err)
	}

	report := &run.Report{}

	report.Summaries, err = describe.Summarize(ds, s.cfg.ReferencePop)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize dataset")
	}

	rungs := s.ladder()
	models := make([]*model.FittedModel, len(rungs))
	for i, rung := range rungs {
		m, err := glm.Fit(rung.name, rung.spec, rung.family, ds)
		if err != nil {
			// Later rungs refine this one, so a failed fit stops the
			// ladder here.
			wrapped := errors.Wrapf(err, "model ladder stopped at %s", rung.name)
			if core.IsFitError(err) {
				wrapped = errors.WithCode("FIT_ERROR", wrapped)
			}
			return nil, wrapped
		}
		models[i] = m
	}

	correlograms := make([]*stats.Correlogram, len(models))
	g, _ := errgroup.WithContext(ctx)
	for i, m := range models {
		g.Go(func() error {
			c, err := diagnose.Correlogram(m.DevianceResiduals, s.cfg.MaxLag, m.Spec.NumTerms())
			if err != nil {
				return core.NewFitError(m.Name, err)
			}
			correlograms[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "residual diagnostics failed")
	}

	for i, m := range models {
		report.Models = append(report.Models, run.ModelReport{
			Model:        m,
			Coefficients: infer.CoefficientTable(m, s.cfg.ConfLevel),
			Correlogram:  correlograms[i],
		})
	}

	grid := s.buildGrid(ds)
	for _, m := range models {
		ps := glm.BuildPredictionSet(m, grid, s.cfg.ReferenceMonth, s.cfg.ReferencePop)
		ps.PointsPerMonth = s.cfg.PointsPerMonth
		ps.GridLengthMonths = ds.Len()
		if at, ok := ds.InterventionStart(); ok {
			ps.InterventionAt = float64(at)
		}
		report.Predictions = append(report.Predictions, ps)
	}

	report.Comparison, err = infer.CompareF(models[2], models[3])
	if err != nil {
		return nil, errors.Wrap(err, "nested model comparison failed")
	}

	ladderNames := make([]string, len(models))
	for i, m := range models {
		ladderNames[i] = m.Name
	}
	report.Manifest = run.Manifest{
		ID:          core.RunID(core.NewID()),
		CreatedAt:   core.Now(),
		Dataset:     ds.Fingerprint(),
		Rows:        ds.Len(),
		ModelLadder: ladderNames,
	}
	if seeded, ok := s.source.(interface{ Seed() uint64 }); ok {
		report.Manifest.Seed = seeded.Seed()
	}

	for _, w := range s.writers {
		if err := w.Write(ctx, report); err != nil {
			return report, errors.Wrapf(err, "report writer %s failed", w.Name())
		}
		log.Printf("[Analysis] Writer %s done", w.Name())
	}

	return report, nil
}

// buildGrid spans the observed window at sub-month resolution with the
// intervention switching where the data says it did, and a constant
// standardized population (the mean of the observed one).
func (s *AnalysisService) buildGrid(ds *timeseries.Dataset) *timeseries.Grid {
	meanStdPop := 0.0
	for _, v := range ds.StdPops() {
		meanStdPop += v
	}
	meanStdPop /= float64(ds.Len())

	interventionAt := math.Inf(1)
	if at, ok := ds.InterventionStart(); ok {
		interventionAt = float64(at)
	}

	startMonth := ds.Observations[0].Month
	return timeseries.NewGrid(ds.Len(), startMonth, interventionAt, s.cfg.PointsPerMonth, meanStdPop)
}

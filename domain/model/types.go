package model

import (
	"fmt"

	"itsa/domain/core"
)

// Family selects the distributional assumption of a rate model.
type Family int

const (
	// Poisson assumes variance equal to the mean; dispersion fixed at 1.
	Poisson Family = iota
	// QuasiPoisson keeps the Poisson mean structure but estimates the
	// dispersion as Pearson chi-square over residual degrees of freedom,
	// scaling standard errors without moving point estimates.
	QuasiPoisson
)

func (f Family) String() string {
	switch f {
	case Poisson:
		return "poisson"
	case QuasiPoisson:
		return "quasipoisson"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// EstimatesDispersion reports whether the family estimates a free dispersion
// parameter. It decides between normal and Student-t quantiles when building
// confidence intervals.
func (f Family) EstimatesDispersion() bool {
	return f == QuasiPoisson
}

// FormulaSpec names the explanatory terms of a rate model. The outcome and
// the offset (log standardized population, coefficient fixed at 1) are
// implicit; the intercept is always present.
type FormulaSpec struct {
	// Step includes the intervention indicator (level change).
	Step bool
	// Trend includes the elapsed time index (secular trend).
	Trend bool
	// HarmonicPairs adds sin/cos regressor pairs for k = 1..HarmonicPairs
	// over a cycle of Period months.
	HarmonicPairs int
	// Period is the seasonal base period in months. Zero means 12.
	Period float64
	// Interaction includes step x time, a change in trend slope at the
	// intervention, distinct from the level change captured by Step.
	Interaction bool
}

// SeasonalPeriod returns the harmonic base period, defaulting to 12 months.
func (s FormulaSpec) SeasonalPeriod() float64 {
	if s.Period <= 0 {
		return 12
	}
	return s.Period
}

// TermNames returns the design-matrix column names, intercept first, in the
// fixed order the fitter builds them.
func (s FormulaSpec) TermNames() []string {
	names := []string{"intercept"}
	if s.Step {
		names = append(names, "step")
	}
	if s.Trend {
		names = append(names, "time")
	}
	for k := 1; k <= s.HarmonicPairs; k++ {
		names = append(names, fmt.Sprintf("sin%d", k), fmt.Sprintf("cos%d", k))
	}
	if s.Interaction {
		names = append(names, "step:time")
	}
	return names
}

// NumTerms returns the number of design-matrix columns, intercept included.
func (s FormulaSpec) NumTerms() int {
	n := 1
	if s.Step {
		n++
	}
	if s.Trend {
		n++
	}
	n += 2 * s.HarmonicPairs
	if s.Interaction {
		n++
	}
	return n
}

// NestedIn reports whether every term of s also appears in large, so that a
// deviance-based comparison of the two fits is meaningful.
func (s FormulaSpec) NestedIn(large FormulaSpec) bool {
	if s.Step && !large.Step {
		return false
	}
	if s.Trend && !large.Trend {
		return false
	}
	if s.HarmonicPairs > large.HarmonicPairs {
		return false
	}
	if s.HarmonicPairs > 0 && s.SeasonalPeriod() != large.SeasonalPeriod() {
		return false
	}
	if s.Interaction && !large.Interaction {
		return false
	}
	return true
}

// FittedModel is the immutable result of one regression fit. It is only ever
// read after Fit returns; diagnostics and prediction never mutate it.
type FittedModel struct {
	Name   string
	Family Family
	Spec   FormulaSpec
	NObs   int
	// Data identifies the observation set the model was fitted on, so
	// comparisons can require identical data rather than just equal sizes.
	Data core.DatasetFingerprint

	// Coef holds the estimated coefficients in TermNames order; Cov is the
	// dispersion-scaled covariance matrix over the same order.
	CoefNames []string
	Coef      []float64
	StdErr    []float64
	Cov       [][]float64

	Dispersion  float64
	Deviance    float64
	PearsonChi2 float64
	ResidualDF  int

	// DevianceResiduals are ordered by time index, ready for ACF/PACF.
	DevianceResiduals []float64
	// Fitted holds the fitted means (expected counts), in time order.
	Fitted []float64

	Converged  bool
	Iterations int
}

// Coefficient looks up an estimate and its standard error by term name.
func (m *FittedModel) Coefficient(name string) (est, se float64, ok bool) {
	for i, n := range m.CoefNames {
		if n == name {
			return m.Coef[i], m.StdErr[i], true
		}
	}
	return 0, 0, false
}

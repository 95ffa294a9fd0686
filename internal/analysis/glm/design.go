package glm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"itsa/domain/model"
)

// rowFeatures evaluates one design-matrix row: intercept, step, time,
// harmonic pairs, then the step:time interaction, matching
// FormulaSpec.TermNames order exactly.
func rowFeatures(spec model.FormulaSpec, t, month, step float64) []float64 {
	row := make([]float64, 0, spec.NumTerms())
	row = append(row, 1)
	if spec.Step {
		row = append(row, step)
	}
	if spec.Trend {
		row = append(row, t)
	}
	period := spec.SeasonalPeriod()
	for k := 1; k <= spec.HarmonicPairs; k++ {
		angle := 2 * math.Pi * float64(k) * month / period
		row = append(row, math.Sin(angle), math.Cos(angle))
	}
	if spec.Interaction {
		row = append(row, step*t)
	}
	return row
}

// buildDesign constructs the n x p design matrix over parallel covariate
// slices. The slices must have equal length.
func buildDesign(spec model.FormulaSpec, times, months, steps []float64) *mat.Dense {
	n := len(times)
	p := spec.NumTerms()
	x := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		x.SetRow(i, rowFeatures(spec, times[i], months[i], steps[i]))
	}
	return x
}

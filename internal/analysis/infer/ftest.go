package infer

import (
	"gonum.org/v1/gonum/stat/distuv"

	"itsa/domain/core"
	"itsa/domain/model"
	"itsa/domain/stats"
)

// CompareF runs the quasi-likelihood F-test between two nested fits. The fits
// must share the family and the exact observation set, checked by dataset
// fingerprint.
//
// Convention (fixed here, documented in DESIGN.md): the statistic is the
// deviance drop per added term, divided by the dispersion of the LARGER
// model; the reference distribution is F with (Delta df, residual df of the
// larger model). This matches R's anova.glm(test = "F").
func CompareF(small, large *model.FittedModel) (*stats.NestedFTest, error) {
	if small == nil || large == nil {
		return nil, core.ErrNotNested
	}
	if small.Family != large.Family {
		return nil, core.ErrNotNested
	}
	if small.NObs != large.NObs || small.Data != large.Data {
		return nil, core.ErrNotNested
	}
	if !small.Spec.NestedIn(large.Spec) {
		return nil, core.ErrNotNested
	}

	numDF := small.ResidualDF - large.ResidualDF
	if numDF <= 0 {
		return nil, core.ErrNotNested
	}
	denomDF := large.ResidualDF

	dispersion := large.Dispersion
	if dispersion <= 0 {
		return nil, core.NewValidationError("dispersion", "must be positive for F comparison")
	}

	f := (small.Deviance - large.Deviance) / float64(numDF) / dispersion
	if f < 0 {
		// The larger model cannot fit worse than a nested submodel up
		// to numeric noise; clamp tiny negatives.
		f = 0
	}

	dist := distuv.F{D1: float64(numDF), D2: float64(denomDF)}
	return &stats.NestedFTest{
		Small:      small.Name,
		Large:      large.Name,
		Statistic:  f,
		PValue:     1 - dist.CDF(f),
		NumDF:      numDF,
		DenomDF:    denomDF,
		Dispersion: dispersion,
	}, nil
}

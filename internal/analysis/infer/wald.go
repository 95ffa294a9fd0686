// Package infer turns fitted models into reportable inference: Wald
// coefficient tables with rate ratios, and the quasi-likelihood F-test for
// nested model comparison.
package infer

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"itsa/domain/model"
	"itsa/domain/stats"
)

// CoefficientTable builds the Wald table for a fit at the given confidence
// level. Quantiles are normal when the family fixes the dispersion (Poisson)
// and Student-t with residual degrees of freedom when the dispersion is
// estimated (quasi-Poisson), matching the usual GLM summary conventions.
// Rate ratios are the exponentiated estimates and bounds.
func CoefficientTable(m *model.FittedModel, level float64) []stats.CoefficientEstimate {
	alpha := 1 - level

	var quantile float64
	var pvalue func(stat float64) float64
	if m.Family.EstimatesDispersion() {
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(m.ResidualDF)}
		quantile = t.Quantile(1 - alpha/2)
		pvalue = func(stat float64) float64 { return 2 * t.CDF(-math.Abs(stat)) }
	} else {
		quantile = distuv.UnitNormal.Quantile(1 - alpha/2)
		pvalue = func(stat float64) float64 { return 2 * distuv.UnitNormal.CDF(-math.Abs(stat)) }
	}

	rows := make([]stats.CoefficientEstimate, len(m.Coef))
	for i := range m.Coef {
		est := m.Coef[i]
		se := m.StdErr[i]
		stat := est / se
		lower := est - quantile*se
		upper := est + quantile*se
		rows[i] = stats.CoefficientEstimate{
			Term:      m.CoefNames[i],
			Estimate:  est,
			StdErr:    se,
			Statistic: stat,
			PValue:    pvalue(stat),
			Lower:     lower,
			Upper:     upper,
			RateRatio: math.Exp(est),
			RRLower:   math.Exp(lower),
			RRUpper:   math.Exp(upper),
			Level:     level,
		}
	}
	return rows
}

// RateRatio returns the exponentiated estimate and interval bounds for one
// named term, computed from the same Wald table as the full report.
func RateRatio(m *model.FittedModel, term string, level float64) (rr, lower, upper float64, ok bool) {
	for _, row := range CoefficientTable(m, level) {
		if row.Term == term {
			return row.RateRatio, row.RRLower, row.RRUpper, true
		}
	}
	return 0, 0, 0, false
}

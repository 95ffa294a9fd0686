package glm

import (
	"math"

	"itsa/domain/model"
	"itsa/domain/stats"
	"itsa/domain/timeseries"
)

// Predict evaluates the fitted model at each grid point and returns the
// predicted rate per refPop persons: exp(linear predictor + offset) is the
// expected count for the point's standardized population, divided back by
// that population and rescaled to the common rate unit.
func Predict(m *model.FittedModel, grid *timeseries.Grid, refPop float64) []stats.RatePoint {
	out := make([]stats.RatePoint, len(grid.Points))
	for i, pt := range grid.Points {
		features := rowFeatures(m.Spec, pt.TimeIndex, pt.Month, pt.Intervention)
		eta := math.Log(pt.StdPop)
		for a, f := range features {
			eta += m.Coef[a] * f
		}
		count := math.Exp(eta)
		out[i] = stats.RatePoint{
			TimeIndex: pt.TimeIndex,
			Rate:      count / pt.StdPop * refPop,
		}
	}
	return out
}

// BuildPredictionSet produces the three prediction variants over one grid:
// the fitted curve, the counterfactual with the intervention forced off, and
// the deseasonalized curve with the month pinned to refMonth.
func BuildPredictionSet(m *model.FittedModel, grid *timeseries.Grid, refMonth int, refPop float64) stats.PredictionSet {
	return stats.PredictionSet{
		ModelName:      m.Name,
		ReferencePop:   refPop,
		ReferenceMonth: refMonth,
		Fitted:         Predict(m, grid, refPop),
		Counterfactual: Predict(m, grid.Counterfactual(), refPop),
		Deseasonalized: Predict(m, grid.Deseasonalized(refMonth), refPop),
	}
}

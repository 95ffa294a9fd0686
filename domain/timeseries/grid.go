package timeseries

import "math"

// GridPoint is one row of a synthetic covariate grid: the observation schema
// minus the outcome. Time and month are float64 so the grid can be denser
// than the monthly observations and produce smooth prediction curves.
type GridPoint struct {
	TimeIndex    float64
	Month        float64
	Intervention float64
	StdPop       float64
}

// Grid is a synthetic covariate sequence used only for prediction. It is
// never fitted against.
type Grid struct {
	Points []GridPoint
}

// NewGrid builds a grid spanning [1, months] with pointsPerMonth rows per
// month, the intervention switching on at interventionAt, and a constant
// standardized population. Calendar months wrap with period 12 starting at
// startMonth.
func NewGrid(months, startMonth int, interventionAt float64, pointsPerMonth int, stdPop float64) *Grid {
	if pointsPerMonth < 1 {
		pointsPerMonth = 1
	}
	n := months * pointsPerMonth
	points := make([]GridPoint, 0, n)

	step := 1.0 / float64(pointsPerMonth)
	for i := 0; i < n; i++ {
		t := 1.0 + float64(i)*step
		intervention := 0.0
		if t >= interventionAt {
			intervention = 1.0
		}
		points = append(points, GridPoint{
			TimeIndex:    t,
			Month:        wrapMonth(float64(startMonth) + t - 1),
			Intervention: intervention,
			StdPop:       stdPop,
		})
	}
	return &Grid{Points: points}
}

// Counterfactual returns a copy of the grid with the intervention forced to
// zero everywhere, isolating the trend absent the intervention.
func (g *Grid) Counterfactual() *Grid {
	points := make([]GridPoint, len(g.Points))
	copy(points, g.Points)
	for i := range points {
		points[i].Intervention = 0
	}
	return &Grid{Points: points}
}

// Deseasonalized returns a copy of the grid with the month pinned to a
// reference value, removing seasonal oscillation from predictions while
// retaining trend and step effects.
func (g *Grid) Deseasonalized(refMonth int) *Grid {
	points := make([]GridPoint, len(g.Points))
	copy(points, g.Points)
	for i := range points {
		points[i].Month = float64(refMonth)
	}
	return &Grid{Points: points}
}

// wrapMonth folds a continuous month value into [1, 13).
func wrapMonth(m float64) float64 {
	m = math.Mod(m-1, 12)
	if m < 0 {
		m += 12
	}
	return m + 1
}

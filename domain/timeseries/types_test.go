package timeseries

import (
	"errors"
	"math"
	"testing"

	"itsa/domain/core"
)

func validObs(n, interventionAt int) []Observation {
	obs := make([]Observation, n)
	year, month := 2018, 1
	for i := 0; i < n; i++ {
		step := 0
		if interventionAt > 0 && i+1 >= interventionAt {
			step = 1
		}
		obs[i] = Observation{
			Year:         year,
			Month:        month,
			TimeIndex:    i + 1,
			OutcomeCount: 100 + i,
			Intervention: step,
			Population:   400_000,
			StdPop:       380_000,
		}
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return obs
}

func TestNewValidDataset(t *testing.T) {
	ds, err := New(validObs(24, 13))
	if err != nil {
		t.Fatalf("valid dataset rejected: %v", err)
	}
	if ds.Len() != 24 {
		t.Fatalf("expected 24 observations, got %d", ds.Len())
	}
	at, ok := ds.InterventionStart()
	if !ok || at != 13 {
		t.Fatalf("expected intervention start 13, got %d (ok=%v)", at, ok)
	}
	pre, post := ds.Partition()
	if len(pre) != 12 || len(post) != 12 {
		t.Fatalf("expected 12/12 partition, got %d/%d", len(pre), len(post))
	}
}

func TestNewRejectsInvalidObservations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func([]Observation)
		want   error
	}{
		{"negative count", func(o []Observation) { o[5].OutcomeCount = -1 }, core.ErrNegativeCount},
		{"zero population", func(o []Observation) { o[3].Population = 0 }, core.ErrNonPositivePop},
		{"zero std population", func(o []Observation) { o[3].StdPop = 0 }, core.ErrNonPositivePop},
		{"reverting intervention", func(o []Observation) { o[20].Intervention = 0 }, core.ErrInterventionReverted},
		{"duplicate time index", func(o []Observation) { o[7].TimeIndex = o[6].TimeIndex }, core.ErrNonMonotonicTime},
		{"month out of range", func(o []Observation) { o[2].Month = 13 }, core.ErrInvalidMonth},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs := validObs(24, 13)
			tc.mutate(obs)
			_, err := New(obs)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, core.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestOffsetsAreLogStdPop(t *testing.T) {
	ds, err := New(validObs(6, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, off := range ds.Offsets() {
		want := math.Log(ds.Observations[i].StdPop)
		if math.Abs(off-want) > 1e-12 {
			t.Fatalf("offset %d: expected %f, got %f", i, want, off)
		}
	}
}

func TestFingerprintIsContentStable(t *testing.T) {
	a, _ := New(validObs(12, 7))
	b, _ := New(validObs(12, 7))
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("identical datasets produced different fingerprints")
	}

	obs := validObs(12, 7)
	obs[0].OutcomeCount++
	c, _ := New(obs)
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("different datasets produced the same fingerprint")
	}
}

func TestGridCounterfactualForcesStepOff(t *testing.T) {
	g := NewGrid(24, 1, 13, 2, 380_000)
	cf := g.Counterfactual()
	for i, pt := range cf.Points {
		if pt.Intervention != 0 {
			t.Fatalf("counterfactual point %d has intervention %f", i, pt.Intervention)
		}
	}
	// original grid must be untouched
	post := 0
	for _, pt := range g.Points {
		if pt.Intervention == 1 {
			post++
		}
	}
	if post == 0 {
		t.Fatalf("original grid lost its intervention block")
	}
}

func TestGridDeseasonalizedPinsMonth(t *testing.T) {
	g := NewGrid(24, 1, 13, 3, 380_000)
	ds := g.Deseasonalized(6)
	for i, pt := range ds.Points {
		if pt.Month != 6 {
			t.Fatalf("deseasonalized point %d has month %f", i, pt.Month)
		}
	}
}

func TestGridMonthsWrapWithPeriod12(t *testing.T) {
	g := NewGrid(25, 11, math.Inf(1), 1, 380_000)
	for i, pt := range g.Points {
		if pt.Month < 1-1e-9 || pt.Month >= 13 {
			t.Fatalf("point %d month %f outside [1,13)", i, pt.Month)
		}
	}
	// month 11, 12 then wraps to 1
	if math.Abs(g.Points[0].Month-11) > 1e-9 || math.Abs(g.Points[2].Month-1) > 1e-9 {
		t.Fatalf("unexpected wrap: first months %f, %f, %f",
			g.Points[0].Month, g.Points[1].Month, g.Points[2].Month)
	}
}

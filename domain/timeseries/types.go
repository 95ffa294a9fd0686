package timeseries

import (
	"fmt"
	"math"

	"itsa/domain/core"
)

// Observation is one calendar month of the study window.
type Observation struct {
	Year         int     `json:"year" db:"year"`
	Month        int     `json:"month" db:"month"`
	TimeIndex    int     `json:"time_index" db:"time_index"`
	OutcomeCount int     `json:"outcome_count" db:"outcome_count"`
	Intervention int     `json:"intervention" db:"intervention"`
	Population   float64 `json:"population" db:"population"`
	StdPop       float64 `json:"std_population" db:"std_population"`
}

// Rate returns the observed outcome rate per refPop persons of the
// standardized population.
func (o Observation) Rate(refPop float64) float64 {
	return float64(o.OutcomeCount) / o.StdPop * refPop
}

// Dataset is the full, time-ordered observation set for one analysis run.
// It is validated once at construction and read-only afterwards.
type Dataset struct {
	Observations []Observation
}

// New validates the observation sequence and wraps it in a Dataset.
// Validation enforces the load-time invariants: non-negative counts, positive
// populations, months in 1..12, a strictly increasing time index, and an
// intervention indicator that never reverts from 1 to 0.
func New(obs []Observation) (*Dataset, error) {
	if len(obs) == 0 {
		return nil, core.ErrEmptyDataset
	}

	prevTime := math.MinInt
	prevIntervention := 0
	for i, o := range obs {
		if o.OutcomeCount < 0 {
			return nil, core.NewObservationError(i, core.ErrNegativeCount)
		}
		if o.Population <= 0 || o.StdPop <= 0 {
			return nil, core.NewObservationError(i, core.ErrNonPositivePop)
		}
		if o.Month < 1 || o.Month > 12 {
			return nil, core.NewObservationError(i, core.ErrInvalidMonth)
		}
		if o.TimeIndex <= prevTime {
			return nil, core.NewObservationError(i, core.ErrNonMonotonicTime)
		}
		if o.Intervention != 0 && o.Intervention != 1 {
			return nil, core.NewObservationError(i,
				core.NewValidationError("intervention", fmt.Sprintf("must be 0 or 1, got %d", o.Intervention)))
		}
		if o.Intervention < prevIntervention {
			return nil, core.NewObservationError(i, core.ErrInterventionReverted)
		}
		prevTime = o.TimeIndex
		prevIntervention = o.Intervention
	}

	return &Dataset{Observations: obs}, nil
}

// Len returns the number of observations.
func (d *Dataset) Len() int { return len(d.Observations) }

// Counts returns the outcome counts as float64, in time order.
func (d *Dataset) Counts() []float64 {
	out := make([]float64, len(d.Observations))
	for i, o := range d.Observations {
		out[i] = float64(o.OutcomeCount)
	}
	return out
}

// Times returns the elapsed time index as float64, in time order.
func (d *Dataset) Times() []float64 {
	out := make([]float64, len(d.Observations))
	for i, o := range d.Observations {
		out[i] = float64(o.TimeIndex)
	}
	return out
}

// Months returns the calendar month of each observation as float64.
func (d *Dataset) Months() []float64 {
	out := make([]float64, len(d.Observations))
	for i, o := range d.Observations {
		out[i] = float64(o.Month)
	}
	return out
}

// Steps returns the intervention indicator as float64, in time order.
func (d *Dataset) Steps() []float64 {
	out := make([]float64, len(d.Observations))
	for i, o := range d.Observations {
		out[i] = float64(o.Intervention)
	}
	return out
}

// StdPops returns the standardized population of each observation.
func (d *Dataset) StdPops() []float64 {
	out := make([]float64, len(d.Observations))
	for i, o := range d.Observations {
		out[i] = o.StdPop
	}
	return out
}

// Offsets returns log(standardized population), the fixed offset term of
// every rate model fit over this dataset.
func (d *Dataset) Offsets() []float64 {
	out := make([]float64, len(d.Observations))
	for i, o := range d.Observations {
		out[i] = math.Log(o.StdPop)
	}
	return out
}

// InterventionStart returns the time index of the first post-intervention
// observation and true, or 0 and false when the indicator never switches on.
func (d *Dataset) InterventionStart() (int, bool) {
	for _, o := range d.Observations {
		if o.Intervention == 1 {
			return o.TimeIndex, true
		}
	}
	return 0, false
}

// Partition splits the dataset into pre- and post-intervention halves.
// Either half may be empty when the indicator is constant.
func (d *Dataset) Partition() (pre, post []Observation) {
	for _, o := range d.Observations {
		if o.Intervention == 0 {
			pre = append(pre, o)
		} else {
			post = append(post, o)
		}
	}
	return pre, post
}

// FingerprintRows renders each observation deterministically for the dataset
// content fingerprint carried on the run manifest.
func (d *Dataset) FingerprintRows() []string {
	rows := make([]string, len(d.Observations))
	for i, o := range d.Observations {
		rows[i] = fmt.Sprintf("%d,%d,%d,%d,%d,%.6f,%.6f",
			o.Year, o.Month, o.TimeIndex, o.OutcomeCount, o.Intervention, o.Population, o.StdPop)
	}
	return rows
}

// Fingerprint returns the content hash of the ordered observations.
func (d *Dataset) Fingerprint() core.DatasetFingerprint {
	return core.ComputeDatasetFingerprint(d.FingerprintRows())
}

package stats

// Period labels a slice of the study window when summarizing.
type Period string

const (
	PeriodAll  Period = "all"
	PeriodPre  Period = "pre"
	PeriodPost Period = "post"
)

// VariableSummary is one row of the descriptive table: a numeric variable
// summarized over one period of the study window.
type VariableSummary struct {
	Variable string  `json:"variable"`
	Period   Period  `json:"period"`
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Median   float64 `json:"median"`
	IQR      float64 `json:"iqr"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// CoefficientEstimate is one row of a model's coefficient table, reported on
// both the linear-predictor scale and the exponentiated (rate ratio) scale.
type CoefficientEstimate struct {
	Term      string  `json:"term"`
	Estimate  float64 `json:"estimate"`
	StdErr    float64 `json:"std_err"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`

	RateRatio float64 `json:"rate_ratio"`
	RRLower   float64 `json:"rr_lower"`
	RRUpper   float64 `json:"rr_upper"`

	// Level is the confidence level of the interval, e.g. 0.95.
	Level float64 `json:"level"`
}

// LjungBoxTest is a portmanteau test for residual autocorrelation up to a
// given lag. Reported alongside the correlogram, never fatal.
type LjungBoxTest struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lags      int     `json:"lags"`
	DF        int     `json:"df"`
}

// Correlogram holds ACF and PACF sequences over lags 0..MaxLag with the
// white-noise confidence bound.
type Correlogram struct {
	MaxLag   int           `json:"max_lag"`
	ACF      []float64     `json:"acf"`
	PACF     []float64     `json:"pacf"`
	Bound    float64       `json:"bound"` // +/- 1.96/sqrt(n)
	LjungBox *LjungBoxTest `json:"ljung_box,omitempty"`
}

// RatePoint is one predicted rate at a grid position, in outcome events per
// reference population.
type RatePoint struct {
	TimeIndex float64 `json:"time_index"`
	Rate      float64 `json:"rate"`
}

// PredictionSet bundles the three prediction variants over one grid.
type PredictionSet struct {
	ModelName        string      `json:"model_name"`
	ReferencePop     float64     `json:"reference_pop"`
	Fitted           []RatePoint `json:"fitted"`
	Counterfactual   []RatePoint `json:"counterfactual"`
	Deseasonalized   []RatePoint `json:"deseasonalized"`
	ReferenceMonth   int         `json:"reference_month"`
	PointsPerMonth   int         `json:"points_per_month"`
	InterventionAt   float64     `json:"intervention_at"`
	GridLengthMonths int         `json:"grid_length_months"`
}

// NestedFTest is the quasi-likelihood F comparison of two nested fits.
type NestedFTest struct {
	Small      string  `json:"small"`
	Large      string  `json:"large"`
	Statistic  float64 `json:"statistic"`
	PValue     float64 `json:"p_value"`
	NumDF      int     `json:"num_df"`
	DenomDF    int     `json:"denom_df"`
	Dispersion float64 `json:"dispersion"` // dispersion of the larger model
}

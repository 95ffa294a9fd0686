// Package describe produces the per-variable, per-period descriptive table.
package describe

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"itsa/domain/core"
	domstats "itsa/domain/stats"
	"itsa/domain/timeseries"
)

// Summarize computes (n, mean, sd, median, IQR, min, max) for each numeric
// variable over the whole window and over the pre/post intervention periods.
// Rates are reported per refPop persons, the same unit the prediction curves
// use. Periods that are empty (constant indicator) are skipped rather than
// reported as undefined statistics.
func Summarize(ds *timeseries.Dataset, refPop float64) ([]domstats.VariableSummary, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, core.ErrEmptyDataset
	}

	pre, post := ds.Partition()

	var out []domstats.VariableSummary
	for _, period := range []struct {
		label domstats.Period
		obs   []timeseries.Observation
	}{
		{domstats.PeriodAll, ds.Observations},
		{domstats.PeriodPre, pre},
		{domstats.PeriodPost, post},
	} {
		if len(period.obs) == 0 {
			continue
		}
		for _, v := range variables(period.obs, refPop) {
			row, err := summarizeOne(v.name, period.label, v.values)
			if err != nil {
				return nil, err
			}
			out = append(out, row)
		}
	}
	return out, nil
}

type variable struct {
	name   string
	values []float64
}

func variables(obs []timeseries.Observation, refPop float64) []variable {
	count := make([]float64, len(obs))
	rate := make([]float64, len(obs))
	pop := make([]float64, len(obs))
	stdPop := make([]float64, len(obs))
	for i, o := range obs {
		count[i] = float64(o.OutcomeCount)
		rate[i] = o.Rate(refPop)
		pop[i] = o.Population
		stdPop[i] = o.StdPop
	}
	return []variable{
		{"outcome_count", count},
		{fmt.Sprintf("rate_per_%d", int(refPop)), rate},
		{"population", pop},
		{"std_population", stdPop},
	}
}

func summarizeOne(name string, period domstats.Period, data []float64) (domstats.VariableSummary, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return domstats.VariableSummary{}, err
	}
	sd, err := stats.StandardDeviationSample(data)
	if err != nil {
		// a single observation has no sample SD; report zero
		sd = 0
	}
	median, err := stats.Median(data)
	if err != nil {
		return domstats.VariableSummary{}, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return domstats.VariableSummary{}, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return domstats.VariableSummary{}, err
	}
	iqr, err := stats.InterQuartileRange(data)
	if err != nil {
		iqr = 0
	}

	return domstats.VariableSummary{
		Variable: name,
		Period:   period,
		N:        len(data),
		Mean:     mean,
		StdDev:   sd,
		Median:   median,
		IQR:      iqr,
		Min:      min,
		Max:      max,
	}, nil
}

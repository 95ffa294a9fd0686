package describe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itsa/domain/core"
	domstats "itsa/domain/stats"
	"itsa/domain/timeseries"
)

func fixtureDataset(t *testing.T) *timeseries.Dataset {
	t.Helper()
	counts := []int{100, 120, 110, 130, 80, 90}
	obs := make([]timeseries.Observation, len(counts))
	for i, c := range counts {
		step := 0
		if i >= 4 {
			step = 1
		}
		obs[i] = timeseries.Observation{
			Year:         2020,
			Month:        i + 1,
			TimeIndex:    i + 1,
			OutcomeCount: c,
			Intervention: step,
			Population:   400_000,
			StdPop:       200_000,
		}
	}
	ds, err := timeseries.New(obs)
	require.NoError(t, err)
	return ds
}

func find(rows []domstats.VariableSummary, variable string, period domstats.Period) *domstats.VariableSummary {
	for i := range rows {
		if rows[i].Variable == variable && rows[i].Period == period {
			return &rows[i]
		}
	}
	return nil
}

func TestSummarizeKnownValues(t *testing.T) {
	rows, err := Summarize(fixtureDataset(t), 100_000)
	require.NoError(t, err)

	all := find(rows, "outcome_count", domstats.PeriodAll)
	require.NotNil(t, all)
	assert.Equal(t, 6, all.N)
	assert.InDelta(t, 105.0, all.Mean, 1e-9)
	assert.InDelta(t, 105.0, all.Median, 1e-9)
	assert.InDelta(t, 80.0, all.Min, 1e-9)
	assert.InDelta(t, 130.0, all.Max, 1e-9)

	pre := find(rows, "outcome_count", domstats.PeriodPre)
	require.NotNil(t, pre)
	assert.Equal(t, 4, pre.N)
	assert.InDelta(t, 115.0, pre.Mean, 1e-9)

	post := find(rows, "outcome_count", domstats.PeriodPost)
	require.NotNil(t, post)
	assert.Equal(t, 2, post.N)
	assert.InDelta(t, 85.0, post.Mean, 1e-9)

	// stdpop 200k means the rate per 100k is half the count
	rate := find(rows, "rate_per_100000", domstats.PeriodAll)
	require.NotNil(t, rate)
	assert.InDelta(t, 52.5, rate.Mean, 1e-9)
}

func TestSummarizeRatesScaleWithReferencePop(t *testing.T) {
	rows, err := Summarize(fixtureDataset(t), 10_000)
	require.NoError(t, err)

	rate := find(rows, "rate_per_10000", domstats.PeriodAll)
	require.NotNil(t, rate)
	assert.InDelta(t, 5.25, rate.Mean, 1e-9)
	assert.Nil(t, find(rows, "rate_per_100000", domstats.PeriodAll))
}

func TestSummarizeSkipsEmptyPeriods(t *testing.T) {
	obs := make([]timeseries.Observation, 4)
	for i := range obs {
		obs[i] = timeseries.Observation{
			Year: 2020, Month: i + 1, TimeIndex: i + 1,
			OutcomeCount: 50, Intervention: 0,
			Population: 100_000, StdPop: 100_000,
		}
	}
	ds, err := timeseries.New(obs)
	require.NoError(t, err)

	rows, err := Summarize(ds, 100_000)
	require.NoError(t, err)
	assert.Nil(t, find(rows, "outcome_count", domstats.PeriodPost))
	assert.NotNil(t, find(rows, "outcome_count", domstats.PeriodAll))
	assert.NotNil(t, find(rows, "outcome_count", domstats.PeriodPre))
}

func TestSummarizeNilDataset(t *testing.T) {
	_, err := Summarize(nil, 100_000)
	require.True(t, errors.Is(err, core.ErrEmptyDataset))
}

// Package diagnose computes residual autocorrelation diagnostics: sample
// ACF, Durbin-Levinson PACF, and the Ljung-Box portmanteau test. These are
// read-only checks over a fitted model's deviance residuals; unmodeled
// dependence is reported, never corrected.
package diagnose

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"itsa/domain/core"
	"itsa/domain/stats"
)

// ACF returns the sample autocorrelation at lags 0..maxLag. Lag 0 is exactly
// 1 for any series with positive variance.
func ACF(x []float64, maxLag int) ([]float64, error) {
	n := len(x)
	if maxLag >= n {
		return nil, core.ErrLagTooLarge
	}
	if maxLag < 0 {
		maxLag = 0
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range x {
		d := v - mean
		variance += d * d
	}
	if variance == 0 {
		return nil, core.ErrConstantSeries
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (x[i] - mean) * (x[i-k] - mean)
		}
		acf[k] = sum / variance
	}
	return acf, nil
}

// PACF returns the partial autocorrelation at lags 0..maxLag via the
// Durbin-Levinson recursion. Lag 0 is defined as 1.
func PACF(x []float64, maxLag int) ([]float64, error) {
	acf, err := ACF(x, maxLag)
	if err != nil {
		return nil, err
	}
	if maxLag < 1 {
		return []float64{1}, nil
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1

	phi := make([][]float64, maxLag+1)
	for i := range phi {
		phi[i] = make([]float64, maxLag+1)
	}
	phi[1][1] = acf[1]
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-j]
			den -= phi[k-1][j] * acf[j]
		}
		if den == 0 {
			pacf[k] = 0
			continue
		}
		phi[k][k] = num / den
		pacf[k] = phi[k][k]
		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
	}
	return pacf, nil
}

// LjungBox tests the null of no autocorrelation up to the given lag. fitdf
// is the number of parameters estimated by the model that produced the
// residuals; it reduces the test's degrees of freedom.
func LjungBox(x []float64, lags, fitdf int) (*stats.LjungBoxTest, error) {
	n := len(x)
	if lags < 1 {
		lags = 1
	}
	if lags >= n {
		lags = n - 1
	}

	acf, err := ACF(x, lags)
	if err != nil {
		return nil, err
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n * (n + 2))

	df := lags - fitdf
	if df < 1 {
		df = 1
	}

	chi := distuv.ChiSquared{K: float64(df)}
	return &stats.LjungBoxTest{
		Statistic: q,
		PValue:    1 - chi.CDF(q),
		Lags:      lags,
		DF:        df,
	}, nil
}

// Correlogram bundles ACF, PACF, the +/-1.96/sqrt(n) white-noise bound, and
// the Ljung-Box test for one residual series.
func Correlogram(residuals []float64, maxLag, fitdf int) (*stats.Correlogram, error) {
	if maxLag >= len(residuals) {
		maxLag = len(residuals) - 1
	}
	acf, err := ACF(residuals, maxLag)
	if err != nil {
		return nil, err
	}
	pacf, err := PACF(residuals, maxLag)
	if err != nil {
		return nil, err
	}
	lb, err := LjungBox(residuals, maxLag, fitdf)
	if err != nil {
		return nil, err
	}
	return &stats.Correlogram{
		MaxLag:   maxLag,
		ACF:      acf,
		PACF:     pacf,
		Bound:    1.96 / math.Sqrt(float64(len(residuals))),
		LjungBox: lb,
	}, nil
}

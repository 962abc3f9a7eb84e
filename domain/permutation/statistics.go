package permutation

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"gopermute/internal/errors"
)

// MeanDifference computes mean(LevelA) - mean(LevelB) on a two-sample
// dataset. The classic permutation-test statistic for group comparisons.
type MeanDifference struct {
	LevelA string
	LevelB string
}

func (s MeanDifference) Name() string {
	return "mean_difference"
}

func (s MeanDifference) Compute(ds Dataset) (float64, error) {
	a := ds.GroupValues(s.LevelA)
	b := ds.GroupValues(s.LevelB)
	if len(a) == 0 || len(b) == 0 {
		return 0, errors.InvalidInputf("mean difference requires both groups non-empty (|%s|=%d, |%s|=%d)", s.LevelA, len(a), s.LevelB, len(b))
	}
	return stat.Mean(a, nil) - stat.Mean(b, nil), nil
}

// WelchT computes the Welch t statistic between the two group levels,
// tolerating unequal variances.
type WelchT struct {
	LevelA string
	LevelB string
}

func (s WelchT) Name() string {
	return "welch_t"
}

func (s WelchT) Compute(ds Dataset) (float64, error) {
	a := ds.GroupValues(s.LevelA)
	b := ds.GroupValues(s.LevelB)
	if len(a) < 2 || len(b) < 2 {
		return 0, errors.InvalidInputf("welch t requires at least 2 values per group (|%s|=%d, |%s|=%d)", s.LevelA, len(a), s.LevelB, len(b))
	}
	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)
	se := math.Sqrt(varA/float64(len(a)) + varB/float64(len(b)))
	if se == 0 {
		return 0, errors.InvalidInput("welch t undefined: both groups have zero variance")
	}
	return (meanA - meanB) / se, nil
}

// RegressionSlope computes the ordinary least squares slope of response on
// covariate.
type RegressionSlope struct{}

func (s RegressionSlope) Name() string {
	return "regression_slope"
}

func (s RegressionSlope) Compute(ds Dataset) (float64, error) {
	if ds.Covariate == nil {
		return 0, errors.InvalidInput("regression slope requires a covariate")
	}
	_, beta := stat.LinearRegression(ds.Covariate, ds.Response, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0, errors.InvalidInput("regression slope undefined: covariate has zero variance")
	}
	return beta, nil
}

// Correlation computes the Pearson correlation between covariate and
// response.
type Correlation struct{}

func (s Correlation) Name() string {
	return "pearson_correlation"
}

func (s Correlation) Compute(ds Dataset) (float64, error) {
	if ds.Covariate == nil {
		return 0, errors.InvalidInput("correlation requires a covariate")
	}
	r := stat.Correlation(ds.Covariate, ds.Response, nil)
	if math.IsNaN(r) {
		return 0, errors.InvalidInput("correlation undefined: a variable has zero variance")
	}
	return r, nil
}

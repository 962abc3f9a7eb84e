package engine

import (
	"math"

	"gopermute/domain/permutation"
	"gopermute/internal/errors"
)

// OneTailedUpper is the fraction of the distribution at or above the
// observed statistic.
func OneTailedUpper(obs float64, dist permutation.Distribution) (float64, error) {
	if len(dist) == 0 {
		return 0, errors.InvalidInput("permutation distribution is empty")
	}
	count := 0
	for _, d := range dist {
		if d >= obs {
			count++
		}
	}
	return float64(count) / float64(len(dist)), nil
}

// TwoTailedDoubled doubles the upper-tail p-value, clipped at 1.0. Only
// valid when the null distribution is symmetric around zero.
func TwoTailedDoubled(obs float64, dist permutation.Distribution) (float64, error) {
	upper, err := OneTailedUpper(obs, dist)
	if err != nil {
		return 0, err
	}
	p := 2 * upper
	if p > 1.0 {
		p = 1.0
	}
	return p, nil
}

// TwoTailedBothTails is the fraction of the distribution at least as extreme
// as the observed statistic in absolute value. Makes no symmetry assumption.
func TwoTailedBothTails(obs float64, dist permutation.Distribution) (float64, error) {
	if len(dist) == 0 {
		return 0, errors.InvalidInput("permutation distribution is empty")
	}
	absObs := math.Abs(obs)
	count := 0
	for _, d := range dist {
		if math.Abs(d) >= absObs {
			count++
		}
	}
	return float64(count) / float64(len(dist)), nil
}

// PValue dispatches on the caller-chosen tail mode. There is no default:
// the doubling and both-tails conventions disagree on asymmetric nulls, so
// callers must pick one explicitly.
func PValue(mode permutation.TailMode, obs float64, dist permutation.Distribution) (float64, error) {
	switch mode {
	case permutation.TailUpper:
		return OneTailedUpper(obs, dist)
	case permutation.TailTwoSidedDoubled:
		return TwoTailedDoubled(obs, dist)
	case permutation.TailTwoSidedBothTails:
		return TwoTailedBothTails(obs, dist)
	}
	return 0, errors.InvalidInputf("unknown tail mode %q", mode)
}

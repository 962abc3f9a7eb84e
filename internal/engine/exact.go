package engine

import (
	"context"

	"gonum.org/v1/gonum/stat/combin"

	"gopermute/domain/permutation"
	"gopermute/internal/errors"
)

// ExactTwoSample enumerates every distinct way of assigning k of the N
// records to the first group level, exactly C(N,k) combinations each exactly
// once in lexicographic index order, and evaluates the statistic on each
// relabeling. k is the size of the first-appearing group level in the
// original dataset.
func (e *Engine) ExactTwoSample(ctx context.Context, ds permutation.Dataset, stat permutation.Statistic) (*Result, error) {
	levelA, levelB, err := ds.GroupLevels()
	if err != nil {
		return nil, err
	}

	n := ds.Len()
	k := ds.GroupSize(levelA)
	if k <= 0 || k >= n {
		return nil, errors.InvalidInputf("no valid partition: k=%d of N=%d", k, n)
	}

	total, ok := binomialCapped(n, k, e.cfg.MaxExactCombinations)
	if !ok {
		return nil, errors.ComputeInfeasiblef("C(%d,%d) exceeds exact enumeration ceiling %d; switch to Monte Carlo sampling", n, k, e.cfg.MaxExactCombinations)
	}

	observed, err := stat.Compute(ds)
	if err != nil {
		return nil, errors.Wrapf(err, "statistic %q failed on observed dataset", stat.Name())
	}

	e.logger.Debug("exact two-sample enumeration: N=%d k=%d combinations=%d statistic=%s", n, k, total, stat.Name())

	dist := make(permutation.Distribution, 0, total)
	chosen := make([]int, k)
	gen := combin.NewCombinationGenerator(n, k)
	for gen.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		gen.Combination(chosen)
		relabeled := ds.RelabelByChoice(chosen, levelA, levelB)
		v, err := stat.Compute(relabeled)
		if err != nil {
			return nil, errors.Wrapf(err, "statistic %q failed on relabeled dataset", stat.Name())
		}
		dist = append(dist, v)
	}

	return &Result{
		Observed:     observed,
		Distribution: dist,
		Draws:        len(dist),
		Method:       MethodExact,
		Statistic:    stat.Name(),
	}, nil
}

// ExactRegression enumerates all N! orderings of the response vector against
// the fixed covariates. Factorial growth makes this infeasible beyond small
// N (10! is already ~3.6M evaluations), so requests above the configured N
// ceiling are rejected; callers must sample instead.
func (e *Engine) ExactRegression(ctx context.Context, ds permutation.Dataset, stat permutation.Statistic) (*Result, error) {
	if ds.Len() == 0 {
		return nil, errors.InvalidInput("dataset is empty")
	}
	if ds.Covariate == nil {
		return nil, errors.InvalidInput("exact regression requires a covariate dataset")
	}

	n := ds.Len()
	if n > e.cfg.MaxExactPermutationN {
		return nil, errors.ComputeInfeasiblef("exact regression enumerates N! orderings; N=%d exceeds ceiling %d, switch to Monte Carlo sampling", n, e.cfg.MaxExactPermutationN)
	}

	observed, err := stat.Compute(ds)
	if err != nil {
		return nil, errors.Wrapf(err, "statistic %q failed on observed dataset", stat.Name())
	}

	total := factorial(n)
	e.logger.Debug("exact regression enumeration: N=%d permutations=%d statistic=%s", n, total, stat.Name())

	dist := make(permutation.Distribution, 0, total)
	perm := make([]int, n)
	gen := combin.NewPermutationGenerator(n, n)
	for gen.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		gen.Permutation(perm)
		permuted := ds.PermuteResponse(perm)
		v, err := stat.Compute(permuted)
		if err != nil {
			return nil, errors.Wrapf(err, "statistic %q failed on permuted dataset", stat.Name())
		}
		dist = append(dist, v)
	}

	return &Result{
		Observed:     observed,
		Distribution: dist,
		Draws:        len(dist),
		Method:       MethodExact,
		Statistic:    stat.Name(),
	}, nil
}

// binomialCapped computes C(n,k) without overflow, reporting failure as soon
// as the running value exceeds limit.
func binomialCapped(n, k, limit int) (int, bool) {
	if k < 0 || k > n {
		return 0, false
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 1; i <= k; i++ {
		result = result * (n - k + i) / i
		if result > limit || result < 0 {
			return 0, false
		}
	}
	return result, true
}

func factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

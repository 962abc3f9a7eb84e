package permutation

import (
	"gopermute/internal/errors"
)

// Dataset is an ordered sequence of records. Each record has a numeric
// response plus either a group label (two-sample tests) or a numeric
// covariate (regression tests). Datasets are treated as read-only for the
// duration of a test run; relabeling methods return fresh copies.
type Dataset struct {
	Response  []float64
	Group     []string  // two-sample case; nil for regression datasets
	Covariate []float64 // regression case; nil for two-sample datasets
}

// NewTwoSample builds a grouped dataset and validates it: non-empty, matched
// lengths, and exactly two group levels.
func NewTwoSample(response []float64, group []string) (Dataset, error) {
	if len(response) == 0 {
		return Dataset{}, errors.InvalidInput("dataset is empty")
	}
	if len(response) != len(group) {
		return Dataset{}, errors.InvalidInputf("response length %d does not match group length %d", len(response), len(group))
	}
	ds := Dataset{Response: response, Group: group}
	if _, _, err := ds.GroupLevels(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// FromGroups builds a two-sample dataset from two labeled value slices,
// first group before second, preserving within-group order.
func FromGroups(levelA string, a []float64, levelB string, b []float64) (Dataset, error) {
	response := make([]float64, 0, len(a)+len(b))
	group := make([]string, 0, len(a)+len(b))
	for _, v := range a {
		response = append(response, v)
		group = append(group, levelA)
	}
	for _, v := range b {
		response = append(response, v)
		group = append(group, levelB)
	}
	return NewTwoSample(response, group)
}

// NewRegression builds a dataset of (covariate, response) pairs.
func NewRegression(response, covariate []float64) (Dataset, error) {
	if len(response) == 0 {
		return Dataset{}, errors.InvalidInput("dataset is empty")
	}
	if len(response) != len(covariate) {
		return Dataset{}, errors.InvalidInputf("response length %d does not match covariate length %d", len(response), len(covariate))
	}
	return Dataset{Response: response, Covariate: covariate}, nil
}

// Len returns the number of records
func (d Dataset) Len() int {
	return len(d.Response)
}

// IsGrouped reports whether this is a two-sample dataset
func (d Dataset) IsGrouped() bool {
	return d.Group != nil
}

// GroupLevels returns the two group labels in order of first appearance.
// Errors when the dataset is ungrouped or does not carry exactly two levels.
func (d Dataset) GroupLevels() (string, string, error) {
	if !d.IsGrouped() {
		return "", "", errors.InvalidInput("dataset has no group labels")
	}
	var levels []string
	seen := make(map[string]bool)
	for _, g := range d.Group {
		if !seen[g] {
			seen[g] = true
			levels = append(levels, g)
		}
	}
	if len(levels) != 2 {
		return "", "", errors.InvalidInputf("two-sample dataset requires exactly 2 group levels, found %d", len(levels))
	}
	return levels[0], levels[1], nil
}

// GroupSize returns the number of records carrying the given label
func (d Dataset) GroupSize(level string) int {
	count := 0
	for _, g := range d.Group {
		if g == level {
			count++
		}
	}
	return count
}

// GroupValues returns the response values carrying the given label,
// in record order.
func (d Dataset) GroupValues(level string) []float64 {
	var values []float64
	for i, g := range d.Group {
		if g == level {
			values = append(values, d.Response[i])
		}
	}
	return values
}

// RelabelByChoice returns a copy of the dataset where the chosen record
// indices carry levelA and all others carry levelB. Responses are untouched,
// so the response multiset is conserved by construction.
func (d Dataset) RelabelByChoice(chosen []int, levelA, levelB string) Dataset {
	group := make([]string, len(d.Group))
	for i := range group {
		group[i] = levelB
	}
	for _, idx := range chosen {
		group[idx] = levelA
	}
	return Dataset{Response: d.Response, Group: group}
}

// PermuteResponse returns a copy of the dataset whose response vector is
// reordered by perm against fixed labels or covariates. perm must be a
// permutation of 0..Len()-1.
func (d Dataset) PermuteResponse(perm []int) Dataset {
	response := make([]float64, len(d.Response))
	for i, p := range perm {
		response[i] = d.Response[p]
	}
	return Dataset{Response: response, Group: d.Group, Covariate: d.Covariate}
}

// Statistic is the capability the engine evaluates on each relabeled
// dataset: a pure function from a dataset to a single real number. The
// engine treats it as opaque; a Compute error on any relabeling aborts the
// run immediately.
type Statistic interface {
	Name() string
	Compute(ds Dataset) (float64, error)
}

// Distribution is the ordered sequence of statistic values produced by one
// test run, one value per generated label assignment.
type Distribution []float64

// TailMode selects how a p-value is read off the permutation distribution.
// The two two-sided variants are not interchangeable: doubling assumes a
// symmetric null, both-tails counting does not. Callers choose explicitly.
type TailMode string

const (
	TailUpper             TailMode = "upper"
	TailTwoSidedDoubled   TailMode = "two_sided_doubled"
	TailTwoSidedBothTails TailMode = "two_sided_both_tails"
)

// ParseTailMode validates a tail mode string
func ParseTailMode(s string) (TailMode, error) {
	switch TailMode(s) {
	case TailUpper, TailTwoSidedDoubled, TailTwoSidedBothTails:
		return TailMode(s), nil
	}
	return "", errors.InvalidInputf("unknown tail mode %q", s)
}

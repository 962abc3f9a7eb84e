package engine

import (
	"context"
	"math"
	"testing"

	"gopermute/adapters/rng"
	"gopermute/domain/permutation"
	"gopermute/internal/config"
	"gopermute/internal/errors"
)

func newTestEngine() *Engine {
	return New(rng.New(), config.DefaultEngineConfig())
}

// groupSum adds up the responses carrying the level. With power-of-two
// responses every index subset maps to a distinct sum, which makes the
// enumeration order and uniqueness observable from outside the engine.
type groupSum struct {
	level string
}

func (s groupSum) Name() string { return "group_sum" }

func (s groupSum) Compute(ds permutation.Dataset) (float64, error) {
	sum := 0.0
	for i, g := range ds.Group {
		if g == s.level {
			sum += ds.Response[i]
		}
	}
	return sum, nil
}

func TestExactTwoSample_EnumeratesAllCombinations(t *testing.T) {
	eng := newTestEngine()

	// Responses are 2^i so each combination of indices has a unique sum
	ds, err := permutation.NewTwoSample(
		[]float64{1, 2, 4, 8, 16},
		[]string{"a", "a", "b", "b", "b"},
	)
	if err != nil {
		t.Fatalf("NewTwoSample failed: %v", err)
	}

	result, err := eng.ExactTwoSample(context.Background(), ds, groupSum{level: "a"})
	if err != nil {
		t.Fatalf("ExactTwoSample failed: %v", err)
	}

	// C(5,2) = 10
	if len(result.Distribution) != 10 {
		t.Fatalf("expected 10 combinations, got %d", len(result.Distribution))
	}

	seen := make(map[float64]bool)
	for _, v := range result.Distribution {
		if seen[v] {
			t.Fatalf("duplicate combination observed (sum %v)", v)
		}
		seen[v] = true
	}

	// Lexicographic index order: first {0,1}, last {3,4}
	if result.Distribution[0] != 1+2 {
		t.Errorf("expected first combination {0,1} (sum 3), got sum %v", result.Distribution[0])
	}
	if result.Distribution[9] != 8+16 {
		t.Errorf("expected last combination {3,4} (sum 24), got sum %v", result.Distribution[9])
	}

	if result.Method != MethodExact {
		t.Errorf("expected method %q, got %q", MethodExact, result.Method)
	}
}

func TestExactTwoSample_AntCounts(t *testing.T) {
	eng := newTestEngine()

	ds, err := permutation.FromGroups(
		"field", []float64{12, 9, 12, 10},
		"forest", []float64{9, 6, 4, 6, 7, 10},
	)
	if err != nil {
		t.Fatalf("FromGroups failed: %v", err)
	}

	stat := permutation.MeanDifference{LevelA: "field", LevelB: "forest"}
	result, err := eng.ExactTwoSample(context.Background(), ds, stat)
	if err != nil {
		t.Fatalf("ExactTwoSample failed: %v", err)
	}

	if len(result.Distribution) != 210 {
		t.Fatalf("expected C(10,4)=210 combinations, got %d", len(result.Distribution))
	}
	if math.Abs(result.Observed-3.75) > 1e-12 {
		t.Fatalf("expected observed 3.75, got %f", result.Observed)
	}

	// Hand-enumerable tail counts: 5 assignments with diff >= 3.75,
	// 3 with diff <= -3.75.
	pUpper, err := OneTailedUpper(result.Observed, result.Distribution)
	if err != nil {
		t.Fatalf("OneTailedUpper failed: %v", err)
	}
	if math.Abs(pUpper-5.0/210.0) > 1e-12 {
		t.Errorf("expected upper p = 5/210, got %.10f", pUpper)
	}

	pDoubled, err := TwoTailedDoubled(result.Observed, result.Distribution)
	if err != nil {
		t.Fatalf("TwoTailedDoubled failed: %v", err)
	}
	if math.Abs(pDoubled-10.0/210.0) > 1e-12 {
		t.Errorf("expected doubled p = 10/210, got %.10f", pDoubled)
	}

	pBoth, err := TwoTailedBothTails(result.Observed, result.Distribution)
	if err != nil {
		t.Fatalf("TwoTailedBothTails failed: %v", err)
	}
	if math.Abs(pBoth-8.0/210.0) > 1e-12 {
		t.Errorf("expected both-tails p = 8/210, got %.10f", pBoth)
	}
}

func TestExactTwoSample_InvalidPartitions(t *testing.T) {
	eng := newTestEngine()

	tests := []struct {
		name string
		ds   permutation.Dataset
	}{
		{
			name: "empty dataset",
			ds:   permutation.Dataset{},
		},
		{
			name: "single level means k equals N",
			ds:   permutation.Dataset{Response: []float64{1, 2, 3}, Group: []string{"a", "a", "a"}},
		},
		{
			name: "ungrouped dataset",
			ds:   permutation.Dataset{Response: []float64{1, 2, 3}, Covariate: []float64{1, 2, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.ExactTwoSample(context.Background(), tt.ds, groupSum{level: "a"})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if errors.GetCode(err) != errors.CodeInvalidInput {
				t.Errorf("expected INVALID_INPUT, got %s", errors.GetCode(err))
			}
		})
	}
}

func TestExactTwoSample_RejectsAboveCeiling(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.MaxExactCombinations = 100
	eng := New(rng.New(), cfg)

	ds, err := permutation.FromGroups(
		"field", []float64{12, 9, 12, 10},
		"forest", []float64{9, 6, 4, 6, 7, 10},
	)
	if err != nil {
		t.Fatalf("FromGroups failed: %v", err)
	}

	// C(10,4)=210 > 100
	_, err = eng.ExactTwoSample(context.Background(), ds, permutation.MeanDifference{LevelA: "field", LevelB: "forest"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.GetCode(err) != errors.CodeComputeInfeasible {
		t.Errorf("expected COMPUTE_INFEASIBLE, got %s", errors.GetCode(err))
	}
}

func TestExactRegression_SmallN(t *testing.T) {
	eng := newTestEngine()

	ds, err := permutation.NewRegression([]float64{1, 2, 3}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("NewRegression failed: %v", err)
	}

	result, err := eng.ExactRegression(context.Background(), ds, permutation.RegressionSlope{})
	if err != nil {
		t.Fatalf("ExactRegression failed: %v", err)
	}

	// 3! orderings
	if len(result.Distribution) != 6 {
		t.Fatalf("expected 6 permutations, got %d", len(result.Distribution))
	}
	if math.Abs(result.Observed-1.0) > 1e-12 {
		t.Errorf("expected observed slope 1, got %f", result.Observed)
	}

	// Slopes over all orderings of (1,2,3): {1, 0.5, 0.5, -0.5, -0.5, -1};
	// |slope| >= 1 for exactly 2 of 6.
	pBoth, err := TwoTailedBothTails(result.Observed, result.Distribution)
	if err != nil {
		t.Fatalf("TwoTailedBothTails failed: %v", err)
	}
	if math.Abs(pBoth-2.0/6.0) > 1e-12 {
		t.Errorf("expected both-tails p = 1/3, got %.10f", pBoth)
	}
}

func TestExactRegression_RejectsLargeN(t *testing.T) {
	eng := newTestEngine()

	n := 12 // 12! is far past the default ceiling of N=10
	response := make([]float64, n)
	covariate := make([]float64, n)
	for i := 0; i < n; i++ {
		response[i] = float64(i)
		covariate[i] = float64(i * i)
	}
	ds, err := permutation.NewRegression(response, covariate)
	if err != nil {
		t.Fatalf("NewRegression failed: %v", err)
	}

	_, err = eng.ExactRegression(context.Background(), ds, permutation.RegressionSlope{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.GetCode(err) != errors.CodeComputeInfeasible {
		t.Errorf("expected COMPUTE_INFEASIBLE, got %s", errors.GetCode(err))
	}
}

func TestExactTwoSample_StatisticErrorSurfacesImmediately(t *testing.T) {
	eng := newTestEngine()

	ds, err := permutation.NewTwoSample([]float64{1, 2, 3, 4}, []string{"a", "a", "b", "b"})
	if err != nil {
		t.Fatalf("NewTwoSample failed: %v", err)
	}

	_, err = eng.ExactTwoSample(context.Background(), ds, failingStatistic{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.GetCode(err) != errors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", errors.GetCode(err))
	}
}

type failingStatistic struct{}

func (failingStatistic) Name() string { return "failing" }

func (failingStatistic) Compute(ds permutation.Dataset) (float64, error) {
	return 0, errors.InvalidInput("degenerate group")
}

func TestBinomialCapped(t *testing.T) {
	tests := []struct {
		n, k, limit int
		want        int
		ok          bool
	}{
		{10, 4, 1000, 210, true},
		{5, 2, 1000, 10, true},
		{10, 4, 100, 0, false},
		{52, 26, 1 << 30, 0, false}, // ~4.9e14
		{4, 0, 1000, 1, true},
		{4, 5, 1000, 0, false},
	}

	for _, tt := range tests {
		got, ok := binomialCapped(tt.n, tt.k, tt.limit)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("binomialCapped(%d,%d,%d) = (%d,%v), want (%d,%v)", tt.n, tt.k, tt.limit, got, ok, tt.want, tt.ok)
		}
	}
}

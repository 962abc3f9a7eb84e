package engine

import (
	"gopermute/domain/permutation"
	"gopermute/internal"
	"gopermute/internal/config"
	"gopermute/ports"
)

// Method names recorded on results
const (
	MethodExact      = "exact"
	MethodMonteCarlo = "monte_carlo"
)

// Engine computes permutation distributions for a caller-supplied test
// statistic, either by exact enumeration of label assignments or by Monte
// Carlo sampling. Each call is stateless and idempotent; the only inputs are
// the read-only dataset, the statistic, and an explicit seed.
type Engine struct {
	rng    ports.RNGPort
	cfg    config.EngineConfig
	logger *internal.Logger
}

// New creates an engine with the given RNG source and limits
func New(rng ports.RNGPort, cfg config.EngineConfig) *Engine {
	return &Engine{
		rng:    rng,
		cfg:    cfg,
		logger: internal.DefaultLogger,
	}
}

// Result holds the outcome of one test run: the observed statistic on the
// original labeling and the statistic under every generated relabeling.
type Result struct {
	Observed     float64
	Distribution permutation.Distribution
	Draws        int
	Method       string
	Statistic    string
	Seed         int64 // 0 for exact enumeration
}

// PValue reads a p-value off the result's distribution under the given tail
// mode.
func (r *Result) PValue(mode permutation.TailMode) (float64, error) {
	return PValue(mode, r.Observed, r.Distribution)
}

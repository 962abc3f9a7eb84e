package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"gopermute/domain/permutation"
	"gopermute/internal"
	"gopermute/internal/engine"
	"gopermute/internal/errors"
	"gopermute/ports"
)

// Method selects how the permutation distribution is generated. There is no
// automatic fallback: when exact enumeration is infeasible the engine rejects
// the request and the caller switches to Monte Carlo explicitly.
type Method string

const (
	MethodExact      Method = "exact"
	MethodMonteCarlo Method = "monte_carlo"
)

// ParseMethod validates a method string
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodExact, MethodMonteCarlo:
		return Method(s), nil
	}
	return "", errors.InvalidInputf("unknown method %q", s)
}

// RunRequest describes one test run
type RunRequest struct {
	Method Method
	Draws  int   // Monte Carlo only; 0 means the configured default
	Seed   int64 // Monte Carlo only
	Tail   permutation.TailMode
}

// RunResult couples the durable record with the full distribution, which is
// returned to the caller for plotting or inspection and not persisted.
type RunResult struct {
	Record       ports.RunRecord
	Distribution permutation.Distribution
}

// TestService orchestrates permutation test runs: it validates the request,
// dispatches to the engine, assembles the run record with all three p-value
// readings and a null-distribution summary, and optionally persists it.
type TestService struct {
	engine       *engine.Engine
	repo         ports.RunRepository // nil disables persistence
	defaultDraws int
	logger       *internal.Logger
}

// NewTestService creates a test service
func NewTestService(eng *engine.Engine, repo ports.RunRepository, defaultDraws int) *TestService {
	return &TestService{
		engine:       eng,
		repo:         repo,
		defaultDraws: defaultDraws,
		logger:       internal.DefaultLogger,
	}
}

// Run executes one permutation test
func (s *TestService) Run(ctx context.Context, ds permutation.Dataset, stat permutation.Statistic, req RunRequest) (*RunResult, error) {
	if _, err := permutation.ParseTailMode(string(req.Tail)); err != nil {
		return nil, err
	}

	result, err := s.dispatch(ctx, ds, stat, req)
	if err != nil {
		return nil, err
	}

	pUpper, err := engine.OneTailedUpper(result.Observed, result.Distribution)
	if err != nil {
		return nil, err
	}
	pDoubled, err := engine.TwoTailedDoubled(result.Observed, result.Distribution)
	if err != nil {
		return nil, err
	}
	pBothTails, err := engine.TwoTailedBothTails(result.Observed, result.Distribution)
	if err != nil {
		return nil, err
	}
	pValue, err := engine.PValue(req.Tail, result.Observed, result.Distribution)
	if err != nil {
		return nil, err
	}

	record := ports.RunRecord{
		RunID:      uuid.NewString(),
		Method:     result.Method,
		Statistic:  result.Statistic,
		TailMode:   string(req.Tail),
		Observed:   result.Observed,
		Draws:      result.Draws,
		Seed:       result.Seed,
		SampleSize: ds.Len(),
		PValue:     pValue,
		PUpper:     pUpper,
		PDoubled:   pDoubled,
		PBothTails: pBothTails,
		CreatedAt:  time.Now().UTC(),
	}
	summarizeNull(&record, result.Distribution)

	s.logger.Info("run %s complete: method=%s statistic=%s observed=%.6g p=%.6g draws=%d",
		record.RunID, record.Method, record.Statistic, record.Observed, record.PValue, record.Draws)

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, record); err != nil {
			return nil, errors.Wrapf(err, "failed to persist run %s", record.RunID)
		}
	}

	return &RunResult{
		Record:       record,
		Distribution: result.Distribution,
	}, nil
}

func (s *TestService) dispatch(ctx context.Context, ds permutation.Dataset, stat permutation.Statistic, req RunRequest) (*engine.Result, error) {
	switch req.Method {
	case MethodExact:
		if ds.IsGrouped() {
			return s.engine.ExactTwoSample(ctx, ds, stat)
		}
		return s.engine.ExactRegression(ctx, ds, stat)
	case MethodMonteCarlo:
		draws := req.Draws
		if draws <= 0 {
			draws = s.defaultDraws
		}
		return s.engine.Sample(ctx, ds, stat, draws, req.Seed)
	}
	return nil, errors.InvalidInputf("unknown method %q", req.Method)
}

// summarizeNull fills the null-distribution summary fields of the record
func summarizeNull(record *ports.RunRecord, dist permutation.Distribution) {
	data := []float64(dist)
	record.NullMean, _ = stats.Mean(data)
	record.NullStdDev, _ = stats.StandardDeviation(data)
	record.NullMin, _ = stats.Min(data)
	record.NullMax, _ = stats.Max(data)
	record.NullP95, _ = stats.Percentile(data, 95)
	record.NullP99, _ = stats.Percentile(data, 99)
}

package engine

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"gopermute/domain/permutation"
	"gopermute/internal/errors"
)

// Sample draws the requested number of independent uniformly-random full
// shuffles of the response vector and evaluates the statistic on each.
// Draws are partitioned into fixed-size chunks; every chunk owns a private
// RNG stream sliced deterministically from the base seed, so the output
// sequence depends only on (seed, draws) and never on worker scheduling.
func (e *Engine) Sample(ctx context.Context, ds permutation.Dataset, stat permutation.Statistic, draws int, seed int64) (*Result, error) {
	if ds.Len() == 0 {
		return nil, errors.InvalidInput("dataset is empty")
	}
	if draws <= 0 {
		return nil, errors.InvalidInputf("draw count must be positive, got %d", draws)
	}

	observed, err := stat.Compute(ds)
	if err != nil {
		return nil, errors.Wrapf(err, "statistic %q failed on observed dataset", stat.Name())
	}

	e.logger.Debug("monte carlo sampling: N=%d draws=%d seed=%d statistic=%s", ds.Len(), draws, seed, stat.Name())

	dist := make(permutation.Distribution, draws)
	streamName := "monte-carlo:" + stat.Name()
	chunkSize := e.cfg.ChunkSize
	numChunks := (draws + chunkSize - 1) / chunkSize

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for c := 0; c < numChunks; c++ {
		chunk := c
		g.Go(func() error {
			stream, err := e.rng.Stream(gctx, streamName, chunk, seed)
			if err != nil {
				return errors.Wrap(err, "failed to acquire RNG stream")
			}

			start := chunk * chunkSize
			end := min(start+chunkSize, draws)
			perm := make([]int, ds.Len())
			for i := start; i < end; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				shuffleIndices(stream, perm)
				v, err := stat.Compute(ds.PermuteResponse(perm))
				if err != nil {
					return errors.Wrapf(err, "statistic %q failed on permuted dataset", stat.Name())
				}
				dist[i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Observed:     observed,
		Distribution: dist,
		Draws:        draws,
		Method:       MethodMonteCarlo,
		Statistic:    stat.Name(),
		Seed:         seed,
	}, nil
}

// shuffleIndices fills idx with a uniformly-random permutation of
// 0..len(idx)-1 using a Fisher-Yates shuffle.
func shuffleIndices(rng *rand.Rand, idx []int) {
	for i := range idx {
		idx[i] = i
	}
	for i := len(idx) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}
}

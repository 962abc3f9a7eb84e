package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic
// operations. The engine never touches process-global random state; every
// sampling run threads an explicit stream obtained here.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a
	// named operation.
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream for one chunk of a sampling
	// run, sliced from the base seed. Chunked streams make Monte Carlo
	// output identical for any worker count.
	Stream(ctx context.Context, name string, chunk int, baseSeed int64) (*rand.Rand, error)
}

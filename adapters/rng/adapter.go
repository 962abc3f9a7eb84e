package rng

import (
	"context"
	"math/rand"
)

// chunkStride separates chunk seeds so neighbouring chunks do not share
// low-order seed bits.
const chunkStride = 1_000_003

// Adapter implements ports.RNGPort on math/rand with deterministic,
// name-salted seeding.
type Adapter struct{}

// New creates an RNG adapter
func New() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named
// operation.
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed + int64(hashString(name)))), nil
}

// Stream creates a deterministic RNG stream for one chunk of a sampling run.
// The chunk index participates in the seed so every chunk owns a private
// stream regardless of which worker evaluates it.
func (a *Adapter) Stream(ctx context.Context, name string, chunk int, baseSeed int64) (*rand.Rand, error) {
	seed := baseSeed + int64(hashString(name)) + int64(chunk+1)*chunkStride
	return rand.New(rand.NewSource(seed)), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}

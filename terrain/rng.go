package terrain

import "math/rand/v2"

// RandomSource supplies uniform floats in [0, 1). Feature placement draws
// all of its randomness from one source, so a seeded source reproduces the
// same sites.
type RandomSource interface {
	Float64() float64
}

// SourceFactory builds the random source for one generation from its seed.
type SourceFactory func(seed uint64) RandomSource

// NewRandomSource creates a deterministic PCG source using the provided seed.
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, 0))
}

// RandomSeed returns a fresh seed for callers that did not pin one.
func RandomSeed() uint64 {
	return rand.Uint64()
}
